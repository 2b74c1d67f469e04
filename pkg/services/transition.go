package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stateforge/stateforge/pkg/models"
	"github.com/stateforge/stateforge/pkg/persistence"
	"github.com/stateforge/stateforge/pkg/pipeline"
)

// Transition loads the artifact and its governing definition and hands
// the request to the execution pipeline.
type Transition struct {
	workflows persistence.WorkflowRepository
	artifacts persistence.ArtifactRepository
	executor  *pipeline.Executor
	logger    *slog.Logger
}

// NewTransition creates the transition service.
func NewTransition(
	workflows persistence.WorkflowRepository,
	artifacts persistence.ArtifactRepository,
	executor *pipeline.Executor,
	logger *slog.Logger,
) *Transition {
	return &Transition{
		workflows: workflows,
		artifacts: artifacts,
		executor:  executor,
		logger:    logger,
	}
}

// Execute runs one transition request. A rejection is reported through
// ErrTransitionRejected with the result still populated, so callers
// can surface the per-trigger failure map.
func (s *Transition) Execute(ctx context.Context, req models.TransitionRequest) (*pipeline.Result, error) {
	artifact, err := s.artifacts.GetByID(ctx, req.ArtifactID)
	if err != nil {
		return nil, err
	}

	def, err := s.workflows.GetByID(ctx, artifact.WorkflowID)
	if err != nil {
		return nil, fmt.Errorf("loading workflow %q: %w", artifact.WorkflowID, err)
	}

	result, err := s.executor.Execute(ctx, def, artifact, req.Transition, req.UserID)
	if err != nil {
		return nil, err
	}

	if result.Rejected() {
		return result, ErrTransitionRejected
	}

	return result, nil
}

// HealthCheck reports the persistence layer's health.
func (s *Transition) HealthCheck(ctx context.Context, p persistence.Persistence) (string, bool) {
	if p == nil {
		return "Persistence layer not initialized", false
	}

	if err := p.HealthCheck(ctx); err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}
