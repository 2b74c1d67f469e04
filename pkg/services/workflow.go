package services

import (
	"context"

	"github.com/stateforge/stateforge/pkg/models"
	"github.com/stateforge/stateforge/pkg/persistence"
)

// ErrWorkflowNotFound is returned when a workflow is not found.
var ErrWorkflowNotFound = persistence.ErrWorkflowNotFound

// Workflow exposes read and delete operations over stored definitions.
// Creation goes through the import service only.
type Workflow struct {
	workflows persistence.WorkflowRepository
}

// NewWorkflow creates a new workflow service.
func NewWorkflow(workflows persistence.WorkflowRepository) *Workflow {
	return &Workflow{workflows: workflows}
}

// FetchByID retrieves a definition by its id.
func (w *Workflow) FetchByID(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	def, err := w.workflows.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if def == nil {
		return nil, ErrWorkflowNotFound
	}

	return def, nil
}

// List retrieves all stored definitions.
func (w *Workflow) List(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	return w.workflows.List(ctx)
}

// Delete removes a definition by its id.
func (w *Workflow) Delete(ctx context.Context, id string) error {
	return w.workflows.Delete(ctx, id)
}
