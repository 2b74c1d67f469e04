// Package persistence provides the storage abstraction for workflow
// definitions, import error reports and artifacts.
package persistence

import (
	"context"

	"github.com/stateforge/stateforge/pkg/models"
)

type Persistence interface {
	WorkflowRepository() WorkflowRepository
	ArtifactRepository() ArtifactRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// WorkflowRepository stores validated definitions and the error
// reports of rejected imports.
type WorkflowRepository interface {
	Save(ctx context.Context, def *models.WorkflowDefinition) error
	GetByID(ctx context.Context, id string) (*models.WorkflowDefinition, error)
	List(ctx context.Context) ([]*models.WorkflowDefinition, error)
	Delete(ctx context.Context, id string) error

	SaveErrorReport(ctx context.Context, report *models.ImportErrorReport) error
	ErrorReportByID(ctx context.Context, id string) (*models.ImportErrorReport, error)
}

// ArtifactRepository stores artifacts and commits transitions.
// ApplyTransition is the engine's single-writer transactional boundary:
// the state change, identity field changes and property writes land
// together or not at all.
type ArtifactRepository interface {
	GetByID(ctx context.Context, id string) (*models.Artifact, error)
	Save(ctx context.Context, artifact *models.Artifact) error
	ApplyTransition(ctx context.Context, change ArtifactTransition) error
}

// ArtifactTransition is one validated, ready-to-commit transition.
type ArtifactTransition struct {
	ArtifactID  string
	ToState     string
	Name        *string
	Description *string
	Properties  []PropertyWrite
}

// PropertyWrite is one validated property value to persist.
type PropertyWrite struct {
	PropertyTypeID int
	Value          string
}
