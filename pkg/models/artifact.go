package models

import "time"

// Artifact is the mutation target of a transition: the tracked item
// whose lifecycle a workflow governs.
type Artifact struct {
	ID           string         `json:"id"             validate:"required"`
	Name         string         `json:"name"           validate:"required"`
	Description  string         `json:"description"`
	ArtifactType string         `json:"artifact_type"  validate:"required"`
	ProjectID    int            `json:"project_id"`
	State        string         `json:"state"`
	WorkflowID   string         `json:"workflow_id"`
	Properties   map[int]string `json:"properties,omitempty"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// TransitionRequest asks the engine to move one artifact across one
// named transition on behalf of a user.
type TransitionRequest struct {
	ArtifactID string `json:"artifact_id" validate:"required"`
	Transition string `json:"transition"  validate:"required"`
	UserID     int    `json:"user_id"     validate:"required,min=1"`
}
