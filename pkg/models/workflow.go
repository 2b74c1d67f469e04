// Package models defines the core domain models for artifact lifecycle workflows.
package models

import "time"

// Limits enforced by the structural validator. These mirror the storage
// schema and are part of the import contract, not tunables.
const (
	MaxWorkflowNameLength        = 128
	MaxDescriptionLength         = 4000
	MaxStateNameLength           = 24
	MaxTransitionNameLength      = 24
	MaxStatesPerWorkflow         = 100
	MaxTransitionsPerState       = 10
)

// WorkflowDefinition is a reusable lifecycle definition: named states,
// the transitions between them, and the triggers bound to each
// transition. A definition is immutable once validation begins; it is
// either persisted whole or discarded with an error report.
type WorkflowDefinition struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"           validate:"required,max=128"`
	Description   string            `json:"description"    validate:"max=4000"`
	States        []State           `json:"states"`
	Transitions   []Transition      `json:"transitions"`
	Projects      []ProjectRef      `json:"projects"`
	ArtifactTypes []ArtifactTypeRef `json:"artifact_types"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// State is a named lifecycle stage. Exactly one state in a definition
// carries IsInitial.
type State struct {
	Name        string `json:"name"        validate:"required,max=24"`
	Description string `json:"description" validate:"max=4000"`
	IsInitial   bool   `json:"is_initial"`
}

// Transition moves an artifact between two declared states. Its name
// must be unique among transitions incident to either endpoint state.
type Transition struct {
	Name                string            `json:"name"        validate:"required,max=24"`
	Description         string            `json:"description" validate:"max=4000"`
	FromState           string            `json:"from_state"`
	ToState             string            `json:"to_state"`
	SkipPermissionCheck bool              `json:"skip_permission_check,omitempty"`
	PermissionGroups    []PermissionGroup `json:"permission_groups,omitempty"`
	Triggers            []Trigger         `json:"triggers,omitempty"`
}

// PermissionGroup restricts who may execute a transition.
// SkipPermissionCheck on the transition opens it to everyone
// regardless of the group list.
type PermissionGroup struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ProjectRef references a project either by stable id or by path.
// References without an id are resolved by the data validator.
type ProjectRef struct {
	ID   int    `json:"id,omitempty"`
	Path string `json:"path,omitempty"`
}

// ArtifactTypeRef binds a definition to an artifact type by name.
type ArtifactTypeRef struct {
	Name string `json:"name" validate:"required"`
}

// InitialState returns the state flagged as initial, if any.
func (w *WorkflowDefinition) InitialState() (State, bool) {
	for _, s := range w.States {
		if s.IsInitial {
			return s, true
		}
	}

	return State{}, false
}

// StateByName looks a state up by its declared name.
func (w *WorkflowDefinition) StateByName(name string) (State, bool) {
	for _, s := range w.States {
		if s.Name == name {
			return s, true
		}
	}

	return State{}, false
}

// TransitionsForState returns all transitions incident to the named
// state, in declaration order.
func (w *WorkflowDefinition) TransitionsForState(name string) []Transition {
	var incident []Transition

	for _, t := range w.Transitions {
		if t.FromState == name || t.ToState == name {
			incident = append(incident, t)
		}
	}

	return incident
}
