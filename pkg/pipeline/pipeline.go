// Package pipeline executes transition requests: it validates every
// synchronous trigger against the artifact's property types, applies
// validated changes atomically through the persistence collaborator,
// and dispatches asynchronous triggers after commit.
package pipeline

import (
	"context"
	"errors"

	"github.com/stateforge/stateforge/pkg/models"
)

// Phase is the lifecycle of one transition request.
type Phase string

const (
	PhaseRequested   Phase = "requested"
	PhaseValidating  Phase = "validating"
	PhaseRejected    Phase = "rejected"
	PhaseApplying    Phase = "applying"
	PhaseCommitted   Phase = "committed"
	PhaseDispatching Phase = "dispatching"
	PhaseCompleted   Phase = "completed"
)

// ErrTransitionNotFound is returned when the named transition does not
// leave the artifact's current state.
var ErrTransitionNotFound = errors.New("transition not found for current state")

// Result is the outcome of one transition request. Failures is set only
// when the request was rejected; it maps the failing trigger's name to
// a message so callers can point at the trigger that broke. AsyncErrors
// reports post-commit trigger failures, which never affect the
// committed transition.
type Result struct {
	Phase       Phase             `json:"phase"`
	FromState   string            `json:"from_state,omitempty"`
	ToState     string            `json:"to_state,omitempty"`
	Failures    map[string]string `json:"failures,omitempty"`
	AsyncErrors map[string]string `json:"async_errors,omitempty"`
}

// Rejected reports whether the request was refused before any side
// effect.
func (r *Result) Rejected() bool {
	return r.Phase == PhaseRejected
}

// TypeSource is the metadata collaborator: it supplies the property
// type definitions of an artifact type. Read-only to the engine.
type TypeSource interface {
	PropertyTypes(ctx context.Context, artifactType string) ([]models.PropertyType, error)
}

// StaticTypeSource serves property types from a fixed map, keyed by
// artifact type name.
type StaticTypeSource map[string][]models.PropertyType

func (s StaticTypeSource) PropertyTypes(_ context.Context, artifactType string) ([]models.PropertyType, error) {
	return s[artifactType], nil
}

// conditionApplies evaluates a trigger condition against the request.
// Unknown kinds gate the trigger off rather than firing it blindly.
func conditionApplies(cond models.Condition, artifact *models.Artifact) bool {
	switch c := cond.(type) {
	case nil, models.AlwaysCondition:
		return true
	case models.FromStateCondition:
		return artifact.State == c.State
	case models.ArtifactTypeCondition:
		return artifact.ArtifactType == c.ArtifactType
	default:
		return false
	}
}
