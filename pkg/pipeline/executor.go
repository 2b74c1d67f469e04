package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/stateforge/stateforge/pkg/directory"
	"github.com/stateforge/stateforge/pkg/eventbus"
	"github.com/stateforge/stateforge/pkg/events"
	"github.com/stateforge/stateforge/pkg/models"
	"github.com/stateforge/stateforge/pkg/otelhelper"
	"github.com/stateforge/stateforge/pkg/persistence"
	"github.com/stateforge/stateforge/pkg/validation"
)

// Executor runs the two-phase trigger pipeline for one transition
// request at a time. The synchronous phase is all-or-nothing inside the
// artifact repository's transaction; the asynchronous phase is
// per-trigger best-effort after commit.
type Executor struct {
	types       TypeSource
	artifacts   persistence.ArtifactRepository
	dir         directory.Directory
	dispatchers *DispatcherRegistry
	bus         eventbus.EventPublisher
	logger      *slog.Logger
	tracer      trace.Tracer
}

// NewExecutor wires the pipeline's collaborators.
func NewExecutor(
	types TypeSource,
	artifacts persistence.ArtifactRepository,
	dir directory.Directory,
	dispatchers *DispatcherRegistry,
	bus eventbus.EventPublisher,
	logger *slog.Logger,
) *Executor {
	return &Executor{
		types:       types,
		artifacts:   artifacts,
		dir:         dir,
		dispatchers: dispatchers,
		bus:         bus,
		logger:      logger,
		tracer:      otel.Tracer("stateforge/pipeline"),
	}
}

// Execute moves artifact across the named transition of def. The
// returned Result reports either a rejection (phase "rejected", with
// the name-keyed failure map) or completion. The error return is
// reserved for infrastructure failures; trigger validation failures are
// data, not errors.
func (e *Executor) Execute(ctx context.Context, def *models.WorkflowDefinition, artifact *models.Artifact, transitionName string, userID int) (*Result, error) {
	ctx, span := e.tracer.Start(ctx, "pipeline.execute", trace.WithAttributes(
		attribute.String(otelhelper.ArtifactIDKey, artifact.ID),
		attribute.String(otelhelper.WorkflowIDKey, def.ID),
		attribute.String(otelhelper.TransitionKey, transitionName),
	))
	defer span.End()

	logger := e.logger.With("artifact_id", artifact.ID, "transition", transitionName)

	result := &Result{Phase: PhaseRequested, FromState: artifact.State}

	transition, ok := e.findTransition(def, artifact.State, transitionName)
	if !ok {
		otelhelper.SetError(span, ErrTransitionNotFound)

		return nil, fmt.Errorf("%w: %q from state %q", ErrTransitionNotFound, transitionName, artifact.State)
	}

	result.ToState = transition.ToState
	result.Phase = PhaseValidating

	propertyTypes, err := e.types.PropertyTypes(ctx, artifact.ArtifactType)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("loading property types for %q: %w", artifact.ArtifactType, err)
	}

	typesByID := make(map[int]models.PropertyType, len(propertyTypes))
	for _, pt := range propertyTypes {
		typesByID[pt.ID] = pt
	}

	var syncTriggers, asyncTriggers []models.Trigger

	for _, trigger := range transition.Triggers {
		if !conditionApplies(trigger.Condition, artifact) {
			continue
		}

		if trigger.Phase == models.PhaseAsync {
			asyncTriggers = append(asyncTriggers, trigger)
		} else {
			syncTriggers = append(syncTriggers, trigger)
		}
	}

	// Validate every synchronous trigger before touching anything, so
	// the caller sees all failures from one pass.
	failures, writes, err := e.validateSyncTriggers(ctx, syncTriggers, typesByID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	if len(failures) > 0 {
		result.Phase = PhaseRejected
		result.Failures = failures

		logger.InfoContext(ctx, "Transition rejected by trigger validation", "failed_triggers", len(failures))

		return result, nil
	}

	result.Phase = PhaseApplying

	change := persistence.ArtifactTransition{
		ArtifactID:  artifact.ID,
		ToState:     transition.ToState,
		Name:        writes.name,
		Description: writes.description,
		Properties:  writes.properties,
	}

	if err := e.artifacts.ApplyTransition(ctx, change); err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("applying transition %q: %w", transitionName, err)
	}

	result.Phase = PhaseCommitted
	e.publishCommitted(ctx, def, artifact, transition, userID)

	result.Phase = PhaseDispatching
	result.AsyncErrors = e.dispatchAsyncTriggers(ctx, def, artifact, transition, asyncTriggers, userID)

	result.Phase = PhaseCompleted

	logger.InfoContext(ctx, "Transition completed",
		"from_state", result.FromState,
		"to_state", result.ToState,
		"async_failures", len(result.AsyncErrors))

	return result, nil
}

func (e *Executor) findTransition(def *models.WorkflowDefinition, fromState, name string) (models.Transition, bool) {
	for _, t := range def.Transitions {
		if t.Name == name && t.FromState == fromState {
			return t, true
		}
	}

	return models.Transition{}, false
}

// pendingWrites is the validated output of the synchronous phase:
// identity field changes split out from custom property writes.
type pendingWrites struct {
	name        *string
	description *string
	properties  []persistence.PropertyWrite
}

func (e *Executor) validateSyncTriggers(ctx context.Context, triggers []models.Trigger, typesByID map[int]models.PropertyType) (map[string]string, *pendingWrites, error) {
	failures := make(map[string]string)
	writes := &pendingWrites{}

	for _, trigger := range triggers {
		action, ok := trigger.Action.(*models.PropertyChangeAction)
		if !ok {
			failures[trigger.Name] = "synchronous trigger must carry a property change"

			continue
		}

		pt, ok := typesByID[action.PropertyTypeID]
		if !ok {
			failures[trigger.Name] = fmt.Sprintf("unknown property type %d", action.PropertyTypeID)

			continue
		}

		propertyValidator, err := validation.ForPrimitive(pt.Primitive, validation.MatchByID, e.dir)
		if err != nil {
			return nil, nil, fmt.Errorf("trigger %q: %w", trigger.Name, err)
		}

		res := validation.NewResult()
		if err := propertyValidator.Validate(ctx, action, &pt, res); err != nil {
			return nil, nil, fmt.Errorf("trigger %q: %w", trigger.Name, err)
		}

		if res.HasErrors() {
			failures[trigger.Name] = joinIssues(res)

			continue
		}

		if err := writes.add(action, &pt); err != nil {
			return nil, nil, fmt.Errorf("trigger %q: %w", trigger.Name, err)
		}
	}

	return failures, writes, nil
}

func (w *pendingWrites) add(action *models.PropertyChangeAction, pt *models.PropertyType) error {
	value, err := renderValue(action, pt)
	if err != nil {
		return err
	}

	switch pt.Intrinsic {
	case models.IntrinsicName:
		w.name = &value
	case models.IntrinsicDescription:
		w.description = &value
	default:
		w.properties = append(w.properties, persistence.PropertyWrite{
			PropertyTypeID: action.PropertyTypeID,
			Value:          value,
		})
	}

	return nil
}

// renderValue produces the persisted string form of a validated change:
// the scalar as given, choice selections as their canonical value
// texts, user payloads as compact JSON.
func renderValue(action *models.PropertyChangeAction, pt *models.PropertyType) (string, error) {
	switch pt.Primitive {
	case models.PrimitiveChoice:
		values := make([]string, 0, len(action.ValidValues))

		for _, sel := range action.ValidValues {
			for _, vv := range pt.ValidValues {
				if vv.ID == sel.ID {
					values = append(values, vv.Value)

					break
				}
			}
		}

		return strings.Join(values, ","), nil
	case models.PrimitiveUser:
		payload, err := json.Marshal(action.UsersGroups)
		if err != nil {
			return "", err
		}

		return string(payload), nil
	default:
		if action.PropertyValue == nil {
			return "", nil
		}

		return *action.PropertyValue, nil
	}
}

func (e *Executor) publishCommitted(ctx context.Context, def *models.WorkflowDefinition, artifact *models.Artifact, transition models.Transition, userID int) {
	if e.bus == nil {
		return
	}

	event := events.TransitionCommitted{
		BaseEvent: events.BaseEvent{
			ID:         uuid.New().String(),
			Type:       events.TransitionCommittedEvent,
			Timestamp:  time.Now().UTC(),
			ArtifactID: artifact.ID,
			WorkflowID: def.ID,
		},
		Transition: transition.Name,
		FromState:  transition.FromState,
		ToState:    transition.ToState,
		UserID:     userID,
	}

	if err := e.bus.Publish(ctx, artifact.ID, event); err != nil {
		e.logger.WarnContext(ctx, "Failed to publish transition committed event", "error", err)
	}
}

// dispatchAsyncTriggers runs post-commit triggers concurrently. Each
// trigger is independent: a failure is logged and reported, never
// propagated.
func (e *Executor) dispatchAsyncTriggers(ctx context.Context, def *models.WorkflowDefinition, artifact *models.Artifact, transition models.Transition, triggers []models.Trigger, userID int) map[string]string {
	if len(triggers) == 0 {
		return nil
	}

	var (
		mu       sync.Mutex
		failures = make(map[string]string)
		wg       sync.WaitGroup
	)

	for _, trigger := range triggers {
		wg.Add(1)

		go func(trigger models.Trigger) {
			defer wg.Done()

			if err := e.dispatchOne(ctx, def, artifact, transition, trigger, userID); err != nil {
				e.logger.WarnContext(ctx, "Async trigger failed",
					"trigger", trigger.Name, "artifact_id", artifact.ID, "error", err)
				e.reportAsyncFailure(ctx, def, artifact, trigger, err)

				mu.Lock()
				failures[trigger.Name] = err.Error()
				mu.Unlock()
			}
		}(trigger)
	}

	wg.Wait()

	if len(failures) == 0 {
		return nil
	}

	return failures
}

func (e *Executor) dispatchOne(ctx context.Context, def *models.WorkflowDefinition, artifact *models.Artifact, transition models.Transition, trigger models.Trigger, userID int) error {
	if trigger.Action == nil {
		return fmt.Errorf("trigger %q has no action", trigger.Name)
	}

	dispatcher, ok := e.dispatchers.Get(trigger.Action.Kind())
	if !ok {
		return fmt.Errorf("no dispatcher registered for action kind %q", trigger.Action.Kind())
	}

	return dispatcher.Dispatch(ctx, DispatchRequest{
		Artifact:   artifact,
		Definition: def,
		Transition: transition,
		Trigger:    trigger,
		UserID:     userID,
	})
}

func (e *Executor) reportAsyncFailure(ctx context.Context, def *models.WorkflowDefinition, artifact *models.Artifact, trigger models.Trigger, dispatchErr error) {
	if e.bus == nil {
		return
	}

	event := events.AsyncTriggerFailed{
		BaseEvent: events.BaseEvent{
			ID:         uuid.New().String(),
			Type:       events.AsyncTriggerFailedEvent,
			Timestamp:  time.Now().UTC(),
			ArtifactID: artifact.ID,
			WorkflowID: def.ID,
		},
		TriggerName: trigger.Name,
		Error:       dispatchErr.Error(),
	}

	if err := e.bus.Publish(ctx, artifact.ID, event); err != nil {
		e.logger.WarnContext(ctx, "Failed to publish async failure event", "error", err)
	}
}

func joinIssues(res *validation.Result) string {
	issues := res.Issues()
	parts := make([]string, 0, len(issues))

	for _, issue := range issues {
		if issue.Info != "" {
			parts = append(parts, fmt.Sprintf("%s (%s)", issue.Code, issue.Info))
		} else {
			parts = append(parts, string(issue.Code))
		}
	}

	return strings.Join(parts, "; ")
}
