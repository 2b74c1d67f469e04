package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stateforge/stateforge/pkg/eventbus"
	"github.com/stateforge/stateforge/pkg/events"
	"github.com/stateforge/stateforge/pkg/models"
)

// DispatchRequest carries everything an async dispatcher needs about a
// committed transition.
type DispatchRequest struct {
	Artifact   *models.Artifact
	Definition *models.WorkflowDefinition
	Transition models.Transition
	Trigger    models.Trigger
	UserID     int
}

// Dispatcher executes one kind of asynchronous action. Dispatch errors
// are reported out-of-band; they never roll back the transition.
type Dispatcher interface {
	Kind() models.ActionKind
	Dispatch(ctx context.Context, req DispatchRequest) error
}

// DispatcherRegistry maps action kinds to their dispatcher.
type DispatcherRegistry struct {
	dispatchers map[models.ActionKind]Dispatcher
}

func NewDispatcherRegistry() *DispatcherRegistry {
	return &DispatcherRegistry{dispatchers: make(map[models.ActionKind]Dispatcher)}
}

func (r *DispatcherRegistry) Register(d Dispatcher) {
	r.dispatchers[d.Kind()] = d
}

func (r *DispatcherRegistry) Get(kind models.ActionKind) (Dispatcher, bool) {
	d, ok := r.dispatchers[kind]

	return d, ok
}

// NotifyDispatcher publishes notification requests onto the event bus
// for the notification consumer to fan out.
type NotifyDispatcher struct {
	bus eventbus.EventPublisher
}

func NewNotifyDispatcher(bus eventbus.EventPublisher) *NotifyDispatcher {
	return &NotifyDispatcher{bus: bus}
}

func (d *NotifyDispatcher) Kind() models.ActionKind {
	return models.ActionKindNotify
}

func (d *NotifyDispatcher) Dispatch(ctx context.Context, req DispatchRequest) error {
	action, ok := req.Trigger.Action.(*models.NotifyAction)
	if !ok {
		return fmt.Errorf("trigger %q: action is not a notification", req.Trigger.Name)
	}

	return d.bus.Publish(ctx, req.Artifact.ID, events.NotificationRequested{
		BaseEvent: events.BaseEvent{
			ID:         uuid.New().String(),
			Type:       events.NotificationRequestedEvent,
			Timestamp:  time.Now().UTC(),
			ArtifactID: req.Artifact.ID,
			WorkflowID: req.Definition.ID,
		},
		TriggerName: req.Trigger.Name,
		Subject:     action.Subject,
		GroupIDs:    action.GroupIDs,
	})
}

// GenerateDispatcher publishes child-generation requests onto the
// event bus.
type GenerateDispatcher struct {
	bus eventbus.EventPublisher
}

func NewGenerateDispatcher(bus eventbus.EventPublisher) *GenerateDispatcher {
	return &GenerateDispatcher{bus: bus}
}

func (d *GenerateDispatcher) Kind() models.ActionKind {
	return models.ActionKindGenerate
}

func (d *GenerateDispatcher) Dispatch(ctx context.Context, req DispatchRequest) error {
	action, ok := req.Trigger.Action.(*models.GenerateAction)
	if !ok {
		return fmt.Errorf("trigger %q: action is not a generation", req.Trigger.Name)
	}

	return d.bus.Publish(ctx, req.Artifact.ID, events.GenerationRequested{
		BaseEvent: events.BaseEvent{
			ID:         uuid.New().String(),
			Type:       events.GenerationRequestedEvent,
			Timestamp:  time.Now().UTC(),
			ArtifactID: req.Artifact.ID,
			WorkflowID: req.Definition.ID,
		},
		TriggerName:  req.Trigger.Name,
		ArtifactType: action.ArtifactType,
		NamePrefix:   action.NamePrefix,
	})
}
