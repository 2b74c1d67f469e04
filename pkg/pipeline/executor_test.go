package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stateforge/stateforge/pkg/directory"
	"github.com/stateforge/stateforge/pkg/eventbus"
	"github.com/stateforge/stateforge/pkg/events"
	"github.com/stateforge/stateforge/pkg/models"
	"github.com/stateforge/stateforge/pkg/persistence"
	"github.com/stateforge/stateforge/pkg/pipeline"
)

func ptr[T any](v T) *T {
	return &v
}

type fakeArtifacts struct {
	mu      sync.Mutex
	applied []persistence.ArtifactTransition
	err     error
}

func (f *fakeArtifacts) GetByID(_ context.Context, _ string) (*models.Artifact, error) {
	return nil, persistence.ErrArtifactNotFound
}

func (f *fakeArtifacts) Save(_ context.Context, _ *models.Artifact) error {
	return nil
}

func (f *fakeArtifacts) ApplyTransition(_ context.Context, change persistence.ArtifactTransition) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}

	f.applied = append(f.applied, change)

	return nil
}

type capturingBus struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (b *capturingBus) Publish(_ context.Context, _ string, event eventbus.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events = append(b.events, event)

	return nil
}

func (b *capturingBus) published(eventType events.EventType) []eventbus.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []eventbus.Event

	for _, e := range b.events {
		if e.GetType() == eventType {
			out = append(out, e)
		}
	}

	return out
}

type flakyDispatcher struct {
	kind models.ActionKind
	err  error

	mu    sync.Mutex
	calls []string
}

func (d *flakyDispatcher) Kind() models.ActionKind {
	return d.kind
}

func (d *flakyDispatcher) Dispatch(_ context.Context, req pipeline.DispatchRequest) error {
	d.mu.Lock()
	d.calls = append(d.calls, req.Trigger.Name)
	d.mu.Unlock()

	return d.err
}

func testTypes() pipeline.StaticTypeSource {
	return pipeline.StaticTypeSource{
		"Defect": {
			{
				ID:          1,
				Name:        "Estimate",
				Primitive:   models.PrimitiveNumber,
				IsValidated: true,
				MaxNumber:   ptr(20.20),
			},
			{
				ID:        2,
				Name:      "Resolution",
				Primitive: models.PrimitiveChoice,
				ValidValues: []models.ValidValue{
					{ID: 10, Value: "Fixed"},
					{ID: 11, Value: "Won't fix"},
				},
			},
			{ID: 3, Name: "Title", Primitive: models.PrimitiveText, Intrinsic: models.IntrinsicName},
		},
	}
}

func testDefinition(triggers ...models.Trigger) *models.WorkflowDefinition {
	return &models.WorkflowDefinition{
		ID:   "wf-1",
		Name: "Defect Lifecycle",
		States: []models.State{
			{Name: "Open", IsInitial: true},
			{Name: "Closed"},
		},
		Transitions: []models.Transition{
			{Name: "close", FromState: "Open", ToState: "Closed", Triggers: triggers},
			{Name: "reopen", FromState: "Closed", ToState: "Open"},
		},
	}
}

func testArtifact() *models.Artifact {
	return &models.Artifact{
		ID:           "art-1",
		Name:         "login broken",
		ArtifactType: "Defect",
		State:        "Open",
		WorkflowID:   "wf-1",
	}
}

func newExecutor(artifacts *fakeArtifacts, bus *capturingBus, dispatchers *pipeline.DispatcherRegistry) *pipeline.Executor {
	if dispatchers == nil {
		dispatchers = pipeline.NewDispatcherRegistry()
	}

	return pipeline.NewExecutor(
		testTypes(),
		artifacts,
		directory.NewInMemoryDirectory(),
		dispatchers,
		bus,
		slog.Default(),
	)
}

func TestExecutor_CompletesWithoutTriggers(t *testing.T) {
	t.Parallel()

	artifacts := &fakeArtifacts{}
	bus := &capturingBus{}

	result, err := newExecutor(artifacts, bus, nil).Execute(context.Background(), testDefinition(), testArtifact(), "close", 1)

	require.NoError(t, err)
	assert.Equal(t, pipeline.PhaseCompleted, result.Phase)
	assert.Equal(t, "Open", result.FromState)
	assert.Equal(t, "Closed", result.ToState)

	require.Len(t, artifacts.applied, 1)
	assert.Equal(t, "Closed", artifacts.applied[0].ToState)
	assert.Len(t, bus.published(events.TransitionCommittedEvent), 1)
}

func TestExecutor_TransitionNotFound(t *testing.T) {
	t.Parallel()

	artifacts := &fakeArtifacts{}

	_, err := newExecutor(artifacts, &capturingBus{}, nil).Execute(context.Background(), testDefinition(), testArtifact(), "archive", 1)

	require.ErrorIs(t, err, pipeline.ErrTransitionNotFound)
	assert.Empty(t, artifacts.applied)
}

// A transition whose name exists only on another state must not match.
func TestExecutor_TransitionFromWrongState(t *testing.T) {
	t.Parallel()

	artifacts := &fakeArtifacts{}

	_, err := newExecutor(artifacts, &capturingBus{}, nil).Execute(context.Background(), testDefinition(), testArtifact(), "reopen", 1)

	require.ErrorIs(t, err, pipeline.ErrTransitionNotFound)
}

func TestExecutor_SyncTriggersApplyProperties(t *testing.T) {
	t.Parallel()

	def := testDefinition(
		models.Trigger{
			Name:  "set estimate",
			Phase: models.PhaseSync,
			Action: &models.PropertyChangeAction{
				PropertyTypeID: 1,
				PropertyValue:  ptr("12.5"),
			},
		},
		models.Trigger{
			Name:  "set resolution",
			Phase: models.PhaseSync,
			Action: &models.PropertyChangeAction{
				PropertyTypeID: 2,
				ValidValues:    []models.ValidValueSelection{{ID: 10}},
			},
		},
		models.Trigger{
			Name:  "retitle",
			Phase: models.PhaseSync,
			Action: &models.PropertyChangeAction{
				PropertyTypeID: 3,
				PropertyValue:  ptr("login broken (closed)"),
			},
		},
	)

	artifacts := &fakeArtifacts{}

	result, err := newExecutor(artifacts, &capturingBus{}, nil).Execute(context.Background(), def, testArtifact(), "close", 1)

	require.NoError(t, err)
	assert.Equal(t, pipeline.PhaseCompleted, result.Phase)

	require.Len(t, artifacts.applied, 1)
	change := artifacts.applied[0]

	// Identity changes are split out from custom property writes.
	require.NotNil(t, change.Name)
	assert.Equal(t, "login broken (closed)", *change.Name)
	assert.Equal(t, []persistence.PropertyWrite{
		{PropertyTypeID: 1, Value: "12.5"},
		{PropertyTypeID: 2, Value: "Fixed"},
	}, change.Properties)
}

// One failing trigger out of three rejects the whole transition: the
// artifact is untouched and the failure map names exactly the failing
// trigger.
func TestExecutor_OneFailingSyncTriggerRejectsAll(t *testing.T) {
	t.Parallel()

	def := testDefinition(
		models.Trigger{
			Name:   "set estimate",
			Phase:  models.PhaseSync,
			Action: &models.PropertyChangeAction{PropertyTypeID: 1, PropertyValue: ptr("12.5")},
		},
		models.Trigger{
			Name:   "break estimate",
			Phase:  models.PhaseSync,
			Action: &models.PropertyChangeAction{PropertyTypeID: 1, PropertyValue: ptr("20.21")},
		},
		models.Trigger{
			Name:   "set resolution",
			Phase:  models.PhaseSync,
			Action: &models.PropertyChangeAction{PropertyTypeID: 2, ValidValues: []models.ValidValueSelection{{ID: 10}}},
		},
	)

	artifacts := &fakeArtifacts{}
	bus := &capturingBus{}

	result, err := newExecutor(artifacts, bus, nil).Execute(context.Background(), def, testArtifact(), "close", 1)

	require.NoError(t, err)
	assert.True(t, result.Rejected())

	require.Len(t, result.Failures, 1)
	assert.Contains(t, result.Failures, "break estimate")
	assert.Contains(t, result.Failures["break estimate"], "NumberOutOfRange")

	assert.Empty(t, artifacts.applied)
	assert.Empty(t, bus.events)
}

func TestExecutor_UnknownPropertyTypeRejects(t *testing.T) {
	t.Parallel()

	def := testDefinition(models.Trigger{
		Name:   "set ghost",
		Phase:  models.PhaseSync,
		Action: &models.PropertyChangeAction{PropertyTypeID: 99, PropertyValue: ptr("x")},
	})

	artifacts := &fakeArtifacts{}

	result, err := newExecutor(artifacts, &capturingBus{}, nil).Execute(context.Background(), def, testArtifact(), "close", 1)

	require.NoError(t, err)
	assert.True(t, result.Rejected())
	assert.Contains(t, result.Failures, "set ghost")
	assert.Empty(t, artifacts.applied)
}

func TestExecutor_ConditionsGateTriggers(t *testing.T) {
	t.Parallel()

	def := testDefinition(
		models.Trigger{
			Name:      "only from review",
			Phase:     models.PhaseSync,
			Condition: models.FromStateCondition{State: "Review"},
			Action:    &models.PropertyChangeAction{PropertyTypeID: 1, PropertyValue: ptr("not a number")},
		},
		models.Trigger{
			Name:      "only for tasks",
			Phase:     models.PhaseSync,
			Condition: models.ArtifactTypeCondition{ArtifactType: "Task"},
			Action:    &models.PropertyChangeAction{PropertyTypeID: 1, PropertyValue: ptr("also broken")},
		},
	)

	artifacts := &fakeArtifacts{}

	result, err := newExecutor(artifacts, &capturingBus{}, nil).Execute(context.Background(), def, testArtifact(), "close", 1)

	require.NoError(t, err)
	assert.Equal(t, pipeline.PhaseCompleted, result.Phase)
	assert.Len(t, artifacts.applied, 1)
}

func TestExecutor_ApplyFailurePropagates(t *testing.T) {
	t.Parallel()

	artifacts := &fakeArtifacts{err: errors.New("connection reset")}
	bus := &capturingBus{}

	_, err := newExecutor(artifacts, bus, nil).Execute(context.Background(), testDefinition(), testArtifact(), "close", 1)

	require.Error(t, err)
	assert.Empty(t, bus.published(events.TransitionCommittedEvent))
}

func TestExecutor_AsyncFailuresDoNotFailTransition(t *testing.T) {
	t.Parallel()

	def := testDefinition(
		models.Trigger{
			Name:   "notify watchers",
			Phase:  models.PhaseAsync,
			Action: &models.NotifyAction{Subject: "closed"},
		},
		models.Trigger{
			Name:   "spawn retro",
			Phase:  models.PhaseAsync,
			Action: &models.GenerateAction{ArtifactType: "Task"},
		},
	)

	notify := &flakyDispatcher{kind: models.ActionKindNotify, err: errors.New("smtp down")}
	generate := &flakyDispatcher{kind: models.ActionKindGenerate}

	dispatchers := pipeline.NewDispatcherRegistry()
	dispatchers.Register(notify)
	dispatchers.Register(generate)

	artifacts := &fakeArtifacts{}
	bus := &capturingBus{}

	result, err := newExecutor(artifacts, bus, dispatchers).Execute(context.Background(), def, testArtifact(), "close", 1)

	require.NoError(t, err)
	assert.Equal(t, pipeline.PhaseCompleted, result.Phase)
	assert.Len(t, artifacts.applied, 1)

	require.Len(t, result.AsyncErrors, 1)
	assert.Contains(t, result.AsyncErrors, "notify watchers")

	assert.Equal(t, []string{"notify watchers"}, notify.calls)
	assert.Equal(t, []string{"spawn retro"}, generate.calls)

	failedEvents := bus.published(events.AsyncTriggerFailedEvent)
	require.Len(t, failedEvents, 1)

	failed, ok := failedEvents[0].(events.AsyncTriggerFailed)
	require.True(t, ok)
	assert.Equal(t, "notify watchers", failed.TriggerName)
}

func TestExecutor_UnregisteredAsyncKindReported(t *testing.T) {
	t.Parallel()

	def := testDefinition(models.Trigger{
		Name:   "notify watchers",
		Phase:  models.PhaseAsync,
		Action: &models.NotifyAction{Subject: "closed"},
	})

	artifacts := &fakeArtifacts{}

	result, err := newExecutor(artifacts, &capturingBus{}, nil).Execute(context.Background(), def, testArtifact(), "close", 1)

	require.NoError(t, err)
	assert.Equal(t, pipeline.PhaseCompleted, result.Phase)
	assert.Contains(t, result.AsyncErrors, "notify watchers")
}

func TestNotifyDispatcher_PublishesEvent(t *testing.T) {
	t.Parallel()

	bus := &capturingBus{}
	d := pipeline.NewNotifyDispatcher(bus)

	err := d.Dispatch(context.Background(), pipeline.DispatchRequest{
		Artifact:   testArtifact(),
		Definition: testDefinition(),
		Trigger: models.Trigger{
			Name:   "notify watchers",
			Action: &models.NotifyAction{Subject: "closed", GroupIDs: []int{30}},
		},
	})

	require.NoError(t, err)

	published := bus.published(events.NotificationRequestedEvent)
	require.Len(t, published, 1)

	event, ok := published[0].(events.NotificationRequested)
	require.True(t, ok)
	assert.Equal(t, "closed", event.Subject)
	assert.Equal(t, []int{30}, event.GroupIDs)
}

func TestGenerateDispatcher_RejectsWrongAction(t *testing.T) {
	t.Parallel()

	d := pipeline.NewGenerateDispatcher(&capturingBus{})

	err := d.Dispatch(context.Background(), pipeline.DispatchRequest{
		Artifact:   testArtifact(),
		Definition: testDefinition(),
		Trigger: models.Trigger{
			Name:   "bad wiring",
			Action: &models.NotifyAction{Subject: "oops"},
		},
	})

	assert.Error(t, err)
}
