package services_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stateforge/stateforge/pkg/directory"
	"github.com/stateforge/stateforge/pkg/models"
	"github.com/stateforge/stateforge/pkg/persistence"
	"github.com/stateforge/stateforge/pkg/persistence/file"
	"github.com/stateforge/stateforge/pkg/pipeline"
	"github.com/stateforge/stateforge/pkg/services"
)

func ptr[T any](v T) *T {
	return &v
}

func setupTransition(t *testing.T, triggers ...models.Trigger) (*services.Transition, persistence.Persistence) {
	t.Helper()

	p := file.NewPersistence(t.TempDir())
	ctx := context.Background()

	def := importableDefinition()
	def.ID = "wf-1"
	def.Transitions[0].Triggers = triggers
	require.NoError(t, p.WorkflowRepository().Save(ctx, def))

	artifact := &models.Artifact{
		ID:           "art-1",
		Name:         "login broken",
		ArtifactType: "Defect",
		State:        "Open",
		WorkflowID:   "wf-1",
	}
	require.NoError(t, p.ArtifactRepository().Save(ctx, artifact))

	types := pipeline.StaticTypeSource{
		"Defect": {
			{ID: 1, Name: "Estimate", Primitive: models.PrimitiveNumber, IsValidated: true, MaxNumber: ptr(20.20)},
		},
	}

	executor := pipeline.NewExecutor(
		types,
		p.ArtifactRepository(),
		directory.NewInMemoryDirectory(),
		pipeline.NewDispatcherRegistry(),
		nil,
		slog.Default(),
	)

	return services.NewTransition(p.WorkflowRepository(), p.ArtifactRepository(), executor, slog.Default()), p
}

func TestTransition_Completes(t *testing.T) {
	t.Parallel()

	svc, p := setupTransition(t, models.Trigger{
		Name:   "set estimate",
		Phase:  models.PhaseSync,
		Action: &models.PropertyChangeAction{PropertyTypeID: 1, PropertyValue: ptr("3")},
	})

	result, err := svc.Execute(context.Background(), models.TransitionRequest{
		ArtifactID: "art-1",
		Transition: "close",
		UserID:     1,
	})

	require.NoError(t, err)
	assert.Equal(t, pipeline.PhaseCompleted, result.Phase)

	artifact, err := p.ArtifactRepository().GetByID(context.Background(), "art-1")
	require.NoError(t, err)
	assert.Equal(t, "Closed", artifact.State)
	assert.Equal(t, "3", artifact.Properties[1])
}

func TestTransition_RejectionLeavesArtifactUntouched(t *testing.T) {
	t.Parallel()

	svc, p := setupTransition(t, models.Trigger{
		Name:   "set estimate",
		Phase:  models.PhaseSync,
		Action: &models.PropertyChangeAction{PropertyTypeID: 1, PropertyValue: ptr("20.21")},
	})

	result, err := svc.Execute(context.Background(), models.TransitionRequest{
		ArtifactID: "art-1",
		Transition: "close",
		UserID:     1,
	})

	require.ErrorIs(t, err, services.ErrTransitionRejected)
	assert.True(t, result.Rejected())
	assert.Contains(t, result.Failures, "set estimate")

	artifact, err := p.ArtifactRepository().GetByID(context.Background(), "art-1")
	require.NoError(t, err)
	assert.Equal(t, "Open", artifact.State)
	assert.Empty(t, artifact.Properties)
}

func TestTransition_UnknownArtifact(t *testing.T) {
	t.Parallel()

	svc, _ := setupTransition(t)

	_, err := svc.Execute(context.Background(), models.TransitionRequest{
		ArtifactID: "ghost",
		Transition: "close",
		UserID:     1,
	})

	assert.True(t, persistence.IsArtifactNotFound(err))
}

func TestTransition_HealthCheck(t *testing.T) {
	t.Parallel()

	svc, p := setupTransition(t)

	msg, ok := svc.HealthCheck(context.Background(), p)
	assert.True(t, ok)
	assert.NotEmpty(t, msg)

	msg, ok = svc.HealthCheck(context.Background(), nil)
	assert.False(t, ok)
	assert.NotEmpty(t, msg)
}
