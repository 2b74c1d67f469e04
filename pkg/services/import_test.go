package services_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stateforge/stateforge/pkg/directory"
	"github.com/stateforge/stateforge/pkg/models"
	"github.com/stateforge/stateforge/pkg/persistence/file"
	"github.com/stateforge/stateforge/pkg/services"
	"github.com/stateforge/stateforge/pkg/validation"
)

func importableDefinition() *models.WorkflowDefinition {
	return &models.WorkflowDefinition{
		Name: "Defect Lifecycle",
		States: []models.State{
			{Name: "Open", IsInitial: true},
			{Name: "Closed"},
		},
		Transitions: []models.Transition{
			{Name: "close", FromState: "Open", ToState: "Closed"},
			{Name: "reopen", FromState: "Closed", ToState: "Open"},
		},
	}
}

func setupImport(t *testing.T) *services.Import {
	t.Helper()

	p := file.NewPersistence(t.TempDir())
	dir := directory.NewInMemoryDirectory()
	dir.AddProject(directory.Project{ID: 7, Path: "tools/forge"})
	dir.AddGroup(directory.Group{ID: 30, Name: "reviewers"})

	return services.NewImport(p.WorkflowRepository(), validation.NewDataValidator(dir), slog.Default())
}

func TestImport_PersistsValidDefinition(t *testing.T) {
	t.Parallel()

	svc := setupImport(t)

	result, err := svc.ImportDefinition(context.Background(), importableDefinition())

	require.NoError(t, err)
	require.NotNil(t, result.Definition)
	assert.Nil(t, result.Report)
	assert.NotEmpty(t, result.Definition.ID)
	assert.False(t, result.Definition.CreatedAt.IsZero())
}

func TestImport_NilDefinition(t *testing.T) {
	t.Parallel()

	svc := setupImport(t)

	_, err := svc.ImportDefinition(context.Background(), nil)
	assert.ErrorIs(t, err, services.ErrDefinitionNil)
	assert.True(t, services.IsValidationError(err))
}

func TestImport_RejectionStoresReport(t *testing.T) {
	t.Parallel()

	svc := setupImport(t)

	def := importableDefinition()
	def.States[1].IsInitial = true
	def.Projects = []models.ProjectRef{{ID: 404}}

	result, err := svc.ImportDefinition(context.Background(), def)

	require.ErrorIs(t, err, services.ErrDefinitionRejected)
	require.NotNil(t, result.Report)
	assert.Nil(t, result.Definition)

	// Structural and referential findings land in one report.
	codes := make([]string, 0, len(result.Report.Issues))
	for _, issue := range result.Report.Issues {
		codes = append(codes, issue.Code)
	}

	assert.Contains(t, codes, string(validation.MultipleInitialStates))
	assert.Contains(t, codes, string(validation.ProjectNotFound))

	stored, err := svc.ErrorReport(context.Background(), result.Report.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Report.Issues, stored.Issues)
}

func TestImport_RejectedDefinitionNotPersisted(t *testing.T) {
	t.Parallel()

	p := file.NewPersistence(t.TempDir())
	svc := services.NewImport(p.WorkflowRepository(), validation.NewDataValidator(directory.NewInMemoryDirectory()), slog.Default())

	def := importableDefinition()
	def.Name = ""

	_, err := svc.ImportDefinition(context.Background(), def)
	require.ErrorIs(t, err, services.ErrDefinitionRejected)

	defs, err := p.WorkflowRepository().List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, defs)
}
