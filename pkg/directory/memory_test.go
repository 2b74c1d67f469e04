package directory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stateforge/stateforge/pkg/directory"
)

func ptr[T any](v T) *T {
	return &v
}

func seeded() *directory.InMemoryDirectory {
	dir := directory.NewInMemoryDirectory()
	dir.AddProject(directory.Project{ID: 7, Path: "tools/forge"})
	dir.AddProject(directory.Project{ID: 8, Path: "tools/anvil"})
	dir.AddGroup(directory.Group{ID: 30, Name: "reviewers"})
	dir.AddGroup(directory.Group{ID: 31, Name: "leads", ProjectID: ptr(7)})
	dir.AddUser(directory.User{ID: 1, Name: "alice"})

	return dir
}

func TestInMemoryDirectory_Projects(t *testing.T) {
	t.Parallel()

	dir := seeded()
	ctx := context.Background()

	projects, err := dir.ProjectsByPath(ctx, []string{"tools/forge", "missing"})
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, 7, projects[0].ID)

	exists, err := dir.ProjectsExist(ctx, []int{7, 8, 404})
	require.NoError(t, err)
	assert.True(t, exists[7])
	assert.True(t, exists[8])
	assert.False(t, exists[404])
}

func TestInMemoryDirectory_Groups(t *testing.T) {
	t.Parallel()

	dir := seeded()
	ctx := context.Background()

	groups, err := dir.GroupsByName(ctx, []string{"reviewers", "leads", "ghosts"})
	require.NoError(t, err)
	assert.Len(t, groups, 2)

	groups, err = dir.GroupsByID(ctx, []int{31})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.NotNil(t, groups[0].ProjectID)
	assert.Equal(t, 7, *groups[0].ProjectID)
}

func TestInMemoryDirectory_Users(t *testing.T) {
	t.Parallel()

	dir := seeded()
	ctx := context.Background()

	users, err := dir.UsersByID(ctx, []int{1, 2})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Name)

	users, err = dir.UsersByName(ctx, []string{"alice"})
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
