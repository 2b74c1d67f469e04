// Package file provides file-based persistence for workflows and
// artifacts. Suitable for single-node deployments and tests.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/stateforge/stateforge/pkg/persistence"
)

// Persistence implements persistence.Persistence on the file system.
type Persistence struct {
	root         string
	workflowRepo *WorkflowRepository
	artifactRepo *ArtifactRepository
}

// NewPersistence creates a file persistence layer rooted at root.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:         cleanRoot,
		workflowRepo: NewWorkflowRepository(cleanRoot),
		artifactRepo: NewArtifactRepository(cleanRoot),
	}
}

// Close performs any necessary cleanup. Nothing to do for files.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return fp.workflowRepo
}

func (fp *Persistence) ArtifactRepository() persistence.ArtifactRepository {
	return fp.artifactRepo
}
