package file

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/stateforge/stateforge/pkg/models"
	"github.com/stateforge/stateforge/pkg/persistence"
)

const timeLayout = time.RFC3339Nano

func parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}

	return time.Parse(timeLayout, raw)
}

// ArtifactRepository stores each artifact as one JSON file under
// <root>/artifacts. A per-repository mutex gives ApplyTransition its
// single-writer guarantee; the temp-file-and-rename write keeps the
// commit all-or-nothing.
type ArtifactRepository struct {
	mu   sync.Mutex
	root string
}

func NewArtifactRepository(root string) *ArtifactRepository {
	return &ArtifactRepository{root: root}
}

func (r *ArtifactRepository) artifactPath(id string) string {
	return filepath.Join(r.root, "artifacts", id+".json")
}

func (r *ArtifactRepository) GetByID(ctx context.Context, id string) (*models.Artifact, error) {
	var artifact models.Artifact

	err := readJSON(r.artifactPath(id), &artifact)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.ErrArtifactNotFound
		}

		return nil, &persistence.StoreError{Op: "GetByID", ID: id, Err: err}
	}

	return &artifact, nil
}

func (r *ArtifactRepository) Save(ctx context.Context, artifact *models.Artifact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return writeJSON(r.artifactPath(artifact.ID), artifact)
}

func (r *ArtifactRepository) ApplyTransition(ctx context.Context, change persistence.ArtifactTransition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	artifact, err := r.GetByID(ctx, change.ArtifactID)
	if err != nil {
		return err
	}

	artifact.State = change.ToState

	if change.Name != nil {
		artifact.Name = *change.Name
	}

	if change.Description != nil {
		artifact.Description = *change.Description
	}

	if len(change.Properties) > 0 && artifact.Properties == nil {
		artifact.Properties = make(map[int]string, len(change.Properties))
	}

	for _, write := range change.Properties {
		artifact.Properties[write.PropertyTypeID] = write.Value
	}

	artifact.UpdatedAt = time.Now().UTC()

	return writeJSON(r.artifactPath(artifact.ID), artifact)
}
