package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/stateforge/stateforge/pkg/models"
	"github.com/stateforge/stateforge/pkg/persistence"
)

// ArtifactRepository stores artifacts and their property values.
// ApplyTransition runs inside one database transaction, so a failed
// property write leaves the artifact's prior committed state untouched.
type ArtifactRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewArtifactRepository(db *sql.DB, logger *slog.Logger) *ArtifactRepository {
	return &ArtifactRepository{db: db, logger: logger}
}

func (r *ArtifactRepository) GetByID(ctx context.Context, id string) (*models.Artifact, error) {
	var artifact models.Artifact

	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, artifact_type, project_id, state, workflow_id, updated_at
		FROM artifacts WHERE id = $1
	`, id).Scan(
		&artifact.ID, &artifact.Name, &artifact.Description, &artifact.ArtifactType,
		&artifact.ProjectID, &artifact.State, &artifact.WorkflowID, &artifact.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrArtifactNotFound
	}

	if err != nil {
		return nil, &persistence.StoreError{Op: "GetByID", ID: id, Err: err}
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT property_type_id, value FROM artifact_properties WHERE artifact_id = $1
	`, id)
	if err != nil {
		return nil, &persistence.StoreError{Op: "GetByID", ID: id, Err: err}
	}
	defer func() { _ = rows.Close() }()

	artifact.Properties = make(map[int]string)

	for rows.Next() {
		var (
			typeID int
			value  string
		)

		if err := rows.Scan(&typeID, &value); err != nil {
			return nil, &persistence.StoreError{Op: "GetByID", ID: id, Err: err}
		}

		artifact.Properties[typeID] = value
	}

	return &artifact, rows.Err()
}

func (r *ArtifactRepository) Save(ctx context.Context, artifact *models.Artifact) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return &persistence.StoreError{Op: "Save", ID: artifact.ID, Err: err}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO artifacts (id, name, description, artifact_type, project_id, state, workflow_id, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, description = EXCLUDED.description, state = EXCLUDED.state,
		    workflow_id = EXCLUDED.workflow_id, updated_at = EXCLUDED.updated_at
	`, artifact.ID, artifact.Name, artifact.Description, artifact.ArtifactType,
		artifact.ProjectID, artifact.State, artifact.WorkflowID, time.Now().UTC())
	if err != nil {
		_ = tx.Rollback()

		return &persistence.StoreError{Op: "Save", ID: artifact.ID, Err: err}
	}

	for typeID, value := range artifact.Properties {
		if err := upsertProperty(ctx, tx, artifact.ID, typeID, value); err != nil {
			_ = tx.Rollback()

			return &persistence.StoreError{Op: "Save", ID: artifact.ID, Err: err}
		}
	}

	return tx.Commit()
}

func (r *ArtifactRepository) ApplyTransition(ctx context.Context, change persistence.ArtifactTransition) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return &persistence.StoreError{Op: "ApplyTransition", ID: change.ArtifactID, Err: err}
	}

	// Identity fields first, with the state change, in the same
	// statement.
	result, err := tx.ExecContext(ctx, `
		UPDATE artifacts
		SET state = $2,
		    name = COALESCE($3, name),
		    description = COALESCE($4, description),
		    updated_at = $5
		WHERE id = $1
	`, change.ArtifactID, change.ToState, change.Name, change.Description, time.Now().UTC())
	if err != nil {
		_ = tx.Rollback()

		return &persistence.StoreError{Op: "ApplyTransition", ID: change.ArtifactID, Err: err}
	}

	affected, err := result.RowsAffected()
	if err != nil {
		_ = tx.Rollback()

		return &persistence.StoreError{Op: "ApplyTransition", ID: change.ArtifactID, Err: err}
	}

	if affected == 0 {
		_ = tx.Rollback()

		return persistence.ErrArtifactNotFound
	}

	for _, write := range change.Properties {
		if err := upsertProperty(ctx, tx, change.ArtifactID, write.PropertyTypeID, write.Value); err != nil {
			_ = tx.Rollback()

			return &persistence.StoreError{Op: "ApplyTransition", ID: change.ArtifactID, Err: err}
		}
	}

	return tx.Commit()
}

func upsertProperty(ctx context.Context, tx *sql.Tx, artifactID string, typeID int, value string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO artifact_properties (artifact_id, property_type_id, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (artifact_id, property_type_id) DO UPDATE SET value = EXCLUDED.value
	`, artifactID, typeID, value)

	return err
}
