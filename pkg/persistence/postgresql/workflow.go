package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/stateforge/stateforge/pkg/models"
	"github.com/stateforge/stateforge/pkg/persistence"
	"github.com/stateforge/stateforge/pkg/wire"
)

// WorkflowRepository stores definitions as wire-format JSONB rows.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewWorkflowRepository(db *sql.DB, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

func (r *WorkflowRepository) Save(ctx context.Context, def *models.WorkflowDefinition) error {
	encoded, err := wire.Encode(def)
	if err != nil {
		return &persistence.StoreError{Op: "Save", ID: def.ID, Err: err}
	}

	payload, err := json.Marshal(encoded)
	if err != nil {
		return &persistence.StoreError{Op: "Save", ID: def.ID, Err: err}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO workflows (id, name, definition, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, definition = EXCLUDED.definition, updated_at = EXCLUDED.updated_at
	`, def.ID, def.Name, payload, def.CreatedAt, def.UpdatedAt)
	if err != nil {
		return &persistence.StoreError{Op: "Save", ID: def.ID, Err: err}
	}

	return nil
}

func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, definition, created_at, updated_at FROM workflows WHERE id = $1
	`, id)

	return scanWorkflow(row)
}

func (r *WorkflowRepository) List(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, definition, created_at, updated_at FROM workflows ORDER BY created_at
	`)
	if err != nil {
		return nil, &persistence.StoreError{Op: "List", Err: err}
	}
	defer func() { _ = rows.Close() }()

	var defs []*models.WorkflowDefinition

	for rows.Next() {
		def, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}

		defs = append(defs, def)
	}

	return defs, rows.Err()
}

func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM workflows WHERE id = $1`, id)
	if err != nil {
		return &persistence.StoreError{Op: "Delete", ID: id, Err: err}
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return &persistence.StoreError{Op: "Delete", ID: id, Err: err}
	}

	if affected == 0 {
		return persistence.ErrWorkflowNotFound
	}

	return nil
}

func (r *WorkflowRepository) SaveErrorReport(ctx context.Context, report *models.ImportErrorReport) error {
	issues, err := json.Marshal(report.Issues)
	if err != nil {
		return &persistence.StoreError{Op: "SaveErrorReport", ID: report.ID, Err: err}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO import_error_reports (id, workflow_name, issues, created_at)
		VALUES ($1, $2, $3, $4)
	`, report.ID, report.WorkflowName, issues, report.CreatedAt)
	if err != nil {
		return &persistence.StoreError{Op: "SaveErrorReport", ID: report.ID, Err: err}
	}

	return nil
}

func (r *WorkflowRepository) ErrorReportByID(ctx context.Context, id string) (*models.ImportErrorReport, error) {
	var (
		report models.ImportErrorReport
		issues []byte
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT id, workflow_name, issues, created_at FROM import_error_reports WHERE id = $1
	`, id).Scan(&report.ID, &report.WorkflowName, &issues, &report.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrReportNotFound
	}

	if err != nil {
		return nil, &persistence.StoreError{Op: "ErrorReportByID", ID: id, Err: err}
	}

	if err := json.Unmarshal(issues, &report.Issues); err != nil {
		return nil, &persistence.StoreError{Op: "ErrorReportByID", ID: id, Err: err}
	}

	return &report, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (*models.WorkflowDefinition, error) {
	var (
		id        string
		payload   []byte
		createdAt time.Time
		updatedAt time.Time
	)

	err := row.Scan(&id, &payload, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrWorkflowNotFound
	}

	if err != nil {
		return nil, &persistence.StoreError{Op: "GetByID", ID: id, Err: err}
	}

	var encoded wire.Workflow
	if err := json.Unmarshal(payload, &encoded); err != nil {
		return nil, fmt.Errorf("workflow %s: corrupt definition: %w", id, err)
	}

	def := encoded.Decode()
	def.ID = id
	def.CreatedAt = createdAt
	def.UpdatedAt = updatedAt

	return def, nil
}
