package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/stateforge/stateforge/pkg/models"
	"github.com/stateforge/stateforge/pkg/persistence"
	"github.com/stateforge/stateforge/pkg/wire"
)

// WorkflowRepository stores each definition as one wire-format JSON
// file under <root>/workflows, and error reports under <root>/reports.
type WorkflowRepository struct {
	root string
}

func NewWorkflowRepository(root string) *WorkflowRepository {
	return &WorkflowRepository{root: root}
}

type storedWorkflow struct {
	ID         string         `json:"id"`
	Definition *wire.Workflow `json:"definition"`
	CreatedAt  string         `json:"created_at"`
	UpdatedAt  string         `json:"updated_at"`
}

func (r *WorkflowRepository) workflowPath(id string) string {
	return filepath.Join(r.root, "workflows", id+".json")
}

func (r *WorkflowRepository) reportPath(id string) string {
	return filepath.Join(r.root, "reports", id+".json")
}

func (r *WorkflowRepository) Save(ctx context.Context, def *models.WorkflowDefinition) error {
	encoded, err := wire.Encode(def)
	if err != nil {
		return &persistence.StoreError{Op: "Save", ID: def.ID, Err: err}
	}

	stored := storedWorkflow{
		ID:         def.ID,
		Definition: encoded,
		CreatedAt:  def.CreatedAt.Format(timeLayout),
		UpdatedAt:  def.UpdatedAt.Format(timeLayout),
	}

	return writeJSON(r.workflowPath(def.ID), stored)
}

func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	var stored storedWorkflow

	err := readJSON(r.workflowPath(id), &stored)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.ErrWorkflowNotFound
		}

		return nil, &persistence.StoreError{Op: "GetByID", ID: id, Err: err}
	}

	return decodeStored(&stored)
}

func (r *WorkflowRepository) List(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	dir := filepath.Join(r.root, "workflows")

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, &persistence.StoreError{Op: "List", Err: err}
	}

	var defs []*models.WorkflowDefinition

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		var stored storedWorkflow
		if err := readJSON(filepath.Join(dir, entry.Name()), &stored); err != nil {
			return nil, &persistence.StoreError{Op: "List", ID: entry.Name(), Err: err}
		}

		def, err := decodeStored(&stored)
		if err != nil {
			return nil, err
		}

		defs = append(defs, def)
	}

	return defs, nil
}

func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	err := os.Remove(r.workflowPath(id))
	if os.IsNotExist(err) {
		return persistence.ErrWorkflowNotFound
	}

	return err
}

func (r *WorkflowRepository) SaveErrorReport(ctx context.Context, report *models.ImportErrorReport) error {
	return writeJSON(r.reportPath(report.ID), report)
}

func (r *WorkflowRepository) ErrorReportByID(ctx context.Context, id string) (*models.ImportErrorReport, error) {
	var report models.ImportErrorReport

	err := readJSON(r.reportPath(id), &report)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.ErrReportNotFound
		}

		return nil, &persistence.StoreError{Op: "ErrorReportByID", ID: id, Err: err}
	}

	return &report, nil
}

func decodeStored(stored *storedWorkflow) (*models.WorkflowDefinition, error) {
	def := stored.Definition.Decode()
	def.ID = stored.ID

	var err error

	def.CreatedAt, err = parseTime(stored.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("workflow %s: %w", stored.ID, err)
	}

	def.UpdatedAt, err = parseTime(stored.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("workflow %s: %w", stored.ID, err)
	}

	return def, nil
}

// writeJSON writes via a temp file and rename so readers never observe
// a torn file.
func writeJSON(path string, value any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

func readJSON(path string, out any) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return json.Unmarshal(payload, out)
}
