package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/stateforge/stateforge/pkg/models"
	"github.com/stateforge/stateforge/pkg/persistence"
	"github.com/stateforge/stateforge/pkg/validation"
)

// Import runs the two validation passes over a submitted definition and
// either persists it whole or stores an error report. A definition with
// structural or referential errors is never partially persisted.
type Import struct {
	workflows persistence.WorkflowRepository
	data      *validation.DataValidator
	logger    *slog.Logger
}

// NewImport creates the import service.
func NewImport(workflows persistence.WorkflowRepository, data *validation.DataValidator, logger *slog.Logger) *Import {
	return &Import{
		workflows: workflows,
		data:      data,
		logger:    logger,
	}
}

// ImportResult is the outcome of one import: the persisted definition
// on success, or the stored error report on rejection.
type ImportResult struct {
	Definition *models.WorkflowDefinition `json:"definition,omitempty"`
	Report     *models.ImportErrorReport  `json:"report,omitempty"`
}

// ImportDefinition validates def structurally, then against the live
// system, and persists it only when both passes are clean. On rejection
// the full issue list is stored as a retrievable report and
// ErrDefinitionRejected is returned.
func (s *Import) ImportDefinition(ctx context.Context, def *models.WorkflowDefinition) (*ImportResult, error) {
	if def == nil {
		return nil, ErrDefinitionNil
	}

	res := validation.ValidateStructure(def)

	// The data passes still run for structurally broken definitions;
	// one import attempt reports every problem at once.
	_, dataRes, err := s.data.ValidateData(ctx, def)
	if err != nil {
		return nil, fmt.Errorf("data validation: %w", err)
	}

	res.Merge(dataRes)

	if res.HasErrors() {
		report, err := s.storeReport(ctx, def, res)
		if err != nil {
			return nil, err
		}

		s.logger.InfoContext(ctx, "Workflow definition rejected",
			"workflow", def.Name, "report_id", report.ID, "issues", res.Len())

		return &ImportResult{Report: report}, ErrDefinitionRejected
	}

	now := time.Now().UTC()
	def.ID = uuid.New().String()
	def.CreatedAt = now
	def.UpdatedAt = now

	if err := s.workflows.Save(ctx, def); err != nil {
		return nil, fmt.Errorf("persisting workflow definition: %w", err)
	}

	s.logger.InfoContext(ctx, "Workflow definition imported", "workflow", def.Name, "id", def.ID)

	return &ImportResult{Definition: def}, nil
}

// ErrorReport retrieves a stored import error report.
func (s *Import) ErrorReport(ctx context.Context, id string) (*models.ImportErrorReport, error) {
	return s.workflows.ErrorReportByID(ctx, id)
}

func (s *Import) storeReport(ctx context.Context, def *models.WorkflowDefinition, res *validation.Result) (*models.ImportErrorReport, error) {
	report := &models.ImportErrorReport{
		ID:           uuid.New().String(),
		WorkflowName: def.Name,
		CreatedAt:    time.Now().UTC(),
	}

	for _, issue := range res.Issues() {
		report.Issues = append(report.Issues, models.ImportIssue{
			Code: string(issue.Code),
			Info: issue.Info,
		})
	}

	if err := s.workflows.SaveErrorReport(ctx, report); err != nil {
		return nil, fmt.Errorf("storing error report: %w", err)
	}

	return report, nil
}
