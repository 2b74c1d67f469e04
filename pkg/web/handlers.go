// Package web provides HTTP handlers and REST API endpoints for workflow management.
package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/stateforge/stateforge/pkg/models"
	"github.com/stateforge/stateforge/pkg/persistence"
	"github.com/stateforge/stateforge/pkg/services"
	"github.com/stateforge/stateforge/pkg/wire"
)

type APIHandlers struct {
	importService     *services.Import
	workflowService   *services.Workflow
	transitionService *services.Transition
	persistence       persistence.Persistence
	validator         *validator.Validate
}

func NewAPIHandlers(
	importService *services.Import,
	workflowService *services.Workflow,
	transitionService *services.Transition,
	persistence persistence.Persistence,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		importService:     importService,
		workflowService:   workflowService,
		transitionService: transitionService,
		persistence:       persistence,
		validator:         validator,
	}
}

// ImportWorkflow accepts a workflow definition in its compact wire form,
// checks it against the document schema, then hands it to the import
// service. A schema violation is a 400; a definition rejected by the
// validators is a 422 pointing at the stored error report.
func (h *APIHandlers) ImportWorkflow(c fiber.Ctx) error {
	body := c.Body()

	violations, err := wire.ValidateDocument(body)
	if err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if len(violations) > 0 {
		return badRequest(c, "Document does not match workflow schema: "+violations[0])
	}

	var doc wire.Workflow
	if err := json.Unmarshal(body, &doc); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	result, err := h.importService.ImportDefinition(c.Context(), doc.Decode())
	if err != nil {
		if errors.Is(err, services.ErrDefinitionRejected) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(ImportResponse{
				Report: transformReport(result.Report),
			})
		}

		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(ImportResponse{
		Workflow: transformSummary(result.Definition),
	})
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	definitions, err := h.workflowService.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	summaries := make([]*WorkflowSummary, 0, len(definitions))
	for _, def := range definitions {
		summaries = append(summaries, transformSummary(def))
	}

	return c.JSON(fiber.Map{
		"workflows":   summaries,
		"total_count": len(summaries),
	})
}

// GetWorkflow returns a stored definition in its wire form, the same
// shape the import endpoint accepts.
func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	def, err := h.workflowService.FetchByID(c.Context(), id)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return notFound(c, "Workflow not found")
		}

		return internalError(c, err)
	}

	doc, err := wire.Encode(def)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"id": def.ID, "definition": doc})
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	err := h.workflowService.Delete(c.Context(), id)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return notFound(c, "Workflow not found")
		}

		return internalError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) GetErrorReport(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Report ID is required")
	}

	report, err := h.importService.ErrorReport(c.Context(), id)
	if err != nil {
		if persistence.IsReportNotFound(err) {
			return notFound(c, "Import error report not found")
		}

		return internalError(c, err)
	}

	return c.JSON(report)
}

// RequestTransition runs the trigger pipeline for one artifact. A
// rejected transition is a 422 carrying the per-trigger failure map;
// the artifact is untouched in that case.
func (h *APIHandlers) RequestTransition(c fiber.Ctx) error {
	artifactID := c.Params("id")
	if artifactID == "" {
		return badRequest(c, "Artifact ID is required")
	}

	var body TransitionRequestBody
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(body); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.transitionService.Execute(c.Context(), models.TransitionRequest{
		ArtifactID: artifactID,
		Transition: body.Transition,
		UserID:     body.UserID,
	})
	if err != nil {
		if errors.Is(err, services.ErrTransitionRejected) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(result)
		}

		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.transitionService.HealthCheck(c.Context(), h.persistence)

	status := "unhealthy"
	message := "StateForge API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		message = "StateForge API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func transformSummary(def *models.WorkflowDefinition) *WorkflowSummary {
	if def == nil {
		return nil
	}

	return &WorkflowSummary{
		ID:          def.ID,
		Name:        def.Name,
		Description: def.Description,
		States:      len(def.States),
		Transitions: len(def.Transitions),
	}
}

func transformReport(report *models.ImportErrorReport) *ReportRef {
	if report == nil {
		return nil
	}

	issues := make([]ReportIssue, 0, len(report.Issues))
	for _, issue := range report.Issues {
		issues = append(issues, ReportIssue{Code: issue.Code, Info: issue.Info})
	}

	return &ReportRef{ID: report.ID, Name: report.WorkflowName, Issues: issues}
}
