// Package web provides HTTP request and response types for the workflow API.
package web

// ErrorResponse represents a standardized API error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// TransitionRequestBody represents the request body for requesting an
// artifact transition. The artifact ID comes from the URL path.
type TransitionRequestBody struct {
	Transition string `json:"transition" validate:"required,min=1,max=24"`
	UserID     int    `json:"user_id"    validate:"required,min=1"`
}

// ImportResponse wraps the outcome of an import attempt. Exactly one of
// the two fields is populated: Workflow on success, Report on rejection.
type ImportResponse struct {
	Workflow *WorkflowSummary `json:"workflow,omitempty"`
	Report   *ReportRef       `json:"report,omitempty"`
}

// WorkflowSummary is the condensed listing form of a stored definition.
type WorkflowSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	States      int    `json:"states"`
	Transitions int    `json:"transitions"`
}

// ReportRef points a client at the stored error report for a rejected
// definition, with the issues inlined for convenience.
type ReportRef struct {
	ID     string        `json:"id"`
	Name   string        `json:"workflow_name"`
	Issues []ReportIssue `json:"issues"`
}

// ReportIssue is the wire form of a single validation finding.
type ReportIssue struct {
	Code string `json:"code"`
	Info string `json:"info,omitempty"`
}
