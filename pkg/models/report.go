package models

import "time"

// ImportErrorReport is the retrievable record of a rejected import:
// the full list of validation issues, so the caller sees every problem
// from one pass. Nothing of the rejected definition itself is
// persisted.
type ImportErrorReport struct {
	ID           string        `json:"id"`
	WorkflowName string        `json:"workflow_name"`
	Issues       []ImportIssue `json:"issues"`
	CreatedAt    time.Time     `json:"created_at"`
}

// ImportIssue is one (code, info) pair of an import error report.
type ImportIssue struct {
	Code string `json:"code"`
	Info string `json:"info,omitempty"`
}
