// Package persistence provides standardized error types for persistence operations.
package persistence

import (
	"errors"
	"fmt"
)

var (
	// ErrWorkflowNotFound indicates a workflow definition was not found.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrWorkflowAlreadyExists indicates a definition with the same id
	// already exists.
	ErrWorkflowAlreadyExists = errors.New("workflow already exists")

	// ErrArtifactNotFound indicates an artifact was not found.
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrReportNotFound indicates an import error report was not found.
	ErrReportNotFound = errors.New("import error report not found")
)

// StoreError wraps persistence errors with operation context.
type StoreError struct {
	Op  string
	ID  string
	Err error
}

func (e *StoreError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s failed for %s: %v", e.Op, e.ID, e.Err)
	}

	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsWorkflowNotFound checks whether err is a workflow lookup miss.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsArtifactNotFound checks whether err is an artifact lookup miss.
func IsArtifactNotFound(err error) bool {
	return errors.Is(err, ErrArtifactNotFound)
}

// IsReportNotFound checks whether err is a report lookup miss.
func IsReportNotFound(err error) bool {
	return errors.Is(err, ErrReportNotFound)
}
