// Package services provides the import and transition services on top
// of the validation engine and the execution pipeline.
package services

import "errors"

// Business logic errors. These indicate client errors (4xx responses).
var (
	// ErrDefinitionNil is returned when a nil definition is submitted.
	ErrDefinitionNil = errors.New("workflow definition cannot be nil")

	// ErrDefinitionRejected is returned when an import fails structural
	// or referential validation. The error report carries the details.
	ErrDefinitionRejected = errors.New("workflow definition rejected")

	// ErrTransitionRejected is returned when a transition request fails
	// synchronous trigger validation. The result's failure map carries
	// the per-trigger messages.
	ErrTransitionRejected = errors.New("transition rejected")

	// ErrInvalidRequest is returned for malformed requests.
	ErrInvalidRequest = errors.New("invalid request")
)

// IsValidationError checks if an error should map to HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrDefinitionNil)
}
