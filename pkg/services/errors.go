// Package services implements the API's use cases on top of persistence and
// the automation core.
package services

import (
	"errors"
	"fmt"

	"github.com/dukex/dealflow/pkg/persistence"
	"github.com/dukex/dealflow/pkg/registry"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	// Validation Errors (400 Bad Request).
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInvalidTriggerType = errors.New("invalid trigger type")
	ErrDurationRequired   = errors.New("on_duration automations require duration_minutes of at least 1")
	ErrInvalidActions     = errors.New("invalid automation actions")
	ErrStageNotInPipeline = persistence.ErrStageNotInPipeline

	// Business Logic Conflicts (409 Conflict).
	ErrDealClosed     = persistence.ErrDealClosed
	ErrAlreadyInStage = persistence.ErrAlreadyInStage
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string   // Operation name
	Code    string   // Error code for API responses
	Message string   // Human-readable message
	Details []string // Per-field or per-action problems
	Err     error    // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidTriggerType) ||
		errors.Is(err, ErrDurationRequired) ||
		errors.Is(err, ErrInvalidActions) ||
		errors.Is(err, ErrStageNotInPipeline) ||
		errors.Is(err, registry.ErrUnknownActionType) ||
		errors.Is(err, registry.ErrMalformedActionList) ||
		registry.IsValidationError(err)
}

// IsConflictError checks if an error is a business logic conflict that should return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrDealClosed) ||
		errors.Is(err, ErrAlreadyInStage)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Details returns the problem details carried by err, if any.
func Details(err error) []string {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) && len(serviceErr.Details) > 0 {
		return serviceErr.Details
	}

	var validationErr *registry.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Details
	}

	return nil
}
