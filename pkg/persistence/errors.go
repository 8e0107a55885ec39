// Package persistence provides standardized error types for persistence operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrDealNotFound indicates a deal was not found in the given organization.
	ErrDealNotFound = errors.New("deal not found")

	// ErrPipelineNotFound indicates a pipeline was not found.
	ErrPipelineNotFound = errors.New("pipeline not found")

	// ErrStageNotFound indicates a pipeline stage was not found.
	ErrStageNotFound = errors.New("stage not found")

	// ErrAutomationNotFound indicates a stage automation was not found.
	ErrAutomationNotFound = errors.New("automation not found")

	// ErrUserNotFound indicates a user was not found.
	ErrUserNotFound = errors.New("user not found")

	// ErrStageNotInPipeline indicates a transition targeted a stage of another pipeline.
	ErrStageNotInPipeline = errors.New("stage does not belong to the deal's pipeline")

	// ErrDealClosed indicates a mutation that only applies to open deals.
	ErrDealClosed = errors.New("deal is not open")

	// ErrAlreadyInStage indicates a transition to the stage the deal is already in.
	ErrAlreadyInStage = errors.New("deal is already in stage")

	// ErrStageVisitEnded indicates a firing claim for a stage visit the deal
	// has already left, or for a deal that is no longer open.
	ErrStageVisitEnded = errors.New("stage visit has ended")
)

// EntityError wraps persistence errors with the operation and entity involved.
type EntityError struct {
	Op     string // Operation being performed (e.g., "GetByID", "MoveToStage")
	Entity string // Entity kind (e.g., "deal", "stage")
	ID     string // Entity ID if applicable
	Err    error  // Underlying error
}

func (e *EntityError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s operation failed for %s: %v", e.Op, e.Entity, e.Err)
	}

	return fmt.Sprintf("%s operation failed for %s %s: %v", e.Op, e.Entity, e.ID, e.Err)
}

func (e *EntityError) Unwrap() error {
	return e.Err
}

// NewEntityError creates a new entity error with context.
func NewEntityError(op, entity, id string, err error) *EntityError {
	return &EntityError{
		Op:     op,
		Entity: entity,
		ID:     id,
		Err:    err,
	}
}

// IsDealNotFound checks if an error indicates a deal was not found.
func IsDealNotFound(err error) bool {
	return errors.Is(err, ErrDealNotFound)
}

// IsStageNotFound checks if an error indicates a stage was not found.
func IsStageNotFound(err error) bool {
	return errors.Is(err, ErrStageNotFound)
}

// IsNotFound checks if an error indicates any entity was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDealNotFound) ||
		errors.Is(err, ErrPipelineNotFound) ||
		errors.Is(err, ErrStageNotFound) ||
		errors.Is(err, ErrAutomationNotFound) ||
		errors.Is(err, ErrUserNotFound)
}
