package registry

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownActionType indicates an action whose type has no registered factory.
	ErrUnknownActionType = errors.New("unknown action type")

	// ErrMalformedActionList indicates an action list that is not a JSON array.
	ErrMalformedActionList = errors.New("action list is not a JSON array")
)

// ValidationError reports an action configuration rejected by its schema or factory.
type ValidationError struct {
	Type    string
	Index   int
	Details []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration for action %d (%s): %s", e.Index, e.Type, strings.Join(e.Details, "; "))
}

// UnknownTypeError wraps ErrUnknownActionType with the offending entry.
type UnknownTypeError struct {
	Type  string
	Index int
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("action %d: %s %q", e.Index, ErrUnknownActionType, e.Type)
}

func (e *UnknownTypeError) Unwrap() error {
	return ErrUnknownActionType
}

// IsValidationError checks if err is a configuration validation failure.
func IsValidationError(err error) bool {
	var validationErr *ValidationError

	return errors.As(err, &validationErr)
}
