// Package protocol defines the interfaces and contracts for pluggable automation actions.
package protocol

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/dukex/dealflow/pkg/models"
)

// Action is one decoded, configured automation step.
type Action interface {
	// Execute performs the side effect for execCtx.Deal. The returned map is
	// a small summary recorded in logs and reports.
	Execute(ctx context.Context, execCtx models.ExecutionContext, logger *slog.Logger) (map[string]any, error)
}

// ActionFactory creates action instances and provides metadata about the action type.
type ActionFactory interface {
	// ID returns the action type this factory decodes, e.g. "create_task".
	ID() string

	// Name returns the human-readable name for this action type.
	Name() string

	// Description returns a description of what this action does.
	Description() string

	// Schema returns the JSON schema for configuring this action. Configs are
	// validated against it before Create is called.
	Schema() map[string]any

	// Create decodes a validated configuration into an action.
	Create(config json.RawMessage) (Action, error)
}

// Result keys shared by actions.
const (
	ResultStatus = "status"

	StatusDone           = "done"
	StatusNoop           = "noop"
	StatusNotImplemented = "not_implemented"
)
