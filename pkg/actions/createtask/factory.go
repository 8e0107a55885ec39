package createtask

import (
	"encoding/json"
	"fmt"

	"github.com/dukex/dealflow/pkg/models"
	"github.com/dukex/dealflow/pkg/persistence"
	"github.com/dukex/dealflow/pkg/protocol"
	"github.com/jonboulle/clockwork"
)

// ActionFactory creates create_task actions.
type ActionFactory struct {
	tasks persistence.TaskRepository
	clock clockwork.Clock
}

// NewActionFactory creates a new ActionFactory.
func NewActionFactory(tasks persistence.TaskRepository, clock clockwork.Clock) *ActionFactory {
	return &ActionFactory{tasks: tasks, clock: clock}
}

// ID returns the unique identifier for the action.
func (*ActionFactory) ID() string {
	return string(models.ActionCreateTask)
}

// Name returns the name of the action.
func (*ActionFactory) Name() string {
	return "Create Task"
}

// Description returns a brief description of the action.
func (*ActionFactory) Description() string {
	return "Creates a follow-up task linked to the deal and its contact, assigned to the deal owner or creator."
}

// Create decodes the configuration and applies defaults.
func (f *ActionFactory) Create(config json.RawMessage) (protocol.Action, error) {
	var cfg Config

	err := json.Unmarshal(config, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode create_task config: %w", err)
	}

	if cfg.DueInHours != nil && (*cfg.DueInHours < 0 || *cfg.DueInHours > MaxDueInHours) {
		return nil, fmt.Errorf("dueInHours must be between 0 and %v, got %v", MaxDueInHours, *cfg.DueInHours)
	}

	return NewAction(cfg, f.tasks, f.clock), nil
}

// Schema returns the JSON schema for configuring this action.
func (*ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Task title",
				"default":     DefaultTitle,
				"maxLength":   255,
			},
			"description": map[string]any{
				"type":        "string",
				"description": "Task description",
			},
			"priority": map[string]any{
				"type":        "string",
				"description": "Task priority",
				"default":     string(models.TaskPriorityMedium),
				"enum":        []string{"low", "medium", "high", "urgent"},
			},
			"dueInHours": map[string]any{
				"type":        "number",
				"description": "Hours from execution until the task is due",
				"default":     DefaultDueInHours,
				"minimum":     0,
				"maximum":     MaxDueInHours,
			},
			"assignToOwner": map[string]any{
				"type":        "boolean",
				"description": "Assign the task to the deal owner instead of the deal creator",
				"default":     false,
			},
		},
	}
}
