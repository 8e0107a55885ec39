package assignuser

import (
	"encoding/json"
	"fmt"

	"github.com/dukex/dealflow/pkg/models"
	"github.com/dukex/dealflow/pkg/persistence"
	"github.com/dukex/dealflow/pkg/protocol"
)

// ActionFactory creates assign_user actions.
type ActionFactory struct {
	deals   persistence.DealRepository
	users   persistence.UserRepository
	cursors persistence.CursorRepository
}

// NewActionFactory creates a new ActionFactory.
func NewActionFactory(
	deals persistence.DealRepository,
	users persistence.UserRepository,
	cursors persistence.CursorRepository,
) *ActionFactory {
	return &ActionFactory{deals: deals, users: users, cursors: cursors}
}

func (*ActionFactory) ID() string {
	return string(models.ActionAssignUser)
}

func (*ActionFactory) Name() string {
	return "Assign User"
}

func (*ActionFactory) Description() string {
	return "Reassigns the deal to the next user holding a role, rotating round robin per organization and role."
}

func (f *ActionFactory) Create(config json.RawMessage) (protocol.Action, error) {
	var cfg Config

	err := json.Unmarshal(config, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode assign_user config: %w", err)
	}

	return NewAction(cfg, f.deals, f.users, f.cursors), nil
}

func (*ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"strategy": map[string]any{
				"type":    "string",
				"default": StrategyRoundRobin,
				"enum":    []string{StrategyRoundRobin},
			},
			"role": map[string]any{
				"type":        "string",
				"description": "Role the new owner must hold",
				"minLength":   1,
			},
		},
		"required": []string{"role"},
	}
}
