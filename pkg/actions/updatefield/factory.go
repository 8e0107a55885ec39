package updatefield

import (
	"encoding/json"
	"fmt"

	"github.com/dukex/dealflow/pkg/models"
	"github.com/dukex/dealflow/pkg/persistence"
	"github.com/dukex/dealflow/pkg/protocol"
)

// ActionFactory creates update_field actions.
type ActionFactory struct {
	deals persistence.DealRepository
}

func NewActionFactory(deals persistence.DealRepository) *ActionFactory {
	return &ActionFactory{deals: deals}
}

func (*ActionFactory) ID() string {
	return string(models.ActionUpdateField)
}

func (*ActionFactory) Name() string {
	return "Update Field"
}

func (*ActionFactory) Description() string {
	return "Updates a deal field. Only tags are supported: the value is appended to the deal's tag list once."
}

func (f *ActionFactory) Create(config json.RawMessage) (protocol.Action, error) {
	var cfg Config

	err := json.Unmarshal(config, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode update_field config: %w", err)
	}

	if cfg.Field != FieldTags {
		return nil, fmt.Errorf("unsupported field %q", cfg.Field)
	}

	return NewAction(cfg, f.deals), nil
}

func (*ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"field": map[string]any{
				"type": "string",
				"enum": []string{FieldTags},
			},
			"value": map[string]any{
				"type":        "string",
				"description": "Tag to add",
				"minLength":   1,
			},
		},
		"required": []string{"field", "value"},
	}
}
