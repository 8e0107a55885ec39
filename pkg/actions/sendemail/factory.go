package sendemail

import (
	"encoding/json"
	"fmt"

	"github.com/dukex/dealflow/pkg/models"
	"github.com/dukex/dealflow/pkg/protocol"
)

// ActionFactory creates send_email actions.
type ActionFactory struct{}

func NewActionFactory() *ActionFactory {
	return &ActionFactory{}
}

func (*ActionFactory) ID() string {
	return string(models.ActionSendEmail)
}

func (*ActionFactory) Name() string {
	return "Send Email"
}

func (*ActionFactory) Description() string {
	return "Records the intent to email the deal contact or owner. Delivery is not implemented."
}

func (*ActionFactory) Create(config json.RawMessage) (protocol.Action, error) {
	var cfg Config

	err := json.Unmarshal(config, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode send_email config: %w", err)
	}

	if cfg.To == "" {
		cfg.To = RecipientContact
	}

	return &Action{config: cfg}, nil
}

func (*ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"to": map[string]any{
				"type":    "string",
				"default": RecipientContact,
				"enum":    []string{RecipientContact, RecipientOwner},
			},
			"subject": map[string]any{
				"type": "string",
			},
			"template": map[string]any{
				"type":        "string",
				"description": "Template identifier",
			},
		},
	}
}
