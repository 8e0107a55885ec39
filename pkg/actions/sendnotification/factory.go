package sendnotification

import (
	"encoding/json"
	"fmt"

	"github.com/dukex/dealflow/pkg/models"
	"github.com/dukex/dealflow/pkg/persistence"
	"github.com/dukex/dealflow/pkg/protocol"
)

// ActionFactory creates send_notification actions.
type ActionFactory struct {
	notifications persistence.NotificationRepository
}

// NewActionFactory creates a new ActionFactory.
func NewActionFactory(notifications persistence.NotificationRepository) *ActionFactory {
	return &ActionFactory{notifications: notifications}
}

// ID returns the unique identifier for the action.
func (*ActionFactory) ID() string {
	return string(models.ActionSendNotification)
}

// Name returns the name of the action.
func (*ActionFactory) Name() string {
	return "Send Notification"
}

// Description returns a brief description of the action.
func (*ActionFactory) Description() string {
	return "Sends an in-app notification to the deal owner. Does nothing when the deal is unassigned."
}

func (f *ActionFactory) Create(config json.RawMessage) (protocol.Action, error) {
	var cfg Config

	err := json.Unmarshal(config, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode send_notification config: %w", err)
	}

	return NewAction(cfg, f.notifications), nil
}

// Schema returns the JSON schema for configuring this action.
func (*ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":    "string",
				"default": DefaultTitle,
			},
			"message": map[string]any{
				"type":        "string",
				"description": "Notification body",
			},
			"type": map[string]any{
				"type":    "string",
				"default": string(models.NotificationInfo),
				"enum":    []string{"info", "success", "warning", "error"},
			},
			"link": map[string]any{
				"type":        "string",
				"description": "Link opened from the notification. Defaults to the deal page.",
			},
		},
	}
}
