// Package sendnotification implements the send_notification automation action.
package sendnotification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/dealflow/pkg/models"
	"github.com/dukex/dealflow/pkg/persistence"
	"github.com/dukex/dealflow/pkg/protocol"
)

const DefaultTitle = "Deal update"

// Config is the send_notification configuration.
type Config struct {
	Title   string                  `json:"title"`
	Message string                  `json:"message"`
	Type    models.NotificationType `json:"type"`
	Link    string                  `json:"link"`
}

func (c Config) withDefaults() Config {
	if c.Title == "" {
		c.Title = DefaultTitle
	}

	if c.Type == "" {
		c.Type = models.NotificationInfo
	}

	return c
}

type Action struct {
	config        Config
	notifications persistence.NotificationRepository
}

func NewAction(config Config, notifications persistence.NotificationRepository) *Action {
	return &Action{config: config.withDefaults(), notifications: notifications}
}

func (a *Action) Config() Config {
	return a.config
}

func (a *Action) Execute(ctx context.Context, execCtx models.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	deal := execCtx.Deal
	if deal == nil {
		return nil, errors.New("execution context has no deal")
	}

	if !deal.HasOwner() {
		logger.DebugContext(ctx, "deal has no owner, skipping notification")

		return map[string]any{protocol.ResultStatus: protocol.StatusNoop, "reason": "no_owner"}, nil
	}

	link := a.config.Link
	if link == "" {
		link = "/deals/" + deal.ID
	}

	notification := &models.Notification{
		OrganizationID: execCtx.OrganizationID,
		UserID:         *deal.OwnerID,
		Title:          a.config.Title,
		Message:        a.config.Message,
		Type:           a.config.Type,
		Link:           link,
	}

	err := a.notifications.Create(ctx, notification)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	return map[string]any{
		protocol.ResultStatus: protocol.StatusDone,
		"notification_id":     notification.ID,
		"user_id":             notification.UserID,
	}, nil
}
