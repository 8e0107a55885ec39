package sqlbase

import (
	"context"
	"fmt"

	"github.com/dukex/dealflow/pkg/models"
)

// NotificationRepository handles in-app notification database operations.
type NotificationRepository struct {
	conn
}

func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	createdAt := now()

	if notification.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}

		notification.ID = id
	}

	if notification.Type == "" {
		notification.Type = models.NotificationInfo
	}

	_, err := r.exec(ctx, `
		INSERT INTO notifications (
			  id
			, organization_id
			, user_id
			, title
			, message
			, type
			, link
			, is_read
			, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		notification.ID,
		notification.OrganizationID,
		notification.UserID,
		notification.Title,
		notification.Message,
		string(notification.Type),
		notification.Link,
		notification.Read,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}

	notification.CreatedAt = createdAt

	return nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, organizationID, userID string) ([]*models.Notification, error) {
	rows, err := r.query(ctx, `
		SELECT
			  id
			, organization_id
			, user_id
			, title
			, message
			, type
			, link
			, is_read
			, created_at
		FROM notifications
		WHERE organization_id = ? AND user_id = ?
		ORDER BY created_at, id`,
		organizationID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer r.closeRows(ctx, rows)

	notifications := make([]*models.Notification, 0)

	for rows.Next() {
		var (
			notification     models.Notification
			notificationType string
		)

		err := rows.Scan(
			&notification.ID,
			&notification.OrganizationID,
			&notification.UserID,
			&notification.Title,
			&notification.Message,
			&notificationType,
			&notification.Link,
			&notification.Read,
			&notification.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}

		notification.Type = models.NotificationType(notificationType)
		notification.CreatedAt = notification.CreatedAt.UTC()

		notifications = append(notifications, &notification)
	}

	return notifications, rows.Err()
}
