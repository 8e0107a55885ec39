package sqlbase

import (
	"context"
	"fmt"

	"github.com/dukex/dealflow/pkg/models"
)

// UserRepository handles user database operations.
type UserRepository struct {
	conn
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	createdAt := now()

	if user.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}

		user.ID = id
	}

	_, err := r.exec(ctx, `
		INSERT INTO users (id, organization_id, name, email, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.OrganizationID, user.Name, user.Email, user.Role, createdAt, createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	user.CreatedAt = createdAt
	user.UpdatedAt = createdAt

	return nil
}

func (r *UserRepository) ListByRole(ctx context.Context, organizationID, role string) ([]*models.User, error) {
	rows, err := r.query(ctx, `
		SELECT id, organization_id, name, email, role, created_at, updated_at
		FROM users
		WHERE organization_id = ? AND role = ?
		ORDER BY id`,
		organizationID, role,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer r.closeRows(ctx, rows)

	users := make([]*models.User, 0)

	for rows.Next() {
		var user models.User

		err := rows.Scan(
			&user.ID,
			&user.OrganizationID,
			&user.Name,
			&user.Email,
			&user.Role,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}

		user.CreatedAt = user.CreatedAt.UTC()
		user.UpdatedAt = user.UpdatedAt.UTC()

		users = append(users, &user)
	}

	return users, rows.Err()
}

// ContactRepository handles contact database operations.
type ContactRepository struct {
	conn
}

func (r *ContactRepository) Create(ctx context.Context, contact *models.Contact) error {
	createdAt := now()

	if contact.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}

		contact.ID = id
	}

	_, err := r.exec(ctx, `
		INSERT INTO contacts (id, organization_id, name, email, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		contact.ID, contact.OrganizationID, contact.Name, contact.Email, createdAt, createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert contact: %w", err)
	}

	contact.CreatedAt = createdAt
	contact.UpdatedAt = createdAt

	return nil
}
