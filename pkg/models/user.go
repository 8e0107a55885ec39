package models

import "time"

// User is a member of an organization. Role drives automation assignment.
type User struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Name           string    `json:"name"  validate:"required"`
	Email          string    `json:"email" validate:"required,email"`
	Role           string    `json:"role"  validate:"required"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
