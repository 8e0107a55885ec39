package models

import "time"

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// Task is a to-do created by users or by automations.
type Task struct {
	ID             string       `json:"id"`
	OrganizationID string       `json:"organization_id"`
	Title          string       `json:"title"`
	Description    string       `json:"description,omitempty"`
	Priority       TaskPriority `json:"priority"`
	Status         TaskStatus   `json:"status"`
	DueDate        *time.Time   `json:"due_date,omitempty"`
	CreatedByID    string       `json:"created_by_id"`
	AssignedToID   string       `json:"assigned_to_id"`
	DealID         *string      `json:"deal_id,omitempty"`
	ContactID      *string      `json:"contact_id,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}
