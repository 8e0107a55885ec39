package sqlbase

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukex/dealflow/pkg/models"
)

// TaskRepository handles task database operations.
type TaskRepository struct {
	conn
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	createdAt := now()

	if task.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}

		task.ID = id
	}

	if task.Status == "" {
		task.Status = models.TaskStatusTodo
	}

	if task.Priority == "" {
		task.Priority = models.TaskPriorityMedium
	}

	_, err := r.exec(ctx, `
		INSERT INTO tasks (
			  id
			, organization_id
			, title
			, description
			, priority
			, status
			, due_date
			, created_by_id
			, assigned_to_id
			, deal_id
			, contact_id
			, created_at
			, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID,
		task.OrganizationID,
		task.Title,
		task.Description,
		string(task.Priority),
		string(task.Status),
		nullTime(task.DueDate),
		task.CreatedByID,
		task.AssignedToID,
		nullString(task.DealID),
		nullString(task.ContactID),
		createdAt,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	if task.DueDate != nil {
		due := timestamp(*task.DueDate)
		task.DueDate = &due
	}

	task.CreatedAt = createdAt
	task.UpdatedAt = createdAt

	return nil
}

func (r *TaskRepository) ListByDeal(ctx context.Context, organizationID, dealID string) ([]*models.Task, error) {
	rows, err := r.query(ctx, `
		SELECT
			  id
			, organization_id
			, title
			, description
			, priority
			, status
			, due_date
			, created_by_id
			, assigned_to_id
			, deal_id
			, contact_id
			, created_at
			, updated_at
		FROM tasks
		WHERE organization_id = ? AND deal_id = ?
		ORDER BY created_at, id`,
		organizationID, dealID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer r.closeRows(ctx, rows)

	tasks := make([]*models.Task, 0)

	for rows.Next() {
		var (
			task              models.Task
			priority, status  string
			dueDate           sql.NullTime
			taskDeal, contact sql.NullString
		)

		err := rows.Scan(
			&task.ID,
			&task.OrganizationID,
			&task.Title,
			&task.Description,
			&priority,
			&status,
			&dueDate,
			&task.CreatedByID,
			&task.AssignedToID,
			&taskDeal,
			&contact,
			&task.CreatedAt,
			&task.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}

		task.Priority = models.TaskPriority(priority)
		task.Status = models.TaskStatus(status)
		task.DueDate = timePtr(dueDate)
		task.DealID = stringPtr(taskDeal)
		task.ContactID = stringPtr(contact)
		task.CreatedAt = task.CreatedAt.UTC()
		task.UpdatedAt = task.UpdatedAt.UTC()

		tasks = append(tasks, &task)
	}

	return tasks, rows.Err()
}
