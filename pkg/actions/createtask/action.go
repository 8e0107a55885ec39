// Package createtask implements the create_task automation action.
package createtask

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/dealflow/pkg/models"
	"github.com/dukex/dealflow/pkg/persistence"
	"github.com/dukex/dealflow/pkg/protocol"
	"github.com/jonboulle/clockwork"
)

const (
	DefaultTitle      = "Follow up required"
	DefaultDueInHours = 24.0

	// MaxDueInHours caps the due offset at ten years.
	MaxDueInHours = 87600.0
)

var errNoDeal = errors.New("execution context has no deal")

// Config is the create_task configuration.
type Config struct {
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Priority      models.TaskPriority `json:"priority"`
	DueInHours    *float64            `json:"dueInHours"`
	AssignToOwner bool                `json:"assignToOwner"`
}

func (c Config) withDefaults() Config {
	if c.Title == "" {
		c.Title = DefaultTitle
	}

	if c.Priority == "" {
		c.Priority = models.TaskPriorityMedium
	}

	if c.DueInHours == nil {
		hours := DefaultDueInHours
		c.DueInHours = &hours
	}

	return c
}

// Action creates a task for the deal in the execution context.
type Action struct {
	config Config
	tasks  persistence.TaskRepository
	clock  clockwork.Clock
}

func NewAction(config Config, tasks persistence.TaskRepository, clock clockwork.Clock) *Action {
	return &Action{config: config.withDefaults(), tasks: tasks, clock: clock}
}

func (a *Action) Config() Config {
	return a.config
}

func (a *Action) Execute(ctx context.Context, execCtx models.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	deal := execCtx.Deal
	if deal == nil {
		return nil, errNoDeal
	}

	assignee := deal.CreatedByID
	if a.config.AssignToOwner && deal.HasOwner() {
		assignee = *deal.OwnerID
	}

	due := a.clock.Now().Add(time.Duration(*a.config.DueInHours * float64(time.Hour)))
	dealID := deal.ID

	task := &models.Task{
		OrganizationID: execCtx.OrganizationID,
		Title:          a.config.Title,
		Description:    a.config.Description,
		Priority:       a.config.Priority,
		Status:         models.TaskStatusTodo,
		DueDate:        &due,
		CreatedByID:    deal.CreatedByID,
		AssignedToID:   assignee,
		DealID:         &dealID,
		ContactID:      deal.ContactID,
	}

	err := a.tasks.Create(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	logger.InfoContext(ctx, "task created", "task_id", task.ID, "assigned_to_id", assignee)

	return map[string]any{
		protocol.ResultStatus: protocol.StatusDone,
		"task_id":             task.ID,
		"assigned_to_id":      assignee,
	}, nil
}
