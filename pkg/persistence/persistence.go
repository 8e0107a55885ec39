// Package persistence provides the data storage abstraction layer for deals, pipelines and automations.
package persistence

import (
	"context"
	"time"

	"github.com/dukex/dealflow/pkg/models"
)

type Persistence interface {
	Deals() DealRepository
	Contacts() ContactRepository
	Pipelines() PipelineRepository
	Automations() AutomationRepository
	Tasks() TaskRepository
	Notifications() NotificationRepository
	Users() UserRepository
	AutomationRules() AutomationRuleRepository
	Firings() FiringRepository
	Cursors() CursorRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

type DealRepository interface {
	// Create inserts the deal and its initial stage transition.
	Create(ctx context.Context, deal *models.Deal) error
	// GetByID returns the deal with owner and contact expanded.
	GetByID(ctx context.Context, organizationID, id string) (*models.Deal, error)
	UpdateOwner(ctx context.Context, organizationID, id, ownerID string) error
	// AddTag appends tag to the deal's tag list and reports whether it was added.
	AddTag(ctx context.Context, organizationID, id, tag string) (bool, error)
	// UpdateData replaces the free-form data blob. It does not touch the
	// stage-entry time.
	UpdateData(ctx context.Context, organizationID, id string, data map[string]any) error
	// MoveToStage records a stage transition and updates the deal's stage and
	// stage-entry time in one transaction.
	MoveToStage(ctx context.Context, organizationID, id, stageID string, at time.Time) (*models.StageTransition, error)
	ListOpen(ctx context.Context, organizationID string) ([]*models.Deal, error)
	// OpenOrganizations returns the distinct organizations that own open deals.
	OpenOrganizations(ctx context.Context) ([]string, error)
	Transitions(ctx context.Context, organizationID, dealID string) ([]*models.StageTransition, error)
}

type ContactRepository interface {
	Create(ctx context.Context, contact *models.Contact) error
}

type PipelineRepository interface {
	CreatePipeline(ctx context.Context, pipeline *models.Pipeline) error
	CreateStage(ctx context.Context, stage *models.PipelineStage) error
	GetStage(ctx context.Context, organizationID, id string) (*models.PipelineStage, error)
	ListStages(ctx context.Context, organizationID, pipelineID string) ([]*models.PipelineStage, error)
}

type AutomationRepository interface {
	Create(ctx context.Context, automation *models.StageAutomation) error
	// ListByStage returns automations bound to stageID. An empty trigger
	// matches every trigger type.
	ListByStage(ctx context.Context, stageID string, trigger models.TriggerType, activeOnly bool) ([]*models.StageAutomation, error)
}

type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	ListByDeal(ctx context.Context, organizationID, dealID string) ([]*models.Task, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, organizationID, userID string) ([]*models.Notification, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	// ListByRole returns the organization's users holding role, ordered by id.
	ListByRole(ctx context.Context, organizationID, role string) ([]*models.User, error)
}

type AutomationRuleRepository interface {
	Create(ctx context.Context, rule *models.AutomationRule) error
	ListActive(ctx context.Context, organizationID string) ([]*models.AutomationRule, error)
}

type FiringRepository interface {
	// Claim records the firing and reports whether this call created it. Only
	// the caller that gets true may execute the automation. It fails with
	// ErrStageVisitEnded when the deal is closed or no longer holds the
	// firing's stage transition.
	Claim(ctx context.Context, firing *models.AutomationFiring) (bool, error)
}

type CursorRepository interface {
	// Next atomically advances the (organization, role) rotation counter and
	// returns its new value, starting at zero.
	Next(ctx context.Context, organizationID, role string) (int64, error)
}
