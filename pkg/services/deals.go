package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukex/dealflow/pkg/eventbus"
	"github.com/dukex/dealflow/pkg/events"
	"github.com/dukex/dealflow/pkg/models"
	"github.com/dukex/dealflow/pkg/persistence"
	"github.com/jonboulle/clockwork"
)

var (
	// ErrDealNotFound is returned when a deal is not found in the organization.
	ErrDealNotFound = persistence.ErrDealNotFound
)

type Deals struct {
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	clock       clockwork.Clock
	logger      *slog.Logger
}

// NewDeals creates a new deal service.
func NewDeals(
	persistence persistence.Persistence,
	publisher eventbus.EventPublisher,
	clock clockwork.Clock,
	logger *slog.Logger,
) *Deals {
	return &Deals{
		persistence: persistence,
		publisher:   publisher,
		clock:       clock,
		logger:      logger.With("module", "deal_service"),
	}
}

// HealthCheck checks the health of the persistence layer.
func (d *Deals) HealthCheck(ctx context.Context) (string, bool) {
	if d.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := d.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// MoveResult is the outcome of a stage move. EventPublished is false when the
// transition was stored but the stage-entered event could not be published;
// on_enter automations then do not run for this visit.
type MoveResult struct {
	Transition     *models.StageTransition `json:"transition"`
	EventPublished bool                    `json:"event_published"`
}

// MoveToStage records the deal entering stageID and publishes
// deal.stage_entered for the worker.
func (d *Deals) MoveToStage(ctx context.Context, organizationID, dealID, stageID string) (*MoveResult, error) {
	if organizationID == "" || dealID == "" || stageID == "" {
		return nil, NewValidationError("move_to_stage", "missing_identifier",
			"organization, deal and stage are required", ErrInvalidRequest)
	}

	transition, err := d.persistence.Deals().MoveToStage(ctx, organizationID, dealID, stageID, d.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to move deal: %w", err)
	}

	logger := d.logger.With(
		"organization_id", organizationID,
		"deal_id", dealID,
		"stage_id", stageID,
		"transition_id", transition.ID,
	)
	logger.InfoContext(ctx, "deal moved to stage")

	result := &MoveResult{Transition: transition}

	err = d.publisher.Publish(ctx, dealID, events.NewDealStageEntered(transition))
	if err != nil {
		logger.ErrorContext(ctx, "failed to publish stage entered event", "error", err)

		return result, nil
	}

	result.EventPublished = true

	return result, nil
}

// Transitions returns the deal's stage history, oldest first.
func (d *Deals) Transitions(ctx context.Context, organizationID, dealID string) ([]*models.StageTransition, error) {
	if _, err := d.persistence.Deals().GetByID(ctx, organizationID, dealID); err != nil {
		return nil, fmt.Errorf("failed to fetch deal: %w", err)
	}

	transitions, err := d.persistence.Deals().Transitions(ctx, organizationID, dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transitions: %w", err)
	}

	return transitions, nil
}
