package automation

import (
	"context"
	"errors"
	"fmt"

	"github.com/dukex/dealflow/pkg/events"
)

// ErrDispatchLoadFailed is returned to the event bus so the message is
// redelivered. Loading happens before any action runs, so a retry cannot
// repeat side effects.
var ErrDispatchLoadFailed = errors.New("failed to load deal or automations")

// HandleStageEntered adapts OnDealEnteredStage to an event bus handler for
// deal.stage_entered.
func (d *Dispatcher) HandleStageEntered(ctx context.Context, event any) error {
	stageEntered, ok := event.(*events.DealStageEntered)
	if !ok {
		return fmt.Errorf("unexpected event %T", event)
	}

	report := d.OnDealEnteredStage(ctx, stageEntered.DealID, stageEntered.StageID, stageEntered.OrganizationID)
	if report.Status == DispatchLoadFailed {
		return ErrDispatchLoadFailed
	}

	return nil
}
