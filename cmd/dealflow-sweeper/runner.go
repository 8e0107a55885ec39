// Package main provides the dealflow sweeper, which fires on-duration stage
// automations on a schedule.
package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/dukex/dealflow/pkg/automation"
	"github.com/dukex/dealflow/pkg/eventbus"
	"github.com/dukex/dealflow/pkg/events"
	"github.com/dukex/dealflow/pkg/triggers/schedule"
)

const (
	DefaultSchedule = "*/5 * * * *"
	stopTimeout     = 30 * time.Second
)

type Runner struct {
	sweeper   *automation.Sweeper
	publisher eventbus.EventPublisher
	logger    *slog.Logger
}

func NewRunner(sweeper *automation.Sweeper, publisher eventbus.EventPublisher, logger *slog.Logger) *Runner {
	return &Runner{
		sweeper:   sweeper,
		publisher: publisher,
		logger:    logger,
	}
}

// RunOnce sweeps every organization and publishes a summary event. A failed
// publish is logged and does not fail the sweep.
func (r *Runner) RunOnce(ctx context.Context) (*automation.SweepReport, error) {
	report, err := r.sweeper.Sweep(ctx)
	if report == nil {
		return nil, err
	}

	r.logger.InfoContext(ctx, "Sweep finished",
		"sweep_id", report.SweepID,
		"organizations", report.Organizations,
		"deals_scanned", report.DealsScanned,
		"fired", report.Fired(),
		"errors", report.Errors,
	)

	event := &events.SweepCompleted{
		BaseEvent:     events.NewBaseEvent(events.SweepCompletedEvent, ""),
		SweepID:       report.SweepID,
		Organizations: report.Organizations,
		DealsScanned:  report.DealsScanned,
		Fired:         report.Fired(),
		Errors:        report.Errors,
		Duration:      report.FinishedAt.Sub(report.StartedAt),
	}

	if publishErr := r.publisher.Publish(ctx, report.SweepID, event); publishErr != nil {
		r.logger.WarnContext(ctx, "Failed to publish sweep summary", "sweep_id", report.SweepID, "error", publishErr)
	}

	return report, err
}

// Run sweeps on cronExpr until ctx is done.
func (r *Runner) Run(ctx context.Context, cronExpr string) error {
	trigger, err := schedule.NewScheduleTrigger("duration-sweep", cronExpr, r.logger)
	if err != nil {
		return err
	}

	err = trigger.Start(ctx, func(ctx context.Context, _ map[string]any) error {
		_, err := r.RunOnce(ctx)

		return err
	})
	if err != nil {
		return err
	}

	r.logger.InfoContext(ctx, "Sweeper scheduled", "schedule", cronExpr)

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	return trigger.Stop(stopCtx)
}
