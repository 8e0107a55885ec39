// Package schedule runs a job on a cron schedule. A run that is still in
// progress when the next tick arrives causes that tick to be skipped.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Callback is invoked on every tick. ctx is cancelled by Stop.
type Callback func(ctx context.Context, data map[string]any) error

type ScheduleTrigger struct {
	ID       string
	CronExpr string
	Enabled  bool

	cron     *cron.Cron
	callback Callback
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	runCtx context.Context
}

func NewScheduleTrigger(id, cronExpr string, logger *slog.Logger) (*ScheduleTrigger, error) {
	trigger := &ScheduleTrigger{
		ID:       id,
		CronExpr: cronExpr,
		Enabled:  true,
		logger: logger.With(
			"module", "schedule_trigger",
			"id", id,
			"cron", cronExpr,
		),
	}

	if err := trigger.Validate(); err != nil {
		return nil, err
	}

	return trigger, nil
}

func (t *ScheduleTrigger) Validate() error {
	if t.ID == "" {
		return errors.New("schedule trigger ID is required")
	}

	if t.CronExpr == "" {
		return errors.New("schedule trigger cron expression is required")
	}

	if _, err := cron.ParseStandard(t.CronExpr); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	return nil
}

func (t *ScheduleTrigger) Start(ctx context.Context, callback Callback) error {
	if !t.Enabled {
		t.logger.InfoContext(ctx, "schedule trigger is disabled")

		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.callback = callback
	t.runCtx, t.cancel = context.WithCancel(context.WithoutCancel(ctx))

	cronLogger := cronLogger{logger: t.logger}
	t.cron = cron.New(cron.WithChain(
		cron.Recover(cronLogger),
		cron.SkipIfStillRunning(cronLogger),
	))

	if _, err := t.cron.AddFunc(t.CronExpr, t.run); err != nil {
		t.cancel()

		return fmt.Errorf("failed to add cron job for trigger %s: %w", t.ID, err)
	}

	t.cron.Start()
	t.logger.InfoContext(ctx, "schedule trigger started")

	return nil
}

func (t *ScheduleTrigger) run() {
	startedAt := time.Now().UTC()
	t.logger.DebugContext(t.runCtx, "cron job triggered")

	data := map[string]any{
		"trigger_id": t.ID,
		"timestamp":  startedAt.Format(time.RFC3339),
	}

	if err := t.callback(t.runCtx, data); err != nil {
		t.logger.ErrorContext(t.runCtx, "scheduled run failed", "error", err, "duration", time.Since(startedAt))

		return
	}

	t.logger.DebugContext(t.runCtx, "scheduled run finished", "duration", time.Since(startedAt))
}

// Stop cancels an in-flight run and waits for it to return or for ctx to end.
func (t *ScheduleTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cron == nil {
		return nil
	}

	t.logger.InfoContext(ctx, "stopping schedule trigger")

	t.cancel()
	done := t.cron.Stop()
	t.cron = nil

	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger routes cron's internal logging to slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append([]any{"error", err}, keysAndValues...)...)
}
