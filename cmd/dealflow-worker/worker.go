// Package main provides the dealflow worker, which runs on-enter automations
// for stage-entered events.
package main

import (
	"context"
	"log/slog"

	"github.com/dukex/dealflow/pkg/automation"
	"github.com/dukex/dealflow/pkg/eventbus"
	"github.com/dukex/dealflow/pkg/events"
)

type Worker struct {
	id         string
	logger     *slog.Logger
	dispatcher *automation.Dispatcher
	eventBus   eventbus.EventBus
}

func NewWorker(id string, dispatcher *automation.Dispatcher, eventBus eventbus.EventBus, logger *slog.Logger) *Worker {
	return &Worker{
		id:         id,
		logger:     logger.With("worker_id", id),
		dispatcher: dispatcher,
		eventBus:   eventBus,
	}
}

// Start subscribes to stage-entered events and blocks until ctx is done.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Starting worker")

	err := w.eventBus.Handle(events.DealStageEnteredEvent, w.dispatcher.HandleStageEntered)
	if err != nil {
		return err
	}

	err = w.eventBus.Subscribe(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to subscribe to event bus", "error", err)

		return err
	}

	<-ctx.Done()

	w.logger.InfoContext(ctx, "Shutting down worker")

	return nil
}
