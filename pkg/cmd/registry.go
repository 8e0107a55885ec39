// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukex/dealflow/pkg/automation"
	"github.com/dukex/dealflow/pkg/lock"
	"github.com/dukex/dealflow/pkg/otelhelper"
	"github.com/dukex/dealflow/pkg/persistence"
	"github.com/dukex/dealflow/pkg/registry"
	"github.com/jonboulle/clockwork"
)

// Core bundles the automation components shared by the binaries.
type Core struct {
	Registry   *registry.Registry
	Executor   *automation.Executor
	Dispatcher *automation.Dispatcher
	Sweeper    *automation.Sweeper
}

// NewCore wires the registry, executor, dispatcher and sweeper over store.
func NewCore(
	logger *slog.Logger,
	store persistence.Persistence,
	locker lock.Locker,
	clock clockwork.Clock,
) (*Core, error) {
	metrics, err := otelhelper.NewMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	reg := registry.NewDefaultRegistry(logger, store, clock)
	if err := reg.HealthCheck(); err != nil {
		return nil, err
	}

	executor := automation.NewExecutor(reg, logger, metrics)

	return &Core{
		Registry:   reg,
		Executor:   executor,
		Dispatcher: automation.NewDispatcher(store, executor, logger),
		Sweeper:    automation.NewSweeper(store, executor, locker, clock, logger, automation.WithMetrics(metrics)),
	}, nil
}

// NewLocker returns a Redis-backed locker when redisURL is set and a
// process-local one otherwise. The returned close function releases the
// Redis connection.
func NewLocker(ctx context.Context, logger *slog.Logger, redisURL string, clock clockwork.Clock) (lock.Locker, func() error, error) {
	if redisURL == "" {
		logger.InfoContext(ctx, "using in-process sweep locks")

		return lock.NewMemoryLocker(clock), func() error { return nil }, nil
	}

	client, err := lock.NewRedisClient(ctx, redisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.InfoContext(ctx, "using redis sweep locks")

	return lock.NewRedisLocker(client, "dealflow:lock:"), client.Close, nil
}
