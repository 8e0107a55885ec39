package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dukex/dealflow/pkg/cmd"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	cli "github.com/urfave/cli/v3"
)

func main() {
	cmd.LoadDotEnv()

	command := &cli.Command{
		Name:                  "dealflow-worker",
		Usage:                 "Run on-enter stage automations from the event bus",
		EnableShellCompletion: true,
		Flags: append(
			[]cli.Flag{
				&cli.StringFlag{
					Name:    "worker-id",
					Aliases: []string{"id"},
					Usage:   "Custom worker ID (auto-generated if not provided)",
					Sources: cli.EnvVars("WORKER_ID"),
				},
			},
			append(cmd.CommonFlags(), cmd.EventBusFlags()...)...,
		),
		Action: func(ctx context.Context, command *cli.Command) error {
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger, shutdownTracing := cmd.Setup(ctx, command, "dealflow-worker")
			defer func() {
				if err := shutdownTracing(context.Background()); err != nil {
					logger.ErrorContext(ctx, "Failed to flush traces", "error", err)
				}
			}()

			workerID := command.String("worker-id")
			if workerID == "" {
				workerID = "worker-" + uuid.New().String()[:8]
			}

			logger.InfoContext(ctx, "Initializing dealflow worker", "worker_id", workerID)

			clock := clockwork.NewRealClock()

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(context.Background()); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), command.String("kafka-brokers"), "dealflow-worker", logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			// The worker never sweeps, so a process-local locker is enough.
			locker, _, err := cmd.NewLocker(ctx, logger, "", clock)
			if err != nil {
				return err
			}

			core, err := cmd.NewCore(logger, persistence, locker, clock)
			if err != nil {
				return err
			}

			return NewWorker(workerID, core.Dispatcher, eventBus, logger).Start(ctx)
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
