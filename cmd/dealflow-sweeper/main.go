package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dukex/dealflow/pkg/cmd"
	"github.com/jonboulle/clockwork"
	cli "github.com/urfave/cli/v3"
)

func main() {
	cmd.LoadDotEnv()

	command := &cli.Command{
		Name:                  "dealflow-sweeper",
		Usage:                 "Fire on-duration stage automations for deals that stayed too long",
		EnableShellCompletion: true,
		Flags: append(
			[]cli.Flag{
				&cli.StringFlag{
					Name:    "schedule",
					Usage:   "Cron expression for sweep runs",
					Value:   DefaultSchedule,
					Sources: cli.EnvVars("SWEEP_SCHEDULE"),
				},
				&cli.BoolFlag{
					Name:  "once",
					Usage: "Run a single sweep and exit",
				},
			},
			append(cmd.CommonFlags(), append(cmd.EventBusFlags(), cmd.LockFlags()...)...)...,
		),
		Action: func(ctx context.Context, command *cli.Command) error {
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger, shutdownTracing := cmd.Setup(ctx, command, "dealflow-sweeper")
			defer func() {
				if err := shutdownTracing(context.Background()); err != nil {
					logger.ErrorContext(ctx, "Failed to flush traces", "error", err)
				}
			}()

			logger.InfoContext(ctx, "Initializing dealflow sweeper")

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

			locker, closeLocker, err := cmd.NewLocker(ctx, logger, command.String("redis-url"), clock)
			if err != nil {
				return err
			}

			defer func() {
				if err := closeLocker(); err != nil {
					logger.ErrorContext(ctx, "Failed to close locker", "error", err)
				}
			}()

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), command.String("kafka-brokers"), "dealflow-sweeper", logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			core, err := cmd.NewCore(logger, persistence, locker, clock)
			if err != nil {
				return err
			}

			runner := NewRunner(core.Sweeper, eventBus, logger)

			if command.Bool("once") {
				_, err := runner.RunOnce(ctx)

				return err
			}

			return runner.Run(ctx, command.String("schedule"))
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
