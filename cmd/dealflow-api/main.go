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

const defaultPort = 9091

func main() {
	cmd.LoadDotEnv()

	command := &cli.Command{
		Name:                  "dealflow-api",
		Usage:                 "Move deals between stages and manage stage automations",
		EnableShellCompletion: true,
		Flags: append(
			[]cli.Flag{
				&cli.IntFlag{
					Name:    "port",
					Aliases: []string{"p"},
					Usage:   "Port to run the API server on",
					Value:   defaultPort,
					Sources: cli.EnvVars("PORT"),
				},
			},
			append(cmd.CommonFlags(), append(cmd.EventBusFlags(), cmd.LockFlags()...)...)...,
		),
		Action: func(ctx context.Context, command *cli.Command) error {
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger, shutdownTracing := cmd.Setup(ctx, command, "dealflow-api")
			defer func() {
				if err := shutdownTracing(context.Background()); err != nil {
					logger.ErrorContext(ctx, "Failed to flush traces", "error", err)
				}
			}()

			logger.InfoContext(ctx, "Initializing dealflow API")

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

			core, err := cmd.NewCore(logger, persistence, locker, clock)
			if err != nil {
				return err
			}

			busProvider := command.String("event-bus")

			eventBus, err := cmd.NewEventBus(busProvider, command.String("kafka-brokers"), "dealflow-api", logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			api := NewAPI(logger, persistence, core, eventBus, clock)

			if busProvider == "gochannel" {
				logger.InfoContext(ctx, "Dispatching on-enter automations in process")

				if err := api.DispatchInProcess(ctx); err != nil {
					return err
				}
			}

			return api.Start(ctx, command.Int("port"))
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
