package cmd

import (
	"context"
	"log/slog"

	"github.com/dukex/dealflow/pkg/log"
	"github.com/dukex/dealflow/pkg/otelhelper"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

// LoadDotEnv reads .env into the environment before flags are parsed.
// A missing file is not an error.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// CommonFlags are shared by every dealflow binary.
func CommonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "database-url",
			Usage:    "Database URL (postgres://… or sqlite://path)",
			Required: true,
			Sources:  cli.EnvVars("DATABASE_URL"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level (debug, info, warn, error)",
			Value:   "info",
			Sources: cli.EnvVars("LOG_LEVEL"),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Usage:   "Log format (text, json)",
			Value:   "text",
			Sources: cli.EnvVars("LOG_FORMAT"),
		},
		&cli.BoolFlag{
			Name:    "otel-enabled",
			Usage:   "Export traces over OTLP/HTTP",
			Sources: cli.EnvVars("OTEL_ENABLED"),
		},
	}
}

// EventBusFlags select the event transport.
func EventBusFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "event-bus",
			Usage:   "Event bus type (gochannel, kafka)",
			Value:   "gochannel",
			Sources: cli.EnvVars("EVENT_BUS_TYPE"),
		},
		&cli.StringFlag{
			Name:    "kafka-brokers",
			Usage:   "Comma-separated Kafka brokers",
			Sources: cli.EnvVars("KAFKA_BROKERS"),
		},
	}
}

// LockFlags select the sweep lock backend.
func LockFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "Redis URL for cross-process sweep locks (in-process locks when empty)",
			Sources: cli.EnvVars("REDIS_URL"),
		},
	}
}

// Setup configures logging and, when enabled, tracing. The returned function
// flushes traces.
func Setup(ctx context.Context, command *cli.Command, serviceName string) (*slog.Logger, func(context.Context) error) {
	log.Setup(command.String("log-level"), command.String("log-format"))

	logger := log.WithModule(serviceName)
	shutdown := func(context.Context) error { return nil }

	if command.Bool("otel-enabled") {
		otelShutdown, err := otelhelper.Setup(ctx, serviceName)
		if err != nil {
			logger.WarnContext(ctx, "failed to set up tracing, continuing without it", "error", err)
		} else {
			shutdown = otelShutdown
		}
	}

	return logger, shutdown
}
