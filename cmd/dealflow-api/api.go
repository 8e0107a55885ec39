// Package main provides the dealflow API server implementation.
package main

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/dukex/dealflow/pkg/cmd"
	"github.com/dukex/dealflow/pkg/eventbus"
	"github.com/dukex/dealflow/pkg/events"
	"github.com/dukex/dealflow/pkg/persistence"
	"github.com/dukex/dealflow/pkg/services"
	"github.com/dukex/dealflow/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/jonboulle/clockwork"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	core        *cmd.Core
	eventBus    eventbus.EventBus
	clock       clockwork.Clock
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	core *cmd.Core,
	eventBus eventbus.EventBus,
	clock clockwork.Clock,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		core:        core,
		eventBus:    eventBus,
		clock:       clock,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

// DispatchInProcess runs on-enter automations inside the API process. The
// in-memory bus only reaches subscribers in the publishing process, so it is
// required there.
func (a *API) DispatchInProcess(ctx context.Context) error {
	err := a.eventBus.Handle(events.DealStageEnteredEvent, a.core.Dispatcher.HandleStageEntered)
	if err != nil {
		return err
	}

	return a.eventBus.Subscribe(ctx)
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(
		services.NewDeals(a.persistence, a.eventBus, a.clock, a.logger),
		services.NewAutomations(a.persistence, a.core.Registry, a.logger),
		services.NewSweeps(a.core.Sweeper),
		services.NewRules(a.persistence),
		a.validate,
	)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool {
			return a.persistence.HealthCheck(c.Context()) == nil
		},
	}))

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("dealflow API")
	})

	handlers.Register(app)

	return app
}

// Start serves until ctx is cancelled, then shuts the server down.
func (a *API) Start(ctx context.Context, port int) error {
	app := a.App()

	errCh := make(chan error, 1)

	go func() {
		errCh <- app.Listen(":"+strconv.Itoa(port), fiber.ListenConfig{DisableStartupMessage: true})
	}()

	a.logger.InfoContext(ctx, "API listening", "port", port)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		a.logger.InfoContext(ctx, "Shutting down API")

		return app.Shutdown()
	}
}
