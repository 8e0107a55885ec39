package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dukex/dealflow/pkg/automation"
	"github.com/dukex/dealflow/pkg/events"
	"github.com/dukex/dealflow/pkg/lock"
	"github.com/dukex/dealflow/pkg/mocks"
	"github.com/dukex/dealflow/pkg/models"
	"github.com/dukex/dealflow/pkg/persistence"
	"github.com/dukex/dealflow/pkg/persistence/persistencetest"
	"github.com/dukex/dealflow/pkg/registry"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type sweeperEnv struct {
	store   persistence.Persistence
	fixture *persistencetest.Fixture
	sweeper *automation.Sweeper
	logger  *slog.Logger
}

func newSweeperEnv(t *testing.T) *sweeperEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := clockwork.NewRealClock()
	store := persistencetest.NewSQLite(t)
	fixture := persistencetest.Seed(t, store, "org-1")

	reg := registry.NewDefaultRegistry(logger, store, clock)
	executor := automation.NewExecutor(reg, logger, nil)

	fixture.NewAutomation(t, store, fixture.Lead.ID, models.TriggerOnDuration, persistencetest.Minutes(0),
		`[{"type":"update_field","config":{"field":"tags","value":"stale"}}]`)

	return &sweeperEnv{
		store:   store,
		fixture: fixture,
		sweeper: automation.NewSweeper(store, executor, lock.NewMemoryLocker(clock), clock, logger),
		logger:  logger,
	}
}

func TestRunner_RunOncePublishesSummary(t *testing.T) {
	env := newSweeperEnv(t)
	deal := env.fixture.NewDeal(t, env.store)

	bus := &mocks.MockEventBus{}
	bus.On("Publish", mock.Anything, mock.AnythingOfType("string"), mock.MatchedBy(func(event *events.SweepCompleted) bool {
		return event.Fired == 1 && event.DealsScanned == 1 && event.GetType() == events.SweepCompletedEvent
	})).Return(nil).Once()

	report, err := NewRunner(env.sweeper, bus, env.logger).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Fired())

	stored, err := env.store.Deals().GetByID(context.Background(), "org-1", deal.ID)
	require.NoError(t, err)
	assert.True(t, stored.HasTag("stale"))

	bus.AssertExpectations(t)
}

func TestRunner_PublishFailureKeepsReport(t *testing.T) {
	env := newSweeperEnv(t)
	env.fixture.NewDeal(t, env.store)

	bus := &mocks.MockEventBus{}
	bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))

	report, err := NewRunner(env.sweeper, bus, env.logger).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Fired())
}

func TestRunner_RunSweepsOnSchedule(t *testing.T) {
	env := newSweeperEnv(t)
	deal := env.fixture.NewDeal(t, env.store)

	bus := &mocks.MockEventBus{}
	bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- NewRunner(env.sweeper, bus, env.logger).Run(ctx, "@every 1s")
	}()

	assert.Eventually(t, func() bool {
		stored, err := env.store.Deals().GetByID(context.Background(), "org-1", deal.ID)

		return err == nil && stored.HasTag("stale")
	}, 5*time.Second, 50*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop")
	}
}

func TestRunner_RunRejectsInvalidSchedule(t *testing.T) {
	env := newSweeperEnv(t)

	err := NewRunner(env.sweeper, &mocks.MockEventBus{}, env.logger).Run(context.Background(), "not a cron")
	require.Error(t, err)
}
