package automation_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dukex/dealflow/pkg/automation"
	"github.com/dukex/dealflow/pkg/lock"
	"github.com/dukex/dealflow/pkg/persistence"
	"github.com/dukex/dealflow/pkg/persistence/persistencetest"
	"github.com/dukex/dealflow/pkg/registry"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

const orgID = "org-1"

type env struct {
	store      persistence.Persistence
	clock      *clockwork.FakeClock
	fixture    *persistencetest.Fixture
	registry   *registry.Registry
	executor   *automation.Executor
	dispatcher *automation.Dispatcher
	locker     *lock.MemoryLocker
	sweeper    *automation.Sweeper
}

func newEnv(t *testing.T) *env {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := persistencetest.NewSQLite(t)
	clock := clockwork.NewFakeClockAt(time.Now().UTC().Truncate(time.Second))

	reg := registry.NewDefaultRegistry(logger, store, clock)
	executor := automation.NewExecutor(reg, logger, nil)
	locker := lock.NewMemoryLocker(clock)

	return &env{
		store:      store,
		clock:      clock,
		fixture:    persistencetest.Seed(t, store, orgID),
		registry:   reg,
		executor:   executor,
		dispatcher: automation.NewDispatcher(store, executor, logger),
		locker:     locker,
		sweeper:    automation.NewSweeper(store, executor, locker, clock, logger),
	}
}

func actionsJSON(t *testing.T, actions ...map[string]any) string {
	t.Helper()

	raw, err := json.Marshal(actions)
	require.NoError(t, err)

	return string(raw)
}

func (e *env) tasksFor(t *testing.T, dealID string) int {
	t.Helper()

	tasks, err := e.store.Tasks().ListByDeal(context.Background(), orgID, dealID)
	require.NoError(t, err)

	return len(tasks)
}

func (e *env) notificationsFor(t *testing.T, userID string) int {
	t.Helper()

	notifications, err := e.store.Notifications().ListByUser(context.Background(), orgID, userID)
	require.NoError(t, err)

	return len(notifications)
}
