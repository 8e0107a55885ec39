package services

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dukex/dealflow/pkg/mocks"
	"github.com/dukex/dealflow/pkg/persistence"
	"github.com/dukex/dealflow/pkg/persistence/persistencetest"
	"github.com/dukex/dealflow/pkg/registry"
	"github.com/jonboulle/clockwork"
)

const orgID = "org-1"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testEnv struct {
	store   persistence.Persistence
	fixture *persistencetest.Fixture
	clock   *clockwork.FakeClock
	bus     *mocks.MockEventBus
	reg     *registry.Registry
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := persistencetest.NewSQLite(t)
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC))

	return &testEnv{
		store:   store,
		fixture: persistencetest.Seed(t, store, orgID),
		clock:   clock,
		bus:     &mocks.MockEventBus{},
		reg:     registry.NewDefaultRegistry(discardLogger(), store, clock),
	}
}
