package services

import (
	"testing"
	"time"

	"github.com/dukex/dealflow/pkg/automation"
	"github.com/dukex/dealflow/pkg/lock"
	"github.com/dukex/dealflow/pkg/models"
	"github.com/dukex/dealflow/pkg/persistence/persistencetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweeps_Run(t *testing.T) {
	env := newTestEnv(t)
	executor := automation.NewExecutor(env.reg, discardLogger(), nil)
	sweeper := automation.NewSweeper(env.store, executor, lock.NewMemoryLocker(env.clock), env.clock, discardLogger())
	service := NewSweeps(sweeper)

	env.fixture.NewAutomation(t, env.store, env.fixture.Lead.ID, models.TriggerOnDuration,
		persistencetest.Minutes(30), `[{"type":"create_task"}]`)
	deal := env.fixture.NewDeal(t, env.store, persistencetest.EnteredAt(env.clock.Now().Add(-time.Hour)))

	report, err := service.Run(t.Context(), orgID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Organizations)
	assert.Equal(t, 1, report.Fired())

	tasks, err := env.store.Tasks().ListByDeal(t.Context(), orgID, deal.ID)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	_, err = service.Run(t.Context(), "")
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestRules_ListActive(t *testing.T) {
	env := newTestEnv(t)
	service := NewRules(env.store)

	require.NoError(t, env.store.AutomationRules().Create(t.Context(), &models.AutomationRule{
		OrganizationID: orgID,
		Name:           "Escalate stale deals",
		Trigger:        "deal.stale",
		Active:         true,
	}))
	require.NoError(t, env.store.AutomationRules().Create(t.Context(), &models.AutomationRule{
		OrganizationID: orgID,
		Name:           "Retired",
		Trigger:        "deal.created",
		Active:         false,
	}))

	rules, err := service.ListActive(t.Context(), orgID)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "Escalate stale deals", rules[0].Name)

	rules, err = service.ListActive(t.Context(), "org-2")
	require.NoError(t, err)
	assert.Empty(t, rules)
}
