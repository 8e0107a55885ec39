package automation_test

import (
	"context"
	"testing"
	"time"

	"github.com/dukex/dealflow/pkg/automation"
	"github.com/dukex/dealflow/pkg/models"
	"github.com/dukex/dealflow/pkg/persistence/persistencetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_NoAutomationsNoSideEffects(t *testing.T) {
	e := newEnv(t)
	deal := e.fixture.NewDeal(t, e.store)

	report := e.dispatcher.OnDealEnteredStage(context.Background(), deal.ID, e.fixture.Qualified.ID, orgID)

	assert.Equal(t, automation.DispatchCompleted, report.Status)
	assert.Empty(t, report.Automations)
	assert.Zero(t, e.tasksFor(t, deal.ID))
	assert.Zero(t, e.notificationsFor(t, e.fixture.Owner.ID))
}

func TestDispatcher_TaskAndNotificationScenario(t *testing.T) {
	e := newEnv(t)
	deal := e.fixture.NewDeal(t, e.store)

	e.fixture.NewAutomation(t, e.store, e.fixture.Qualified.ID, models.TriggerOnEnter, nil, actionsJSON(t,
		map[string]any{"type": "create_task", "config": map[string]any{"title": "Call lead", "assignToOwner": true}},
		map[string]any{"type": "send_notification", "config": map[string]any{"message": "New deal in negotiation"}},
	))

	report := e.dispatcher.OnDealEnteredStage(context.Background(), deal.ID, e.fixture.Qualified.ID, orgID)
	require.Equal(t, automation.DispatchCompleted, report.Status)
	require.Len(t, report.Automations, 1)
	assert.Zero(t, report.Automations[0].Failed())

	tasks, err := e.store.Tasks().ListByDeal(context.Background(), orgID, deal.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Call lead", tasks[0].Title)
	assert.Equal(t, e.fixture.Owner.ID, tasks[0].AssignedToID)
	assert.Equal(t, e.fixture.Creator.ID, tasks[0].CreatedByID)
	require.NotNil(t, tasks[0].ContactID)
	assert.Equal(t, e.fixture.Contact.ID, *tasks[0].ContactID)

	notifications, err := e.store.Notifications().ListByUser(context.Background(), orgID, e.fixture.Owner.ID)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "New deal in negotiation", notifications[0].Message)
	assert.Equal(t, models.NotificationInfo, notifications[0].Type)
}

func TestDispatcher_CreateTaskAssignee(t *testing.T) {
	tests := []struct {
		name          string
		assignToOwner bool
		owned         bool
		expected      func(f *persistencetest.Fixture) string
	}{
		{"owner", true, true, func(f *persistencetest.Fixture) string { return f.Owner.ID }},
		{"creator", false, true, func(f *persistencetest.Fixture) string { return f.Creator.ID }},
		{"creator when unowned", true, false, func(f *persistencetest.Fixture) string { return f.Creator.ID }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)

			opts := []persistencetest.DealOption{}
			if !tt.owned {
				opts = append(opts, persistencetest.WithoutOwner())
			}

			deal := e.fixture.NewDeal(t, e.store, opts...)
			e.fixture.NewAutomation(t, e.store, e.fixture.Qualified.ID, models.TriggerOnEnter, nil, actionsJSON(t,
				map[string]any{"type": "create_task", "config": map[string]any{"assignToOwner": tt.assignToOwner}},
			))

			e.dispatcher.OnDealEnteredStage(context.Background(), deal.ID, e.fixture.Qualified.ID, orgID)

			tasks, err := e.store.Tasks().ListByDeal(context.Background(), orgID, deal.ID)
			require.NoError(t, err)
			require.Len(t, tasks, 1)
			assert.Equal(t, tt.expected(e.fixture), tasks[0].AssignedToID)
		})
	}
}

func TestDispatcher_CreateTaskDefaultDueDate(t *testing.T) {
	e := newEnv(t)
	deal := e.fixture.NewDeal(t, e.store)

	e.fixture.NewAutomation(t, e.store, e.fixture.Qualified.ID, models.TriggerOnEnter, nil,
		`[{"type":"create_task"}]`)

	invokedAt := e.clock.Now()
	e.dispatcher.OnDealEnteredStage(context.Background(), deal.ID, e.fixture.Qualified.ID, orgID)

	tasks, err := e.store.Tasks().ListByDeal(context.Background(), orgID, deal.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.NotNil(t, tasks[0].DueDate)
	assert.WithinDuration(t, invokedAt.Add(24*time.Hour), *tasks[0].DueDate, time.Second)
	assert.Equal(t, "Follow up required", tasks[0].Title)
	assert.Equal(t, models.TaskPriorityMedium, tasks[0].Priority)
}

func TestDispatcher_NotificationWithoutOwner(t *testing.T) {
	e := newEnv(t)
	deal := e.fixture.NewDeal(t, e.store, persistencetest.WithoutOwner())

	e.fixture.NewAutomation(t, e.store, e.fixture.Qualified.ID, models.TriggerOnEnter, nil,
		`[{"type":"send_notification","config":{"message":"hello"}}]`)

	report := e.dispatcher.OnDealEnteredStage(context.Background(), deal.ID, e.fixture.Qualified.ID, orgID)
	require.Len(t, report.Automations, 1)
	require.Len(t, report.Automations[0].Actions, 1)
	assert.Equal(t, automation.OutcomeNoop, report.Automations[0].Actions[0].Status)

	assert.Zero(t, e.notificationsFor(t, e.fixture.Owner.ID))
	assert.Zero(t, e.notificationsFor(t, e.fixture.Creator.ID))
}

func TestDispatcher_UnknownActionTypeIsSkipped(t *testing.T) {
	e := newEnv(t)
	deal := e.fixture.NewDeal(t, e.store)

	e.fixture.NewAutomation(t, e.store, e.fixture.Qualified.ID, models.TriggerOnEnter, nil,
		`[{"type":"send_fax"},{"type":"create_task","config":{"title":"after fax"}},{"type":"create_task","config":{"priority":"soon"}}]`)

	report := e.dispatcher.OnDealEnteredStage(context.Background(), deal.ID, e.fixture.Qualified.ID, orgID)
	require.Len(t, report.Automations, 1)

	run := report.Automations[0]
	assert.Equal(t, automation.AutomationRan, run.Status)
	require.Len(t, run.Actions, 1)
	assert.Equal(t, 1, run.Actions[0].Index)
	require.Len(t, run.Skipped, 2)
	assert.Equal(t, 0, run.Skipped[0].Index)
	assert.Equal(t, 2, run.Skipped[1].Index)

	assert.Equal(t, 1, e.tasksFor(t, deal.ID))
}

func TestDispatcher_MalformedListSkipsOnlyThatAutomation(t *testing.T) {
	e := newEnv(t)
	deal := e.fixture.NewDeal(t, e.store)

	e.fixture.NewAutomation(t, e.store, e.fixture.Qualified.ID, models.TriggerOnEnter, nil, `{"type":"create_task"}`)
	e.fixture.NewAutomation(t, e.store, e.fixture.Qualified.ID, models.TriggerOnEnter, nil, `[{"type":"create_task"}]`)

	report := e.dispatcher.OnDealEnteredStage(context.Background(), deal.ID, e.fixture.Qualified.ID, orgID)
	require.Len(t, report.Automations, 2)
	assert.Equal(t, automation.AutomationMalformedActions, report.Automations[0].Status)
	assert.Equal(t, automation.AutomationRan, report.Automations[1].Status)

	assert.Equal(t, 1, e.tasksFor(t, deal.ID))
}

func TestDispatcher_OnlyActiveOnEnterAutomations(t *testing.T) {
	e := newEnv(t)
	deal := e.fixture.NewDeal(t, e.store)

	e.fixture.NewAutomation(t, e.store, e.fixture.Qualified.ID, models.TriggerOnDuration, persistencetest.Minutes(0),
		`[{"type":"create_task"}]`)
	require.NoError(t, e.store.Automations().Create(context.Background(), &models.StageAutomation{
		OrganizationID: orgID,
		StageID:        e.fixture.Qualified.ID,
		TriggerType:    models.TriggerOnEnter,
		Actions:        []byte(`[{"type":"create_task"}]`),
		Active:         false,
	}))

	report := e.dispatcher.OnDealEnteredStage(context.Background(), deal.ID, e.fixture.Qualified.ID, orgID)
	assert.Empty(t, report.Automations)
	assert.Zero(t, e.tasksFor(t, deal.ID))
}

func TestDispatcher_LaterActionsSeeEarlierMutations(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	closer := &models.User{OrganizationID: orgID, Name: "Cleo", Email: "cleo@example.com", Role: "closer"}
	require.NoError(t, e.store.Users().Create(ctx, closer))

	deal := e.fixture.NewDeal(t, e.store)

	e.fixture.NewAutomation(t, e.store, e.fixture.Qualified.ID, models.TriggerOnEnter, nil, actionsJSON(t,
		map[string]any{"type": "assign_user", "config": map[string]any{"strategy": "round_robin", "role": "closer"}},
		map[string]any{"type": "update_field", "config": map[string]any{"field": "tags", "value": "handed-off"}},
		map[string]any{"type": "send_notification", "config": map[string]any{"message": "yours now"}},
	))

	report := e.dispatcher.OnDealEnteredStage(ctx, deal.ID, e.fixture.Qualified.ID, orgID)
	require.Len(t, report.Automations, 1)
	assert.Zero(t, report.Automations[0].Failed())

	assert.Equal(t, 1, e.notificationsFor(t, closer.ID))
	assert.Zero(t, e.notificationsFor(t, e.fixture.Owner.ID))

	got, err := e.store.Deals().GetByID(ctx, orgID, deal.ID)
	require.NoError(t, err)
	assert.Equal(t, closer.ID, *got.OwnerID)
	assert.Equal(t, []string{"handed-off"}, got.Tags())
}

func TestDispatcher_TagUpdateIsIdempotent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	deal := e.fixture.NewDeal(t, e.store)

	tag := `[{"type":"update_field","config":{"field":"tags","value":"vip"}}]`
	e.fixture.NewAutomation(t, e.store, e.fixture.Qualified.ID, models.TriggerOnEnter, nil, tag)
	e.fixture.NewAutomation(t, e.store, e.fixture.Qualified.ID, models.TriggerOnEnter, nil, tag)

	e.dispatcher.OnDealEnteredStage(ctx, deal.ID, e.fixture.Qualified.ID, orgID)

	got, err := e.store.Deals().GetByID(ctx, orgID, deal.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"vip"}, got.Tags())
}

func TestDispatcher_RoundRobinRotatesInIDOrder(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	sdrs := make([]*models.User, 0, 3)
	for _, name := range []string{"Ana", "Bea", "Cid"} {
		user := &models.User{OrganizationID: orgID, Name: name, Email: name + "@example.com", Role: "sdr"}
		require.NoError(t, e.store.Users().Create(ctx, user))

		sdrs = append(sdrs, user)
	}

	ordered, err := e.store.Users().ListByRole(ctx, orgID, "sdr")
	require.NoError(t, err)
	require.Len(t, ordered, 3)

	e.fixture.NewAutomation(t, e.store, e.fixture.Qualified.ID, models.TriggerOnEnter, nil,
		`[{"type":"assign_user","config":{"role":"sdr"}}]`)

	owners := make([]string, 0, 4)

	for range 4 {
		deal := e.fixture.NewDeal(t, e.store)
		e.dispatcher.OnDealEnteredStage(ctx, deal.ID, e.fixture.Qualified.ID, orgID)

		got, err := e.store.Deals().GetByID(ctx, orgID, deal.ID)
		require.NoError(t, err)

		owners = append(owners, *got.OwnerID)
	}

	assert.Equal(t, []string{ordered[0].ID, ordered[1].ID, ordered[2].ID, ordered[0].ID}, owners)
}

func TestDispatcher_AssignUserWithoutMatchIsNoop(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	deal := e.fixture.NewDeal(t, e.store)

	e.fixture.NewAutomation(t, e.store, e.fixture.Qualified.ID, models.TriggerOnEnter, nil,
		`[{"type":"assign_user","config":{"role":"nobody"}}]`)

	report := e.dispatcher.OnDealEnteredStage(ctx, deal.ID, e.fixture.Qualified.ID, orgID)
	require.Len(t, report.Automations[0].Actions, 1)
	assert.Equal(t, automation.OutcomeNoop, report.Automations[0].Actions[0].Status)

	got, err := e.store.Deals().GetByID(ctx, orgID, deal.ID)
	require.NoError(t, err)
	assert.Equal(t, e.fixture.Owner.ID, *got.OwnerID)
}

func TestDispatcher_DealNotFound(t *testing.T) {
	e := newEnv(t)

	report := e.dispatcher.OnDealEnteredStage(context.Background(), "missing", e.fixture.Qualified.ID, orgID)
	assert.Equal(t, automation.DispatchDealNotFound, report.Status)

	deal := e.fixture.NewDeal(t, e.store)
	report = e.dispatcher.OnDealEnteredStage(context.Background(), deal.ID, e.fixture.Qualified.ID, "other-org")
	assert.Equal(t, automation.DispatchDealNotFound, report.Status)
}

func TestDispatcher_LoadFailure(t *testing.T) {
	e := newEnv(t)
	deal := e.fixture.NewDeal(t, e.store)

	require.NoError(t, e.store.Close(context.Background()))

	report := e.dispatcher.OnDealEnteredStage(context.Background(), deal.ID, e.fixture.Qualified.ID, orgID)
	assert.Equal(t, automation.DispatchLoadFailed, report.Status)
}

func TestDispatcher_SendEmailIsNotImplemented(t *testing.T) {
	e := newEnv(t)
	deal := e.fixture.NewDeal(t, e.store)

	e.fixture.NewAutomation(t, e.store, e.fixture.Qualified.ID, models.TriggerOnEnter, nil,
		`[{"type":"send_email","config":{"subject":"hi"}},{"type":"create_task"}]`)

	report := e.dispatcher.OnDealEnteredStage(context.Background(), deal.ID, e.fixture.Qualified.ID, orgID)
	require.Len(t, report.Automations[0].Actions, 2)
	assert.Equal(t, automation.OutcomeNotImplemented, report.Automations[0].Actions[0].Status)
	assert.Equal(t, automation.OutcomeDone, report.Automations[0].Actions[1].Status)
}
