package automation_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/dealflow/pkg/automation"
	"github.com/dukex/dealflow/pkg/channels/gochannel"
	"github.com/dukex/dealflow/pkg/eventbus"
	"github.com/dukex/dealflow/pkg/events"
	"github.com/dukex/dealflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_HandleStageEntered(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	deal := e.fixture.NewDeal(t, e.store)

	e.fixture.NewAutomation(t, e.store, e.fixture.Qualified.ID, models.TriggerOnEnter, nil, `[{"type":"create_task"}]`)

	transition, err := e.store.Deals().MoveToStage(ctx, orgID, deal.ID, e.fixture.Qualified.ID, e.clock.Now())
	require.NoError(t, err)

	require.NoError(t, e.dispatcher.HandleStageEntered(ctx, events.NewDealStageEntered(transition)))
	assert.Equal(t, 1, e.tasksFor(t, deal.ID))

	err = e.dispatcher.HandleStageEntered(ctx, &events.SweepCompleted{})
	require.Error(t, err)

	missing := events.NewDealStageEntered(&models.StageTransition{OrganizationID: orgID, DealID: "missing", ToStageID: e.fixture.Qualified.ID})
	require.NoError(t, e.dispatcher.HandleStageEntered(ctx, missing))

	require.NoError(t, e.store.Close(ctx))
	require.ErrorIs(t, e.dispatcher.HandleStageEntered(ctx, events.NewDealStageEntered(transition)), automation.ErrDispatchLoadFailed)
}

func TestDispatcher_ConsumesPublishedEvents(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer bus.Close()

	require.NoError(t, bus.Handle(events.DealStageEnteredEvent, e.dispatcher.HandleStageEntered))
	require.NoError(t, bus.Subscribe(ctx))

	deal := e.fixture.NewDeal(t, e.store)
	e.fixture.NewAutomation(t, e.store, e.fixture.Qualified.ID, models.TriggerOnEnter, nil,
		`[{"type":"send_notification","config":{"message":"New deal in negotiation"}}]`)

	transition, err := e.store.Deals().MoveToStage(ctx, orgID, deal.ID, e.fixture.Qualified.ID, e.clock.Now())
	require.NoError(t, err)
	require.NoError(t, bus.Publish(ctx, deal.ID, events.NewDealStageEntered(transition)))

	assert.Eventually(t, func() bool {
		notifications, err := e.store.Notifications().ListByUser(ctx, orgID, e.fixture.Owner.ID)

		return err == nil && len(notifications) == 1
	}, 5*time.Second, 20*time.Millisecond)
}
