package persistencetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dukex/dealflow/pkg/models"
	"github.com/dukex/dealflow/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises a persistence backend. newStore must return an empty,
// migrated store per call.
func Run(t *testing.T, newStore func(t *testing.T) persistence.Persistence) {
	t.Helper()

	t.Run("deal create records initial transition", func(t *testing.T) {
		store := newStore(t)
		fixture := Seed(t, store, "org-1")
		ctx := context.Background()

		deal := fixture.NewDeal(t, store)

		got, err := store.Deals().GetByID(ctx, "org-1", deal.ID)
		require.NoError(t, err)

		assert.Equal(t, "Acme renewal", got.Title)
		assert.Equal(t, models.DealStatusOpen, got.Status)
		assert.Equal(t, fixture.Lead.ID, got.StageID)
		assert.Equal(t, deal.StageTransitionID, got.StageTransitionID)
		assert.True(t, deal.StageEnteredAt.Equal(got.StageEnteredAt))
		require.NotNil(t, got.Owner)
		assert.Equal(t, fixture.Owner.Email, got.Owner.Email)
		require.NotNil(t, got.Contact)
		assert.Equal(t, fixture.Contact.Name, got.Contact.Name)

		transitions, err := store.Deals().Transitions(ctx, "org-1", deal.ID)
		require.NoError(t, err)
		require.Len(t, transitions, 1)
		assert.Nil(t, transitions[0].FromStageID)
		assert.Equal(t, deal.StageTransitionID, transitions[0].ID)
	})

	t.Run("deal lookup is scoped to organization", func(t *testing.T) {
		store := newStore(t)
		fixture := Seed(t, store, "org-1")
		deal := fixture.NewDeal(t, store)

		_, err := store.Deals().GetByID(context.Background(), "org-2", deal.ID)
		require.Error(t, err)
		assert.True(t, persistence.IsDealNotFound(err))
	})

	t.Run("move to stage resets stage entry time", func(t *testing.T) {
		store := newStore(t)
		fixture := Seed(t, store, "org-1")
		ctx := context.Background()

		deal := fixture.NewDeal(t, store, EnteredAt(time.Now().Add(-48*time.Hour)))
		movedAt := time.Now().UTC()

		transition, err := store.Deals().MoveToStage(ctx, "org-1", deal.ID, fixture.Qualified.ID, movedAt)
		require.NoError(t, err)
		require.NotNil(t, transition.FromStageID)
		assert.Equal(t, fixture.Lead.ID, *transition.FromStageID)

		got, err := store.Deals().GetByID(ctx, "org-1", deal.ID)
		require.NoError(t, err)
		assert.Equal(t, fixture.Qualified.ID, got.StageID)
		assert.Equal(t, transition.ID, got.StageTransitionID)
		assert.WithinDuration(t, movedAt, got.StageEnteredAt, time.Millisecond)

		transitions, err := store.Deals().Transitions(ctx, "org-1", deal.ID)
		require.NoError(t, err)
		assert.Len(t, transitions, 2)
	})

	t.Run("transitions keep recording order when entry times go backwards", func(t *testing.T) {
		store := newStore(t)
		fixture := Seed(t, store, "org-1")
		ctx := context.Background()

		deal := fixture.NewDeal(t, store)
		past := time.Now().Add(-365 * 24 * time.Hour)

		first, err := store.Deals().MoveToStage(ctx, "org-1", deal.ID, fixture.Qualified.ID, past)
		require.NoError(t, err)
		second, err := store.Deals().MoveToStage(ctx, "org-1", deal.ID, fixture.Proposal.ID, past.Add(-time.Hour))
		require.NoError(t, err)

		transitions, err := store.Deals().Transitions(ctx, "org-1", deal.ID)
		require.NoError(t, err)
		require.Len(t, transitions, 3)

		assert.Equal(t, deal.StageTransitionID, transitions[0].ID)
		assert.Equal(t, first.ID, transitions[1].ID)
		assert.Equal(t, second.ID, transitions[2].ID)

		for i, transition := range transitions {
			assert.Equal(t, i+1, transition.Sequence)
		}

		assert.Equal(t, 3, second.Sequence)
	})

	t.Run("move to stage rejects invalid targets", func(t *testing.T) {
		store := newStore(t)
		fixture := Seed(t, store, "org-1")
		other := &models.Pipeline{
			OrganizationID: "org-1",
			Name:           "Partners",
			Stages:         []models.PipelineStage{{Name: "Intro"}},
		}
		ctx := context.Background()
		require.NoError(t, store.Pipelines().CreatePipeline(ctx, other))

		deal := fixture.NewDeal(t, store)

		_, err := store.Deals().MoveToStage(ctx, "org-1", deal.ID, fixture.Lead.ID, time.Now())
		require.ErrorIs(t, err, persistence.ErrAlreadyInStage)

		_, err = store.Deals().MoveToStage(ctx, "org-1", deal.ID, other.Stages[0].ID, time.Now())
		require.ErrorIs(t, err, persistence.ErrStageNotInPipeline)

		_, err = store.Deals().MoveToStage(ctx, "org-1", deal.ID, "missing", time.Now())
		require.ErrorIs(t, err, persistence.ErrStageNotFound)

		_, err = store.Deals().MoveToStage(ctx, "org-1", "missing", fixture.Qualified.ID, time.Now())
		require.ErrorIs(t, err, persistence.ErrDealNotFound)
	})

	t.Run("unrelated edits keep stage entry time", func(t *testing.T) {
		store := newStore(t)
		fixture := Seed(t, store, "org-1")
		ctx := context.Background()

		deal := fixture.NewDeal(t, store, EnteredAt(time.Now().Add(-2*time.Hour)))

		require.NoError(t, store.Deals().UpdateData(ctx, "org-1", deal.ID, map[string]any{"source": "web"}))
		require.NoError(t, store.Deals().UpdateOwner(ctx, "org-1", deal.ID, fixture.Creator.ID))
		_, err := store.Deals().AddTag(ctx, "org-1", deal.ID, "hot")
		require.NoError(t, err)

		got, err := store.Deals().GetByID(ctx, "org-1", deal.ID)
		require.NoError(t, err)
		assert.True(t, deal.StageEnteredAt.Equal(got.StageEnteredAt))
		assert.Equal(t, deal.StageTransitionID, got.StageTransitionID)
		assert.Equal(t, fixture.Creator.ID, *got.OwnerID)
		assert.Equal(t, "web", got.Data["source"])
		assert.Equal(t, []string{"hot"}, got.Tags())
	})

	t.Run("add tag is idempotent", func(t *testing.T) {
		store := newStore(t)
		fixture := Seed(t, store, "org-1")
		ctx := context.Background()

		deal := fixture.NewDeal(t, store, WithData(map[string]any{"tags": []any{"existing"}}))

		added, err := store.Deals().AddTag(ctx, "org-1", deal.ID, "needs-review")
		require.NoError(t, err)
		assert.True(t, added)

		added, err = store.Deals().AddTag(ctx, "org-1", deal.ID, "needs-review")
		require.NoError(t, err)
		assert.False(t, added)

		got, err := store.Deals().GetByID(ctx, "org-1", deal.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"existing", "needs-review"}, got.Tags())

		_, err = store.Deals().AddTag(ctx, "org-1", "missing", "x")
		assert.ErrorIs(t, err, persistence.ErrDealNotFound)
	})

	t.Run("concurrent tag appends are all kept", func(t *testing.T) {
		store := newStore(t)
		fixture := Seed(t, store, "org-1")
		deal := fixture.NewDeal(t, store)
		ctx := context.Background()

		tags := []string{"a", "b", "c", "d"}

		var wg sync.WaitGroup
		for _, tag := range tags {
			wg.Add(1)

			go func() {
				defer wg.Done()

				_, err := store.Deals().AddTag(ctx, "org-1", deal.ID, tag)
				assert.NoError(t, err)
			}()
		}

		wg.Wait()

		got, err := store.Deals().GetByID(ctx, "org-1", deal.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t, tags, got.Tags())
	})

	t.Run("list open deals and organizations", func(t *testing.T) {
		store := newStore(t)
		first := Seed(t, store, "org-a")
		second := Seed(t, store, "org-b")
		ctx := context.Background()

		first.NewDeal(t, store)
		first.NewDeal(t, store)
		second.NewDeal(t, store)

		deals, err := store.Deals().ListOpen(ctx, "org-a")
		require.NoError(t, err)
		assert.Len(t, deals, 2)

		organizations, err := store.Deals().OpenOrganizations(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"org-a", "org-b"}, organizations)
	})

	t.Run("stages are ordered and scoped", func(t *testing.T) {
		store := newStore(t)
		fixture := Seed(t, store, "org-1")
		ctx := context.Background()

		stages, err := store.Pipelines().ListStages(ctx, "org-1", fixture.Pipeline.ID)
		require.NoError(t, err)
		require.Len(t, stages, 3)
		assert.Equal(t, "Lead", stages[0].Name)
		assert.Equal(t, []string{"value"}, stages[2].RequiredFields)

		stage, err := store.Pipelines().GetStage(ctx, "org-1", fixture.Qualified.ID)
		require.NoError(t, err)
		assert.Equal(t, 40, stage.Probability)

		_, err = store.Pipelines().GetStage(ctx, "org-2", fixture.Qualified.ID)
		assert.True(t, persistence.IsStageNotFound(err))

		err = store.Pipelines().CreateStage(ctx, &models.PipelineStage{
			OrganizationID: "org-2",
			PipelineID:     fixture.Pipeline.ID,
			Name:           "Foreign",
		})
		assert.ErrorIs(t, err, persistence.ErrPipelineNotFound)
	})

	t.Run("automations filter by trigger and active flag", func(t *testing.T) {
		store := newStore(t)
		fixture := Seed(t, store, "org-1")
		ctx := context.Background()

		onEnter := fixture.NewAutomation(t, store, fixture.Qualified.ID, models.TriggerOnEnter, nil, `[]`)
		onDuration := fixture.NewAutomation(t, store, fixture.Qualified.ID, models.TriggerOnDuration, Minutes(60), `[{"type":"send_email"}]`)

		inactive := &models.StageAutomation{
			OrganizationID: "org-1",
			StageID:        fixture.Qualified.ID,
			TriggerType:    models.TriggerOnEnter,
			Actions:        []byte(`[]`),
			Active:         false,
		}
		require.NoError(t, store.Automations().Create(ctx, inactive))

		enter, err := store.Automations().ListByStage(ctx, fixture.Qualified.ID, models.TriggerOnEnter, true)
		require.NoError(t, err)
		require.Len(t, enter, 1)
		assert.Equal(t, onEnter.ID, enter[0].ID)

		duration, err := store.Automations().ListByStage(ctx, fixture.Qualified.ID, models.TriggerOnDuration, true)
		require.NoError(t, err)
		require.Len(t, duration, 1)
		assert.Equal(t, onDuration.ID, duration[0].ID)
		require.NotNil(t, duration[0].DurationMinutes)
		assert.Equal(t, 60, *duration[0].DurationMinutes)
		assert.JSONEq(t, `[{"type":"send_email"}]`, string(duration[0].Actions))

		all, err := store.Automations().ListByStage(ctx, fixture.Qualified.ID, "", false)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("firing claim succeeds once per transition", func(t *testing.T) {
		store := newStore(t)
		fixture := Seed(t, store, "org-1")
		ctx := context.Background()

		deal := fixture.NewDeal(t, store)
		automation := fixture.NewAutomation(t, store, fixture.Lead.ID, models.TriggerOnDuration, Minutes(1), `[]`)

		firing := func(transitionID string) *models.AutomationFiring {
			return &models.AutomationFiring{
				AutomationID:      automation.ID,
				StageTransitionID: transitionID,
				DealID:            deal.ID,
			}
		}

		claimed, err := store.Firings().Claim(ctx, firing(deal.StageTransitionID))
		require.NoError(t, err)
		assert.True(t, claimed)

		claimed, err = store.Firings().Claim(ctx, firing(deal.StageTransitionID))
		require.NoError(t, err)
		assert.False(t, claimed)

		moved, err := store.Deals().MoveToStage(ctx, "org-1", deal.ID, fixture.Qualified.ID, time.Now())
		require.NoError(t, err)

		claimed, err = store.Firings().Claim(ctx, firing(moved.ID))
		require.NoError(t, err)
		assert.True(t, claimed)
	})

	t.Run("firing claim rejects ended stage visits", func(t *testing.T) {
		store := newStore(t)
		fixture := Seed(t, store, "org-1")
		ctx := context.Background()

		automation := fixture.NewAutomation(t, store, fixture.Lead.ID, models.TriggerOnDuration, Minutes(1), `[]`)
		moving := fixture.NewDeal(t, store)
		won := fixture.NewDeal(t, store, func(d *models.Deal) { d.Status = models.DealStatusWon })

		listedTransition := moving.StageTransitionID

		_, err := store.Deals().MoveToStage(ctx, "org-1", moving.ID, fixture.Qualified.ID, time.Now())
		require.NoError(t, err)

		claimed, err := store.Firings().Claim(ctx, &models.AutomationFiring{
			AutomationID:      automation.ID,
			StageTransitionID: listedTransition,
			DealID:            moving.ID,
		})
		require.ErrorIs(t, err, persistence.ErrStageVisitEnded)
		assert.False(t, claimed)

		claimed, err = store.Firings().Claim(ctx, &models.AutomationFiring{
			AutomationID:      automation.ID,
			StageTransitionID: won.StageTransitionID,
			DealID:            won.ID,
		})
		require.ErrorIs(t, err, persistence.ErrStageVisitEnded)
		assert.False(t, claimed)

		_, err = store.Firings().Claim(ctx, &models.AutomationFiring{
			AutomationID:      automation.ID,
			StageTransitionID: "missing",
			DealID:            "missing",
		})
		require.ErrorIs(t, err, persistence.ErrDealNotFound)
	})

	t.Run("assignment cursor rotates per role", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		for want := range int64(3) {
			got, err := store.Cursors().Next(ctx, "org-1", "sdr")
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}

		got, err := store.Cursors().Next(ctx, "org-1", "closer")
		require.NoError(t, err)
		assert.Equal(t, int64(0), got)

		got, err = store.Cursors().Next(ctx, "org-2", "sdr")
		require.NoError(t, err)
		assert.Equal(t, int64(0), got)
	})

	t.Run("users by role are ordered by id", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		for _, name := range []string{"Ana", "Bea", "Cid"} {
			require.NoError(t, store.Users().Create(ctx, &models.User{
				OrganizationID: "org-1", Name: name, Email: name + "@example.com", Role: "sdr",
			}))
		}

		users, err := store.Users().ListByRole(ctx, "org-1", "sdr")
		require.NoError(t, err)
		require.Len(t, users, 3)
		assert.Less(t, users[0].ID, users[1].ID)
		assert.Less(t, users[1].ID, users[2].ID)

		none, err := store.Users().ListByRole(ctx, "org-1", "nobody")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("tasks and notifications", func(t *testing.T) {
		store := newStore(t)
		fixture := Seed(t, store, "org-1")
		deal := fixture.NewDeal(t, store)
		ctx := context.Background()

		due := time.Now().Add(24 * time.Hour)
		task := &models.Task{
			OrganizationID: "org-1",
			Title:          "Call back",
			Priority:       models.TaskPriorityHigh,
			DueDate:        &due,
			CreatedByID:    fixture.Creator.ID,
			AssignedToID:   fixture.Owner.ID,
			DealID:         &deal.ID,
			ContactID:      deal.ContactID,
		}
		require.NoError(t, store.Tasks().Create(ctx, task))

		tasks, err := store.Tasks().ListByDeal(ctx, "org-1", deal.ID)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, models.TaskStatusTodo, tasks[0].Status)
		require.NotNil(t, tasks[0].DueDate)
		assert.WithinDuration(t, due, *tasks[0].DueDate, time.Millisecond)

		require.NoError(t, store.Notifications().Create(ctx, &models.Notification{
			OrganizationID: "org-1",
			UserID:         fixture.Owner.ID,
			Title:          "Deal update",
			Message:        "moved",
		}))

		notifications, err := store.Notifications().ListByUser(ctx, "org-1", fixture.Owner.ID)
		require.NoError(t, err)
		require.Len(t, notifications, 1)
		assert.Equal(t, models.NotificationInfo, notifications[0].Type)
		assert.False(t, notifications[0].Read)
	})

	t.Run("active automation rules", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.AutomationRules().Create(ctx, &models.AutomationRule{
			OrganizationID: "org-1", Name: "won deals", Trigger: "deal.won", Actions: []byte(`[]`), Active: true,
		}))
		require.NoError(t, store.AutomationRules().Create(ctx, &models.AutomationRule{
			OrganizationID: "org-1", Name: "paused", Trigger: "deal.lost", Active: false,
		}))

		rules, err := store.AutomationRules().ListActive(ctx, "org-1")
		require.NoError(t, err)
		require.Len(t, rules, 1)
		assert.Equal(t, "won deals", rules[0].Name)
	})

	t.Run("health check", func(t *testing.T) {
		store := newStore(t)
		assert.NoError(t, store.HealthCheck(context.Background()))
	})
}
