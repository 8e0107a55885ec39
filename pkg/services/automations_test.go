package services

import (
	"encoding/json"
	"testing"

	"github.com/dukex/dealflow/pkg/models"
	"github.com/dukex/dealflow/pkg/persistence/persistencetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutomations_Create(t *testing.T) {
	env := newTestEnv(t)
	service := NewAutomations(env.store, env.reg, discardLogger())

	created, err := service.Create(t.Context(), orgID, env.fixture.Qualified.ID, CreateAutomationRequest{
		Name:        "Kickoff",
		TriggerType: models.TriggerOnEnter,
		Actions:     json.RawMessage(`[{"type":"create_task","config":{"title":"Call lead","assignToOwner":true}}]`),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.Active)
	assert.Nil(t, created.DurationMinutes)

	listed, err := service.ListByStage(t.Context(), orgID, env.fixture.Qualified.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
	assert.JSONEq(t, string(created.Actions), string(listed[0].Actions))
}

func TestAutomations_CreateInactiveDuration(t *testing.T) {
	env := newTestEnv(t)
	service := NewAutomations(env.store, env.reg, discardLogger())
	inactive := false

	created, err := service.Create(t.Context(), orgID, env.fixture.Lead.ID, CreateAutomationRequest{
		TriggerType:     models.TriggerOnDuration,
		DurationMinutes: persistencetest.Minutes(90),
		Active:          &inactive,
	})
	require.NoError(t, err)
	assert.False(t, created.Active)
	assert.Equal(t, 90, *created.DurationMinutes)
	assert.JSONEq(t, `[]`, string(created.Actions))

	listed, err := service.ListByStage(t.Context(), orgID, env.fixture.Lead.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestAutomations_CreateRejectsInvalidRequests(t *testing.T) {
	env := newTestEnv(t)
	service := NewAutomations(env.store, env.reg, discardLogger())

	tests := []struct {
		name     string
		stageID  string
		req      CreateAutomationRequest
		expected error
		details  bool
		contains string
	}{
		{
			name:     "unknown trigger",
			req:      CreateAutomationRequest{TriggerType: "on_exit"},
			expected: ErrInvalidTriggerType,
		},
		{
			name:     "duration missing",
			req:      CreateAutomationRequest{TriggerType: models.TriggerOnDuration},
			expected: ErrDurationRequired,
		},
		{
			name:     "duration zero",
			req:      CreateAutomationRequest{TriggerType: models.TriggerOnDuration, DurationMinutes: persistencetest.Minutes(0)},
			expected: ErrDurationRequired,
		},
		{
			name:     "missing stage",
			stageID:  "nope",
			req:      CreateAutomationRequest{TriggerType: models.TriggerOnEnter},
			expected: ErrStageNotFound,
		},
		{
			name: "unknown action type",
			req: CreateAutomationRequest{
				TriggerType: models.TriggerOnEnter,
				Actions:     json.RawMessage(`[{"type":"send_fax"}]`),
			},
			expected: ErrInvalidActions,
			details:  true,
			contains: "send_fax",
		},
		{
			name: "invalid action config",
			req: CreateAutomationRequest{
				TriggerType: models.TriggerOnEnter,
				Actions:     json.RawMessage(`[{"type":"assign_user","config":{"strategy":"round_robin"}}]`),
			},
			expected: ErrInvalidActions,
			details:  true,
		},
		{
			name: "not a list",
			req: CreateAutomationRequest{
				TriggerType: models.TriggerOnEnter,
				Actions:     json.RawMessage(`{"type":"create_task"}`),
			},
			expected: ErrInvalidActions,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stageID := tt.stageID
			if stageID == "" {
				stageID = env.fixture.Qualified.ID
			}

			_, err := service.Create(t.Context(), orgID, stageID, tt.req)
			require.Error(t, err)

			assert.ErrorIs(t, err, tt.expected)
			assert.Contains(t, err.Error(), tt.contains)

			if tt.expected != ErrStageNotFound {
				assert.True(t, IsValidationError(err))
			}

			if tt.details {
				assert.NotEmpty(t, Details(err))
			}
		})
	}

	listed, err := service.ListByStage(t.Context(), orgID, env.fixture.Qualified.ID)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestAutomations_ListByStageOtherOrganization(t *testing.T) {
	env := newTestEnv(t)
	service := NewAutomations(env.store, env.reg, discardLogger())

	_, err := service.ListByStage(t.Context(), "org-2", env.fixture.Qualified.ID)
	require.ErrorIs(t, err, ErrStageNotFound)
}

func TestAutomations_ActionTypes(t *testing.T) {
	env := newTestEnv(t)
	service := NewAutomations(env.store, env.reg, discardLogger())

	types := service.ActionTypes()

	ids := make([]string, 0, len(types))
	for _, info := range types {
		ids = append(ids, info.Type)
		assert.NotEmpty(t, info.Schema)
	}

	assert.Equal(t, []string{"assign_user", "create_task", "send_email", "send_notification", "update_field"}, ids)

	message, ok := service.RegistryHealth()
	assert.True(t, ok)
	assert.Equal(t, "Registry is healthy", message)
}
