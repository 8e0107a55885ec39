package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dukex/dealflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDealStageEntered_GetType(t *testing.T) {
	event := DealStageEntered{}
	assert.Equal(t, DealStageEnteredEvent, event.GetType())
	assert.Equal(t, EventType("deal.stage_entered"), event.GetType())
}

func TestNewDealStageEntered(t *testing.T) {
	from := "stage-lead"
	enteredAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	event := NewDealStageEntered(&models.StageTransition{
		ID:             "transition-1",
		OrganizationID: "org-1",
		DealID:         "deal-1",
		FromStageID:    &from,
		ToStageID:      "stage-qualified",
		EnteredAt:      enteredAt,
	})

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, DealStageEnteredEvent, event.Type)
	assert.Equal(t, "org-1", event.OrganizationID)
	assert.Equal(t, "deal-1", event.DealID)
	assert.Equal(t, "transition-1", event.TransitionID)
	assert.Equal(t, "stage-qualified", event.StageID)
	assert.Equal(t, &from, event.FromStageID)
	assert.Equal(t, enteredAt, event.EnteredAt)
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, time.Minute)
}

func TestDealStageEntered_JSON(t *testing.T) {
	original := NewDealStageEntered(&models.StageTransition{
		ID:             "transition-1",
		OrganizationID: "org-1",
		DealID:         "deal-1",
		ToStageID:      "stage-qualified",
		EnteredAt:      time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	})

	payload, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"type":"deal.stage_entered"`)
	assert.Contains(t, string(payload), `"organization_id":"org-1"`)
	assert.NotContains(t, string(payload), `"from_stage_id"`)

	var decoded DealStageEntered

	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, original.DealID, decoded.DealID)
	assert.Equal(t, original.StageID, decoded.StageID)
	assert.Nil(t, decoded.FromStageID)
	assert.True(t, original.EnteredAt.Equal(decoded.EnteredAt))
}
