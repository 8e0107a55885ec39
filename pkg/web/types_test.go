package web

import (
	"encoding/json"
	"testing"

	"github.com/dukex/dealflow/pkg/models"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestCreateAutomationRequest_Validation(t *testing.T) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	minutes := func(n int) *int { return &n }
	actions := json.RawMessage(`[]`)

	tests := []struct {
		name    string
		request CreateAutomationRequest
		valid   bool
	}{
		{"on_enter", CreateAutomationRequest{TriggerType: "on_enter", Actions: actions}, true},
		{"on_duration", CreateAutomationRequest{TriggerType: "on_duration", DurationMinutes: minutes(30), Actions: actions}, true},
		{"unknown trigger", CreateAutomationRequest{TriggerType: "on_exit", Actions: actions}, false},
		{"missing trigger", CreateAutomationRequest{Actions: actions}, false},
		{"zero duration", CreateAutomationRequest{TriggerType: "on_duration", DurationMinutes: minutes(0), Actions: actions}, false},
		{"missing actions", CreateAutomationRequest{TriggerType: "on_enter"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.request)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestCreateAutomationRequest_ToService(t *testing.T) {
	active := false
	request := CreateAutomationRequest{
		Name:        "Stale",
		TriggerType: "on_duration",
		Actions:     json.RawMessage(`[{"type":"create_task"}]`),
		Active:      &active,
	}

	converted := request.toService()
	assert.Equal(t, models.TriggerOnDuration, converted.TriggerType)
	assert.Equal(t, "Stale", converted.Name)
	assert.Equal(t, &active, converted.Active)
	assert.JSONEq(t, `[{"type":"create_task"}]`, string(converted.Actions))
}
