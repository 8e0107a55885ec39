// Package web provides HTTP request and response types for the dealflow API.
package web

import (
	"encoding/json"

	"github.com/dukex/dealflow/pkg/models"
	"github.com/dukex/dealflow/pkg/services"
)

// MoveDealRequest represents the request body for moving a deal to another stage.
type MoveDealRequest struct {
	StageID string `json:"stage_id" validate:"required"`
}

// CreateAutomationRequest represents the request body for creating a stage automation.
// DurationMinutes is required for on_duration automations and ignored otherwise.
type CreateAutomationRequest struct {
	Name            string          `json:"name"                       validate:"omitempty,max=200"`
	TriggerType     string          `json:"trigger_type"               validate:"required,oneof=on_enter on_duration"`
	DurationMinutes *int            `json:"duration_minutes,omitempty" validate:"omitempty,min=1"`
	Actions         json.RawMessage `json:"actions"                    validate:"required"`
	Active          *bool           `json:"active,omitempty"`
}

func (r CreateAutomationRequest) toService() services.CreateAutomationRequest {
	return services.CreateAutomationRequest{
		Name:            r.Name,
		TriggerType:     models.TriggerType(r.TriggerType),
		DurationMinutes: r.DurationMinutes,
		Actions:         r.Actions,
		Active:          r.Active,
	}
}

// AutomationsResponse wraps a stage's automations.
type AutomationsResponse struct {
	Automations []*models.StageAutomation `json:"automations"`
}

// TransitionsResponse wraps a deal's stage history.
type TransitionsResponse struct {
	Transitions []*models.StageTransition `json:"transitions"`
}

// RulesResponse wraps an organization's active automation rules.
type RulesResponse struct {
	Rules []*models.AutomationRule `json:"rules"`
}

// ActionTypesResponse lists the registered action types.
type ActionTypesResponse struct {
	Actions []services.ActionTypeInfo `json:"actions"`
}
