package models

import (
	"encoding/json"
	"time"
)

// TriggerType selects when a stage automation fires.
type TriggerType string

const (
	TriggerOnEnter    TriggerType = "on_enter"
	TriggerOnDuration TriggerType = "on_duration"
)

// ActionType names one of the closed set of automation actions.
type ActionType string

const (
	ActionCreateTask       ActionType = "create_task"
	ActionSendNotification ActionType = "send_notification"
	ActionAssignUser       ActionType = "assign_user"
	ActionUpdateField      ActionType = "update_field"
	ActionSendEmail        ActionType = "send_email"
)

// ActionSpec is one serialized entry of an automation's action list.
type ActionSpec struct {
	Type   ActionType      `json:"type"`
	Config json.RawMessage `json:"config,omitempty"`
}

// StageAutomation is a rule bound to a pipeline stage. Actions holds the raw
// serialized list; it is decoded by the action registry, not by persistence.
type StageAutomation struct {
	ID              string          `json:"id"`
	OrganizationID  string          `json:"organization_id"`
	StageID         string          `json:"stage_id"`
	Name            string          `json:"name,omitempty"`
	TriggerType     TriggerType     `json:"trigger_type"`
	DurationMinutes *int            `json:"duration_minutes,omitempty"`
	Actions         json.RawMessage `json:"actions"`
	Active          bool            `json:"active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Threshold returns the configured duration and whether one is set.
func (a *StageAutomation) Threshold() (time.Duration, bool) {
	if a.DurationMinutes == nil || *a.DurationMinutes < 0 {
		return 0, false
	}

	return time.Duration(*a.DurationMinutes) * time.Minute, true
}

// AutomationRule is an organization-wide rule. Rules are stored and listed
// but no engine interprets them yet.
type AutomationRule struct {
	ID             string          `json:"id"`
	OrganizationID string          `json:"organization_id"`
	Name           string          `json:"name"`
	Trigger        string          `json:"trigger"`
	Actions        json.RawMessage `json:"actions"`
	Active         bool            `json:"active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// AutomationFiring marks a duration automation as fired for one stage visit.
type AutomationFiring struct {
	AutomationID      string    `json:"automation_id"`
	StageTransitionID string    `json:"stage_transition_id"`
	DealID            string    `json:"deal_id"`
	FiredAt           time.Time `json:"fired_at"`
}

// ActionTypes returns every supported action type.
func ActionTypes() []ActionType {
	return []ActionType{
		ActionCreateTask,
		ActionSendNotification,
		ActionAssignUser,
		ActionUpdateField,
		ActionSendEmail,
	}
}
