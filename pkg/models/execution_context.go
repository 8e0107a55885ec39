package models

// ExecutionContext carries everything an action needs about the automation
// run it belongs to. Deal is shared across the actions of one run, so an
// action observes mutations made by the actions before it.
type ExecutionContext struct {
	ID             string      `json:"id"`
	OrganizationID string      `json:"organization_id"`
	AutomationID   string      `json:"automation_id"`
	TriggerType    TriggerType `json:"trigger_type"`
	Deal           *Deal       `json:"deal"`
}
