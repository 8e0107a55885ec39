package models

import "time"

// Pipeline is an ordered sequence of stages.
type Pipeline struct {
	ID             string          `json:"id"`
	OrganizationID string          `json:"organization_id"`
	Name           string          `json:"name"   validate:"required"`
	Stages         []PipelineStage `json:"stages"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// PipelineStage is one ordered step of a pipeline.
type PipelineStage struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	PipelineID     string    `json:"pipeline_id"     validate:"required"`
	Name           string    `json:"name"            validate:"required"`
	DisplayOrder   int       `json:"display_order"   validate:"min=0"`
	Color          string    `json:"color,omitempty"`
	Probability    int       `json:"probability"     validate:"min=0,max=100"`
	RequiredFields []string  `json:"required_fields,omitempty"`
	SubStatuses    []string  `json:"sub_statuses,omitempty"`
	FailureSignals []string  `json:"failure_signals,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// StageTransition records a deal entering a stage. It is written exactly once
// per transition and is the source of the deal's stage-entry time. Sequence
// numbers a deal's transitions from 1 in the order they were recorded.
type StageTransition struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	DealID         string    `json:"deal_id"`
	FromStageID    *string   `json:"from_stage_id,omitempty"`
	ToStageID      string    `json:"to_stage_id"`
	Sequence       int       `json:"sequence"`
	EnteredAt      time.Time `json:"entered_at"`
}
