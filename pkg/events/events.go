// Package events defines the domain events exchanged between the API and the workers.
package events

import (
	"time"

	"github.com/dukex/dealflow/pkg/models"
	"github.com/google/uuid"
)

type EventType string

// Topic carries every dealflow event.
const Topic = "dealflow.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	DealStageEnteredEvent EventType = "deal.stage_entered"
	SweepCompletedEvent   EventType = "sweep.completed"
)

type BaseEvent struct {
	ID             string         `json:"id"`
	Type           EventType      `json:"type"`
	Timestamp      time.Time      `json:"timestamp"`
	OrganizationID string         `json:"organization_id"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// DealStageEntered is published after a deal's stage transition is stored.
type DealStageEntered struct {
	BaseEvent

	DealID       string    `json:"deal_id"`
	TransitionID string    `json:"transition_id"`
	FromStageID  *string   `json:"from_stage_id,omitempty"`
	StageID      string    `json:"stage_id"`
	EnteredAt    time.Time `json:"entered_at"`
}

func (d DealStageEntered) GetType() EventType {
	return DealStageEnteredEvent
}

func NewDealStageEntered(transition *models.StageTransition) *DealStageEntered {
	return &DealStageEntered{
		BaseEvent:    NewBaseEvent(DealStageEnteredEvent, transition.OrganizationID),
		DealID:       transition.DealID,
		TransitionID: transition.ID,
		FromStageID:  transition.FromStageID,
		StageID:      transition.ToStageID,
		EnteredAt:    transition.EnteredAt,
	}
}

// SweepCompleted is published by the sweeper after each scheduled run.
type SweepCompleted struct {
	BaseEvent

	SweepID       string        `json:"sweep_id"`
	Organizations int           `json:"organizations"`
	DealsScanned  int           `json:"deals_scanned"`
	Fired         int           `json:"fired"`
	Errors        int           `json:"errors"`
	Duration      time.Duration `json:"duration"`
}

func (s SweepCompleted) GetType() EventType {
	return SweepCompletedEvent
}

func NewBaseEvent(eventType EventType, organizationID string) BaseEvent {
	return BaseEvent{
		ID:             uuid.New().String(),
		Type:           eventType,
		Timestamp:      time.Now().UTC(),
		OrganizationID: organizationID,
		Metadata:       make(map[string]any),
	}
}
