// Package models defines the CRM entities the automation engine reads and mutates.
package models

import (
	"slices"
	"time"
)

// DealStatus represents the lifecycle state of a deal. Won and lost are terminal.
type DealStatus string

const (
	DealStatusOpen DealStatus = "open"
	DealStatusWon  DealStatus = "won"
	DealStatusLost DealStatus = "lost"
)

// DealTagsKey is the key of the tag list inside Deal.Data.
const DealTagsKey = "tags"

// Deal is a sales opportunity moving through a pipeline.
type Deal struct {
	ID                string         `json:"id"`
	OrganizationID    string         `json:"organization_id"`
	Title             string         `json:"title"               validate:"required"`
	Value             float64        `json:"value"               validate:"min=0"`
	Currency          string         `json:"currency"            validate:"required,len=3"`
	Status            DealStatus     `json:"status"              validate:"required,oneof=open won lost"`
	Probability       int            `json:"probability"         validate:"min=0,max=100"`
	OwnerID           *string        `json:"owner_id,omitempty"`
	CreatedByID       string         `json:"created_by_id"       validate:"required"`
	ContactID         *string        `json:"contact_id,omitempty"`
	PipelineID        string         `json:"pipeline_id"         validate:"required"`
	StageID           string         `json:"stage_id"            validate:"required"`
	StageEnteredAt    time.Time      `json:"stage_entered_at"`
	StageTransitionID string         `json:"stage_transition_id"`
	Data              map[string]any `json:"data,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`

	// Expanded on read.
	Owner   *User    `json:"owner,omitempty"`
	Contact *Contact `json:"contact,omitempty"`
}

// HasOwner reports whether the deal is assigned to a user.
func (d *Deal) HasOwner() bool {
	return d.OwnerID != nil && *d.OwnerID != ""
}

// Tags returns the deal's tag list. Non-string entries are ignored.
func (d *Deal) Tags() []string {
	if d.Data == nil {
		return []string{}
	}

	return TagsFromData(d.Data)
}

// HasTag reports whether tag is already on the deal.
func (d *Deal) HasTag(tag string) bool {
	return slices.Contains(d.Tags(), tag)
}

// SetTags replaces the tag list in the deal's data blob.
func (d *Deal) SetTags(tags []string) {
	if d.Data == nil {
		d.Data = map[string]any{}
	}

	d.Data[DealTagsKey] = tags
}

// TagsFromData extracts the tag list from a decoded data blob. It accepts both
// []string and the []any produced by encoding/json.
func TagsFromData(data map[string]any) []string {
	switch raw := data[DealTagsKey].(type) {
	case []string:
		return slices.Clone(raw)
	case []any:
		tags := make([]string, 0, len(raw))

		for _, v := range raw {
			if s, ok := v.(string); ok {
				tags = append(tags, s)
			}
		}

		return tags
	default:
		return []string{}
	}
}

// AppendTag adds tag to the data blob unless it is present and reports
// whether the blob changed.
func AppendTag(data map[string]any, tag string) bool {
	tags := TagsFromData(data)
	if slices.Contains(tags, tag) {
		return false
	}

	data[DealTagsKey] = append(tags, tag)

	return true
}

// Contact is the person a deal is negotiated with.
type Contact struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Name           string    `json:"name"  validate:"required"`
	Email          string    `json:"email" validate:"omitempty,email"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
