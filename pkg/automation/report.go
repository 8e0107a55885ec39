package automation

import (
	"time"

	"github.com/dukex/dealflow/pkg/models"
)

// Outcome statuses of a single action.
const (
	OutcomeDone           = "done"
	OutcomeNoop           = "noop"
	OutcomeNotImplemented = "not_implemented"
	OutcomeFailed         = "failed"
	OutcomeSkipped        = "skipped"
)

// ActionOutcome is the result of one action of an automation run.
type ActionOutcome struct {
	Index  int               `json:"index"`
	Type   models.ActionType `json:"type"`
	Status string            `json:"status"`
	Result map[string]any    `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// Automation run statuses.
const (
	AutomationRan              = "ran"
	AutomationMalformedActions = "malformed_actions"
)

// AutomationReport summarizes one automation run. Skipped holds entries of
// the stored list that could not be decoded; Actions holds executed ones.
type AutomationReport struct {
	AutomationID string             `json:"automation_id"`
	ExecutionID  string             `json:"execution_id"`
	TriggerType  models.TriggerType `json:"trigger_type"`
	Status       string             `json:"status"`
	Actions      []ActionOutcome    `json:"actions"`
	Skipped      []ActionOutcome    `json:"skipped,omitempty"`
}

// Failed returns the number of executed actions that failed.
func (r AutomationReport) Failed() int {
	failed := 0

	for _, outcome := range r.Actions {
		if outcome.Status == OutcomeFailed {
			failed++
		}
	}

	return failed
}

// DispatchStatus tells why a dispatch did or did not run automations.
type DispatchStatus string

const (
	DispatchCompleted    DispatchStatus = "completed"
	DispatchDealNotFound DispatchStatus = "deal_not_found"
	DispatchLoadFailed   DispatchStatus = "load_failed"
)

// DispatchReport is returned by OnDealEnteredStage instead of an error.
type DispatchReport struct {
	DealID         string             `json:"deal_id"`
	StageID        string             `json:"stage_id"`
	OrganizationID string             `json:"organization_id"`
	Status         DispatchStatus     `json:"status"`
	Automations    []AutomationReport `json:"automations"`
}

// SweepReport summarizes a duration sweep.
type SweepReport struct {
	SweepID              string             `json:"sweep_id"`
	StartedAt            time.Time          `json:"started_at"`
	FinishedAt           time.Time          `json:"finished_at"`
	Organizations        int                `json:"organizations"`
	SkippedOrganizations []string           `json:"skipped_organizations,omitempty"`
	DealsScanned         int                `json:"deals_scanned"`
	AlreadyFired         int                `json:"already_fired"`
	EndedVisits          int                `json:"ended_visits"`
	Errors               int                `json:"errors"`
	Automations          []AutomationReport `json:"automations"`
}

// Fired returns the number of automations the sweep executed.
func (r *SweepReport) Fired() int {
	return len(r.Automations)
}

func (r *SweepReport) merge(other *SweepReport) {
	if other == nil {
		return
	}

	r.Organizations += other.Organizations
	r.SkippedOrganizations = append(r.SkippedOrganizations, other.SkippedOrganizations...)
	r.DealsScanned += other.DealsScanned
	r.AlreadyFired += other.AlreadyFired
	r.EndedVisits += other.EndedVisits
	r.Errors += other.Errors
	r.Automations = append(r.Automations, other.Automations...)
}
