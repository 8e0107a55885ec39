package services

import (
	"context"
	"fmt"

	"github.com/dukex/dealflow/pkg/automation"
)

type Sweeps struct {
	sweeper *automation.Sweeper
}

// NewSweeps creates a service that runs duration sweeps on demand.
func NewSweeps(sweeper *automation.Sweeper) *Sweeps {
	return &Sweeps{sweeper: sweeper}
}

// Run sweeps one organization. A sweep already running for it elsewhere is
// reported in SkippedOrganizations rather than as an error.
func (s *Sweeps) Run(ctx context.Context, organizationID string) (*automation.SweepReport, error) {
	if organizationID == "" {
		return nil, NewValidationError("sweep", "missing_organization", "organization is required", ErrInvalidRequest)
	}

	report, err := s.sweeper.SweepOrganization(ctx, organizationID)
	if err != nil {
		return report, fmt.Errorf("failed to sweep organization: %w", err)
	}

	return report, nil
}
