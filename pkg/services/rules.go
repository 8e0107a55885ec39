package services

import (
	"context"
	"fmt"

	"github.com/dukex/dealflow/pkg/models"
	"github.com/dukex/dealflow/pkg/persistence"
)

type Rules struct {
	persistence persistence.Persistence
}

// NewRules creates a service over organization-wide automation rules.
func NewRules(persistence persistence.Persistence) *Rules {
	return &Rules{persistence: persistence}
}

// ListActive enumerates the organization's active rules. No engine
// interprets them.
func (r *Rules) ListActive(ctx context.Context, organizationID string) ([]*models.AutomationRule, error) {
	rules, err := r.persistence.AutomationRules().ListActive(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list automation rules: %w", err)
	}

	return rules, nil
}
