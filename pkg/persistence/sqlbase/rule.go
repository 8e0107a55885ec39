package sqlbase

import (
	"context"
	"fmt"

	"github.com/dukex/dealflow/pkg/models"
)

// AutomationRuleRepository stores organization-wide automation rules.
type AutomationRuleRepository struct {
	conn
}

func (r *AutomationRuleRepository) Create(ctx context.Context, rule *models.AutomationRule) error {
	createdAt := now()

	if rule.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}

		rule.ID = id
	}

	_, err := r.exec(ctx, `
		INSERT INTO automation_rules (id, organization_id, name, trigger_event, actions, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.ID,
		rule.OrganizationID,
		rule.Name,
		rule.Trigger,
		rawJSONString(rule.Actions, "[]"),
		rule.Active,
		createdAt,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert automation rule: %w", err)
	}

	rule.CreatedAt = createdAt
	rule.UpdatedAt = createdAt

	return nil
}

func (r *AutomationRuleRepository) ListActive(ctx context.Context, organizationID string) ([]*models.AutomationRule, error) {
	rows, err := r.query(ctx, `
		SELECT id, organization_id, name, trigger_event, actions, active, created_at, updated_at
		FROM automation_rules
		WHERE organization_id = ? AND active = ?
		ORDER BY created_at, id`,
		organizationID, true,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query automation rules: %w", err)
	}
	defer r.closeRows(ctx, rows)

	rules := make([]*models.AutomationRule, 0)

	for rows.Next() {
		var (
			rule    models.AutomationRule
			actions []byte
		)

		err := rows.Scan(
			&rule.ID,
			&rule.OrganizationID,
			&rule.Name,
			&rule.Trigger,
			&actions,
			&rule.Active,
			&rule.CreatedAt,
			&rule.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan automation rule: %w", err)
		}

		rule.Actions = rawJSON(actions, "[]")
		rule.CreatedAt = rule.CreatedAt.UTC()
		rule.UpdatedAt = rule.UpdatedAt.UTC()

		rules = append(rules, &rule)
	}

	return rules, rows.Err()
}
