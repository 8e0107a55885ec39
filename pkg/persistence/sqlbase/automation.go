package sqlbase

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dukex/dealflow/pkg/models"
)

// AutomationRepository handles stage automation database operations.
type AutomationRepository struct {
	conn
}

func (r *AutomationRepository) Create(ctx context.Context, automation *models.StageAutomation) error {
	createdAt := now()

	if automation.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}

		automation.ID = id
	}

	_, err := r.exec(ctx, `
		INSERT INTO stage_automations (
			  id
			, organization_id
			, stage_id
			, name
			, trigger_type
			, duration_minutes
			, actions
			, active
			, created_at
			, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		automation.ID,
		automation.OrganizationID,
		automation.StageID,
		automation.Name,
		string(automation.TriggerType),
		nullInt(automation.DurationMinutes),
		rawJSONString(automation.Actions, "[]"),
		automation.Active,
		createdAt,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert stage automation: %w", err)
	}

	automation.CreatedAt = createdAt
	automation.UpdatedAt = createdAt

	return nil
}

func (r *AutomationRepository) ListByStage(
	ctx context.Context,
	stageID string,
	trigger models.TriggerType,
	activeOnly bool,
) ([]*models.StageAutomation, error) {
	conditions := []string{"stage_id = ?"}
	args := []any{stageID}

	if trigger != "" {
		conditions = append(conditions, "trigger_type = ?")
		args = append(args, string(trigger))
	}

	if activeOnly {
		conditions = append(conditions, "active = ?")
		args = append(args, true)
	}

	query := `
		SELECT
			  id
			, organization_id
			, stage_id
			, name
			, trigger_type
			, duration_minutes
			, actions
			, active
			, created_at
			, updated_at
		FROM stage_automations
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY created_at, id`

	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query stage automations: %w", err)
	}
	defer r.closeRows(ctx, rows)

	automations := make([]*models.StageAutomation, 0)

	for rows.Next() {
		var (
			automation  models.StageAutomation
			triggerType string
			duration    sql.NullInt64
			actions     []byte
		)

		err := rows.Scan(
			&automation.ID,
			&automation.OrganizationID,
			&automation.StageID,
			&automation.Name,
			&triggerType,
			&duration,
			&actions,
			&automation.Active,
			&automation.CreatedAt,
			&automation.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stage automation: %w", err)
		}

		automation.TriggerType = models.TriggerType(triggerType)
		automation.DurationMinutes = intPtr(duration)
		automation.Actions = rawJSON(actions, "[]")
		automation.CreatedAt = automation.CreatedAt.UTC()
		automation.UpdatedAt = automation.UpdatedAt.UTC()

		automations = append(automations, &automation)
	}

	return automations, rows.Err()
}
