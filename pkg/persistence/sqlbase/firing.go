package sqlbase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dukex/dealflow/pkg/models"
	"github.com/dukex/dealflow/pkg/persistence"
)

// FiringRepository records which duration automations fired for which stage visit.
type FiringRepository struct {
	conn
}

// Claim inserts the firing unless the (automation, transition) pair exists.
// The deal row is read in the same transaction (locked on PostgreSQL, which
// MoveToStage also locks), so a deal that left the stage or closed after the
// sweep listed it is never claimed. The primary key makes the claim atomic
// across concurrent sweepers.
func (r *FiringRepository) Claim(ctx context.Context, firing *models.AutomationFiring) (bool, error) {
	if firing.FiredAt.IsZero() {
		firing.FiredAt = now()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer r.rollback(ctx, tx)

	var status, transitionID string

	query := "SELECT status, stage_transition_id FROM deals WHERE id = ?" + r.dialect.ForUpdate()

	err = tx.QueryRowContext(ctx, r.dialect.Rebind(query), firing.DealID).Scan(&status, &transitionID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, persistence.NewEntityError("Claim", "deal", firing.DealID, persistence.ErrDealNotFound)
	}

	if err != nil {
		return false, fmt.Errorf("failed to read deal for firing claim: %w", err)
	}

	if models.DealStatus(status) != models.DealStatusOpen || transitionID != firing.StageTransitionID {
		return false, persistence.NewEntityError("Claim", "deal", firing.DealID, persistence.ErrStageVisitEnded)
	}

	result, err := tx.ExecContext(ctx, r.dialect.Rebind(`
		INSERT INTO automation_firings (automation_id, stage_transition_id, deal_id, fired_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (automation_id, stage_transition_id) DO NOTHING`),
		firing.AutomationID,
		firing.StageTransitionID,
		firing.DealID,
		timestamp(firing.FiredAt),
	)
	if err != nil {
		return false, fmt.Errorf("failed to claim automation firing: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return false, fmt.Errorf("failed to commit firing claim: %w", err)
	}

	return affected == 1, nil
}

// CursorRepository keeps the round-robin position per organization and role.
type CursorRepository struct {
	conn
}

func (r *CursorRepository) Next(ctx context.Context, organizationID, role string) (int64, error) {
	var rotation int64

	err := r.queryRow(ctx, `
		INSERT INTO assignment_cursors (organization_id, role, rotation, updated_at)
		VALUES (?, ?, 0, ?)
		ON CONFLICT (organization_id, role)
		DO UPDATE SET rotation = assignment_cursors.rotation + 1, updated_at = excluded.updated_at
		RETURNING rotation`,
		organizationID, role, now(),
	).Scan(&rotation)
	if err != nil {
		return 0, fmt.Errorf("failed to advance assignment cursor: %w", err)
	}

	return rotation, nil
}
