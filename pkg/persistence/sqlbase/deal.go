package sqlbase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dukex/dealflow/pkg/models"
	"github.com/dukex/dealflow/pkg/persistence"
)

// DealRepository handles deal-related database operations.
type DealRepository struct {
	conn
}

const dealColumns = `
	  d.id
	, d.organization_id
	, d.title
	, d.value
	, d.currency
	, d.status
	, d.probability
	, d.owner_id
	, d.created_by_id
	, d.contact_id
	, d.pipeline_id
	, d.stage_id
	, d.stage_entered_at
	, d.stage_transition_id
	, d.data
	, d.created_at
	, d.updated_at
	, u.id
	, u.name
	, u.email
	, u.role
	, c.id
	, c.name
	, c.email`

const dealFrom = `
	FROM deals d
	LEFT JOIN users u ON u.id = d.owner_id AND u.organization_id = d.organization_id
	LEFT JOIN contacts c ON c.id = d.contact_id AND c.organization_id = d.organization_id`

// Create inserts the deal together with its initial stage transition. A zero
// StageEnteredAt defaults to the creation time.
func (r *DealRepository) Create(ctx context.Context, deal *models.Deal) error {
	createdAt := now()

	if deal.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}

		deal.ID = id
	}

	if deal.Status == "" {
		deal.Status = models.DealStatusOpen
	}

	if deal.Data == nil {
		deal.Data = map[string]any{}
	}

	enteredAt := createdAt
	if !deal.StageEnteredAt.IsZero() {
		enteredAt = timestamp(deal.StageEnteredAt)
	}

	transitionID, err := newID()
	if err != nil {
		return err
	}

	data, err := encodeJSON(deal.Data, "{}")
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer r.rollback(ctx, tx)

	query := `
		INSERT INTO deals (
			  id
			, organization_id
			, title
			, value
			, currency
			, status
			, probability
			, owner_id
			, created_by_id
			, contact_id
			, pipeline_id
			, stage_id
			, stage_entered_at
			, stage_transition_id
			, data
			, created_at
			, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = tx.ExecContext(ctx, r.dialect.Rebind(query),
		deal.ID,
		deal.OrganizationID,
		deal.Title,
		deal.Value,
		deal.Currency,
		string(deal.Status),
		deal.Probability,
		nullString(deal.OwnerID),
		deal.CreatedByID,
		nullString(deal.ContactID),
		deal.PipelineID,
		deal.StageID,
		enteredAt,
		transitionID,
		data,
		createdAt,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert deal: %w", err)
	}

	transition := &models.StageTransition{
		ID:             transitionID,
		OrganizationID: deal.OrganizationID,
		DealID:         deal.ID,
		ToStageID:      deal.StageID,
		EnteredAt:      enteredAt,
	}

	err = insertTransition(ctx, tx, r.dialect, transition)
	if err != nil {
		return err
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit deal creation: %w", err)
	}

	deal.StageEnteredAt = enteredAt
	deal.StageTransitionID = transitionID
	deal.CreatedAt = createdAt
	deal.UpdatedAt = createdAt

	r.logger.DebugContext(ctx, "deal created", "deal_id", deal.ID, "stage_id", deal.StageID)

	return nil
}

func (r *DealRepository) GetByID(ctx context.Context, organizationID, id string) (*models.Deal, error) {
	query := "SELECT" + dealColumns + dealFrom + `
		WHERE d.organization_id = ? AND d.id = ?`

	deal, err := scanDeal(r.queryRow(ctx, query, organizationID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewEntityError("GetByID", "deal", id, persistence.ErrDealNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}

	return deal, nil
}

func (r *DealRepository) UpdateOwner(ctx context.Context, organizationID, id, ownerID string) error {
	result, err := r.exec(ctx, `
		UPDATE deals
		SET owner_id = ?, updated_at = ?
		WHERE organization_id = ? AND id = ?`,
		ownerID, now(), organizationID, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update deal owner: %w", err)
	}

	return requireRow(result, "UpdateOwner", id)
}

// AddTag reads and rewrites the data blob inside one transaction so that
// concurrent appends do not drop each other.
func (r *DealRepository) AddTag(ctx context.Context, organizationID, id, tag string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer r.rollback(ctx, tx)

	var raw []byte

	query := "SELECT data FROM deals WHERE organization_id = ? AND id = ?" + r.dialect.ForUpdate()

	err = tx.QueryRowContext(ctx, r.dialect.Rebind(query), organizationID, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, persistence.NewEntityError("AddTag", "deal", id, persistence.ErrDealNotFound)
	}

	if err != nil {
		return false, fmt.Errorf("failed to read deal data: %w", err)
	}

	data, err := decodeData(raw)
	if err != nil {
		return false, err
	}

	if !models.AppendTag(data, tag) {
		return false, nil
	}

	encoded, err := encodeJSON(data, "{}")
	if err != nil {
		return false, err
	}

	_, err = tx.ExecContext(ctx, r.dialect.Rebind(`
		UPDATE deals
		SET data = ?, updated_at = ?
		WHERE organization_id = ? AND id = ?`),
		encoded, now(), organizationID, id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update deal tags: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return false, fmt.Errorf("failed to commit tag update: %w", err)
	}

	return true, nil
}

func (r *DealRepository) UpdateData(ctx context.Context, organizationID, id string, data map[string]any) error {
	encoded, err := encodeJSON(data, "{}")
	if err != nil {
		return err
	}

	result, err := r.exec(ctx, `
		UPDATE deals
		SET data = ?, updated_at = ?
		WHERE organization_id = ? AND id = ?`,
		encoded, now(), organizationID, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update deal data: %w", err)
	}

	return requireRow(result, "UpdateData", id)
}

func (r *DealRepository) MoveToStage(
	ctx context.Context,
	organizationID, id, stageID string,
	at time.Time,
) (*models.StageTransition, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer r.rollback(ctx, tx)

	var currentStageID, pipelineID, status string

	query := `
		SELECT stage_id, pipeline_id, status
		FROM deals
		WHERE organization_id = ? AND id = ?` + r.dialect.ForUpdate()

	err = tx.QueryRowContext(ctx, r.dialect.Rebind(query), organizationID, id).Scan(&currentStageID, &pipelineID, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewEntityError("MoveToStage", "deal", id, persistence.ErrDealNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read deal: %w", err)
	}

	if models.DealStatus(status) != models.DealStatusOpen {
		return nil, persistence.NewEntityError("MoveToStage", "deal", id, persistence.ErrDealClosed)
	}

	if currentStageID == stageID {
		return nil, persistence.NewEntityError("MoveToStage", "deal", id, persistence.ErrAlreadyInStage)
	}

	var stagePipelineID string

	err = tx.QueryRowContext(ctx,
		r.dialect.Rebind("SELECT pipeline_id FROM pipeline_stages WHERE organization_id = ? AND id = ?"),
		organizationID, stageID,
	).Scan(&stagePipelineID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewEntityError("MoveToStage", "stage", stageID, persistence.ErrStageNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read stage: %w", err)
	}

	if stagePipelineID != pipelineID {
		return nil, persistence.NewEntityError("MoveToStage", "stage", stageID, persistence.ErrStageNotInPipeline)
	}

	transitionID, err := newID()
	if err != nil {
		return nil, err
	}

	from := currentStageID
	transition := &models.StageTransition{
		ID:             transitionID,
		OrganizationID: organizationID,
		DealID:         id,
		FromStageID:    &from,
		ToStageID:      stageID,
		EnteredAt:      timestamp(at),
	}

	err = insertTransition(ctx, tx, r.dialect, transition)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, r.dialect.Rebind(`
		UPDATE deals
		SET stage_id = ?
		  , stage_transition_id = ?
		  , stage_entered_at = ?
		  , updated_at = ?
		WHERE organization_id = ? AND id = ?`),
		stageID, transitionID, transition.EnteredAt, now(), organizationID, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to move deal: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return nil, fmt.Errorf("failed to commit stage transition: %w", err)
	}

	return transition, nil
}

func (r *DealRepository) ListOpen(ctx context.Context, organizationID string) ([]*models.Deal, error) {
	query := "SELECT" + dealColumns + dealFrom + `
		WHERE d.organization_id = ? AND d.status = ?
		ORDER BY d.id`

	rows, err := r.query(ctx, query, organizationID, string(models.DealStatusOpen))
	if err != nil {
		return nil, fmt.Errorf("failed to query open deals: %w", err)
	}
	defer r.closeRows(ctx, rows)

	deals := make([]*models.Deal, 0)

	for rows.Next() {
		deal, err := scanDeal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deal: %w", err)
		}

		deals = append(deals, deal)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate deals: %w", err)
	}

	return deals, nil
}

func (r *DealRepository) OpenOrganizations(ctx context.Context) ([]string, error) {
	rows, err := r.query(ctx, `
		SELECT DISTINCT organization_id
		FROM deals
		WHERE status = ?
		ORDER BY organization_id`,
		string(models.DealStatusOpen),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query organizations: %w", err)
	}
	defer r.closeRows(ctx, rows)

	organizations := make([]string, 0)

	for rows.Next() {
		var organizationID string

		err := rows.Scan(&organizationID)
		if err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}

		organizations = append(organizations, organizationID)
	}

	return organizations, rows.Err()
}

func (r *DealRepository) Transitions(ctx context.Context, organizationID, dealID string) ([]*models.StageTransition, error) {
	rows, err := r.query(ctx, `
		SELECT
			  id
			, organization_id
			, deal_id
			, from_stage_id
			, to_stage_id
			, sequence
			, entered_at
		FROM stage_transitions
		WHERE organization_id = ? AND deal_id = ?
		ORDER BY sequence`,
		organizationID, dealID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query stage transitions: %w", err)
	}
	defer r.closeRows(ctx, rows)

	transitions := make([]*models.StageTransition, 0)

	for rows.Next() {
		var (
			transition models.StageTransition
			from       sql.NullString
		)

		err := rows.Scan(
			&transition.ID,
			&transition.OrganizationID,
			&transition.DealID,
			&from,
			&transition.ToStageID,
			&transition.Sequence,
			&transition.EnteredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stage transition: %w", err)
		}

		transition.FromStageID = stringPtr(from)
		transition.EnteredAt = transition.EnteredAt.UTC()
		transitions = append(transitions, &transition)
	}

	return transitions, rows.Err()
}

func insertTransition(ctx context.Context, tx *sql.Tx, dialect Dialect, transition *models.StageTransition) error {
	err := tx.QueryRowContext(ctx, dialect.Rebind(`
		INSERT INTO stage_transitions (
			  id
			, organization_id
			, deal_id
			, from_stage_id
			, to_stage_id
			, sequence
			, entered_at
		) VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(sequence), 0) + 1 FROM stage_transitions WHERE deal_id = ?), ?)
		RETURNING sequence`),
		transition.ID,
		transition.OrganizationID,
		transition.DealID,
		nullString(transition.FromStageID),
		transition.ToStageID,
		transition.DealID,
		transition.EnteredAt,
	).Scan(&transition.Sequence)
	if err != nil {
		return fmt.Errorf("failed to insert stage transition: %w", err)
	}

	return nil
}

func scanDeal(row scanner) (*models.Deal, error) {
	var (
		deal                      models.Deal
		status                    string
		ownerID, contactID        sql.NullString
		userID, userName          sql.NullString
		userEmail, userRole       sql.NullString
		contactRowID, contactName sql.NullString
		contactEmail              sql.NullString
		data                      []byte
	)

	err := row.Scan(
		&deal.ID,
		&deal.OrganizationID,
		&deal.Title,
		&deal.Value,
		&deal.Currency,
		&status,
		&deal.Probability,
		&ownerID,
		&deal.CreatedByID,
		&contactID,
		&deal.PipelineID,
		&deal.StageID,
		&deal.StageEnteredAt,
		&deal.StageTransitionID,
		&data,
		&deal.CreatedAt,
		&deal.UpdatedAt,
		&userID,
		&userName,
		&userEmail,
		&userRole,
		&contactRowID,
		&contactName,
		&contactEmail,
	)
	if err != nil {
		return nil, err
	}

	deal.Status = models.DealStatus(status)
	deal.OwnerID = stringPtr(ownerID)
	deal.ContactID = stringPtr(contactID)
	deal.StageEnteredAt = deal.StageEnteredAt.UTC()
	deal.CreatedAt = deal.CreatedAt.UTC()
	deal.UpdatedAt = deal.UpdatedAt.UTC()

	deal.Data, err = decodeData(data)
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		deal.Owner = &models.User{
			ID:             userID.String,
			OrganizationID: deal.OrganizationID,
			Name:           userName.String,
			Email:          userEmail.String,
			Role:           userRole.String,
		}
	}

	if contactRowID.Valid {
		deal.Contact = &models.Contact{
			ID:             contactRowID.String,
			OrganizationID: deal.OrganizationID,
			Name:           contactName.String,
			Email:          contactEmail.String,
		}
	}

	return &deal, nil
}

func requireRow(result sql.Result, op, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}

	if affected == 0 {
		return persistence.NewEntityError(op, "deal", id, persistence.ErrDealNotFound)
	}

	return nil
}
