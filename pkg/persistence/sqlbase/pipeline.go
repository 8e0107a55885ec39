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

// PipelineRepository handles pipeline and stage database operations.
type PipelineRepository struct {
	conn
}

// CreatePipeline inserts the pipeline and any stages it carries.
func (r *PipelineRepository) CreatePipeline(ctx context.Context, pipeline *models.Pipeline) error {
	createdAt := now()

	if pipeline.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}

		pipeline.ID = id
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer r.rollback(ctx, tx)

	_, err = tx.ExecContext(ctx, r.dialect.Rebind(`
		INSERT INTO pipelines (id, organization_id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`),
		pipeline.ID, pipeline.OrganizationID, pipeline.Name, createdAt, createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert pipeline: %w", err)
	}

	for i := range pipeline.Stages {
		stage := &pipeline.Stages[i]
		stage.PipelineID = pipeline.ID
		stage.OrganizationID = pipeline.OrganizationID

		err = insertStage(ctx, tx, r.dialect, stage, createdAt)
		if err != nil {
			return err
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit pipeline: %w", err)
	}

	pipeline.CreatedAt = createdAt
	pipeline.UpdatedAt = createdAt

	return nil
}

func (r *PipelineRepository) CreateStage(ctx context.Context, stage *models.PipelineStage) error {
	var pipelineOrganization string

	err := r.queryRow(ctx, "SELECT organization_id FROM pipelines WHERE id = ?", stage.PipelineID).Scan(&pipelineOrganization)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && pipelineOrganization != stage.OrganizationID) {
		return persistence.NewEntityError("CreateStage", "pipeline", stage.PipelineID, persistence.ErrPipelineNotFound)
	}

	if err != nil {
		return fmt.Errorf("failed to read pipeline: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer r.rollback(ctx, tx)

	err = insertStage(ctx, tx, r.dialect, stage, now())
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PipelineRepository) GetStage(ctx context.Context, organizationID, id string) (*models.PipelineStage, error) {
	stage, err := scanStage(r.queryRow(ctx, stageSelect+`
		WHERE organization_id = ? AND id = ?`,
		organizationID, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewEntityError("GetStage", "stage", id, persistence.ErrStageNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get stage: %w", err)
	}

	return stage, nil
}

func (r *PipelineRepository) ListStages(ctx context.Context, organizationID, pipelineID string) ([]*models.PipelineStage, error) {
	rows, err := r.query(ctx, stageSelect+`
		WHERE organization_id = ? AND pipeline_id = ?
		ORDER BY display_order, id`,
		organizationID, pipelineID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query stages: %w", err)
	}
	defer r.closeRows(ctx, rows)

	stages := make([]*models.PipelineStage, 0)

	for rows.Next() {
		stage, err := scanStage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stage: %w", err)
		}

		stages = append(stages, stage)
	}

	return stages, rows.Err()
}

const stageSelect = `
	SELECT
		  id
		, organization_id
		, pipeline_id
		, name
		, display_order
		, color
		, probability
		, required_fields
		, sub_statuses
		, failure_signals
		, created_at
		, updated_at
	FROM pipeline_stages`

func insertStage(ctx context.Context, tx *sql.Tx, dialect Dialect, stage *models.PipelineStage, createdAt time.Time) error {
	if stage.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}

		stage.ID = id
	}

	requiredFields, err := encodeStrings(stage.RequiredFields)
	if err != nil {
		return err
	}

	subStatuses, err := encodeStrings(stage.SubStatuses)
	if err != nil {
		return err
	}

	failureSignals, err := encodeStrings(stage.FailureSignals)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, dialect.Rebind(`
		INSERT INTO pipeline_stages (
			  id
			, organization_id
			, pipeline_id
			, name
			, display_order
			, color
			, probability
			, required_fields
			, sub_statuses
			, failure_signals
			, created_at
			, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		stage.ID,
		stage.OrganizationID,
		stage.PipelineID,
		stage.Name,
		stage.DisplayOrder,
		stage.Color,
		stage.Probability,
		requiredFields,
		subStatuses,
		failureSignals,
		createdAt,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert stage: %w", err)
	}

	stage.CreatedAt = createdAt
	stage.UpdatedAt = createdAt

	return nil
}

func scanStage(row scanner) (*models.PipelineStage, error) {
	var (
		stage                                     models.PipelineStage
		requiredFields, subStatuses, failureSigns []byte
	)

	err := row.Scan(
		&stage.ID,
		&stage.OrganizationID,
		&stage.PipelineID,
		&stage.Name,
		&stage.DisplayOrder,
		&stage.Color,
		&stage.Probability,
		&requiredFields,
		&subStatuses,
		&failureSigns,
		&stage.CreatedAt,
		&stage.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	stage.RequiredFields, err = decodeStrings(requiredFields)
	if err != nil {
		return nil, err
	}

	stage.SubStatuses, err = decodeStrings(subStatuses)
	if err != nil {
		return nil, err
	}

	stage.FailureSignals, err = decodeStrings(failureSigns)
	if err != nil {
		return nil, err
	}

	stage.CreatedAt = stage.CreatedAt.UTC()
	stage.UpdatedAt = stage.UpdatedAt.UTC()

	return &stage, nil
}
