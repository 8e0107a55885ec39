package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/dealflow/pkg/models"
	"github.com/dukex/dealflow/pkg/persistence"
	"github.com/dukex/dealflow/pkg/registry"
)

var (
	// ErrStageNotFound is returned when a stage is not found in the organization.
	ErrStageNotFound = persistence.ErrStageNotFound
)

type Automations struct {
	persistence persistence.Persistence
	registry    *registry.Registry
	logger      *slog.Logger
}

// NewAutomations creates a new stage automation service.
func NewAutomations(persistence persistence.Persistence, registry *registry.Registry, logger *slog.Logger) *Automations {
	return &Automations{
		persistence: persistence,
		registry:    registry,
		logger:      logger.With("module", "automation_service"),
	}
}

// CreateAutomationRequest describes a new stage automation.
type CreateAutomationRequest struct {
	Name            string
	TriggerType     models.TriggerType
	DurationMinutes *int
	Actions         json.RawMessage
	Active          *bool
}

// Create validates and stores a stage automation. Unlike dispatch, which skips
// bad entries, creation rejects the whole list if any action is invalid.
func (a *Automations) Create(
	ctx context.Context,
	organizationID, stageID string,
	req CreateAutomationRequest,
) (*models.StageAutomation, error) {
	if err := a.validateCreateRequest(&req); err != nil {
		return nil, err
	}

	if _, err := a.persistence.Pipelines().GetStage(ctx, organizationID, stageID); err != nil {
		return nil, fmt.Errorf("failed to fetch stage: %w", err)
	}

	if _, err := a.registry.DecodeList(req.Actions); err != nil {
		serviceErr := NewValidationError("create_automation", "invalid_actions", err.Error(), ErrInvalidActions)
		serviceErr.Details = actionErrorDetails(err)

		return nil, serviceErr
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	automation := &models.StageAutomation{
		OrganizationID:  organizationID,
		StageID:         stageID,
		Name:            req.Name,
		TriggerType:     req.TriggerType,
		DurationMinutes: req.DurationMinutes,
		Actions:         req.Actions,
		Active:          active,
	}

	if err := a.persistence.Automations().Create(ctx, automation); err != nil {
		return nil, fmt.Errorf("failed to create automation: %w", err)
	}

	a.logger.InfoContext(ctx, "stage automation created",
		"organization_id", organizationID,
		"stage_id", stageID,
		"automation_id", automation.ID,
		"trigger_type", string(automation.TriggerType),
	)

	return automation, nil
}

func (a *Automations) validateCreateRequest(req *CreateAutomationRequest) error {
	switch req.TriggerType {
	case models.TriggerOnEnter:
		req.DurationMinutes = nil
	case models.TriggerOnDuration:
		if req.DurationMinutes == nil || *req.DurationMinutes < 1 {
			return NewValidationError("create_automation", "duration_required", ErrDurationRequired.Error(), ErrDurationRequired)
		}
	default:
		return NewValidationError("create_automation", "invalid_trigger_type",
			fmt.Sprintf("trigger type must be %q or %q", models.TriggerOnEnter, models.TriggerOnDuration),
			ErrInvalidTriggerType)
	}

	if len(req.Actions) == 0 {
		req.Actions = json.RawMessage(`[]`)
	}

	return nil
}

func actionErrorDetails(err error) []string {
	var validationErr *registry.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Details
	}

	return []string{err.Error()}
}

// ListByStage returns every automation of the stage, active or not.
func (a *Automations) ListByStage(ctx context.Context, organizationID, stageID string) ([]*models.StageAutomation, error) {
	if _, err := a.persistence.Pipelines().GetStage(ctx, organizationID, stageID); err != nil {
		return nil, fmt.Errorf("failed to fetch stage: %w", err)
	}

	automations, err := a.persistence.Automations().ListByStage(ctx, stageID, "", false)
	if err != nil {
		return nil, fmt.Errorf("failed to list automations: %w", err)
	}

	return automations, nil
}

// ActionTypes returns the registered action factories in type order.
func (a *Automations) ActionTypes() []ActionTypeInfo {
	factories := a.registry.ActionFactories()
	infos := make([]ActionTypeInfo, 0, len(factories))

	for _, factory := range factories {
		infos = append(infos, ActionTypeInfo{
			Type:        factory.ID(),
			Name:        factory.Name(),
			Description: factory.Description(),
			Schema:      factory.Schema(),
		})
	}

	return infos
}

// ActionTypeInfo describes a registered action type.
type ActionTypeInfo struct {
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Schema      map[string]any `json:"schema"`
}

// RegistryHealth reports whether every action type is registered.
func (a *Automations) RegistryHealth() (string, bool) {
	if err := a.registry.HealthCheck(); err != nil {
		return "Registry is unhealthy: " + err.Error(), false
	}

	return "Registry is healthy", true
}
