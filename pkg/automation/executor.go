// Package automation runs stage automations: the dispatcher reacts to stage
// entries, the sweeper fires duration automations and the executor runs the
// decoded actions of both.
package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/dealflow/pkg/models"
	"github.com/dukex/dealflow/pkg/otelhelper"
	"github.com/dukex/dealflow/pkg/protocol"
	"github.com/dukex/dealflow/pkg/registry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Executor runs actions inside an error boundary. No action error or panic
// escapes Execute.
type Executor struct {
	registry *registry.Registry
	logger   *slog.Logger
	tracer   trace.Tracer
	metrics  *otelhelper.Metrics
}

func NewExecutor(registry *registry.Registry, logger *slog.Logger, metrics *otelhelper.Metrics) *Executor {
	if metrics == nil {
		metrics = otelhelper.MustMetrics()
	}

	return &Executor{
		registry: registry,
		logger:   logger.With("module", "automation_executor"),
		tracer:   otelhelper.Tracer(),
		metrics:  metrics,
	}
}

// Execute runs one decoded action.
func (e *Executor) Execute(ctx context.Context, decoded registry.DecodedAction, execCtx models.ExecutionContext) (outcome ActionOutcome) {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "automation.action",
		attribute.String(otelhelper.ActionTypeKey, string(decoded.Type)),
		attribute.Int(otelhelper.ActionIndexKey, decoded.Index),
		attribute.String(otelhelper.AutomationIDKey, execCtx.AutomationID),
		attribute.String(otelhelper.ExecutionIDKey, execCtx.ID),
	)
	defer span.End()

	logger := e.logger.With(
		"execution_id", execCtx.ID,
		"automation_id", execCtx.AutomationID,
		"action_index", decoded.Index,
		"action_type", string(decoded.Type),
	)

	outcome = ActionOutcome{Index: decoded.Index, Type: decoded.Type}

	defer func() {
		if recovered := recover(); recovered != nil {
			err := fmt.Errorf("action panicked: %v", recovered)
			outcome = e.fail(ctx, span, logger, outcome, err)
		}
	}()

	result, err := decoded.Action.Execute(ctx, execCtx, logger)
	if err != nil {
		return e.fail(ctx, span, logger, outcome, err)
	}

	outcome.Status = OutcomeDone
	if status, ok := result[protocol.ResultStatus].(string); ok && status != "" {
		outcome.Status = status
	}

	outcome.Result = result

	e.metrics.ActionExecuted(ctx, string(decoded.Type))
	logger.DebugContext(ctx, "action executed", "status", outcome.Status)

	return outcome
}

func (e *Executor) fail(
	ctx context.Context,
	span trace.Span,
	logger *slog.Logger,
	outcome ActionOutcome,
	err error,
) ActionOutcome {
	otelhelper.SetError(span, err)
	e.metrics.ActionFailed(ctx, string(outcome.Type))
	logger.ErrorContext(ctx, "action failed", "error", err)

	outcome.Status = OutcomeFailed
	outcome.Error = err.Error()

	return outcome
}

// RunAutomation decodes the automation's stored action list and runs it in
// order against deal. deal is shared by the actions, so each one sees the
// mutations of those before it.
func (e *Executor) RunAutomation(
	ctx context.Context,
	automation *models.StageAutomation,
	deal *models.Deal,
	organizationID string,
	trigger models.TriggerType,
) AutomationReport {
	execCtx := models.ExecutionContext{
		ID:             uuid.NewString(),
		OrganizationID: organizationID,
		AutomationID:   automation.ID,
		TriggerType:    trigger,
		Deal:           deal,
	}

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "automation.run",
		attribute.String(otelhelper.OrganizationIDKey, organizationID),
		attribute.String(otelhelper.AutomationIDKey, automation.ID),
		attribute.String(otelhelper.DealIDKey, deal.ID),
		attribute.String(otelhelper.TriggerTypeKey, string(trigger)),
		attribute.String(otelhelper.ExecutionIDKey, execCtx.ID),
	)
	defer span.End()

	logger := e.logger.With(
		"execution_id", execCtx.ID,
		"automation_id", automation.ID,
		"organization_id", organizationID,
		"deal_id", deal.ID,
		"trigger_type", string(trigger),
	)

	report := AutomationReport{
		AutomationID: automation.ID,
		ExecutionID:  execCtx.ID,
		TriggerType:  trigger,
		Actions:      make([]ActionOutcome, 0),
	}

	actions, failures, err := e.registry.DecodeStored(ctx, automation.Actions, logger)
	if err != nil {
		otelhelper.SetError(span, err)
		e.metrics.ActionSkipped(ctx, "malformed_list")
		logger.ErrorContext(ctx, "automation action list is malformed, skipping automation", "error", err)

		report.Status = AutomationMalformedActions

		return report
	}

	for _, failure := range failures {
		reason := "invalid_config"
		if errors.Is(failure.Err, registry.ErrUnknownActionType) {
			reason = "unknown_type"
		}

		e.metrics.ActionSkipped(ctx, reason)

		report.Skipped = append(report.Skipped, ActionOutcome{
			Index:  failure.Index,
			Type:   failure.Type,
			Status: OutcomeSkipped,
			Error:  failure.Err.Error(),
		})
	}

	e.metrics.AutomationFired(ctx, string(trigger))
	logger.InfoContext(ctx, "running automation", "actions", len(actions), "skipped", len(failures))

	for _, action := range actions {
		report.Actions = append(report.Actions, e.Execute(ctx, action, execCtx))
	}

	report.Status = AutomationRan

	return report
}
