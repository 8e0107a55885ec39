package automation

import (
	"context"
	"log/slog"

	"github.com/dukex/dealflow/pkg/models"
	"github.com/dukex/dealflow/pkg/otelhelper"
	"github.com/dukex/dealflow/pkg/persistence"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Dispatcher runs a stage's on_enter automations when a deal enters it.
type Dispatcher struct {
	deals       persistence.DealRepository
	automations persistence.AutomationRepository
	executor    *Executor
	logger      *slog.Logger
	tracer      trace.Tracer
}

func NewDispatcher(store persistence.Persistence, executor *Executor, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		deals:       store.Deals(),
		automations: store.Automations(),
		executor:    executor,
		logger:      logger.With("module", "automation_dispatcher"),
		tracer:      otelhelper.Tracer(),
	}
}

// OnDealEnteredStage runs every active on_enter automation of stageID for the
// deal, one after another. It never returns an error: load failures and
// missing deals are logged and reflected in the report status.
func (d *Dispatcher) OnDealEnteredStage(ctx context.Context, dealID, stageID, organizationID string) *DispatchReport {
	ctx, span := otelhelper.StartSpan(ctx, d.tracer, "automation.dispatch",
		attribute.String(otelhelper.OrganizationIDKey, organizationID),
		attribute.String(otelhelper.DealIDKey, dealID),
		attribute.String(otelhelper.StageIDKey, stageID),
	)
	defer span.End()

	logger := d.logger.With("organization_id", organizationID, "deal_id", dealID, "stage_id", stageID)

	report := &DispatchReport{
		DealID:         dealID,
		StageID:        stageID,
		OrganizationID: organizationID,
		Automations:    make([]AutomationReport, 0),
	}

	deal, err := d.deals.GetByID(ctx, organizationID, dealID)
	if err != nil {
		if persistence.IsDealNotFound(err) {
			logger.WarnContext(ctx, "deal not found, nothing to dispatch")

			report.Status = DispatchDealNotFound

			return report
		}

		otelhelper.SetError(span, err)
		logger.ErrorContext(ctx, "failed to load deal", "error", err)

		report.Status = DispatchLoadFailed

		return report
	}

	automations, err := d.automations.ListByStage(ctx, stageID, models.TriggerOnEnter, true)
	if err != nil {
		otelhelper.SetError(span, err)
		logger.ErrorContext(ctx, "failed to load stage automations", "error", err)

		report.Status = DispatchLoadFailed

		return report
	}

	logger.InfoContext(ctx, "dispatching stage entry", "automations", len(automations))

	for _, automation := range automations {
		report.Automations = append(report.Automations,
			d.executor.RunAutomation(ctx, automation, deal, organizationID, models.TriggerOnEnter))
	}

	report.Status = DispatchCompleted

	return report
}
