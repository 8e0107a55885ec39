package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/dealflow/pkg/lock"
	"github.com/dukex/dealflow/pkg/models"
	"github.com/dukex/dealflow/pkg/otelhelper"
	"github.com/dukex/dealflow/pkg/persistence"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const DefaultLeaseTTL = 5 * time.Minute

// Sweeper fires on_duration automations for deals that stayed in their
// stage past the automation's threshold. Each automation fires at most once
// per stage visit: a firing is claimed before its actions run.
type Sweeper struct {
	store    persistence.Persistence
	executor *Executor
	locker   lock.Locker
	clock    clockwork.Clock
	logger   *slog.Logger
	tracer   trace.Tracer
	metrics  *otelhelper.Metrics
	leaseTTL time.Duration
}

type SweeperOption func(*Sweeper)

// WithLeaseTTL bounds how long an organization stays locked if a sweeper dies mid-run.
func WithLeaseTTL(ttl time.Duration) SweeperOption {
	return func(s *Sweeper) { s.leaseTTL = ttl }
}

func WithMetrics(metrics *otelhelper.Metrics) SweeperOption {
	return func(s *Sweeper) { s.metrics = metrics }
}

func NewSweeper(
	store persistence.Persistence,
	executor *Executor,
	locker lock.Locker,
	clock clockwork.Clock,
	logger *slog.Logger,
	opts ...SweeperOption,
) *Sweeper {
	sweeper := &Sweeper{
		store:    store,
		executor: executor,
		locker:   locker,
		clock:    clock,
		logger:   logger.With("module", "duration_sweeper"),
		tracer:   otelhelper.Tracer(),
		leaseTTL: DefaultLeaseTTL,
	}

	for _, opt := range opts {
		opt(sweeper)
	}

	if sweeper.metrics == nil {
		sweeper.metrics = otelhelper.MustMetrics()
	}

	return sweeper
}

// Sweep processes every organization that has open deals. Per-organization
// failures are logged and counted; only listing organizations and context
// cancellation return an error.
func (s *Sweeper) Sweep(ctx context.Context) (*SweepReport, error) {
	report := s.newReport()

	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "automation.sweep",
		attribute.String(otelhelper.SweepIDKey, report.SweepID),
	)
	defer span.End()

	organizations, err := s.store.Deals().OpenOrganizations(ctx)
	if err != nil {
		otelhelper.SetError(span, err)

		return report, fmt.Errorf("failed to list organizations: %w", err)
	}

	for _, organizationID := range organizations {
		if err := ctx.Err(); err != nil {
			report.FinishedAt = s.clock.Now()

			return report, err
		}

		organizationReport, err := s.sweepOrganization(ctx, report.SweepID, organizationID)
		report.merge(organizationReport)

		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				report.FinishedAt = s.clock.Now()

				return report, ctxErr
			}

			s.logger.ErrorContext(ctx, "organization sweep failed", "organization_id", organizationID, "error", err)

			report.Errors++
		}
	}

	report.FinishedAt = s.clock.Now()

	s.logger.InfoContext(ctx, "sweep completed",
		"sweep_id", report.SweepID,
		"organizations", report.Organizations,
		"skipped_organizations", len(report.SkippedOrganizations),
		"deals", report.DealsScanned,
		"fired", report.Fired(),
		"already_fired", report.AlreadyFired,
		"ended_visits", report.EndedVisits,
		"errors", report.Errors,
	)

	return report, nil
}

// SweepOrganization processes one organization's open deals. A lease held by
// another sweep skips the organization without error.
func (s *Sweeper) SweepOrganization(ctx context.Context, organizationID string) (*SweepReport, error) {
	report := s.newReport()

	organizationReport, err := s.sweepOrganization(ctx, report.SweepID, organizationID)
	report.merge(organizationReport)
	report.FinishedAt = s.clock.Now()

	return report, err
}

func (s *Sweeper) newReport() *SweepReport {
	return &SweepReport{
		SweepID:     uuid.NewString(),
		StartedAt:   s.clock.Now(),
		Automations: make([]AutomationReport, 0),
	}
}

func (s *Sweeper) sweepOrganization(ctx context.Context, sweepID, organizationID string) (*SweepReport, error) {
	report := &SweepReport{Automations: make([]AutomationReport, 0)}

	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "automation.sweep_organization",
		attribute.String(otelhelper.SweepIDKey, sweepID),
		attribute.String(otelhelper.OrganizationIDKey, organizationID),
	)
	defer span.End()

	logger := s.logger.With("sweep_id", sweepID, "organization_id", organizationID)

	lease, err := s.locker.Acquire(ctx, "sweep:"+organizationID, s.leaseTTL)
	if errors.Is(err, lock.ErrLocked) {
		logger.InfoContext(ctx, "organization is being swept elsewhere, skipping")

		report.SkippedOrganizations = append(report.SkippedOrganizations, organizationID)

		return report, nil
	}

	if err != nil {
		otelhelper.SetError(span, err)

		return report, fmt.Errorf("failed to acquire sweep lease: %w", err)
	}

	defer func() {
		releaseErr := lease.Release(context.WithoutCancel(ctx))
		if releaseErr != nil {
			logger.ErrorContext(ctx, "failed to release sweep lease", "error", releaseErr)
		}
	}()

	report.Organizations = 1

	s.logRules(ctx, logger, organizationID)

	deals, err := s.store.Deals().ListOpen(ctx, organizationID)
	if err != nil {
		otelhelper.SetError(span, err)

		return report, fmt.Errorf("failed to list open deals: %w", err)
	}

	stageAutomations := make(map[string][]*models.StageAutomation)

	for _, deal := range deals {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		report.DealsScanned++

		automations, ok := stageAutomations[deal.StageID]
		if !ok {
			automations, err = s.store.Automations().ListByStage(ctx, deal.StageID, models.TriggerOnDuration, true)
			if err != nil {
				logger.ErrorContext(ctx, "failed to load duration automations", "stage_id", deal.StageID, "error", err)

				report.Errors++

				continue
			}

			stageAutomations[deal.StageID] = automations
		}

		s.sweepDeal(ctx, logger, organizationID, deal, automations, report)
	}

	s.metrics.SweepCompleted(ctx, organizationID)

	return report, nil
}

func (s *Sweeper) sweepDeal(
	ctx context.Context,
	logger *slog.Logger,
	organizationID string,
	deal *models.Deal,
	automations []*models.StageAutomation,
	report *SweepReport,
) {
	now := s.clock.Now()
	elapsed := now.Sub(deal.StageEnteredAt)

	for _, automation := range automations {
		threshold, ok := automation.Threshold()
		if !ok {
			logger.WarnContext(ctx, "duration automation has no duration, skipping", "automation_id", automation.ID)

			continue
		}

		if elapsed < threshold {
			continue
		}

		claimed, err := s.store.Firings().Claim(ctx, &models.AutomationFiring{
			AutomationID:      automation.ID,
			StageTransitionID: deal.StageTransitionID,
			DealID:            deal.ID,
			FiredAt:           now,
		})
		if errors.Is(err, persistence.ErrStageVisitEnded) {
			logger.DebugContext(ctx, "deal left the stage after listing, skipping",
				"deal_id", deal.ID,
				"stage_id", deal.StageID,
			)

			report.EndedVisits++

			return
		}

		if err != nil {
			logger.ErrorContext(ctx, "failed to claim automation firing",
				"automation_id", automation.ID,
				"deal_id", deal.ID,
				"error", err,
			)

			report.Errors++

			continue
		}

		if !claimed {
			report.AlreadyFired++

			continue
		}

		report.Automations = append(report.Automations,
			s.executor.RunAutomation(ctx, automation, deal, organizationID, models.TriggerOnDuration))
	}
}

// logRules lists the organization's active rules. Rules are not executed.
func (s *Sweeper) logRules(ctx context.Context, logger *slog.Logger, organizationID string) {
	rules, err := s.store.AutomationRules().ListActive(ctx, organizationID)
	if err != nil {
		logger.WarnContext(ctx, "failed to list automation rules", "error", err)

		return
	}

	for _, rule := range rules {
		logger.DebugContext(ctx, "automation rule not interpreted",
			"rule_id", rule.ID,
			"rule_name", rule.Name,
			"trigger", rule.Trigger,
		)
	}
}
