package otelhelper

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the counters emitted by the automation core. Instruments come
// from the global meter provider, which is a no-op unless one is installed.
type Metrics struct {
	actionsExecuted  metric.Int64Counter
	actionsFailed    metric.Int64Counter
	actionsSkipped   metric.Int64Counter
	automationsFired metric.Int64Counter
	sweepsCompleted  metric.Int64Counter
}

func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(TracerName)

	var (
		m   Metrics
		err error
	)

	m.actionsExecuted, err = meter.Int64Counter("dealflow.actions.executed",
		metric.WithDescription("Actions that completed without error"))
	if err != nil {
		return nil, err
	}

	m.actionsFailed, err = meter.Int64Counter("dealflow.actions.failed",
		metric.WithDescription("Actions that returned an error or panicked"))
	if err != nil {
		return nil, err
	}

	m.actionsSkipped, err = meter.Int64Counter("dealflow.actions.skipped",
		metric.WithDescription("Serialized actions skipped because they could not be decoded"))
	if err != nil {
		return nil, err
	}

	m.automationsFired, err = meter.Int64Counter("dealflow.automations.fired",
		metric.WithDescription("Automations whose action list was run"))
	if err != nil {
		return nil, err
	}

	m.sweepsCompleted, err = meter.Int64Counter("dealflow.sweeps.completed",
		metric.WithDescription("Duration sweeps completed per organization"))
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// MustMetrics is NewMetrics for wiring code where instrument creation cannot
// reasonably fail.
func MustMetrics() *Metrics {
	m, err := NewMetrics()
	if err != nil {
		panic(err)
	}

	return m
}

func (m *Metrics) ActionExecuted(ctx context.Context, actionType string) {
	m.actionsExecuted.Add(ctx, 1, metric.WithAttributes(attribute.String(ActionTypeKey, actionType)))
}

func (m *Metrics) ActionFailed(ctx context.Context, actionType string) {
	m.actionsFailed.Add(ctx, 1, metric.WithAttributes(attribute.String(ActionTypeKey, actionType)))
}

func (m *Metrics) ActionSkipped(ctx context.Context, reason string) {
	m.actionsSkipped.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *Metrics) AutomationFired(ctx context.Context, triggerType string) {
	m.automationsFired.Add(ctx, 1, metric.WithAttributes(attribute.String(TriggerTypeKey, triggerType)))
}

func (m *Metrics) SweepCompleted(ctx context.Context, organizationID string) {
	m.sweepsCompleted.Add(ctx, 1, metric.WithAttributes(attribute.String(OrganizationIDKey, organizationID)))
}
