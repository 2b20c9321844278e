package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics bundles the engine's counters. All instruments come from the
// globally installed meter provider, so they are no-ops unless telemetry is
// enabled.
type Metrics struct {
	contactsProcessed metric.Int64Counter
	retryAttempts     metric.Int64Counter
	failureAlerts     metric.Int64Counter
}

// NewMetrics creates the engine counters. Instrument creation errors are
// ignored: the otel SDK returns a working no-op instrument alongside the
// error.
func NewMetrics() *Metrics {
	m := Meter("")
	contacts, _ := m.Int64Counter("onboard.contacts.processed",
		metric.WithDescription("Contacts processed, by overall status"))
	retries, _ := m.Int64Counter("onboard.committee.retry_attempts",
		metric.WithDescription("Committee assignment attempts beyond the first"))
	alerts, _ := m.Int64Counter("onboard.failure_rate.alerts",
		metric.WithDescription("Failure-rate threshold alerts raised"))
	return &Metrics{
		contactsProcessed: contacts,
		retryAttempts:     retries,
		failureAlerts:     alerts,
	}
}

// ContactProcessed records one finished contact with its overall status.
func (m *Metrics) ContactProcessed(ctx context.Context, status string) {
	m.contactsProcessed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
}

// RetryAttempt records one committee assignment retry.
func (m *Metrics) RetryAttempt(ctx context.Context) {
	m.retryAttempts.Add(ctx, 1)
}

// FailureAlert records one failure-rate alert.
func (m *Metrics) FailureAlert(ctx context.Context) {
	m.failureAlerts.Add(ctx, 1)
}
