package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/tenantschema"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Run metrics
	BootstrapRunsTotal     metric.Int64Counter
	BootstrapFailuresTotal metric.Int64Counter
	BootstrapRunDuration   metric.Float64Histogram

	// Statement metrics
	StatementsAppliedTotal metric.Int64Counter
	StatementDuration      metric.Float64Histogram
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = NewMetrics(otel.GetMeterProvider())
	})
	return metrics
}

// NewMetrics creates the instruments on the given provider.
// Instrument creation errors leave a no-op instrument in place.
func NewMetrics(provider metric.MeterProvider) *Metrics {
	meter := provider.Meter(meterName)

	m := &Metrics{}

	m.BootstrapRunsTotal, _ = meter.Int64Counter(
		"tenantschema.bootstrap.runs.total",
		metric.WithDescription("Total number of schema bootstrap runs"),
		metric.WithUnit("{run}"),
	)

	m.BootstrapFailuresTotal, _ = meter.Int64Counter(
		"tenantschema.bootstrap.failures.total",
		metric.WithDescription("Total number of failed schema bootstrap runs"),
		metric.WithUnit("{run}"),
	)

	m.BootstrapRunDuration, _ = meter.Float64Histogram(
		"tenantschema.bootstrap.run.duration",
		metric.WithDescription("Duration of schema bootstrap runs"),
		metric.WithUnit("ms"),
	)

	m.StatementsAppliedTotal, _ = meter.Int64Counter(
		"tenantschema.bootstrap.statements.applied.total",
		metric.WithDescription("Total number of structure-definition statements executed successfully"),
		metric.WithUnit("{statement}"),
	)

	m.StatementDuration, _ = meter.Float64Histogram(
		"tenantschema.bootstrap.statement.duration",
		metric.WithDescription("Duration of structure-definition statements"),
		metric.WithUnit("ms"),
	)

	return m
}
