package schema

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/wolfeidau/tenantschema/internal/telemetry"
)

// Conn is a single database connection used for the whole run.
type Conn interface {
	Exec(ctx context.Context, sql string) error
	// Release returns the connection to its owner. It is called exactly once.
	Release()
}

// Connector hands out the connection a run executes on.
type Connector interface {
	Acquire(ctx context.Context) (Conn, error)
}

// StepResult records one successfully applied statement.
type StepResult struct {
	Name     string        `yaml:"name" json:"name"`
	Table    string        `yaml:"table" json:"table"`
	Duration time.Duration `yaml:"duration" json:"duration"`
}

// Report describes how far a run progressed.
type Report struct {
	Steps    []StepResult  `yaml:"steps" json:"steps"`
	Total    int           `yaml:"total" json:"total"`
	Duration time.Duration `yaml:"duration" json:"duration"`
}

// Completed reports whether every statement in the plan was applied.
func (r *Report) Completed() bool {
	return r.Total > 0 && len(r.Steps) == r.Total
}

// Bootstrapper applies a Plan, one statement at a time, on a single connection.
type Bootstrapper struct {
	connector Connector
	plan      Plan
	logger    zerolog.Logger
	classify  Classifier
	metrics   *telemetry.Metrics
}

// Option configures a Bootstrapper.
type Option func(*Bootstrapper)

// WithPlan replaces DefaultPlan.
func WithPlan(plan Plan) Option {
	return func(b *Bootstrapper) {
		b.plan = plan
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(b *Bootstrapper) {
		b.logger = logger
	}
}

// WithClassifier sets the mapping from driver errors to failure kinds.
// Context cancellation is always reported as KindCanceled.
func WithClassifier(classify Classifier) Option {
	return func(b *Bootstrapper) {
		b.classify = classify
	}
}

func WithMetrics(metrics *telemetry.Metrics) Option {
	return func(b *Bootstrapper) {
		b.metrics = metrics
	}
}

// New creates a Bootstrapper that acquires its connection from connector.
func New(connector Connector, opts ...Option) *Bootstrapper {
	b := &Bootstrapper{
		connector: connector,
		plan:      DefaultPlan(),
		logger:    zerolog.Nop(),
		classify:  defaultClassifier,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.metrics == nil {
		b.metrics = telemetry.GetMetrics()
	}
	return b
}

// Plan returns the plan the bootstrapper executes.
func (b *Bootstrapper) Plan() Plan {
	return b.plan
}

// Run executes every statement of the plan in order. It stops at the first
// failure and returns a *StepError; statements applied before the failure are
// left in place. The report is always non-nil.
func (b *Bootstrapper) Run(ctx context.Context) (report *Report, err error) {
	started := time.Now()
	report = &Report{Total: len(b.plan.Statements)}

	ctx, span := telemetry.Tracer().Start(ctx, "schema.Bootstrap")
	defer func() {
		report.Duration = time.Since(started)
		b.record(ctx, report, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if err := b.plan.Validate(); err != nil {
		return report, b.fail("", err)
	}

	conn, err := b.connector.Acquire(ctx)
	if err != nil {
		return report, b.fail("", fmt.Errorf("failed to acquire connection: %w", err))
	}
	defer conn.Release()

	for _, stmt := range b.plan.Statements {
		step, err := b.apply(ctx, conn, stmt)
		if err != nil {
			return report, b.fail(stmt.Name, err)
		}
		report.Steps = append(report.Steps, step)

		b.logger.Info().
			Str("step", stmt.Name).
			Str("table", stmt.Table).
			Dur("duration", step.Duration).
			Msgf("Table %s is ready", stmt.Table)
	}

	b.logger.Info().
		Int("steps", len(report.Steps)).
		Dur("duration", time.Since(started)).
		Msg("Schema bootstrap completed")

	return report, nil
}

func (b *Bootstrapper) apply(ctx context.Context, conn Conn, stmt Statement) (StepResult, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "schema.Statement")
	defer span.End()
	span.SetAttributes(
		attribute.String("schema.step", stmt.Name),
		attribute.String("db.sql.table", stmt.Table),
	)

	b.logger.Debug().Str("step", stmt.Name).Str("table", stmt.Table).Msg("Applying statement")

	started := time.Now()
	if err := conn.Exec(ctx, stmt.SQL); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return StepResult{}, err
	}
	elapsed := time.Since(started)

	attrs := metric.WithAttributes(attribute.String("step", stmt.Name))
	b.metrics.StatementsAppliedTotal.Add(ctx, 1, attrs)
	b.metrics.StatementDuration.Record(ctx, float64(elapsed.Milliseconds()), attrs)

	return StepResult{Name: stmt.Name, Table: stmt.Table, Duration: elapsed}, nil
}

func (b *Bootstrapper) fail(step string, err error) *StepError {
	kind := defaultClassifier(err)
	if kind == KindUnknown && b.classify != nil {
		kind = b.classify(err)
	}

	stepErr := &StepError{Step: step, Kind: kind, Err: err}

	event := b.logger.Error().Err(err).Str("kind", string(kind))
	if step != "" {
		event = event.Str("step", step)
	}
	event.Msg("Schema bootstrap failed")

	return stepErr
}

func (b *Bootstrapper) record(ctx context.Context, report *Report, err error) {
	outcome := "success"
	if err != nil {
		outcome = string(KindOf(err))
		b.metrics.BootstrapFailuresTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", outcome)))
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	b.metrics.BootstrapRunsTotal.Add(ctx, 1, attrs)
	b.metrics.BootstrapRunDuration.Record(ctx, float64(report.Duration.Milliseconds()), attrs)
}
