package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/wolfeidau/tenantschema/internal/logger"
	"github.com/wolfeidau/tenantschema/internal/store/postgres"
	"github.com/wolfeidau/tenantschema/internal/telemetry"
)

const serviceName = "tenantschema"

type Globals struct {
	Debug   bool
	Tracing bool
	Version string

	Out io.Writer
	Err io.Writer
}

func NewGlobals(debug, tracing bool, version string) *Globals {
	return &Globals{
		Debug:   debug,
		Tracing: tracing,
		Version: version,
		Out:     os.Stdout,
		Err:     os.Stderr,
	}
}

func (g *Globals) logger() zerolog.Logger {
	return logger.New(g.Err, g.Debug)
}

// setupTelemetry installs OTLP exporters when tracing is enabled and returns
// a function flushing them.
func (g *Globals) setupTelemetry(ctx context.Context, log zerolog.Logger) func() {
	if !g.Tracing {
		return func() {}
	}

	shutdown, err := telemetry.Init(ctx, log, telemetry.Config{
		ServiceName: serviceName,
		Version:     g.Version,
		Traces:      true,
		Metrics:     true,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without it")
		return func() {}
	}

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Failed to shutdown telemetry")
		}
	}
}

// DatabaseFlags configures the connection used by commands that talk to PostgreSQL.
type DatabaseFlags struct {
	URL            string `help:"PostgreSQL connection string" env:"DATABASE_URL" name:"database-url"`
	ConnectRetries uint   `help:"extra connection attempts while the database starts" default:"0" env:"TENANTSCHEMA_CONNECT_RETRIES"`
	ConnectTimeout int32  `help:"connection timeout in seconds" default:"10" env:"TENANTSCHEMA_CONNECT_TIMEOUT"`
	TraceSQL       bool   `help:"log every SQL statement" default:"false" env:"TENANTSCHEMA_TRACE_SQL"`
}

func (d *DatabaseFlags) Validate() error {
	if d.URL == "" {
		return errors.New("PostgreSQL connection string is required (--database-url or DATABASE_URL)")
	}
	return nil
}

func (d *DatabaseFlags) poolConfig(log zerolog.Logger) *postgres.PoolConfig {
	cfg := &postgres.PoolConfig{
		ConnString:     d.URL,
		ConnectRetries: d.ConnectRetries,
		ConnectTimeout: d.ConnectTimeout,
		Logger:         &log,
	}
	if d.TraceSQL {
		cfg.Tracer = logger.NewQueryTracer(log)
	}
	return cfg
}

func (d *DatabaseFlags) connect(ctx context.Context, log zerolog.Logger) (*pgxpool.Pool, error) {
	pool, err := postgres.NewPool(ctx, d.poolConfig(log))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return pool, nil
}

// writeOutput encodes v to w as yaml or json.
func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
