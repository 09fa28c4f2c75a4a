package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

func Setup(dev bool) zerolog.Logger {
	return New(os.Stderr, dev)
}

// New builds the process logger writing to out: JSON at info level, or a
// console writer at debug level when dev is set.
func New(out io.Writer, dev bool) zerolog.Logger {
	var logger zerolog.Logger
	level := zerolog.InfoLevel
	if dev {
		level = zerolog.DebugLevel
	}

	logger = zerolog.New(out).Level(level).With().Timestamp().Caller().Logger()

	if dev {
		logger = logger.Output(zerolog.ConsoleWriter{Out: out, FormatTimestamp: func(i any) string {
			return time.Now().Format(time.RFC3339)
		}}).Level(level).With().Stack().Logger()
	}

	return logger
}

var _ pgx.QueryTracer = (*QueryTracer)(nil)

// QueryTracer logs every statement executed on a pgx connection.
// Successful statements are logged at debug level, failures at error level.
type QueryTracer struct {
	logger zerolog.Logger
}

func NewQueryTracer(logger zerolog.Logger) *QueryTracer {
	return &QueryTracer{logger: logger}
}

type queryStartKey struct{}

type queryStart struct {
	sql     string
	started time.Time
}

func (q *QueryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryStartKey{}, queryStart{sql: data.SQL, started: time.Now()})
}

func (q *QueryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, _ := ctx.Value(queryStartKey{}).(queryStart)

	event := q.logger.Debug()
	if data.Err != nil {
		event = q.logger.Error().Err(data.Err)
	}

	if !start.started.IsZero() {
		event = event.Dur("duration", time.Since(start.started))
	}

	event.
		Str("sql", summarize(start.sql)).
		Str("command", data.CommandTag.String()).
		Msg("sql statement")
}

// summarize collapses whitespace and truncates long statements for log lines.
func summarize(sql string) string {
	const maxLen = 120
	s := strings.Join(strings.Fields(sql), " ")
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
