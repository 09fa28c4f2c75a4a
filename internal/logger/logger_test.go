package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("json at info level", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(&buf, false)

		log.Debug().Msg("hidden")
		log.Info().Str("step", "create_organizations").Msg("shown")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
		require.Equal(t, "shown", entry["message"])
		require.Equal(t, "create_organizations", entry["step"])
		require.Contains(t, entry, "time")
		require.Contains(t, entry, "caller")
	})

	t.Run("console at debug level", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(&buf, true)

		log.Debug().Msg("visible in dev")
		require.Contains(t, buf.String(), "visible in dev")
		require.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
	})
}

func TestQueryTracer(t *testing.T) {
	tests := []struct {
		name      string
		sql       string
		err       error
		wantLevel string
	}{
		{
			name:      "successful statement",
			sql:       "CREATE TABLE IF NOT EXISTS organizations (\n    id SERIAL PRIMARY KEY\n)",
			wantLevel: "debug",
		},
		{
			name:      "failed statement",
			sql:       "CREATE TABLE IF NOT EXISTS organization_users ()",
			err:       errors.New(`relation "users" does not exist`),
			wantLevel: "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tracer := NewQueryTracer(zerolog.New(&buf).Level(zerolog.DebugLevel))

			ctx := tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: tt.sql})
			tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{
				CommandTag: pgconn.NewCommandTag("CREATE TABLE"),
				Err:        tt.err,
			})

			var entry map[string]any
			require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
			require.Equal(t, tt.wantLevel, entry["level"])
			require.Equal(t, "sql statement", entry["message"])
			require.Equal(t, "CREATE TABLE", entry["command"])
			require.NotContains(t, entry["sql"], "\n")
			require.Contains(t, entry, "duration")
			if tt.err != nil {
				require.Equal(t, tt.err.Error(), entry["error"])
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	require.Equal(t, "SELECT 1", summarize("  SELECT\n\t1  "))

	long := summarize(strings.Repeat("x", 200))
	require.Len(t, long, 123)
	require.True(t, strings.HasSuffix(long, "..."))
}
