package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/wolfeidau/tenantschema/internal/schema"
	"github.com/wolfeidau/tenantschema/internal/store"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected schema.FailureKind
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: schema.KindUnknown,
		},
		{
			name:     "missing users table",
			err:      &pgconn.PgError{Code: pgerrcode.UndefinedTable, Message: `relation "users" does not exist`},
			expected: schema.KindMissingReference,
		},
		{
			name:     "wrapped missing table",
			err:      fmt.Errorf("exec: %w", &pgconn.PgError{Code: pgerrcode.UndefinedTable}),
			expected: schema.KindMissingReference,
		},
		{
			name:     "insufficient privilege",
			err:      &pgconn.PgError{Code: pgerrcode.InsufficientPrivilege},
			expected: schema.KindPermission,
		},
		{
			name:     "syntax error",
			err:      &pgconn.PgError{Code: pgerrcode.SyntaxError},
			expected: schema.KindSyntax,
		},
		{
			name:     "unique violation",
			err:      &pgconn.PgError{Code: pgerrcode.UniqueViolation},
			expected: schema.KindConstraint,
		},
		{
			name:     "duplicate table",
			err:      &pgconn.PgError{Code: pgerrcode.DuplicateTable},
			expected: schema.KindConstraint,
		},
		{
			name:     "connection failure code",
			err:      &pgconn.PgError{Code: pgerrcode.ConnectionFailure},
			expected: schema.KindConnection,
		},
		{
			name:     "admin shutdown",
			err:      &pgconn.PgError{Code: pgerrcode.AdminShutdown},
			expected: schema.KindConnection,
		},
		{
			name:     "query canceled",
			err:      &pgconn.PgError{Code: pgerrcode.QueryCanceled},
			expected: schema.KindCanceled,
		},
		{
			name:     "context deadline",
			err:      fmt.Errorf("exec: %w", context.DeadlineExceeded),
			expected: schema.KindCanceled,
		},
		{
			name:     "unmapped code",
			err:      &pgconn.PgError{Code: pgerrcode.DiskFull},
			expected: schema.KindUnknown,
		},
		{
			name:     "plain error",
			err:      errors.New("boom"),
			expected: schema.KindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, ClassifyError(tt.err))
		})
	}
}

func TestMapPostgresError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		require.NoError(t, mapPostgresError(nil, "create organization"))
	})

	t.Run("unique violation", func(t *testing.T) {
		err := mapPostgresError(&pgconn.PgError{
			Code:           pgerrcode.UniqueViolation,
			ConstraintName: "organizations_slug_key",
		}, "create organization")
		require.ErrorIs(t, err, store.ErrOrganizationAlreadyExists)
		require.Contains(t, err.Error(), "organizations_slug_key")
	})

	t.Run("missing user", func(t *testing.T) {
		err := mapPostgresError(&pgconn.PgError{
			Code:           pgerrcode.ForeignKeyViolation,
			ConstraintName: constraintOrganizationUserUser,
		}, "add organization member")
		require.ErrorIs(t, err, store.ErrUserNotFound)
	})

	t.Run("missing organization", func(t *testing.T) {
		err := mapPostgresError(&pgconn.PgError{
			Code:           pgerrcode.ForeignKeyViolation,
			ConstraintName: constraintOrganizationUserOrg,
		}, "add organization member")
		require.ErrorIs(t, err, store.ErrOrganizationNotFound)
	})

	t.Run("not null", func(t *testing.T) {
		err := mapPostgresError(&pgconn.PgError{Code: pgerrcode.NotNullViolation}, "create organization")
		require.ErrorIs(t, err, store.ErrInvalidOrganization)
	})

	t.Run("other errors keep the cause", func(t *testing.T) {
		cause := errors.New("conn closed")
		err := mapPostgresError(cause, "list organizations")
		require.ErrorIs(t, err, cause)
		require.Contains(t, err.Error(), "failed to list organizations")
	})
}

func TestPoolConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := &PoolConfig{ConnString: "postgres://localhost/test"}
		cfg.ApplyDefaults()
		require.Equal(t, int32(4), cfg.MaxConns)
		require.Equal(t, int32(10), cfg.ConnectTimeout)
		require.NoError(t, cfg.Validate())
	})

	t.Run("missing connection string", func(t *testing.T) {
		cfg := &PoolConfig{}
		cfg.ApplyDefaults()
		require.Error(t, cfg.Validate())
	})

	t.Run("min above max", func(t *testing.T) {
		cfg := &PoolConfig{ConnString: "postgres://localhost/test", MaxConns: 2, MinConns: 3}
		require.Error(t, cfg.Validate())
	})

	t.Run("nil config", func(t *testing.T) {
		_, err := NewPool(context.Background(), nil)
		require.Error(t, err)
	})

	t.Run("unparseable connection string", func(t *testing.T) {
		_, err := NewPool(context.Background(), &PoolConfig{ConnString: "postgres://%zz"})
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to parse connection string")
	})
}
