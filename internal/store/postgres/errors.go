package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/wolfeidau/tenantschema/internal/schema"
	"github.com/wolfeidau/tenantschema/internal/store"
)

// Constraint names generated by PostgreSQL for the bootstrap tables.
const (
	constraintOrganizationUserOrg  = "organization_users_organization_id_fkey"
	constraintOrganizationUserUser = "organization_users_user_id_fkey"
)

// ClassifyError maps PostgreSQL and connectivity errors to a schema.FailureKind.
func ClassifyError(err error) schema.FailureKind {
	if err == nil {
		return schema.KindUnknown
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return schema.KindCanceled
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classifyCode(pgErr.Code)
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return schema.KindConnection
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return schema.KindConnection
	}

	return schema.KindUnknown
}

func classifyCode(code string) schema.FailureKind {
	switch {
	case code == pgerrcode.QueryCanceled:
		return schema.KindCanceled

	case code == pgerrcode.UndefinedTable,
		code == pgerrcode.UndefinedColumn,
		code == pgerrcode.UndefinedObject,
		code == pgerrcode.InvalidForeignKey,
		code == pgerrcode.InvalidSchemaName:
		return schema.KindMissingReference

	case code == pgerrcode.InsufficientPrivilege,
		code == pgerrcode.InvalidAuthorizationSpecification,
		code == pgerrcode.InvalidPassword:
		return schema.KindPermission

	case code == pgerrcode.SyntaxError,
		code == pgerrcode.UndefinedFunction,
		code == pgerrcode.DatatypeMismatch,
		code == pgerrcode.InvalidTableDefinition,
		code == pgerrcode.InvalidColumnDefinition:
		return schema.KindSyntax

	case code == pgerrcode.DuplicateTable,
		code == pgerrcode.DuplicateObject,
		pgerrcode.IsIntegrityConstraintViolation(code):
		return schema.KindConstraint

	case pgerrcode.IsConnectionException(code),
		code == pgerrcode.AdminShutdown,
		code == pgerrcode.CrashShutdown,
		code == pgerrcode.CannotConnectNow,
		code == pgerrcode.TooManyConnections:
		return schema.KindConnection

	default:
		return schema.KindUnknown
	}
}

// mapPostgresError maps PostgreSQL-specific errors to store sentinel errors.
// Returns the original error wrapped with context if no sentinel applies.
func mapPostgresError(err error, action string) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("failed to %s: %w", action, err)
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return fmt.Errorf("%w: %s", store.ErrOrganizationAlreadyExists, pgErr.ConstraintName)

	case pgerrcode.ForeignKeyViolation:
		switch pgErr.ConstraintName {
		case constraintOrganizationUserUser:
			return fmt.Errorf("%w: %s", store.ErrUserNotFound, pgErr.Detail)
		case constraintOrganizationUserOrg:
			return fmt.Errorf("%w: %s", store.ErrOrganizationNotFound, pgErr.Detail)
		}
		return fmt.Errorf("foreign key violation: %s: %w", pgErr.ConstraintName, err)

	case pgerrcode.CheckViolation, pgerrcode.NotNullViolation:
		return fmt.Errorf("%w: %s", store.ErrInvalidOrganization, pgErr.Message)

	default:
		return fmt.Errorf("failed to %s: postgres error [%s]: %s (detail: %s, hint: %s): %w",
			action, pgErr.Code, pgErr.Message, pgErr.Detail, pgErr.Hint, err)
	}
}
