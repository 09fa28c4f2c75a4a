package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/tenantschema/internal/models"
	"github.com/wolfeidau/tenantschema/internal/store"
)

const organizationColumns = `id, uuid, name, slug, schema, active, logo, primary_color,
	plan_type, support_email, settings, created_at, updated_at`

const membershipColumns = `id, organization_id, user_id, role, active, created_at, updated_at`

var _ store.OrganizationStore = (*OrganizationStore)(nil)

// OrganizationStore implements store.OrganizationStore using PostgreSQL.
type OrganizationStore struct {
	pool *pgxpool.Pool
}

// NewOrganizationStore creates a new PostgreSQL-backed organization store.
func NewOrganizationStore(pool *pgxpool.Pool) *OrganizationStore {
	return &OrganizationStore{
		pool: pool,
	}
}

// Create inserts an organization. Optional fields left empty fall back to the column defaults.
func (s *OrganizationStore) Create(ctx context.Context, org *models.NewOrganization) (*models.Organization, error) {
	if err := store.ValidateNewOrganization(org); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO organizations (
			name, slug, schema, logo, support_email, primary_color, plan_type, settings
		) VALUES (
			$1, $2, $3, $4, $5,
			COALESCE(NULLIF($6::text, ''), '#1E40AF'),
			COALESCE(NULLIF($7::text, ''), 'basic'),
			COALESCE($8::jsonb, '{}'::jsonb)
		)
		RETURNING ` + organizationColumns

	var settings []byte
	if len(org.Settings) > 0 {
		settings = org.Settings
	}

	created, err := scanOrganization(s.pool.QueryRow(ctx, query,
		org.Name,
		org.Slug,
		org.Schema,
		org.Logo,
		org.SupportEmail,
		org.PrimaryColor,
		org.PlanType,
		settings,
	))
	if err != nil {
		return nil, mapPostgresError(err, "create organization")
	}

	log.Debug().
		Int64("id", created.ID).
		Str("slug", created.Slug).
		Str("schema", created.Schema).
		Msg("Created organization")

	return created, nil
}

// GetBySlug retrieves an organization by slug.
func (s *OrganizationStore) GetBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE slug = $1`

	org, err := scanOrganization(s.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrOrganizationNotFound
		}
		return nil, mapPostgresError(err, "get organization")
	}

	return org, nil
}

// List returns all organizations ordered by id.
func (s *OrganizationStore) List(ctx context.Context) ([]*models.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations ORDER BY id`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []*models.Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		orgs = append(orgs, org)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating organizations: %w", err)
	}

	return orgs, nil
}

// AddMember links a user to an organization.
func (s *OrganizationStore) AddMember(ctx context.Context, organizationID, userID int64, role string) (*models.OrganizationUser, error) {
	query := `
		INSERT INTO organization_users (organization_id, user_id, role)
		VALUES ($1, $2, COALESCE(NULLIF($3::text, ''), 'member'))
		RETURNING ` + membershipColumns

	member, err := scanMembership(s.pool.QueryRow(ctx, query, organizationID, userID, role))
	if err != nil {
		return nil, mapPostgresError(err, "add organization member")
	}

	log.Debug().
		Int64("organization_id", organizationID).
		Int64("user_id", userID).
		Str("role", member.Role).
		Msg("Added organization member")

	return member, nil
}

// ListMembers returns the memberships of an organization ordered by id.
func (s *OrganizationStore) ListMembers(ctx context.Context, organizationID int64) ([]*models.OrganizationUser, error) {
	query := `SELECT ` + membershipColumns + ` FROM organization_users WHERE organization_id = $1 ORDER BY id`

	rows, err := s.pool.Query(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organization members: %w", err)
	}
	defer rows.Close()

	var members []*models.OrganizationUser
	for rows.Next() {
		member, err := scanMembership(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan organization member: %w", err)
		}
		members = append(members, member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating organization members: %w", err)
	}

	return members, nil
}

func scanOrganization(row pgx.Row) (*models.Organization, error) {
	var org models.Organization
	var settings []byte
	err := row.Scan(
		&org.ID,
		&org.UUID,
		&org.Name,
		&org.Slug,
		&org.Schema,
		&org.Active,
		&org.Logo,
		&org.PrimaryColor,
		&org.PlanType,
		&org.SupportEmail,
		&settings,
		&org.CreatedAt,
		&org.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	org.Settings = settings
	return &org, nil
}

func scanMembership(row pgx.Row) (*models.OrganizationUser, error) {
	var member models.OrganizationUser
	err := row.Scan(
		&member.ID,
		&member.OrganizationID,
		&member.UserID,
		&member.Role,
		&member.Active,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &member, nil
}
