package store

import (
	"context"
	"errors"

	"github.com/wolfeidau/tenantschema/internal/models"
)

// Sentinel errors for organization store operations
var (
	ErrOrganizationNotFound      = errors.New("organization not found")
	ErrOrganizationAlreadyExists = errors.New("organization already exists")
	ErrUserNotFound              = errors.New("user not found")
	ErrInvalidOrganization       = errors.New("invalid organization")
)

// OrganizationStore defines the interface for organization storage operations.
// Rows live in the structures created by the schema bootstrapper.
type OrganizationStore interface {
	// Create inserts a new organization and returns it with all defaults populated.
	// Returns ErrOrganizationAlreadyExists if the slug, schema or uuid is taken.
	Create(ctx context.Context, org *models.NewOrganization) (*models.Organization, error)

	// GetBySlug retrieves an organization by its slug.
	// Returns ErrOrganizationNotFound if the organization doesn't exist.
	GetBySlug(ctx context.Context, slug string) (*models.Organization, error)

	// List returns all organizations ordered by id.
	List(ctx context.Context) ([]*models.Organization, error)

	// AddMember links a user to an organization. An empty role uses the table default.
	// Returns ErrOrganizationNotFound or ErrUserNotFound if either side is missing.
	AddMember(ctx context.Context, organizationID, userID int64, role string) (*models.OrganizationUser, error)

	// ListMembers returns the memberships of an organization ordered by id.
	ListMembers(ctx context.Context, organizationID int64) ([]*models.OrganizationUser, error)
}

// ValidateNewOrganization checks the fields every organization must carry.
func ValidateNewOrganization(org *models.NewOrganization) error {
	if org == nil {
		return ErrInvalidOrganization
	}
	if org.Name == "" {
		return errors.Join(ErrInvalidOrganization, errors.New("name is required"))
	}
	if org.Slug == "" {
		return errors.Join(ErrInvalidOrganization, errors.New("slug is required"))
	}
	if org.Schema == "" {
		return errors.Join(ErrInvalidOrganization, errors.New("schema is required"))
	}
	return nil
}
