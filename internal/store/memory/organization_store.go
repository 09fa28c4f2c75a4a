package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wolfeidau/tenantschema/internal/models"
	"github.com/wolfeidau/tenantschema/internal/store"
)

// OrganizationStore implements store.OrganizationStore using in-memory storage.
// It applies the same defaults and uniqueness rules as the organizations table.
// This implementation is for testing only - data is lost on restart.
type OrganizationStore struct {
	mu sync.RWMutex

	organizations map[int64]*models.Organization       // id -> Organization
	members       map[int64][]*models.OrganizationUser // organization id -> memberships
	users         map[int64]bool

	nextOrgID    int64
	nextMemberID int64
	now          func() time.Time
}

// NewOrganizationStore creates a new in-memory organization store.
func NewOrganizationStore() *OrganizationStore {
	return &OrganizationStore{
		organizations: make(map[int64]*models.Organization),
		members:       make(map[int64][]*models.OrganizationUser),
		users:         make(map[int64]bool),
		now:           time.Now,
	}
}

// AddUser registers a user id so memberships can reference it.
func (s *OrganizationStore) AddUser(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = true
}

// Create creates a new organization in memory.
func (s *OrganizationStore) Create(ctx context.Context, org *models.NewOrganization) (*models.Organization, error) {
	if err := store.ValidateNewOrganization(org); err != nil {
		return nil, err
	}
	if len(org.Settings) > 0 && !json.Valid(org.Settings) {
		return nil, fmt.Errorf("%w: settings is not valid JSON", store.ErrInvalidOrganization)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.organizations {
		if existing.Slug == org.Slug {
			return nil, fmt.Errorf("%w: organizations_slug_key", store.ErrOrganizationAlreadyExists)
		}
		if existing.Schema == org.Schema {
			return nil, fmt.Errorf("%w: organizations_schema_key", store.ErrOrganizationAlreadyExists)
		}
	}

	s.nextOrgID++
	now := s.now()
	created := &models.Organization{
		ID:           s.nextOrgID,
		UUID:         uuid.New(),
		Name:         org.Name,
		Slug:         org.Slug,
		Schema:       org.Schema,
		Active:       true,
		Logo:         org.Logo,
		PrimaryColor: org.PrimaryColor,
		PlanType:     org.PlanType,
		SupportEmail: org.SupportEmail,
		Settings:     org.Settings,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if created.PrimaryColor == "" {
		created.PrimaryColor = models.DefaultPrimaryColor
	}
	if created.PlanType == "" {
		created.PlanType = models.DefaultPlanType
	}
	if len(created.Settings) == 0 {
		created.Settings = json.RawMessage(`{}`)
	}

	s.organizations[created.ID] = created

	// Clone to avoid external modifications
	clone := *created
	return &clone, nil
}

// GetBySlug retrieves an organization by slug.
func (s *OrganizationStore) GetBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, org := range s.organizations {
		if org.Slug == slug {
			clone := *org
			return &clone, nil
		}
	}

	return nil, store.ErrOrganizationNotFound
}

// List returns all organizations ordered by id.
func (s *OrganizationStore) List(ctx context.Context) ([]*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orgs := make([]*models.Organization, 0, len(s.organizations))
	for _, org := range s.organizations {
		clone := *org
		orgs = append(orgs, &clone)
	}
	sort.Slice(orgs, func(i, j int) bool {
		return orgs[i].ID < orgs[j].ID
	})

	return orgs, nil
}

// AddMember links a registered user to an existing organization.
// Duplicate memberships are accepted, matching the table definition.
func (s *OrganizationStore) AddMember(ctx context.Context, organizationID, userID int64, role string) (*models.OrganizationUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.organizations[organizationID]; !exists {
		return nil, store.ErrOrganizationNotFound
	}
	if !s.users[userID] {
		return nil, store.ErrUserNotFound
	}

	if role == "" {
		role = models.DefaultRole
	}

	s.nextMemberID++
	now := s.now()
	member := &models.OrganizationUser{
		ID:             s.nextMemberID,
		OrganizationID: organizationID,
		UserID:         userID,
		Role:           role,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.members[organizationID] = append(s.members[organizationID], member)

	clone := *member
	return &clone, nil
}

// ListMembers returns the memberships of an organization ordered by id.
func (s *OrganizationStore) ListMembers(ctx context.Context, organizationID int64) ([]*models.OrganizationUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	members := make([]*models.OrganizationUser, 0, len(s.members[organizationID]))
	for _, member := range s.members[organizationID] {
		clone := *member
		members = append(members, &clone)
	}

	return members, nil
}
