package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Column defaults applied by the organizations and organization_users tables.
const (
	DefaultPrimaryColor = "#1E40AF"
	DefaultPlanType     = "basic"
	DefaultRole         = "member"
)

// Membership roles.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = DefaultRole
)

// Organization represents an organization (tenant) in the system.
// Each organization owns its own schema namespace, named by Schema.
type Organization struct {
	ID           int64
	UUID         uuid.UUID
	Name         string
	Slug         string // URL-safe, unique
	Schema       string // schema namespace, unique
	Active       bool
	Logo         *string
	PrimaryColor string
	PlanType     string
	SupportEmail *string
	Settings     json.RawMessage
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewOrganization describes the caller-supplied fields of an organization.
// Zero values are left to the database defaults.
type NewOrganization struct {
	Name         string
	Slug         string
	Schema       string
	Logo         *string
	PrimaryColor string
	PlanType     string
	SupportEmail *string
	Settings     json.RawMessage
}

// OrganizationUser links a user to an organization.
// Duplicate (OrganizationID, UserID) pairs are permitted by the table.
type OrganizationUser struct {
	ID             int64
	OrganizationID int64 // FK to organizations
	UserID         int64 // FK to users, owned outside this module
	Role           string
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
