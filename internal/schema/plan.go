package schema

import (
	"embed"
	"errors"
	"fmt"
	"strings"
)

//go:embed sql/*.sql
var statementsFS embed.FS

// Table names owned by the bootstrapper.
const (
	TableOrganizations     = "organizations"
	TableOrganizationUsers = "organization_users"

	// TableUsers is defined by another system and must already exist.
	TableUsers = "users"
)

// ErrInvalidPlan is returned by Plan.Validate when the statement ordering is broken.
var ErrInvalidPlan = errors.New("invalid schema plan")

// Statement is a single structure-definition statement.
type Statement struct {
	// Name identifies the step in notices and reports.
	Name string `yaml:"name" json:"name"`
	// Table is the structure created by SQL.
	Table string `yaml:"table" json:"table"`
	// Requires lists the tables that must exist before SQL can run.
	Requires []string `yaml:"requires,omitempty" json:"requires,omitempty"`
	SQL      string   `yaml:"sql" json:"sql"`
}

// Plan is an ordered sequence of statements with declared prerequisites.
type Plan struct {
	Statements []Statement `yaml:"statements" json:"statements"`
	// External tables are expected to exist before the plan runs.
	External []string `yaml:"external,omitempty" json:"external,omitempty"`
}

// DefaultPlan returns the fixed plan creating organizations then organization_users.
func DefaultPlan() Plan {
	return Plan{
		Statements: []Statement{
			{
				Name:  "create_organizations",
				Table: TableOrganizations,
				SQL:   mustReadStatement("001_create_organizations.sql"),
			},
			{
				Name:     "create_organization_users",
				Table:    TableOrganizationUsers,
				Requires: []string{TableOrganizations, TableUsers},
				SQL:      mustReadStatement("002_create_organization_users.sql"),
			},
		},
		External: []string{TableUsers},
	}
}

func mustReadStatement(name string) string {
	content, err := statementsFS.ReadFile("sql/" + name)
	if err != nil {
		panic(fmt.Sprintf("schema: embedded statement %s missing: %v", name, err))
	}
	return strings.TrimSpace(string(content))
}

// Validate checks that every requirement is satisfied by an external table or
// by a statement that runs earlier in the plan.
func (p Plan) Validate() error {
	if len(p.Statements) == 0 {
		return fmt.Errorf("%w: no statements", ErrInvalidPlan)
	}

	available := make(map[string]bool, len(p.External)+len(p.Statements))
	for _, table := range p.External {
		available[table] = true
	}

	names := make(map[string]bool, len(p.Statements))
	for i, stmt := range p.Statements {
		if stmt.Name == "" {
			return fmt.Errorf("%w: statement %d has no name", ErrInvalidPlan, i)
		}
		if names[stmt.Name] {
			return fmt.Errorf("%w: duplicate statement name %q", ErrInvalidPlan, stmt.Name)
		}
		names[stmt.Name] = true

		if strings.TrimSpace(stmt.SQL) == "" {
			return fmt.Errorf("%w: statement %q has no SQL", ErrInvalidPlan, stmt.Name)
		}
		if stmt.Table == "" {
			return fmt.Errorf("%w: statement %q has no table", ErrInvalidPlan, stmt.Name)
		}

		for _, req := range stmt.Requires {
			if req == stmt.Table {
				return fmt.Errorf("%w: statement %q requires its own table", ErrInvalidPlan, stmt.Name)
			}
			if !available[req] {
				return fmt.Errorf("%w: statement %q requires %q before it is created", ErrInvalidPlan, stmt.Name, req)
			}
		}

		if available[stmt.Table] {
			return fmt.Errorf("%w: table %q is defined twice", ErrInvalidPlan, stmt.Table)
		}
		available[stmt.Table] = true
	}

	return nil
}

// Tables returns the tables created by the plan, in execution order.
func (p Plan) Tables() []string {
	tables := make([]string, 0, len(p.Statements))
	for _, stmt := range p.Statements {
		tables = append(tables, stmt.Table)
	}
	return tables
}
