package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultPlan(t *testing.T) {
	plan := DefaultPlan()
	require.NoError(t, plan.Validate())
	require.Equal(t, []string{TableOrganizations, TableOrganizationUsers}, plan.Tables())
	require.Equal(t, []string{TableUsers}, plan.External)

	for _, stmt := range plan.Statements {
		require.True(t, strings.HasPrefix(stmt.SQL, "CREATE TABLE IF NOT EXISTS "+stmt.Table), stmt.Name)
	}

	orgs := plan.Statements[0].SQL
	for _, column := range []string{
		"id", "uuid", "name", "slug", "schema", "active", "logo", "primary_color",
		"plan_type", "support_email", "settings", "created_at", "updated_at",
	} {
		require.Contains(t, orgs, "\n    "+column+" ", column)
	}
	require.Contains(t, orgs, "DEFAULT '#1E40AF'")
	require.Contains(t, orgs, "DEFAULT 'basic'")

	members := plan.Statements[1].SQL
	require.Contains(t, members, "REFERENCES organizations(id)")
	require.Contains(t, members, "REFERENCES users(id)")
	require.Contains(t, members, "DEFAULT 'member'")
	require.NotContains(t, members, "UNIQUE")
}

func TestPlan_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Plan)
		wantErr string
	}{
		{
			name:    "empty plan",
			mutate:  func(p *Plan) { p.Statements = nil },
			wantErr: "no statements",
		},
		{
			name: "dependent statement first",
			mutate: func(p *Plan) {
				p.Statements[0], p.Statements[1] = p.Statements[1], p.Statements[0]
			},
			wantErr: `requires "organizations" before it is created`,
		},
		{
			name:    "external prerequisite undeclared",
			mutate:  func(p *Plan) { p.External = nil },
			wantErr: `requires "users" before it is created`,
		},
		{
			name:    "duplicate name",
			mutate:  func(p *Plan) { p.Statements[1].Name = p.Statements[0].Name },
			wantErr: "duplicate statement name",
		},
		{
			name:    "blank SQL",
			mutate:  func(p *Plan) { p.Statements[0].SQL = "  " },
			wantErr: "has no SQL",
		},
		{
			name: "table defined twice",
			mutate: func(p *Plan) {
				p.Statements[1].Table = TableOrganizations
				p.Statements[1].Requires = nil
			},
			wantErr: "defined twice",
		},
		{
			name:    "self requirement",
			mutate:  func(p *Plan) { p.Statements[0].Requires = []string{TableOrganizations} },
			wantErr: "requires its own table",
		},
		{
			name:    "missing table",
			mutate:  func(p *Plan) { p.Statements[0].Table = "" },
			wantErr: "has no table",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := DefaultPlan()
			tt.mutate(&plan)

			err := plan.Validate()
			require.ErrorIs(t, err, ErrInvalidPlan)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
