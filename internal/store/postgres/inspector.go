package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfeidau/tenantschema/internal/schema"
)

// TableStatus describes one table the plan creates or depends on.
type TableStatus struct {
	Table    string   `yaml:"table" json:"table"`
	External bool     `yaml:"external" json:"external"`
	Exists   bool     `yaml:"exists" json:"exists"`
	Columns  []string `yaml:"columns,omitempty" json:"columns,omitempty"`
}

// Inspector reads table structure from information_schema.
type Inspector struct {
	pool *pgxpool.Pool
}

func NewInspector(pool *pgxpool.Pool) *Inspector {
	return &Inspector{pool: pool}
}

// Status reports the external prerequisites followed by the plan tables, in order.
// Tables are looked up in the first schema of the connection search_path.
func (i *Inspector) Status(ctx context.Context, plan schema.Plan) ([]TableStatus, error) {
	statuses := make([]TableStatus, 0, len(plan.External)+len(plan.Statements))
	for _, table := range plan.External {
		statuses = append(statuses, TableStatus{Table: table, External: true})
	}
	for _, table := range plan.Tables() {
		statuses = append(statuses, TableStatus{Table: table})
	}

	for idx := range statuses {
		columns, err := i.Columns(ctx, statuses[idx].Table)
		if err != nil {
			return nil, err
		}
		statuses[idx].Exists = len(columns) > 0
		statuses[idx].Columns = columns
	}

	return statuses, nil
}

// Columns returns the column names of table in ordinal order, or none if it doesn't exist.
func (i *Inspector) Columns(ctx context.Context, table string) ([]string, error) {
	query := `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1
		ORDER BY ordinal_position
	`

	rows, err := i.pool.Query(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns of %s: %w", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var column string
		if err := rows.Scan(&column); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		columns = append(columns, column)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns: %w", err)
	}

	return columns, nil
}
