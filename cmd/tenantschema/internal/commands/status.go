package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/wolfeidau/tenantschema/internal/schema"
	"github.com/wolfeidau/tenantschema/internal/store/postgres"
)

type StatusCmd struct {
	Database DatabaseFlags `embed:""`
	Output   string        `help:"output format" default:"table" enum:"table,yaml,json"`
}

func (s *StatusCmd) Run(ctx context.Context, globals *Globals) error {
	log := globals.logger()

	if err := s.Database.Validate(); err != nil {
		return err
	}

	pool, err := s.Database.connect(ctx, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	statuses, err := postgres.NewInspector(pool).Status(ctx, schema.DefaultPlan())
	if err != nil {
		return err
	}

	if s.Output != "table" {
		return writeOutput(globals.Out, s.Output, statuses)
	}

	printStatus(globals.Out, statuses)

	for _, status := range statuses {
		if !status.Exists {
			log.Warn().Str("table", status.Table).Bool("external", status.External).Msg("Table is missing")
		}
	}
	return nil
}

func printStatus(w io.Writer, statuses []postgres.TableStatus) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Table", "Owner", "Exists", "Columns"})
	table.SetAutoWrapText(false)

	for _, status := range statuses {
		owner := "bootstrap"
		if status.External {
			owner = "external"
		}
		table.Append([]string{
			status.Table,
			owner,
			strconv.FormatBool(status.Exists),
			fmt.Sprintf("%d: %s", len(status.Columns), strings.Join(status.Columns, ", ")),
		})
	}

	table.Render()
}
