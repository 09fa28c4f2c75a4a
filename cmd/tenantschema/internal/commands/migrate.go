package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/wolfeidau/tenantschema/internal/schema"
	"github.com/wolfeidau/tenantschema/internal/store/postgres"
)

type MigrateCmd struct {
	Database DatabaseFlags `embed:""`
	Output   string        `help:"report format" default:"text" enum:"text,yaml,json" env:"TENANTSCHEMA_OUTPUT"`
}

func (m *MigrateCmd) Run(ctx context.Context, globals *Globals) error {
	log := globals.logger()

	if err := m.Database.Validate(); err != nil {
		return err
	}

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting schema bootstrap")

	flush := globals.setupTelemetry(ctx, log)
	defer flush()

	pool, err := m.Database.connect(ctx, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	b := schema.New(postgres.NewConnector(pool),
		schema.WithLogger(log),
		schema.WithClassifier(postgres.ClassifyError),
	)

	report, runErr := b.Run(ctx)

	if err := m.printReport(globals.Out, report, runErr); err != nil {
		return err
	}

	return runErr
}

func (m *MigrateCmd) printReport(w io.Writer, report *schema.Report, runErr error) error {
	if m.Output != "text" {
		out := struct {
			schema.Report `yaml:",inline"`

			Failed string `yaml:"failed,omitempty" json:"failed,omitempty"`
			Kind   string `yaml:"kind,omitempty" json:"kind,omitempty"`
		}{Report: *report}
		if runErr != nil {
			out.Failed = runErr.Error()
			out.Kind = string(schema.KindOf(runErr))
		}
		return writeOutput(w, m.Output, out)
	}

	for _, step := range report.Steps {
		if _, err := fmt.Fprintf(w, "applied  %-28s %s (%s)\n", step.Name, step.Table, step.Duration); err != nil {
			return err
		}
	}

	summary := fmt.Sprintf("%d/%d statements applied in %s", len(report.Steps), report.Total, report.Duration)
	if runErr != nil {
		summary = fmt.Sprintf("%s, stopped: %s", summary, schema.KindOf(runErr))
	}
	_, err := fmt.Fprintln(w, summary)
	return err
}
