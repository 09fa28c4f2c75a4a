package commands

import (
	"fmt"

	"github.com/wolfeidau/tenantschema/internal/schema"
)

type PlanCmd struct {
	Output  string `help:"output format" default:"yaml" enum:"yaml,json"`
	Explain bool   `help:"omit SQL and print only step order and prerequisites" default:"false"`
}

func (p *PlanCmd) Run(globals *Globals) error {
	plan := schema.DefaultPlan()
	if err := plan.Validate(); err != nil {
		return err
	}

	if p.Explain {
		for i := range plan.Statements {
			plan.Statements[i].SQL = ""
		}
	}

	if err := writeOutput(globals.Out, p.Output, plan); err != nil {
		return fmt.Errorf("failed to write plan: %w", err)
	}
	return nil
}
