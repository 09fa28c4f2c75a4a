package main

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/wolfeidau/tenantschema/cmd/tenantschema/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Debug   bool `help:"Enable debug mode."`
		Tracing bool `help:"Export traces and metrics over OTLP." env:"TENANTSCHEMA_TRACING"`
		Version kong.VersionFlag
		Migrate commands.MigrateCmd `cmd:"" default:"withargs" help:"Create the organization tables if they do not exist"`
		Plan    commands.PlanCmd    `cmd:"" help:"Print the ordered statement plan"`
		Status  commands.StatusCmd  `cmd:"" help:"Show which tables exist"`
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("tenantschema"),
		kong.Description("Idempotent bootstrap of the organizations schema."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(commands.NewGlobals(cli.Debug, cli.Tracing, version))
	cmd.FatalIfErrorf(err)
}
