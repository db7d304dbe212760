// Package commands implements the migforge CLI commands.
package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/migforge/migforge/cli/internal/config"
	"github.com/migforge/migforge/cli/internal/ui"
	"github.com/migforge/migforge/cli/internal/version"
	"github.com/migforge/migforge/internal/debug"
	"github.com/migforge/migforge/telemetry"
)

// Execute builds the root command and runs it.
func Execute() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		ui.PrintError("Failed to load configuration: %v", err)
		return err
	}

	var (
		debugMode   bool
		noTelemetry bool
	)

	info := version.Get()
	rootCmd := &cobra.Command{
		Use:     "migforge",
		Short:   "Schema tooling for knex migration directories",
		Long:    "migforge replays a directory of knex-style migration files into the schema they build up, diffs schema states, and generates migration scripts and TypeScript interfaces from the result",
		Version: fmt.Sprintf("%s (commit: %s)", info.Version, info.GitCommit),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			debug.Init(debugMode)
			telemetry.Init(info.Version, !noTelemetry)
			debug.Debug("telemetry", "enabled", telemetry.IsEnabled())
		},
	}

	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noTelemetry, "no-telemetry", false, "Disable anonymous usage reporting")

	rootCmd.AddCommand(NewInitCommand(cfg))
	rootCmd.AddCommand(NewValidateCommand(cfg))
	rootCmd.AddCommand(NewStatusCommand(cfg))
	rootCmd.AddCommand(NewDiffCommand(cfg))
	rootCmd.AddCommand(NewGenerateCommand(cfg))
	rootCmd.AddCommand(NewTypesCommand(cfg))
	rootCmd.AddCommand(NewVersionCommand())

	start := time.Now()
	cmd, err := rootCmd.ExecuteC()
	telemetry.RecordCommand(cmd.Name(), time.Since(start), err)
	telemetry.Shutdown()
	return err
}
