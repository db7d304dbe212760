package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/migforge/migforge/cli/internal/config"
	"github.com/migforge/migforge/cli/internal/ui"
	"github.com/migforge/migforge/cli/internal/watch"
	"github.com/migforge/migforge/generator"
	"github.com/migforge/migforge/loader"
	"github.com/migforge/migforge/migrate"
)

// NewTypesCommand creates the types command.
func NewTypesCommand(cfg *config.Config) *cobra.Command {
	var (
		out       string
		watchMode bool
	)

	cmd := &cobra.Command{
		Use:   "types",
		Short: "Generate TypeScript interfaces from the merged schema",
		Long:  "Replay the migrations directory and emit one TypeScript interface per table in a .d.ts file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTypes(cfg, out, watchMode)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", cfg.TypesOut, "Path of the generated .d.ts file")
	cmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "Regenerate whenever the migrations directory changes")

	return cmd
}

func runTypes(cfg *config.Config, out string, watchMode bool) error {
	if !watchMode {
		eng := engine()
		defer eng.Close()
		return generateTypes(eng, cfg.MigrationsDir, out, true)
	}
	return runTypesWatch(cfg, out)
}

func generateTypes(eng *migrate.Engine, dir, out string, announce bool) error {
	result, set, err := eng.Load(dir)
	if err != nil {
		return err
	}
	reportWarnings(result.Diagnostics)

	if set.Len() == 0 {
		ui.PrintWarning("No tables in the merged schema; nothing to generate")
		return nil
	}

	if err := generator.NewGenerator(config.AppFs, set).GenerateTypesFile(out); err != nil {
		return err
	}
	if announce {
		ui.PrintSuccess("Wrote %s (%d interfaces)", out, set.Len())
	}
	return nil
}

func runTypesWatch(cfg *config.Config, out string) error {
	ui.PrintHeader("migforge", "Watch Mode")

	// One engine for the whole session, so unchanged files stay cached
	// between regenerations.
	eng := engine()
	defer eng.Close()

	callback := func() error {
		spinner, spinErr := ui.PrintSpinner("Regenerating interfaces...")
		err := generateTypes(eng, cfg.MigrationsDir, out, false)
		if spinErr != nil {
			return err
		}
		if err != nil {
			spinner.Fail(err.Error())
			return err
		}
		spinner.Success(fmt.Sprintf("Interfaces written to %s", out))
		return nil
	}

	watcher, err := watch.NewWatcher(cfg.MigrationsDir, loader.IsMigrationFile, callback)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Stop()

	// Start runs the callback once before waiting for changes
	if err := watcher.Start(); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	ui.PrintSuccess("Watching %s for changes... (Press Ctrl+C to stop)", cfg.MigrationsDir)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	ui.PrintInfo("\nStopping watch mode...")
	return nil
}
