package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/migforge/migforge/cli/internal/config"
	"github.com/migforge/migforge/cli/internal/ui"
	"github.com/migforge/migforge/generator"
	"github.com/migforge/migforge/migrate/gen"
)

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(cfg *config.Config) *cobra.Command {
	var (
		out   string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "generate [name]",
		Short: "Generate a migration script for pending schema changes",
		Long: `Turn the schema changes since the last snapshot into a migration script.

This command will:
- Replay the migrations directory into the current schema
- Diff it against the recorded snapshot and classify every change
- Render the changes as a knex migration file
- Refresh the generated TypeScript interfaces
- Record the new snapshot`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "schema changes"
			if len(args) > 0 {
				name = args[0]
			}
			return runGenerate(cfg, name, out, force)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", cfg.OutDir, "Directory the migration file is written to")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip the confirmation prompt for destructive operations")

	return cmd
}

func runGenerate(cfg *config.Config, name, out string, force bool) error {
	ui.PrintHeader("migforge", "Generate Migration")

	info := pterm.Info.WithPrefix(pterm.Prefix{
		Text:  "INFO",
		Style: pterm.NewStyle(pterm.FgBlue),
	})
	info.Println(fmt.Sprintf("Migrations: %s", cfg.MigrationsDir))
	info.Println(fmt.Sprintf("Output: %s", out))
	info.Println(fmt.Sprintf("Snapshot: %s", cfg.SnapshotPath))
	fmt.Println()

	eng := engine()
	defer eng.Close()

	spinner, _ := ui.PrintSpinner("Replaying migrations...")
	plan, err := eng.Plan(cfg.MigrationsDir, cfg.SnapshotPath)
	spinner.Stop()
	if err != nil {
		return err
	}
	reportWarnings(plan.Diagnostics)

	if plan.Empty() {
		ui.PrintInfo("No schema changes since the last snapshot; nothing to generate")
		return nil
	}

	ui.PrintSection("Planned operations")
	ui.PrintTable([]string{"Change", "Risk"}, operationRows(plan.Operations))
	fmt.Println()

	script := plan.Script()

	if unsafe := plan.Unsafe(); unsafe > 0 && !force {
		ui.PrintCodeBlock(script, "js")
		confirmed := false
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("%d operation(s) drop data (recreated columns, dropped tables or columns). Write the script anyway?", unsafe),
			Default: false,
		}
		if err := survey.AskOne(prompt, &confirmed); err != nil {
			return err
		}
		if !confirmed {
			ui.PrintWarning("Generation cancelled")
			return nil
		}
	}

	fileName := gen.FileName(time.Now(), name)
	path := filepath.Join(out, fileName)
	if err := config.AppFs.MkdirAll(out, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := afero.WriteFile(config.AppFs, path, []byte(script), 0644); err != nil {
		return fmt.Errorf("failed to write migration: %w", err)
	}
	ui.PrintSuccess("Wrote %s", path)

	if plan.Current.Len() > 0 {
		if err := generator.NewGenerator(config.AppFs, plan.Current).GenerateTypesFile(cfg.TypesOut); err != nil {
			return fmt.Errorf("failed to regenerate interfaces: %w", err)
		}
		ui.PrintSuccess("Wrote %s", cfg.TypesOut)
	}

	if err := eng.Record(cfg.SnapshotPath, plan); err != nil {
		return fmt.Errorf("failed to record snapshot: %w", err)
	}
	ui.PrintSuccess("Recorded snapshot at %s", cfg.SnapshotPath)

	fmt.Println()
	ui.PrintSection("Next Steps")
	ui.PrintList([]string{
		"Review the raw statements in the script before running it",
		fmt.Sprintf("Apply it where it belongs, e.g. copy %s into that project's knex migrations", path),
		fmt.Sprintf("Commit %s so the next diff starts from this state", cfg.SnapshotPath),
	})

	return nil
}
