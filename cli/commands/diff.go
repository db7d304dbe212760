package commands

import (
	"github.com/spf13/cobra"

	"github.com/migforge/migforge/cli/internal/config"
	"github.com/migforge/migforge/cli/internal/ui"
)

// NewDiffCommand creates the diff command.
func NewDiffCommand(cfg *config.Config) *cobra.Command {
	var preview bool

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Show schema changes since the last snapshot",
		Long:  "Diff the schema built by the migrations directory against the recorded snapshot and classify every change by how it can be carried out",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cfg, preview)
		},
	}

	cmd.Flags().BoolVar(&preview, "preview", false, "Render the migration script the changes would produce")

	return cmd
}

func runDiff(cfg *config.Config, preview bool) error {
	eng := engine()
	defer eng.Close()

	plan, err := eng.Plan(cfg.MigrationsDir, cfg.SnapshotPath)
	if err != nil {
		return err
	}
	reportWarnings(plan.Diagnostics)

	if plan.Empty() {
		ui.PrintSuccess("No schema changes since the last snapshot")
		return nil
	}

	ui.PrintSection("Pending operations")
	ui.PrintTable([]string{"Change", "Risk"}, operationRows(plan.Operations))

	if unsafe := plan.Unsafe(); unsafe > 0 {
		ui.PrintWarning("%d operation(s) can destroy data", unsafe)
	}

	if preview {
		ui.PrintSection("Script preview")
		return ui.PrintMarkdown("```js\n" + plan.Script() + "```\n")
	}

	return nil
}
