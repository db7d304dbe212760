package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/migforge/migforge/cli/internal/config"
	"github.com/migforge/migforge/cli/internal/ui"
	"github.com/migforge/migforge/migrate/history"
)

// NewStatusCommand creates the status command.
func NewStatusCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the merged schema and snapshot drift",
		Long:  "Display the schema the migrations directory builds up and how it compares to the recorded snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cfg)
		},
	}
}

func runStatus(cfg *config.Config) error {
	eng := engine()
	defer eng.Close()

	plan, err := eng.Plan(cfg.MigrationsDir, cfg.SnapshotPath)
	if err != nil {
		return err
	}
	reportWarnings(plan.Diagnostics)

	ui.PrintSection("Schema")
	if plan.Current.Len() == 0 {
		ui.PrintInfo("No tables yet; the migrations directory is empty or only drops tables")
	} else {
		rows := make([][]string, 0, plan.Current.Len())
		for _, name := range plan.Current.SortedNames() {
			def, _ := plan.Current.Get(name)
			kind := "table"
			if plan.Current.IsView(name) {
				kind = "view"
			}
			rows = append(rows, []string{name, strconv.Itoa(def.Len()), kind})
		}
		ui.PrintTable([]string{"Name", "Columns", "Kind"}, rows)
	}

	if ok, err := plan.Recorded.Verify(); err != nil {
		return err
	} else if !ok {
		ui.PrintWarning("Snapshot %s does not match its checksum; it was edited by hand", cfg.SnapshotPath)
	}

	if pending := history.Pending(plan.Recorded.Files, plan.Files); len(pending) > 0 {
		ui.PrintSection("Migrations added since the snapshot")
		ui.PrintList(pending)
	}

	if plan.Empty() {
		ui.PrintSuccess("Schema matches the snapshot")
		return nil
	}

	ui.PrintInfo("%d schema change(s) since the snapshot; run 'migforge diff' to inspect them", len(plan.Operations))
	if unsafe := plan.Unsafe(); unsafe > 0 {
		ui.PrintWarning("%d of them can destroy data", unsafe)
	}
	return nil
}
