package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/migforge/migforge/cli/internal/config"
	"github.com/migforge/migforge/cli/internal/ui"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(cfg *config.Config) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the migrations directory",
		Long: `Parse every migration file and report anything that had to be skipped.

This command will:
- Scan the migrations directory in chronological order
- Parse every schema builder call in every file
- Report pieces the parser had to skip
- Display the schema the directory builds up`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(dir)
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", cfg.MigrationsDir, "Migrations directory")

	return cmd
}

func runValidate(dir string) error {
	ui.PrintHeader("migforge", "Validate Migrations")

	result, set, err := loadMigrations(dir)
	if err != nil {
		return err
	}

	if len(result.Files) == 0 {
		return fmt.Errorf("no migration files found in %s", dir)
	}

	reportWarnings(result.Diagnostics)

	if len(result.Migrations) == 0 {
		return fmt.Errorf("no migrations could be parsed from %s", dir)
	}

	ui.PrintSuccess("Migrations are valid: %s", dir)

	views := 0
	for _, name := range set.Names() {
		if set.IsView(name) {
			views++
		}
	}

	fmt.Println()
	ui.PrintSection("Summary")
	summary := []string{
		fmt.Sprintf("%d file(s)", len(result.Files)),
		fmt.Sprintf("%d migration step(s)", len(result.Migrations)),
		fmt.Sprintf("%d table(s)", set.Len()-views),
		fmt.Sprintf("%d view(s)", views),
	}
	ui.PrintList(summary)

	if set.Len() > 0 {
		fmt.Println()
		ui.PrintSection("Tables")
		for _, name := range set.SortedNames() {
			def, _ := set.Get(name)
			ui.PrintInfo("%s (%d columns)", name, def.Len())
		}
	}

	return nil
}
