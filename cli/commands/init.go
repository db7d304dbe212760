package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/migforge/migforge/cli/internal/config"
	"github.com/migforge/migforge/cli/internal/ui"
	"github.com/migforge/migforge/migrate/gen"
)

const starterMigration = `exports.up = function (knex) {
  return knex.schema.createTable('users', function (table) {
    table.increments('id');
    table.string('email', 255).notNullable().unique();
    table.string('name', 255);
    table.timestamp('created_at').defaultTo(knex.fn.now());
  });
};

exports.down = function (knex) {
  return knex.schema.dropTableIfExists('users');
};
`

// NewInitCommand creates the init command.
func NewInitCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a migforge project",
		Long:  "Create the .migforge.yaml config, the migrations directory and a starter migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cfg)
		},
	}
}

func runInit(cfg *config.Config) error {
	ui.PrintHeader("migforge", "Schema tooling for knex migration directories")

	ui.PrintStep(1, 3, "Writing .migforge.yaml")
	if _, err := config.AppFs.Stat(".migforge.yaml"); err == nil {
		ui.PrintWarning("Config file already exists, keeping it")
	} else if err := config.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	ui.PrintStep(2, 3, "Creating migrations directory")
	existed, err := afero.DirExists(config.AppFs, cfg.MigrationsDir)
	if err != nil {
		return err
	}
	if err := config.AppFs.MkdirAll(cfg.MigrationsDir, 0755); err != nil {
		return fmt.Errorf("failed to create migrations directory: %w", err)
	}

	ui.PrintStep(3, 3, "Writing starter migration")
	if existed {
		ui.PrintWarning("Migrations directory already exists, skipping the starter migration")
	} else {
		starter := filepath.Join(cfg.MigrationsDir, gen.FileName(time.Now(), "create users"))
		if err := afero.WriteFile(config.AppFs, starter, []byte(starterMigration), 0644); err != nil {
			return fmt.Errorf("failed to write starter migration: %w", err)
		}
		ui.PrintSuccess("Created %s", starter)
	}

	ui.PrintSuccess("Project initialized")

	next := fmt.Sprintf(`## Next steps

1. Drop your existing knex migration files into %[1]s or edit the starter one
2. Run %[2]s to check the directory parses cleanly
3. Run %[3]s to generate TypeScript interfaces for the merged schema
4. Run %[4]s to capture schema changes as a new migration script
`,
		"`"+cfg.MigrationsDir+"/`", "`migforge validate`", "`migforge types`", "`migforge generate <name>`")
	return ui.PrintMarkdown(next)
}
