package commands

import (
	"fmt"
	"os"

	"github.com/migforge/migforge/cli/internal/config"
	"github.com/migforge/migforge/cli/internal/ui"
	"github.com/migforge/migforge/loader"
	"github.com/migforge/migforge/migrate"
	"github.com/migforge/migforge/migrate/diff"
	"github.com/migforge/migforge/parser"
	"github.com/migforge/migforge/schema"
)

// engine builds the pipeline engine over the application filesystem.
func engine() *migrate.Engine {
	return migrate.NewEngine(config.AppFs)
}

// loadMigrations parses every migration file under dir and merges the
// chronology into a schema set. Commands that load more than once should
// hold their own engine instead.
func loadMigrations(dir string) (*loader.Result, *schema.SchemaSet, error) {
	eng := engine()
	defer eng.Close()
	return eng.Load(dir)
}

// reportWarnings prints parse diagnostics. Warnings never fail a command;
// the parser already skipped what it could not understand.
func reportWarnings(diags *parser.Diagnostics) {
	if diags == nil || !diags.HasWarnings() {
		return
	}
	ui.PrintWarning("%d parse warning(s); unparseable pieces were skipped", len(diags.Warnings()))
	fmt.Fprintf(os.Stderr, "\n%s\n", diags.ToPrettyString())
}

// operationRows renders a migration plan as table rows.
func operationRows(ops []diff.MigrationOperation) [][]string {
	rows := make([][]string, 0, len(ops))
	for _, op := range ops {
		risk := "safe"
		switch {
		case op.Unsafe():
			risk = "destructive"
		case op.Type == diff.OpAlterColumn && op.Alteration == diff.AlterationRaw:
			risk = "raw statement"
		case op.Type == diff.OpManual:
			risk = "manual"
		}
		rows = append(rows, []string{diff.Describe(op), risk})
	}
	return rows
}
