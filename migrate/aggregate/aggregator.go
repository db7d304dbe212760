// Package aggregate replays parsed migrations in chronological order to
// recover the current schema of every table.
package aggregate

import (
	"sort"

	"github.com/migforge/migforge/internal/debug"
	"github.com/migforge/migforge/schema"
)

// Merge replays one table's migrations in source file order and returns the
// final column set. A create replaces whatever accumulated before it, alter
// steps apply in source order, and a drop clears the table; nil means the
// table no longer exists. Input order does not matter, the replay sorts
// defensively.
func Merge(migs []schema.ParsedMigration) *schema.SchemaDefinition {
	var cols *schema.SchemaDefinition
	for _, mig := range sortBySource(migs) {
		switch mig.Operation {
		case schema.OpCreate:
			cols = mig.Columns.Clone()
		case schema.OpAlter:
			if cols == nil {
				cols = schema.NewSchemaDefinition()
			}
			applyAlterOps(cols, mig.AlterOperations)
		case schema.OpDrop:
			cols = nil
		}
	}
	return cols
}

// MergeAll groups migrations by table and merges each group. Tables whose
// final state is dropped are absent from the result.
func MergeAll(migs []schema.ParsedMigration) *schema.SchemaSet {
	byTable := make(map[string][]schema.ParsedMigration)
	var order []string
	for _, mig := range migs {
		if _, ok := byTable[mig.TableName]; !ok {
			order = append(order, mig.TableName)
		}
		byTable[mig.TableName] = append(byTable[mig.TableName], mig)
	}

	set := schema.NewSchemaSet()
	for _, table := range order {
		group := byTable[table]
		cols := Merge(group)
		if cols == nil {
			continue
		}
		set.Set(table, cols)
		if lastCreateIsView(group) {
			set.MarkView(table)
		}
	}

	debug.Debug("merged migrations", "migrations", len(migs), "tables", set.Len())
	return set
}

func applyAlterOps(cols *schema.SchemaDefinition, ops []schema.AlterOperation) {
	for _, op := range ops {
		switch op.Type {
		case schema.AlterAddColumn, schema.AlterModifyColumn:
			cols.Set(op.ColumnName, op.Definition.Clone())
		case schema.AlterDropColumn:
			// Dropping a column that was never added is a no-op.
			cols.Delete(op.ColumnName)
		}
	}
}

// lastCreateIsView reports whether the most recent create for the table was
// a createView invocation.
func lastCreateIsView(migs []schema.ParsedMigration) bool {
	isView := false
	for _, mig := range sortBySource(migs) {
		if mig.Operation == schema.OpCreate {
			isView = mig.IsView
		}
	}
	return isView
}

func sortBySource(migs []schema.ParsedMigration) []schema.ParsedMigration {
	ordered := make([]schema.ParsedMigration, len(migs))
	copy(ordered, migs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SourceFile < ordered[j].SourceFile
	})
	return ordered
}
