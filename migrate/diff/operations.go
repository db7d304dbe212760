// Package diff compares merged table schemas and classifies every change by
// how it can be carried out on a live database.
package diff

import (
	"fmt"

	"github.com/migforge/migforge/schema"
)

// OperationType identifies one schema change.
type OperationType string

// Operation types.
const (
	OpCreateTable OperationType = "createTable"
	OpDropTable   OperationType = "dropTable"
	OpAddColumn   OperationType = "addColumn"
	OpDropColumn  OperationType = "dropColumn"
	OpAlterColumn OperationType = "alterColumn"
	OpManual      OperationType = "manual"
)

// Alteration classifies how a column change can be carried out.
type Alteration string

const (
	// AlterationAlter is an in-place alter with no data risk.
	AlterationAlter Alteration = "alter"
	// AlterationRaw needs a raw statement for a constraint, index or check
	// rewrite, but keeps the column's data.
	AlterationRaw Alteration = "raw"
	// AlterationRecreate needs a drop-and-recreate and can lose data.
	AlterationRecreate Alteration = "recreate"
)

// MigrationOperation is one step of a migration plan.
type MigrationOperation struct {
	Type          OperationType
	Table         string
	Column        string
	Definition    *schema.ColumnDefinition // desired column state
	OldDefinition *schema.ColumnDefinition // previous column state, kept for reversal
	TableSchema   *schema.SchemaDefinition // full table for create and drop
	Alteration    Alteration               // set on alterColumn
	Note          string                   // context for manual steps
}

// Unsafe reports whether carrying out the operation can destroy data.
func (op MigrationOperation) Unsafe() bool {
	switch op.Type {
	case OpDropTable, OpDropColumn:
		return true
	case OpAlterColumn:
		return op.Alteration == AlterationRecreate
	}
	return false
}

// Describe renders one operation as a short human-readable line.
func Describe(op MigrationOperation) string {
	switch op.Type {
	case OpCreateTable:
		cols := 0
		if op.TableSchema != nil {
			cols = op.TableSchema.Len()
		}
		return fmt.Sprintf("create table %s (%d columns)", op.Table, cols)
	case OpDropTable:
		return fmt.Sprintf("drop table %s", op.Table)
	case OpAddColumn:
		return fmt.Sprintf("add column %s.%s (%s)", op.Table, op.Column, op.Definition.Type)
	case OpDropColumn:
		return fmt.Sprintf("drop column %s.%s", op.Table, op.Column)
	case OpAlterColumn:
		return fmt.Sprintf("alter column %s.%s [%s]", op.Table, op.Column, op.Alteration)
	case OpManual:
		return fmt.Sprintf("manual step for %s: %s", op.Table, op.Note)
	}
	return string(op.Type)
}
