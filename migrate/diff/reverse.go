package diff

// Reverse derives the rollback plan for a sequence of operations: reversed
// order with the role of every step swapped. A step whose previous state was
// never retained reverses into an explicit manual step instead of a guess.
func Reverse(ops []MigrationOperation) []MigrationOperation {
	out := make([]MigrationOperation, 0, len(ops))
	for i := len(ops) - 1; i >= 0; i-- {
		out = append(out, reverseOne(ops[i]))
	}
	return out
}

func reverseOne(op MigrationOperation) MigrationOperation {
	switch op.Type {
	case OpCreateTable:
		return MigrationOperation{
			Type:        OpDropTable,
			Table:       op.Table,
			TableSchema: op.TableSchema.Clone(),
		}

	case OpDropTable:
		if op.TableSchema == nil {
			return manualStep(op.Table, "", "table definition was not retained; restore it by hand")
		}
		return MigrationOperation{
			Type:        OpCreateTable,
			Table:       op.Table,
			TableSchema: op.TableSchema.Clone(),
		}

	case OpAddColumn:
		return MigrationOperation{
			Type:          OpDropColumn,
			Table:         op.Table,
			Column:        op.Column,
			OldDefinition: op.Definition.Clone(),
		}

	case OpDropColumn:
		if op.OldDefinition == nil {
			return manualStep(op.Table, op.Column, "column definition was not retained; restore it by hand")
		}
		return MigrationOperation{
			Type:       OpAddColumn,
			Table:      op.Table,
			Column:     op.Column,
			Definition: op.OldDefinition.Clone(),
		}

	case OpAlterColumn:
		if op.OldDefinition == nil {
			return manualStep(op.Table, op.Column, "previous column definition was not retained; restore it by hand")
		}
		// The grade carries over; the rollback rides the same mechanism the
		// forward step used.
		return MigrationOperation{
			Type:          OpAlterColumn,
			Table:         op.Table,
			Column:        op.Column,
			Definition:    op.OldDefinition.Clone(),
			OldDefinition: op.Definition.Clone(),
			Alteration:    op.Alteration,
		}
	}
	return op
}

func manualStep(table, column, note string) MigrationOperation {
	return MigrationOperation{
		Type:   OpManual,
		Table:  table,
		Column: column,
		Note:   note,
	}
}
