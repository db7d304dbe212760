package diff

// OperationGroup is a run of operations that render as one builder call.
type OperationGroup struct {
	Batch bool
	Ops   []MigrationOperation
}

// Group splits an operation plan into composite batches and standalone
// steps. Consecutive add, drop and in-place alter steps against the same
// table collapse into one batch; raw and recreate steps, table creates and
// drops, and manual steps stand alone in their original position.
func Group(ops []MigrationOperation) []OperationGroup {
	var groups []OperationGroup
	for _, op := range ops {
		if !batchable(op) {
			groups = append(groups, OperationGroup{Ops: []MigrationOperation{op}})
			continue
		}
		last := len(groups) - 1
		if last >= 0 && groups[last].Batch && groups[last].Ops[0].Table == op.Table {
			groups[last].Ops = append(groups[last].Ops, op)
			continue
		}
		groups = append(groups, OperationGroup{Batch: true, Ops: []MigrationOperation{op}})
	}
	return groups
}

func batchable(op MigrationOperation) bool {
	switch op.Type {
	case OpAddColumn, OpDropColumn:
		return true
	case OpAlterColumn:
		return op.Alteration == AlterationAlter
	}
	return false
}
