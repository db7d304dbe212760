package diff

import (
	"github.com/migforge/migforge/internal/debug"
	"github.com/migforge/migforge/schema"
)

// Differ computes migration operations between two schema states. It works
// on plain values and never touches a database.
type Differ struct{}

// NewDiffer creates a new schema differ.
func NewDiffer() *Differ {
	return &Differ{}
}

// DiffSets compares two schema sets. New tables come first, then column
// changes on common tables, then dropped tables; within each phase the
// tables are ordered by name so output is deterministic.
func (d *Differ) DiffSets(old, new *schema.SchemaSet) []MigrationOperation {
	if old == nil {
		old = schema.NewSchemaSet()
	}
	if new == nil {
		new = schema.NewSchemaSet()
	}

	var creates, changes, drops []MigrationOperation
	for _, table := range new.SortedNames() {
		newDef, _ := new.Get(table)
		if oldDef, ok := old.Get(table); ok {
			changes = append(changes, d.DiffTable(table, oldDef, newDef)...)
		} else {
			creates = append(creates, d.DiffTable(table, nil, newDef)...)
		}
	}
	for _, table := range old.SortedNames() {
		if _, ok := new.Get(table); !ok {
			oldDef, _ := old.Get(table)
			drops = append(drops, d.DiffTable(table, oldDef, nil)...)
		}
	}

	ops := append(append(creates, changes...), drops...)
	debug.Debug("computed schema diff", "operations", len(ops))
	return ops
}

// DiffTable compares two column sets of one table. Added columns come in
// new-schema order, dropped columns in old-schema order with their previous
// definition retained, and altered columns in new-schema order. Equality
// ignores comments.
func (d *Differ) DiffTable(table string, old, new *schema.SchemaDefinition) []MigrationOperation {
	if old == nil && new == nil {
		return nil
	}
	if old == nil {
		return []MigrationOperation{{
			Type:        OpCreateTable,
			Table:       table,
			TableSchema: new.Clone(),
		}}
	}
	if new == nil {
		return []MigrationOperation{{
			Type:        OpDropTable,
			Table:       table,
			TableSchema: old.Clone(),
		}}
	}

	var ops []MigrationOperation
	for _, name := range new.Names() {
		if _, ok := old.Get(name); !ok {
			col, _ := new.Get(name)
			ops = append(ops, MigrationOperation{
				Type:       OpAddColumn,
				Table:      table,
				Column:     name,
				Definition: col.Clone(),
			})
		}
	}
	for _, name := range old.Names() {
		if _, ok := new.Get(name); !ok {
			col, _ := old.Get(name)
			ops = append(ops, MigrationOperation{
				Type:          OpDropColumn,
				Table:         table,
				Column:        name,
				OldDefinition: col.Clone(),
			})
		}
	}
	for _, name := range new.Names() {
		oldCol, ok := old.Get(name)
		if !ok {
			continue
		}
		newCol, _ := new.Get(name)
		if oldCol.EqualIgnoreComment(newCol) {
			continue
		}
		ops = append(ops, MigrationOperation{
			Type:          OpAlterColumn,
			Table:         table,
			Column:        name,
			Definition:    newCol.Clone(),
			OldDefinition: oldCol.Clone(),
			Alteration:    Classify(oldCol, newCol),
		})
	}
	return ops
}
