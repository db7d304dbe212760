// Package gen renders migration plans as knex-style migration source text.
package gen

import (
	"fmt"
	"strings"

	"github.com/migforge/migforge/internal/debug"
	"github.com/migforge/migforge/migrate/diff"
	"github.com/migforge/migforge/schema"
)

// Script holds the forward and rollback halves of one migration.
type Script struct {
	Up   string
	Down string
}

// Generator renders migration operations as builder-call source text. The
// output uses the same call conventions the parser reads, so generated
// migrations feed back into the schema history like hand-written ones.
type Generator struct{}

// NewGenerator creates a new migration text generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateScript renders the forward plan and its derived rollback.
func (g *Generator) GenerateScript(ops []diff.MigrationOperation) Script {
	debug.Debug("Rendering migration script", "operations", len(ops))
	return Script{
		Up:   g.renderChain(ops),
		Down: g.renderChain(diff.Reverse(ops)),
	}
}

// GenerateFile renders a complete migration file with both exports.
func (g *Generator) GenerateFile(ops []diff.MigrationOperation) string {
	script := g.GenerateScript(ops)

	var b strings.Builder
	b.WriteString("// Auto-generated migration. Review raw statements before running.\n\n")
	b.WriteString("exports.up = function (knex) {\n")
	b.WriteString(script.Up)
	b.WriteString("};\n\n")
	b.WriteString("exports.down = function (knex) {\n")
	b.WriteString(script.Down)
	b.WriteString("};\n")
	return b.String()
}

// renderChain renders one half of a migration as a chained schema-builder
// expression, one link per operation group.
func (g *Generator) renderChain(ops []diff.MigrationOperation) string {
	groups := diff.Group(ops)
	if len(groups) == 0 {
		return "  return Promise.resolve();\n"
	}

	var b strings.Builder
	b.WriteString("  return knex.schema\n")
	for _, group := range groups {
		g.renderGroup(&b, group)
	}
	b.WriteString(";\n")
	return b.String()
}

func (g *Generator) renderGroup(b *strings.Builder, group diff.OperationGroup) {
	if group.Batch {
		renderAlterBatch(b, group.Ops)
		return
	}

	op := group.Ops[0]
	switch op.Type {
	case diff.OpCreateTable:
		renderCreateTable(b, op)
	case diff.OpDropTable:
		fmt.Fprintf(b, "    .dropTableIfExists('%s')\n", op.Table)
	case diff.OpAlterColumn:
		switch op.Alteration {
		case diff.AlterationRaw:
			renderRawAlter(b, op)
		case diff.AlterationRecreate:
			renderRecreate(b, op)
		default:
			renderAlterBatch(b, group.Ops)
		}
	case diff.OpManual:
		fmt.Fprintf(b, "    // MANUAL ACTION REQUIRED on %s: %s\n", op.Table, op.Note)
	}
}

func renderCreateTable(b *strings.Builder, op diff.MigrationOperation) {
	fmt.Fprintf(b, "    .createTable('%s', function (table) {\n", op.Table)
	if op.TableSchema != nil {
		for _, name := range op.TableSchema.Names() {
			col, _ := op.TableSchema.Get(name)
			fmt.Fprintf(b, "      %s;\n", columnCall(name, col, false))
		}
	}
	b.WriteString("    })\n")
}

func renderAlterBatch(b *strings.Builder, ops []diff.MigrationOperation) {
	fmt.Fprintf(b, "    .alterTable('%s', function (table) {\n", ops[0].Table)
	for _, op := range ops {
		switch op.Type {
		case diff.OpAddColumn:
			fmt.Fprintf(b, "      %s;\n", columnCall(op.Column, op.Definition, false))
		case diff.OpDropColumn:
			fmt.Fprintf(b, "      table.dropColumn('%s');\n", op.Column)
		case diff.OpAlterColumn:
			fmt.Fprintf(b, "      %s;\n", columnCall(op.Column, op.Definition, true))
		}
	}
	b.WriteString("    })\n")
}

// renderRecreate drops and redeclares the column in one alter block. The
// data in the old column does not survive.
func renderRecreate(b *strings.Builder, op diff.MigrationOperation) {
	fmt.Fprintf(b, "    // Recreating %s.%s drops its data. Copy it aside first if it matters.\n", op.Table, op.Column)
	fmt.Fprintf(b, "    .alterTable('%s', function (table) {\n", op.Table)
	fmt.Fprintf(b, "      table.dropColumn('%s');\n", op.Column)
	fmt.Fprintf(b, "      %s;\n", columnCall(op.Column, op.Definition, false))
	b.WriteString("    })\n")
}

// renderRawAlter emits one raw statement per changed constraint aspect.
// Statements are ANSI-flavored; dialect-specific spots carry a TODO line
// inside the statement text.
func renderRawAlter(b *strings.Builder, op diff.MigrationOperation) {
	for _, stmt := range rawStatements(op) {
		fmt.Fprintf(b, "    .raw(`%s`)\n", stmt)
	}
}

func rawStatements(op diff.MigrationOperation) []string {
	old, new := op.OldDefinition, op.Definition
	changes := diff.DetectColumnChanges(old, new)
	table, column := op.Table, op.Column

	var stmts []string
	if changes.UniqueChanged {
		if new.Unique {
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s_%s_unique UNIQUE (%s)", table, table, column, column))
		} else {
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s_%s_unique", table, table, column))
		}
	}
	if changes.PrimaryChanged {
		if new.Primary {
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD PRIMARY KEY (%s)", table, column))
		} else {
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s_pkey", table, table))
		}
	}
	if changes.ValuesChanged {
		stmts = append(stmts,
			fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s_%s_check", table, table, column),
			fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s_%s_check CHECK (%s IN (%s))", table, table, column, column, sqlValueList(new.Values)))
	}
	if changes.NullableChanged && !new.IsNullable() {
		if new.DefaultTo != nil {
			stmts = append(stmts, fmt.Sprintf("UPDATE %s SET %s = %s WHERE %s IS NULL", table, column, sqlDefault(new.DefaultTo), column))
		} else {
			stmts = append(stmts, fmt.Sprintf("-- TODO: backfill %s.%s before adding NOT NULL\nUPDATE %s SET %s = ? WHERE %s IS NULL", table, column, table, column, column))
		}
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET NOT NULL", table, column))
	}
	if changes.NullableChanged && new.IsNullable() {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP NOT NULL", table, column))
	}
	if changes.IndexChanged {
		if new.Index {
			stmts = append(stmts, fmt.Sprintf("CREATE INDEX %s_%s_index ON %s (%s)", table, column, table, column))
		} else {
			stmts = append(stmts, fmt.Sprintf("DROP INDEX %s_%s_index", table, column))
		}
	}
	if changes.OnUpdateChanged {
		stmts = append(stmts, fmt.Sprintf("-- TODO: ON UPDATE is dialect-specific; adjust for your database\nALTER TABLE %s ALTER COLUMN %s SET ON UPDATE %s", table, column, new.OnUpdate))
	}
	if changes.DefaultChanged {
		if new.DefaultTo != nil {
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s", table, column, sqlDefault(new.DefaultTo)))
		} else {
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT", table, column))
		}
	}
	if changes.LengthChanged || changes.PrecisionChanged {
		stmts = append(stmts, fmt.Sprintf("-- TODO: column size of %s.%s also changed; widen it with your dialect's ALTER COLUMN TYPE", table, column))
	}
	if len(stmts) == 0 {
		// Graded raw without a recognized aspect; surface it rather than
		// dropping the step.
		stmts = append(stmts, fmt.Sprintf("-- TODO: alter %s.%s by hand", table, column))
	}
	return stmts
}

// columnCall renders one column declaration chain. With alter set the chain
// ends in .alter() so the parser and the query builder treat it as a
// modification of an existing column.
func columnCall(name string, col *schema.ColumnDefinition, alter bool) string {
	var b strings.Builder
	b.WriteString("table.")
	b.WriteString(methodFor(col.Type))
	b.WriteString("('")
	b.WriteString(name)
	b.WriteString("'")
	writeTypeArgs(&b, col)
	b.WriteString(")")

	if col.Primary && !col.Type.IsIncrementing() {
		b.WriteString(".primary()")
	}
	if col.Unique {
		b.WriteString(".unique()")
	}
	if col.Required {
		b.WriteString(".notNullable()")
	}
	if col.Nullable {
		b.WriteString(".nullable()")
	}
	if col.Index {
		b.WriteString(".index()")
	}
	if col.DefaultTo != nil {
		fmt.Fprintf(&b, ".defaultTo(%s)", defaultLiteral(col.DefaultTo))
	}
	if col.OnUpdate != "" {
		fmt.Fprintf(&b, ".onUpdate('%s')", escapeSingle(col.OnUpdate))
	}
	if col.Comment != "" {
		fmt.Fprintf(&b, ".comment('%s')", escapeSingle(col.Comment))
	}
	if alter {
		b.WriteString(".alter()")
	}
	return b.String()
}

// methodFor maps a canonical type back to its builder method. The enum
// builder method is spelled enu.
func methodFor(t schema.ColumnType) string {
	if t == schema.TypeEnum {
		return "enu"
	}
	return string(t)
}

func writeTypeArgs(b *strings.Builder, col *schema.ColumnDefinition) {
	switch col.Type {
	case schema.TypeString:
		if col.MaxLength > 0 {
			fmt.Fprintf(b, ", %d", col.MaxLength)
		}
	case schema.TypeDecimal, schema.TypeFloat, schema.TypeDouble:
		if col.Precision > 0 {
			fmt.Fprintf(b, ", %d", col.Precision)
			if col.Scale > 0 {
				fmt.Fprintf(b, ", %d", col.Scale)
			}
		}
	case schema.TypeEnum:
		b.WriteString(", [")
		for i, v := range col.Values {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(b, "'%s'", escapeSingle(v))
		}
		b.WriteString("]")
	}
}

func defaultLiteral(def *schema.DefaultValue) string {
	switch def.Kind {
	case schema.DefaultNow:
		return "knex.fn.now()"
	case schema.DefaultString:
		return "'" + escapeSingle(def.Value) + "'"
	default:
		return def.Value
	}
}

// sqlDefault renders a default value as a SQL literal for backfill updates.
func sqlDefault(def *schema.DefaultValue) string {
	switch def.Kind {
	case schema.DefaultNow:
		return "CURRENT_TIMESTAMP"
	case schema.DefaultString:
		return "'" + strings.ReplaceAll(def.Value, "'", "''") + "'"
	default:
		return def.Value
	}
}

func sqlValueList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + strings.ReplaceAll(v, "'", "''") + "'"
	}
	return strings.Join(quoted, ", ")
}

func escapeSingle(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "'", `\'`)
}
