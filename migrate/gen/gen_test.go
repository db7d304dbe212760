package gen

import (
	"strings"
	"testing"
	"time"

	"github.com/migforge/migforge/migrate/diff"
	"github.com/migforge/migforge/schema"
)

func TestGenerateFileCreateTable(t *testing.T) {
	def := schema.NewSchemaDefinition()
	def.Set("id", &schema.ColumnDefinition{Type: schema.TypeIncrements, Primary: true})
	def.Set("email", &schema.ColumnDefinition{Type: schema.TypeString, MaxLength: 255, Required: true, Unique: true})
	def.Set("role", &schema.ColumnDefinition{Type: schema.TypeEnum, Values: []string{"admin", "member"}})
	def.Set("created_at", &schema.ColumnDefinition{Type: schema.TypeTimestamp, DefaultTo: schema.NowDefault()})

	ops := []diff.MigrationOperation{
		{Type: diff.OpCreateTable, Table: "users", TableSchema: def},
	}

	out := NewGenerator().GenerateFile(ops)

	for _, want := range []string{
		"exports.up = function (knex) {",
		"exports.down = function (knex) {",
		".createTable('users', function (table) {",
		"table.increments('id');",
		"table.string('email', 255).unique().notNullable();",
		"table.enu('role', ['admin', 'member']);",
		"table.timestamp('created_at').defaultTo(knex.fn.now());",
		".dropTableIfExists('users')",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}

	// increments is implicitly primary; no explicit modifier expected.
	if strings.Contains(out, "table.increments('id').primary()") {
		t.Error("Expected no explicit primary on increments")
	}
}

func TestGenerateScriptBatchesColumnOps(t *testing.T) {
	ops := []diff.MigrationOperation{
		{Type: diff.OpAddColumn, Table: "users", Column: "bio", Definition: &schema.ColumnDefinition{Type: schema.TypeText}},
		{Type: diff.OpDropColumn, Table: "users", Column: "legacy", OldDefinition: &schema.ColumnDefinition{Type: schema.TypeText}},
		{
			Type: diff.OpAlterColumn, Table: "users", Column: "email",
			Definition:    &schema.ColumnDefinition{Type: schema.TypeString, MaxLength: 500, Required: true},
			OldDefinition: &schema.ColumnDefinition{Type: schema.TypeString, MaxLength: 255, Required: true},
			Alteration:    diff.AlterationAlter,
		},
	}

	script := NewGenerator().GenerateScript(ops)

	if got := strings.Count(script.Up, ".alterTable("); got != 1 {
		t.Fatalf("Expected one alterTable batch, got %d in:\n%s", got, script.Up)
	}
	for _, want := range []string{
		"table.text('bio');",
		"table.dropColumn('legacy');",
		"table.string('email', 500).notNullable().alter();",
	} {
		if !strings.Contains(script.Up, want) {
			t.Errorf("Expected up to contain %q, got:\n%s", want, script.Up)
		}
	}

	// The rollback mirrors the batch: re-add legacy, drop bio, alter back.
	for _, want := range []string{
		"table.string('email', 255).notNullable().alter();",
		"table.text('legacy');",
		"table.dropColumn('bio');",
	} {
		if !strings.Contains(script.Down, want) {
			t.Errorf("Expected down to contain %q, got:\n%s", want, script.Down)
		}
	}
}

func TestGenerateScriptRawStatements(t *testing.T) {
	ops := []diff.MigrationOperation{
		{
			Type: diff.OpAlterColumn, Table: "users", Column: "handle",
			Definition:    &schema.ColumnDefinition{Type: schema.TypeString, Unique: true},
			OldDefinition: &schema.ColumnDefinition{Type: schema.TypeString},
			Alteration:    diff.AlterationRaw,
		},
	}

	script := NewGenerator().GenerateScript(ops)
	if !strings.Contains(script.Up, ".raw(`ALTER TABLE users ADD CONSTRAINT users_handle_unique UNIQUE (handle)`)") {
		t.Errorf("Expected a unique constraint statement, got:\n%s", script.Up)
	}
	if !strings.Contains(script.Down, ".raw(`ALTER TABLE users DROP CONSTRAINT users_handle_unique`)") {
		t.Errorf("Expected the rollback to drop the constraint, got:\n%s", script.Down)
	}
}

func TestGenerateScriptEnumRewrite(t *testing.T) {
	ops := []diff.MigrationOperation{
		{
			Type: diff.OpAlterColumn, Table: "orders", Column: "status",
			Definition:    &schema.ColumnDefinition{Type: schema.TypeEnum, Values: []string{"pending", "active", "archived"}},
			OldDefinition: &schema.ColumnDefinition{Type: schema.TypeEnum, Values: []string{"pending", "active"}},
			Alteration:    diff.AlterationRaw,
		},
	}

	up := NewGenerator().GenerateScript(ops).Up
	if !strings.Contains(up, "DROP CONSTRAINT orders_status_check") {
		t.Errorf("Expected the old check dropped, got:\n%s", up)
	}
	if !strings.Contains(up, "CHECK (status IN ('pending', 'active', 'archived'))") {
		t.Errorf("Expected the new check added, got:\n%s", up)
	}
}

func TestGenerateScriptNullabilityBackfill(t *testing.T) {
	ops := []diff.MigrationOperation{
		{
			Type: diff.OpAlterColumn, Table: "users", Column: "email",
			Definition:    &schema.ColumnDefinition{Type: schema.TypeString, Required: true, DefaultTo: &schema.DefaultValue{Kind: schema.DefaultString, Value: "unknown"}},
			OldDefinition: &schema.ColumnDefinition{Type: schema.TypeString},
			Alteration:    diff.AlterationRaw,
		},
	}

	up := NewGenerator().GenerateScript(ops).Up
	if !strings.Contains(up, "UPDATE users SET email = 'unknown' WHERE email IS NULL") {
		t.Errorf("Expected a backfill from the default, got:\n%s", up)
	}
	if !strings.Contains(up, "ALTER TABLE users ALTER COLUMN email SET NOT NULL") {
		t.Errorf("Expected the NOT NULL statement, got:\n%s", up)
	}
}

func TestGenerateScriptNullabilityWithoutDefault(t *testing.T) {
	ops := []diff.MigrationOperation{
		{
			Type: diff.OpAlterColumn, Table: "users", Column: "email",
			Definition:    &schema.ColumnDefinition{Type: schema.TypeString, Required: true},
			OldDefinition: &schema.ColumnDefinition{Type: schema.TypeString},
			Alteration:    diff.AlterationRaw,
		},
	}

	up := NewGenerator().GenerateScript(ops).Up
	if !strings.Contains(up, "-- TODO: backfill users.email before adding NOT NULL") {
		t.Errorf("Expected a backfill TODO, got:\n%s", up)
	}
}

func TestGenerateScriptRecreate(t *testing.T) {
	ops := []diff.MigrationOperation{
		{
			Type: diff.OpAlterColumn, Table: "orders", Column: "amount",
			Definition:    &schema.ColumnDefinition{Type: schema.TypeDecimal, Precision: 12, Scale: 4},
			OldDefinition: &schema.ColumnDefinition{Type: schema.TypeString},
			Alteration:    diff.AlterationRecreate,
		},
	}

	up := NewGenerator().GenerateScript(ops).Up
	if !strings.Contains(up, "// Recreating orders.amount drops its data.") {
		t.Errorf("Expected a data-loss warning, got:\n%s", up)
	}
	if !strings.Contains(up, "table.dropColumn('amount');") {
		t.Errorf("Expected the drop inside the recreate, got:\n%s", up)
	}
	if !strings.Contains(up, "table.decimal('amount', 12, 4);") {
		t.Errorf("Expected the redeclaration, got:\n%s", up)
	}
}

func TestGenerateScriptManualPlaceholder(t *testing.T) {
	ops := []diff.MigrationOperation{
		{Type: diff.OpDropColumn, Table: "users", Column: "bio"},
	}

	down := NewGenerator().GenerateScript(ops).Down
	if !strings.Contains(down, "// MANUAL ACTION REQUIRED on users:") {
		t.Errorf("Expected a manual placeholder in the rollback, got:\n%s", down)
	}
}

func TestGenerateScriptEmptyPlan(t *testing.T) {
	script := NewGenerator().GenerateScript(nil)
	if !strings.Contains(script.Up, "return Promise.resolve();") {
		t.Errorf("Expected an empty up, got:\n%s", script.Up)
	}
	if !strings.Contains(script.Down, "return Promise.resolve();") {
		t.Errorf("Expected an empty down, got:\n%s", script.Down)
	}
}

func TestFileName(t *testing.T) {
	at := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	if got := FileName(at, "Add user bio!"); got != "20240315093000_add_user_bio.js" {
		t.Errorf("Expected slugged file name, got %q", got)
	}
	if got := FileName(at, "!!!"); got != "20240315093000_migration.js" {
		t.Errorf("Expected fallback name, got %q", got)
	}
}
