package parser

import (
	"testing"

	"github.com/migforge/migforge/schema"
)

const createFixture = `
const helper = require('./helper');

exports.up = function (knex) {
  return knex.schema
    .createTable('users', function (table) {
      table.increments('id');
      table.string('email', 255).notNullable().unique();
      table.string('name').notNullable();
      table.enu('role', ['admin', 'member']).defaultTo('member');
      table.timestamp('created_at').defaultTo(knex.fn.now());
      table.index(['email', 'name']);
    })
    .createTable('posts', (t) => {
      t.bigIncrements('id');
      t.integer('author_id').notNullable().index();
      t.text('body');
      t.boolean('published').defaultTo(false);
    });
};

exports.down = function (knex) {
  return knex.schema.dropTable('posts').dropTable('users');
};
`

func TestParseCreateTables(t *testing.T) {
	migs, diags := ParseString("20240101120000_create_users.js", createFixture)
	if diags.HasWarnings() {
		t.Fatalf("Unexpected warnings: %s", diags.ToPrettyString())
	}
	if len(migs) != 2 {
		t.Fatalf("Expected 2 migrations, got %d", len(migs))
	}

	users := migs[0]
	if users.TableName != "users" || users.Operation != schema.OpCreate {
		t.Fatalf("Expected create users, got %+v", users)
	}
	if users.SourceFile != "20240101120000_create_users.js" {
		t.Errorf("Expected source file to be recorded, got %q", users.SourceFile)
	}
	names := users.Columns.Names()
	want := []string{"id", "email", "name", "role", "created_at"}
	if len(names) != len(want) {
		t.Fatalf("Expected %d columns, got %v", len(want), names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Column %d: expected %q, got %q", i, want[i], names[i])
		}
	}

	id, _ := users.Columns.Get("id")
	if id.Type != schema.TypeIncrements || !id.Primary {
		t.Errorf("Expected primary increments id, got %+v", id)
	}
	email, _ := users.Columns.Get("email")
	if !email.Unique || !email.Required || email.MaxLength != 255 {
		t.Errorf("Expected unique required email(255), got %+v", email)
	}
	role, _ := users.Columns.Get("role")
	if role.Type != schema.TypeEnum || role.DefaultTo == nil || role.DefaultTo.Value != "member" {
		t.Errorf("Expected enum role defaulting to member, got %+v", role)
	}
	created, _ := users.Columns.Get("created_at")
	if created.DefaultTo == nil || created.DefaultTo.Kind != schema.DefaultNow {
		t.Errorf("Expected now default on created_at, got %+v", created)
	}

	posts := migs[1]
	if posts.TableName != "posts" || posts.Columns.Len() != 4 {
		t.Fatalf("Expected posts with 4 columns, got %+v", posts)
	}
	author, _ := posts.Columns.Get("author_id")
	if !author.Index || !author.Required {
		t.Errorf("Expected indexed required author_id, got %+v", author)
	}
}

func TestParseAlterTable(t *testing.T) {
	src := `
exports.up = async (knex) => {
  await knex.schema.alterTable('users', (t) => {
    t.string('email', 500).alter();
    t.dropColumn('name');
    t.jsonb('settings').defaultTo('{}');
  });
};

exports.down = async (knex) => {};
`
	migs, diags := ParseString("20240202000000_retune_users.js", src)
	if diags.HasWarnings() {
		t.Fatalf("Unexpected warnings: %s", diags.ToPrettyString())
	}
	if len(migs) != 1 {
		t.Fatalf("Expected 1 migration, got %d", len(migs))
	}
	mig := migs[0]
	if mig.Operation != schema.OpAlter {
		t.Fatalf("Expected alter operation, got %q", mig.Operation)
	}
	ops := mig.AlterOperations
	if len(ops) != 3 {
		t.Fatalf("Expected 3 alter operations, got %+v", ops)
	}

	if ops[0].Type != schema.AlterModifyColumn || ops[0].ColumnName != "email" {
		t.Errorf("Expected modify email first, got %+v", ops[0])
	}
	if ops[0].Definition.MaxLength != 500 {
		t.Errorf("Expected new length 500, got %+v", ops[0].Definition)
	}
	if ops[1].Type != schema.AlterDropColumn || ops[1].ColumnName != "name" {
		t.Errorf("Expected drop name second, got %+v", ops[1])
	}
	if ops[2].Type != schema.AlterAddColumn || ops[2].ColumnName != "settings" {
		t.Errorf("Expected add settings third, got %+v", ops[2])
	}
}

func TestParseViewAndDrop(t *testing.T) {
	src := `
exports.up = function (knex) {
  return knex.schema
    .createView('active_users', function (view) {
      view.string('email');
      view.timestamp('last_seen');
    })
    .dropTable('sessions');
};
`
	migs, diags := ParseString("20240303000000_views.js", src)
	if diags.HasWarnings() {
		t.Fatalf("Unexpected warnings: %s", diags.ToPrettyString())
	}
	if len(migs) != 2 {
		t.Fatalf("Expected 2 migrations, got %d", len(migs))
	}
	if !migs[0].IsView || migs[0].Operation != schema.OpCreate {
		t.Errorf("Expected a view create, got %+v", migs[0])
	}
	if migs[1].Operation != schema.OpDrop || migs[1].TableName != "sessions" {
		t.Errorf("Expected a sessions drop, got %+v", migs[1])
	}
}

func TestParseUnknownTypeWarnsAndDropsColumn(t *testing.T) {
	src := `
exports.up = function (knex) {
  return knex.schema.createTable('places', (t) => {
    t.increments('id');
    t.geometry('pin');
    t.string('label');
  });
};
`
	migs, diags := ParseString("20240404000000_places.js", src)
	if len(migs) != 1 {
		t.Fatalf("Expected 1 migration, got %d", len(migs))
	}
	if !diags.HasWarnings() {
		t.Fatal("Expected a warning for the unknown type")
	}
	w := diags.Warnings()[0]
	if w.Table != "places" || w.Column != "pin" {
		t.Errorf("Expected warning to name places.pin, got %+v", w)
	}
	if w.Line == 0 {
		t.Error("Expected the warning to carry a line number")
	}

	names := migs[0].Columns.Names()
	if len(names) != 2 || names[0] != "id" || names[1] != "label" {
		t.Errorf("Expected the unknown column alone to drop, got %v", names)
	}
}

func TestParseFileWithoutMarkers(t *testing.T) {
	migs, diags := ParseString("seed.js", `
module.exports = async function seed(knex) {
  await knex('users').insert({ email: 'a@b.c' });
};
`)
	if len(migs) != 0 {
		t.Fatalf("Expected no migrations, got %+v", migs)
	}
	if diags.HasWarnings() {
		t.Errorf("Expected silence, got %s", diags.ToPrettyString())
	}
}
