package parser

import (
	"testing"
)

func TestParseBodyDeclarations(t *testing.T) {
	body := `
    table.increments('id');
    table.string('email', 255).notNullable().unique();
    table.enu('role', ['admin', 'member']).defaultTo('member');
    table.index(['email']);
    knex.raw('CREATE INDEX custom ON x (y)');
`
	decls := parseBody("test.js", body, "table")
	if len(decls) != 4 {
		t.Fatalf("Expected 4 declarations for the table receiver, got %d", len(decls))
	}

	if decls[0].Method != "increments" {
		t.Errorf("Expected increments, got %q", decls[0].Method)
	}

	email := decls[1]
	if email.Method != "string" {
		t.Fatalf("Expected string declaration, got %q", email.Method)
	}
	name, ok := email.Name()
	if !ok || name != "email" {
		t.Errorf("Expected column name email, got %q", name)
	}
	if len(email.Params) != 2 || email.Params[1].Kind != ParamNumber || email.Params[1].Num != 255 {
		t.Errorf("Expected numeric length param 255, got %+v", email.Params)
	}
	if !email.HasModifier("notNullable") || !email.HasModifier("unique") {
		t.Errorf("Expected notNullable and unique modifiers, got %+v", email.Modifiers)
	}

	role := decls[2]
	if len(role.Params) != 2 || role.Params[1].Kind != ParamList {
		t.Fatalf("Expected a list param, got %+v", role.Params)
	}
	if got := role.Params[1].List; len(got) != 2 || got[0] != "admin" || got[1] != "member" {
		t.Errorf("Expected enum values [admin member], got %v", got)
	}

	// index([...]) parses as a declaration; the caller filters it by method.
	if decls[3].Method != "index" {
		t.Errorf("Expected the composite index call last, got %q", decls[3].Method)
	}
}

func TestParseBodyChainAcrossLines(t *testing.T) {
	body := `
    t.decimal('amount', 10, 2)
      .notNullable()
      .defaultTo(0);
    t.boolean('active').defaultTo(true)
`
	decls := parseBody("test.js", body, "t")
	if len(decls) != 2 {
		t.Fatalf("Expected 2 declarations, got %d", len(decls))
	}
	amount := decls[0]
	if len(amount.Modifiers) != 2 {
		t.Fatalf("Expected the wrapped chain to stay one declaration, got %+v", amount.Modifiers)
	}
	if amount.Modifiers[1].Name != "defaultTo" || amount.Modifiers[1].RawArgs != "0" {
		t.Errorf("Expected defaultTo(0), got %+v", amount.Modifiers[1])
	}

	active := decls[1]
	if len(active.Modifiers) != 1 || active.Modifiers[0].Params[0].Kind != ParamBool {
		t.Errorf("Expected boolean default param, got %+v", active.Modifiers)
	}
}

func TestParseBodyModifierRawArgs(t *testing.T) {
	body := `
    t.timestamp('updated_at').defaultTo(knex.fn.now()).onUpdate(knex.raw('CURRENT_TIMESTAMP'));
`
	decls := parseBody("test.js", body, "t")
	if len(decls) != 1 {
		t.Fatalf("Expected 1 declaration, got %d", len(decls))
	}
	mods := decls[0].Modifiers
	if len(mods) != 2 {
		t.Fatalf("Expected 2 modifiers, got %+v", mods)
	}
	if mods[0].RawArgs != "knex.fn.now()" {
		t.Errorf("Expected raw args to keep the source text, got %q", mods[0].RawArgs)
	}
	if mods[1].Name != "onUpdate" || mods[1].RawArgs != "knex.raw('CURRENT_TIMESTAMP')" {
		t.Errorf("Expected onUpdate raw args, got %+v", mods[1])
	}
}

func TestParseBodySkipsForeignReceivers(t *testing.T) {
	body := `
    t.integer('author_id');
    other.string('nope');
    console.log('noise');
`
	decls := parseBody("test.js", body, "t")
	if len(decls) != 1 {
		t.Fatalf("Expected only the t receiver to parse, got %+v", decls)
	}
	if decls[0].Method != "integer" {
		t.Errorf("Expected integer, got %q", decls[0].Method)
	}
}

func TestParseBodyToleratesJunkStatements(t *testing.T) {
	body := `
    if (process.env.WITH_AUDIT) {
      t.timestamp('audited_at');
    }
    t.uuid('id').primary();
    const n = 1 + 2;
`
	decls := parseBody("test.js", body, "t")
	// The conditional block is one statement that fails the declaration
	// shape, so audited_at is skipped along with it. Conditional columns
	// cannot be replayed deterministically anyway.
	if len(decls) != 1 {
		t.Fatalf("Expected only the uuid declaration, got %+v", decls)
	}
	if decls[0].Method != "uuid" || !decls[0].HasModifier("primary") {
		t.Errorf("Expected uuid(...).primary(), got %+v", decls[0])
	}
}

func TestSplitStatementsSemicolonsAndNewlines(t *testing.T) {
	tokens, err := scan("test.js", "t.a('x'); t.b('y')\nt.c('z')")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	stmts := splitStatements(tokens)
	if len(stmts) != 3 {
		t.Fatalf("Expected 3 statements, got %d", len(stmts))
	}
}
