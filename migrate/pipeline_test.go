package migrate

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/migforge/migforge/generator"
	"github.com/migforge/migforge/migrate/diff"
)

const createUsersSource = `exports.up = function (knex) {
  return knex.schema.createTable('users', function (table) {
    table.increments('id');
    table.string('email', 255).notNullable().unique();
    table.string('name', 255);
    table.timestamp('created_at').defaultTo(knex.fn.now());
  });
};

exports.down = function (knex) {
  return knex.schema.dropTableIfExists('users');
};
`

const expandUsersSource = `exports.up = function (knex) {
  return knex.schema
    .alterTable('users', function (table) {
      table.text('bio');
      table.string('email', 320).notNullable().unique().alter();
    })
    .createTable('posts', function (table) {
      table.increments('id');
      table.integer('author_id').notNullable().index();
      table.string('title', 255).notNullable();
      table.enu('status', ['draft', 'published']).defaultTo('draft');
    });
};

exports.down = function (knex) {
  return knex.schema.dropTableIfExists('posts');
};
`

const dropNameSource = `exports.up = function (knex) {
  return knex.schema.alterTable('users', function (table) {
    table.dropColumn('name');
    table.boolean('active').notNullable().defaultTo(true);
  });
};

exports.down = function (knex) {
  return knex.schema.alterTable('users', function (table) {
    table.dropColumn('active');
    table.string('name', 255);
  });
};
`

func writeMigrations(t *testing.T, fs afero.Fs, dir string, files map[string]string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(dir, 0755))
	for name, data := range files {
		require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, name), []byte(data), 0644))
	}
}

func TestPipelineEndToEnd(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeMigrations(t, fs, "migrations", map[string]string{
		"20240101120000_create_users.js": createUsersSource,
		"20240215093000_expand_users.js": expandUsersSource,
	})

	eng := NewEngine(fs)
	defer eng.Close()

	result, current, err := eng.Load("migrations")
	require.NoError(t, err)
	require.Len(t, result.Files, 2)
	require.False(t, result.Diagnostics.HasWarnings())

	users, ok := current.Get("users")
	require.True(t, ok, "users table missing after replay")
	email, ok := users.Get("email")
	require.True(t, ok)
	require.Equal(t, 320, email.MaxLength, "later alter must win")
	require.True(t, email.Unique)

	// The first plan runs against an empty snapshot, so it creates every
	// table from scratch.
	plan, err := eng.Plan("migrations", ".migforge/schema.json")
	require.NoError(t, err)
	require.False(t, plan.Empty())
	for _, op := range plan.Operations {
		require.Equal(t, diff.OpCreateTable, op.Type)
	}
	require.Zero(t, plan.Unsafe())

	// The generated script parses back through the same pipeline and builds
	// the same schema.
	writeMigrations(t, fs, "exported", map[string]string{
		"20240301000000_squash.js": plan.Script(),
	})
	_, replayed, err := eng.Load("exported")
	require.NoError(t, err)
	require.True(t, replayed.Equal(current), "replayed schema differs from the source")

	// Recording the snapshot empties the next plan.
	require.NoError(t, eng.Record(".migforge/schema.json", plan))
	plan, err = eng.Plan("migrations", ".migforge/schema.json")
	require.NoError(t, err)
	require.True(t, plan.Empty())

	// A migration added afterwards shows up as exactly the operations it
	// performs, with the data-losing one flagged.
	writeMigrations(t, fs, "migrations", map[string]string{
		"20240401000000_drop_name.js": dropNameSource,
	})
	plan, err = eng.Plan("migrations", ".migforge/schema.json")
	require.NoError(t, err)
	require.Len(t, plan.Operations, 2)
	require.Equal(t, 1, plan.Unsafe())

	// Interfaces generate from the merged schema.
	require.NoError(t, generator.NewGenerator(fs, plan.Current).GenerateTypesFile(filepath.Join("types", "schema.d.ts")))
	data, err := afero.ReadFile(fs, filepath.Join("types", "schema.d.ts"))
	require.NoError(t, err)
	require.Contains(t, string(data), "export interface Users {")
	require.Contains(t, string(data), "status: 'draft' | 'published'")
}

func TestEngineKeepsParseCacheAcrossLoads(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeMigrations(t, fs, "migrations", map[string]string{
		"20240101120000_create_users.js": createUsersSource,
	})

	eng := NewEngine(fs)
	defer eng.Close()

	_, _, err := eng.Load("migrations")
	require.NoError(t, err)
	first := eng.loader
	require.NotNil(t, first)

	// Watch mode loads the same directory over and over; the engine must
	// keep one loader alive so unchanged files hit its cache.
	_, _, err = eng.Load("migrations")
	require.NoError(t, err)
	require.Same(t, first, eng.loader)

	eng.Close()
	require.Nil(t, eng.loader)
}

func TestPlanSurvivesUnknownColumnTypes(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeMigrations(t, fs, "migrations", map[string]string{
		"20240101120000_create_geo.js": `exports.up = function (knex) {
  return knex.schema.createTable('places', function (table) {
    table.increments('id');
    table.geometry('location');
    table.string('label', 120);
  });
};

exports.down = function (knex) {
  return knex.schema.dropTableIfExists('places');
};
`,
	})

	eng := NewEngine(fs)
	defer eng.Close()

	plan, err := eng.Plan("migrations", ".migforge/schema.json")
	require.NoError(t, err)
	require.True(t, plan.Diagnostics.HasWarnings(), "unknown column type must warn")

	places, ok := plan.Current.Get("places")
	require.True(t, ok)
	require.Equal(t, 2, places.Len(), "parseable columns survive around the skipped one")
	_, hasLocation := places.Get("location")
	require.False(t, hasLocation)
}
