// Package migrate ties the pipeline together: loading a directory of knex
// migration files, replaying them into the schema they build up, diffing
// that schema against a recorded snapshot and rendering the changes as a new
// migration script.
package migrate

import (
	"github.com/spf13/afero"

	"github.com/migforge/migforge/loader"
	"github.com/migforge/migforge/migrate/aggregate"
	"github.com/migforge/migforge/migrate/diff"
	"github.com/migforge/migforge/migrate/gen"
	"github.com/migforge/migforge/migrate/history"
	"github.com/migforge/migforge/parser"
	"github.com/migforge/migforge/schema"
)

// Plan is the outcome of comparing the migrations directory with the
// recorded snapshot.
type Plan struct {
	Operations  []diff.MigrationOperation
	Current     *schema.SchemaSet
	Recorded    *history.Snapshot
	Files       []string
	Diagnostics *parser.Diagnostics
}

// Empty reports whether the plan contains no operations.
func (p *Plan) Empty() bool {
	return len(p.Operations) == 0
}

// Unsafe counts operations that can destroy data.
func (p *Plan) Unsafe() int {
	n := 0
	for _, op := range p.Operations {
		if op.Unsafe() {
			n++
		}
	}
	return n
}

// Script renders the plan as a knex migration file with up and down halves.
func (p *Plan) Script() string {
	return gen.NewGenerator().GenerateFile(p.Operations)
}

// Engine runs the migration pipeline over one filesystem. The parse cache
// lives as long as the Engine, so repeated loads over the same directory
// (watch mode) only re-parse the files whose content changed.
type Engine struct {
	fs     afero.Fs
	loader *loader.Loader
}

// NewEngine creates a migration engine over the given filesystem.
func NewEngine(fs afero.Fs) *Engine {
	return &Engine{fs: fs}
}

// Close releases the parse cache. The Engine is unusable afterwards.
func (e *Engine) Close() {
	if e.loader != nil {
		e.loader.Close()
		e.loader = nil
	}
}

// Load parses every migration file under dir and merges the chronology into
// a schema set.
func (e *Engine) Load(dir string) (*loader.Result, *schema.SchemaSet, error) {
	if e.loader == nil {
		l, err := loader.NewLoader(e.fs)
		if err != nil {
			return nil, nil, err
		}
		e.loader = l
	}

	result, err := e.loader.LoadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	return result, aggregate.MergeAll(result.Migrations), nil
}

// Plan loads the directory and the snapshot and diffs the two schema states.
// A missing snapshot plans against an empty schema, so a first run plans the
// whole directory.
func (e *Engine) Plan(dir, snapshotPath string) (*Plan, error) {
	result, current, err := e.Load(dir)
	if err != nil {
		return nil, err
	}

	snap, err := history.NewStore(e.fs, snapshotPath).Load()
	if err != nil {
		return nil, err
	}

	return &Plan{
		Operations:  diff.NewDiffer().DiffSets(snap.Schema, current),
		Current:     current,
		Recorded:    snap,
		Files:       result.Files,
		Diagnostics: result.Diagnostics,
	}, nil
}

// Record saves the plan's current schema as the new snapshot, so the next
// plan starts from this state.
func (e *Engine) Record(snapshotPath string, plan *Plan) error {
	return history.NewStore(e.fs, snapshotPath).Save(plan.Current, plan.Files)
}
