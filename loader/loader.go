// Package loader reads migration directories and turns their files into the
// parsed history the aggregator replays.
package loader

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/ristretto/v2"
	"github.com/spf13/afero"

	"github.com/migforge/migforge/internal/debug"
	"github.com/migforge/migforge/parser"
	"github.com/migforge/migforge/schema"
)

// ErrMigrationsDirNotFound is returned when the migrations directory does
// not exist. Callers distinguish it from read errors with errors.Is.
var ErrMigrationsDirNotFound = errors.New("migrations directory not found")

// migrationExtensions are the file types scanned for builder calls.
var migrationExtensions = map[string]bool{
	".js":  true,
	".cjs": true,
	".mjs": true,
	".ts":  true,
}

// IsMigrationFile reports whether a file name has a migration extension.
func IsMigrationFile(name string) bool {
	return migrationExtensions[strings.ToLower(filepath.Ext(name))]
}

// Result is everything loaded from one directory scan. Migrations are in
// file order, which is the chronology the aggregator replays.
type Result struct {
	Files       []string
	Migrations  []schema.ParsedMigration
	Diagnostics *parser.Diagnostics
}

// cached is one parsed file keyed by path; the content hash invalidates the
// entry when the file changes underneath a watch loop.
type cached struct {
	sum        uint64
	migrations []schema.ParsedMigration
	diags      *parser.Diagnostics
}

// Loader scans migration directories. Parses are cached by content hash so
// watch loops only pay for the files that actually changed.
type Loader struct {
	fs    afero.Fs
	cache *ristretto.Cache[string, *cached]
}

// NewLoader creates a loader over the given filesystem.
func NewLoader(fs afero.Fs) (*Loader, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, *cached]{
		NumCounters: 10_000,
		MaxCost:     64 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create parse cache: %w", err)
	}
	return &Loader{fs: fs, cache: cache}, nil
}

// Close releases the parse cache.
func (l *Loader) Close() {
	l.cache.Close()
}

// LoadDir parses every migration file in dir, lexically ordered.
func (l *Loader) LoadDir(dir string) (*Result, error) {
	exists, err := afero.DirExists(l.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to check migrations directory: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrMigrationsDirNotFound, dir)
	}

	entries, err := afero.ReadDir(l.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !IsMigrationFile(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	result := &Result{Diagnostics: parser.NewDiagnostics()}
	for _, name := range names {
		path := filepath.Join(dir, name)
		entry, err := l.loadFile(path)
		if err != nil {
			return nil, err
		}
		if len(entry.migrations) == 0 {
			debug.Warn("migration file contributed no operations", "path", path)
		}
		result.Files = append(result.Files, path)
		result.Migrations = append(result.Migrations, entry.migrations...)
		result.Diagnostics.Merge(entry.diags)
	}
	l.cache.Wait()

	debug.Debug("loaded migrations directory",
		"dir", dir,
		"files", len(result.Files),
		"migrations", len(result.Migrations),
		"warnings", len(result.Diagnostics.Warnings()))
	return result, nil
}

// loadFile parses one file, reusing the cached parse when the content hash
// matches.
func (l *Loader) loadFile(path string) (*cached, error) {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration %s: %w", path, err)
	}
	sum := xxhash.Sum64(data)

	if entry, ok := l.cache.Get(path); ok && entry.sum == sum {
		debug.Debug("parse cache hit", "path", path)
		return entry, nil
	}

	migrations, diags := parser.ParseString(path, string(data))
	entry := &cached{
		sum:        sum,
		migrations: migrations,
		diags:      diags,
	}
	l.cache.Set(path, entry, int64(len(data)))
	return entry, nil
}
