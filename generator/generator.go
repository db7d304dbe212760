// Package generator writes TypeScript type definitions for merged schemas.
package generator

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/migforge/migforge/generator/tsgen"
	"github.com/migforge/migforge/internal/debug"
	"github.com/migforge/migforge/schema"
)

// Generator generates TypeScript interfaces from a schema set
type Generator struct {
	fs  afero.Fs
	set *schema.SchemaSet
}

// NewGenerator creates a new type generator
func NewGenerator(fs afero.Fs, set *schema.SchemaSet) *Generator {
	debug.Debug("Creating new generator", "tables", set.Len())
	return &Generator{
		fs:  fs,
		set: set,
	}
}

// GenerateTypesFile renders every table and writes the result to outPath
func (g *Generator) GenerateTypesFile(outPath string) error {
	debug.Debug("Starting type generation", "outPath", outPath)

	if g.set.Len() == 0 {
		debug.Error("No tables found in schema")
		return fmt.Errorf("schema must contain at least one table")
	}

	if err := g.validateNames(); err != nil {
		debug.Error("Name validation failed", "error", err)
		return err
	}
	debug.Debug("Name validation passed")

	out := tsgen.GenerateTypes(g.set)

	if err := g.fs.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := afero.WriteFile(g.fs, outPath, []byte(out), 0644); err != nil {
		return fmt.Errorf("failed to write types file: %w", err)
	}

	debug.Info("Type generation completed", "outPath", outPath, "tables", g.set.Len())
	return nil
}

// validateNames rejects schemas where two table names collapse to the same
// interface name
func (g *Generator) validateNames() error {
	interfaces := make(map[string]string) // interface name -> table name
	for _, table := range g.set.SortedNames() {
		name := tsgen.InterfaceName(table)
		debug.Debug("Validating table", "table", table, "interface", name)
		if existing, exists := interfaces[name]; exists {
			debug.Error("Duplicate interface name detected", "interface", name, "tables", []string{existing, table})
			return fmt.Errorf("duplicate interface name %q: tables %q and %q both map to the same interface", name, existing, table)
		}
		interfaces[name] = table
	}
	return nil
}
