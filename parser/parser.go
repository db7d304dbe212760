package parser

import (
	"fmt"

	"github.com/migforge/migforge/internal/debug"
	"github.com/migforge/migforge/schema"
)

// ParseSource extracts every builder invocation from the setup regions of a
// migration file and normalizes them into parsed migrations. Problems the
// parser can recover from are reported through the returned diagnostics; the
// rest of the file still parses.
func ParseSource(file SourceFile) ([]schema.ParsedMigration, *Diagnostics) {
	diags := NewDiagnostics()
	clean := blankComments(file.Data)

	var migrations []schema.ParsedMigration
	for _, reg := range setupRegions(clean) {
		for _, inv := range extractInvocations(reg) {
			mig, ok := buildMigration(file.Path, inv, diags)
			if !ok {
				continue
			}
			migrations = append(migrations, mig)
		}
	}

	debug.Debug("parsed migration source",
		"path", file.Path,
		"migrations", len(migrations),
		"warnings", len(diags.Warnings()))
	return migrations, diags
}

// ParseString parses in-memory migration source.
func ParseString(path, data string) ([]schema.ParsedMigration, *Diagnostics) {
	return ParseSource(NewSourceFile(path, data))
}

func buildMigration(path string, inv Invocation, diags *Diagnostics) (schema.ParsedMigration, bool) {
	switch inv.Method {
	case "dropTable":
		return schema.ParsedMigration{
			TableName:  inv.Table,
			Operation:  schema.OpDrop,
			SourceFile: path,
		}, true

	case "createTable", "createView":
		cols := schema.NewSchemaDefinition()
		for _, decl := range parseBody(path, inv.Body, inv.Param) {
			if structuralMethods[decl.Method] || decl.Method == "dropColumn" || decl.Method == "dropColumns" {
				continue
			}
			name, ok := decl.Name()
			if !ok {
				continue
			}
			col, ok := normalizeColumn(decl)
			if !ok {
				pushUnknownType(diags, path, inv, decl, name)
				continue
			}
			cols.Set(name, col)
		}
		return schema.ParsedMigration{
			TableName:  inv.Table,
			Operation:  schema.OpCreate,
			IsView:     inv.Method == "createView",
			Columns:    cols,
			SourceFile: path,
		}, true

	case "alterTable":
		var ops []schema.AlterOperation
		for _, decl := range parseBody(path, inv.Body, inv.Param) {
			if structuralMethods[decl.Method] {
				continue
			}
			if decl.Method == "dropColumn" || decl.Method == "dropColumns" {
				ops = append(ops, dropColumnOps(decl)...)
				continue
			}
			name, ok := decl.Name()
			if !ok {
				continue
			}
			col, ok := normalizeColumn(decl)
			if !ok {
				pushUnknownType(diags, path, inv, decl, name)
				continue
			}
			opType := schema.AlterAddColumn
			if decl.HasModifier("alter") {
				opType = schema.AlterModifyColumn
			}
			ops = append(ops, schema.AlterOperation{
				Type:       opType,
				ColumnName: name,
				Definition: col,
			})
		}
		return schema.ParsedMigration{
			TableName:       inv.Table,
			Operation:       schema.OpAlter,
			AlterOperations: ops,
			SourceFile:      path,
		}, true
	}
	return schema.ParsedMigration{}, false
}

// dropColumnOps expands dropColumn and dropColumns arguments into drop
// operations.
func dropColumnOps(decl RawDeclaration) []schema.AlterOperation {
	var ops []schema.AlterOperation
	for _, p := range decl.Params {
		switch p.Kind {
		case ParamString:
			ops = append(ops, schema.AlterOperation{Type: schema.AlterDropColumn, ColumnName: p.Str})
		case ParamList:
			for _, name := range p.List {
				ops = append(ops, schema.AlterOperation{Type: schema.AlterDropColumn, ColumnName: name})
			}
		}
	}
	return ops
}

func pushUnknownType(diags *Diagnostics, path string, inv Invocation, decl RawDeclaration, column string) {
	diags.PushWarning(ParseWarning{
		Message: fmt.Sprintf("unknown column type %q; column dropped", decl.Method),
		File:    path,
		Table:   inv.Table,
		Column:  column,
		Line:    inv.Line + decl.Line - 1,
	})
}
