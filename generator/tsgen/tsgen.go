// Package tsgen renders merged table schemas as TypeScript interfaces.
package tsgen

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/migforge/migforge/schema"
)

// Header goes at the top of every generated types file.
const Header = "// Code generated by migforge. DO NOT EDIT.\n"

// GenerateTypes renders one interface per table, tables sorted by name so
// regeneration is stable.
func GenerateTypes(set *schema.SchemaSet) string {
	var b strings.Builder
	b.WriteString(Header)
	for _, table := range set.SortedNames() {
		def, _ := set.Get(table)
		b.WriteString("\n")
		writeInterface(&b, table, def, set.IsView(table))
	}
	return b.String()
}

// GenerateInterface renders the interface for a single table.
func GenerateInterface(table string, def *schema.SchemaDefinition) string {
	var b strings.Builder
	writeInterface(&b, table, def, false)
	return b.String()
}

func writeInterface(b *strings.Builder, table string, def *schema.SchemaDefinition, view bool) {
	if view {
		b.WriteString("/** Database view. */\n")
	}
	fmt.Fprintf(b, "export interface %s {\n", InterfaceName(table))
	for _, name := range def.Names() {
		col, _ := def.Get(name)
		if col.Comment != "" {
			fmt.Fprintf(b, "  /** %s */\n", col.Comment)
		}
		fmt.Fprintf(b, "  %s: %s;\n", fieldName(name), FieldType(col))
	}
	b.WriteString("}\n")
}

// FieldType maps a column definition to its TypeScript type. Nullable
// columns widen to a null union; primary keys are implicitly non-null.
func FieldType(col *schema.ColumnDefinition) string {
	t := baseType(col)
	if col.IsNullable() && !col.Primary {
		t += " | null"
	}
	return t
}

func baseType(col *schema.ColumnDefinition) string {
	switch col.Type {
	case schema.TypeIncrements, schema.TypeBigIncrements,
		schema.TypeInteger, schema.TypeBigInteger,
		schema.TypeFloat, schema.TypeDouble, schema.TypeDecimal:
		return "number"
	case schema.TypeString, schema.TypeText, schema.TypeUUID, schema.TypeTime:
		return "string"
	case schema.TypeBoolean:
		return "boolean"
	case schema.TypeDate, schema.TypeDateTime, schema.TypeTimestamp:
		return "Date"
	case schema.TypeBinary:
		return "Buffer"
	case schema.TypeJSON, schema.TypeJSONB:
		return "unknown"
	case schema.TypeEnum:
		if len(col.Values) == 0 {
			return "string"
		}
		parts := make([]string, len(col.Values))
		for i, v := range col.Values {
			parts[i] = "'" + strings.ReplaceAll(v, "'", `\'`) + "'"
		}
		return strings.Join(parts, " | ")
	}
	return "unknown"
}

// InterfaceName converts a table name to PascalCase.
func InterfaceName(table string) string {
	var b strings.Builder
	upper := true
	for _, r := range table {
		if r == '_' || r == '-' || r == ' ' || r == '.' {
			upper = true
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return "Table"
	}
	name := b.String()
	first, _ := utf8.DecodeRuneInString(name)
	if !unicode.IsLetter(first) && first != '_' {
		name = "Table" + name
	}
	return name
}

// fieldName quotes column names that are not valid identifiers.
func fieldName(name string) string {
	if isIdentifier(name) {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", `\'`) + "'"
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if unicode.IsLetter(r) || r == '_' || r == '$' {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}
