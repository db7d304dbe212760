package parser

import (
	"strings"

	"github.com/migforge/migforge/schema"
)

// typeAliases folds alternate spellings into canonical column types before
// lookup.
var typeAliases = map[string]schema.ColumnType{
	"enu":      schema.TypeEnum,
	"dateTime": schema.TypeDateTime,
}

// normalizeColumn turns a raw declaration into a canonical definition. A
// declaration with an unrecognized type yields ok false; the caller reports
// the warning and drops the column.
func normalizeColumn(decl RawDeclaration) (*schema.ColumnDefinition, bool) {
	colType, ok := canonicalType(decl.Method)
	if !ok {
		return nil, false
	}

	col := &schema.ColumnDefinition{Type: colType}

	rest := decl.Params
	if len(rest) > 0 {
		rest = rest[1:]
	}
	switch colType {
	case schema.TypeString:
		if len(rest) > 0 && rest[0].Kind == ParamNumber {
			col.MaxLength = rest[0].Num
		}
	case schema.TypeDecimal, schema.TypeFloat, schema.TypeDouble:
		if len(rest) > 0 && rest[0].Kind == ParamNumber {
			col.Precision = rest[0].Num
		}
		if len(rest) > 1 && rest[1].Kind == ParamNumber {
			col.Scale = rest[1].Num
		}
	case schema.TypeEnum:
		if len(rest) > 0 && rest[0].Kind == ParamList {
			col.Values = rest[0].List
		}
	}

	if colType.IsIncrementing() {
		col.Primary = true
	}

	for _, m := range decl.Modifiers {
		applyModifier(col, m)
	}
	return col, true
}

func canonicalType(method string) (schema.ColumnType, bool) {
	if alias, ok := typeAliases[method]; ok {
		return alias, true
	}
	t := schema.ColumnType(method)
	if schema.KnownColumnType(t) {
		return t, true
	}
	return "", false
}

// applyModifier folds one chained call into the definition. Unrecognized
// modifiers are ignored; the convention allows chains this parser has no
// use for (references, unsigned, collations).
func applyModifier(col *schema.ColumnDefinition, m Modifier) {
	switch m.Name {
	case "primary":
		col.Primary = true
	case "unique":
		col.Unique = true
	case "notNullable":
		col.Required = true
	case "nullable":
		col.Nullable = true
	case "index":
		col.Index = true
	case "defaultTo":
		col.DefaultTo = defaultValue(m)
	case "onUpdate":
		col.OnUpdate = modifierText(m)
	case "comment":
		if len(m.Params) > 0 && m.Params[0].Kind == ParamString {
			col.Comment = m.Params[0].Str
		}
	case "alter":
		// Operation marker, consumed by the body parser.
	}
}

// defaultValue classifies a defaultTo argument. Every current-timestamp
// spelling collapses to the same sentinel so replays and diffs treat them
// as one value.
func defaultValue(m Modifier) *schema.DefaultValue {
	if len(m.Params) == 0 {
		return nil
	}
	p := m.Params[0]
	switch p.Kind {
	case ParamString:
		if isNowSpelling(p.Str) {
			return schema.NowDefault()
		}
		return &schema.DefaultValue{Kind: schema.DefaultString, Value: p.Str}
	case ParamNumber:
		return &schema.DefaultValue{Kind: schema.DefaultNumber, Value: p.Raw}
	case ParamBool:
		return &schema.DefaultValue{Kind: schema.DefaultBool, Value: p.Raw}
	default:
		if isNowSpelling(p.Raw) {
			return schema.NowDefault()
		}
		return &schema.DefaultValue{Kind: schema.DefaultRaw, Value: p.Raw}
	}
}

func modifierText(m Modifier) string {
	if len(m.Params) > 0 && m.Params[0].Kind == ParamString {
		if isNowSpelling(m.Params[0].Str) {
			return "CURRENT_TIMESTAMP"
		}
		return m.Params[0].Str
	}
	if isNowSpelling(m.RawArgs) {
		return "CURRENT_TIMESTAMP"
	}
	return m.RawArgs
}

// isNowSpelling matches the spellings that mean "current timestamp".
func isNowSpelling(s string) bool {
	s = strings.ToLower(strings.ReplaceAll(s, " ", ""))
	s = strings.TrimSuffix(s, "()")
	switch s {
	case "current_timestamp", "now", "knex.fn.now", "fn.now",
		"knex.raw('current_timestamp')", `knex.raw("current_timestamp")`:
		return true
	}
	return false
}
