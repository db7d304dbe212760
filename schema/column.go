// Package schema defines the column and table model shared by the parser,
// the aggregator and the differ.
package schema

// ColumnType identifies a canonical builder column type.
type ColumnType string

// Canonical column types. The parser folds aliases (enu) into these before
// a definition is stored anywhere.
const (
	TypeIncrements    ColumnType = "increments"
	TypeBigIncrements ColumnType = "bigIncrements"
	TypeInteger       ColumnType = "integer"
	TypeBigInteger    ColumnType = "bigInteger"
	TypeString        ColumnType = "string"
	TypeText          ColumnType = "text"
	TypeBoolean       ColumnType = "boolean"
	TypeDate          ColumnType = "date"
	TypeDateTime      ColumnType = "datetime"
	TypeTimestamp     ColumnType = "timestamp"
	TypeTime          ColumnType = "time"
	TypeFloat         ColumnType = "float"
	TypeDouble        ColumnType = "double"
	TypeDecimal       ColumnType = "decimal"
	TypeBinary        ColumnType = "binary"
	TypeJSON          ColumnType = "json"
	TypeJSONB         ColumnType = "jsonb"
	TypeUUID          ColumnType = "uuid"
	TypeEnum          ColumnType = "enum"
)

var knownColumnTypes = map[ColumnType]bool{
	TypeIncrements:    true,
	TypeBigIncrements: true,
	TypeInteger:       true,
	TypeBigInteger:    true,
	TypeString:        true,
	TypeText:          true,
	TypeBoolean:       true,
	TypeDate:          true,
	TypeDateTime:      true,
	TypeTimestamp:     true,
	TypeTime:          true,
	TypeFloat:         true,
	TypeDouble:        true,
	TypeDecimal:       true,
	TypeBinary:        true,
	TypeJSON:          true,
	TypeJSONB:         true,
	TypeUUID:          true,
	TypeEnum:          true,
}

// KnownColumnType reports whether t is one of the canonical column types.
func KnownColumnType(t ColumnType) bool {
	return knownColumnTypes[t]
}

// IsIncrementing reports whether t auto-increments and therefore implies a
// primary key.
func (t ColumnType) IsIncrementing() bool {
	return t == TypeIncrements || t == TypeBigIncrements
}

// DefaultKind tells how a column default should be rendered.
type DefaultKind string

// Default value kinds.
const (
	DefaultString DefaultKind = "string"
	DefaultNumber DefaultKind = "number"
	DefaultBool   DefaultKind = "bool"
	DefaultNow    DefaultKind = "now"
	DefaultRaw    DefaultKind = "raw"
)

// DefaultValue is a column default as written in the migration source. Value
// keeps the literal text so numeric defaults survive snapshot round trips
// without float conversion.
type DefaultValue struct {
	Kind  DefaultKind `json:"kind"`
	Value string      `json:"value,omitempty"`
}

// NowDefault returns the sentinel default used for every recognized
// current-timestamp spelling.
func NowDefault() *DefaultValue {
	return &DefaultValue{Kind: DefaultNow}
}

// ColumnDefinition is the normalized form of a single column declaration.
type ColumnDefinition struct {
	Type      ColumnType    `json:"type"`
	Primary   bool          `json:"primary,omitempty"`
	Unique    bool          `json:"unique,omitempty"`
	Nullable  bool          `json:"nullable,omitempty"`
	Required  bool          `json:"required,omitempty"`
	Index     bool          `json:"index,omitempty"`
	DefaultTo *DefaultValue `json:"defaultTo,omitempty"`
	OnUpdate  string        `json:"onUpdate,omitempty"`
	Comment   string        `json:"comment,omitempty"`
	MaxLength int           `json:"maxLength,omitempty"`
	Precision int           `json:"precision,omitempty"`
	Scale     int           `json:"scale,omitempty"`
	Values    []string      `json:"values,omitempty"`
}

// Clone returns a deep copy of the definition.
func (c *ColumnDefinition) Clone() *ColumnDefinition {
	if c == nil {
		return nil
	}
	out := *c
	if c.DefaultTo != nil {
		d := *c.DefaultTo
		out.DefaultTo = &d
	}
	if c.Values != nil {
		out.Values = append([]string(nil), c.Values...)
	}
	return &out
}

// IsNullable resolves the declared flags into effective nullability. An
// explicit nullable() wins over notNullable(); a column with neither
// modifier is nullable.
func (c *ColumnDefinition) IsNullable() bool {
	if c.Nullable {
		return true
	}
	return !c.Required
}

// EqualIgnoreComment reports structural equality of two definitions.
// Comments are metadata and do not participate.
func (c *ColumnDefinition) EqualIgnoreComment(o *ColumnDefinition) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.Type == o.Type &&
		c.Primary == o.Primary &&
		c.Unique == o.Unique &&
		c.Nullable == o.Nullable &&
		c.Required == o.Required &&
		c.Index == o.Index &&
		c.OnUpdate == o.OnUpdate &&
		c.MaxLength == o.MaxLength &&
		c.Precision == o.Precision &&
		c.Scale == o.Scale &&
		defaultsEqual(c.DefaultTo, o.DefaultTo) &&
		stringSlicesEqual(c.Values, o.Values)
}

// Equal reports full equality including the comment.
func (c *ColumnDefinition) Equal(o *ColumnDefinition) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.EqualIgnoreComment(o) && c.Comment == o.Comment
}

func defaultsEqual(a, b *DefaultValue) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
