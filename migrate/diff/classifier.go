package diff

import (
	"github.com/migforge/migforge/schema"
)

// knex builder defaults for unspecified sizes. The classifier compares
// effective sizes so adding an explicit default-sized argument never grades
// as a narrowing.
const (
	defaultStringLength  = 255
	defaultDecimalDigits = 8
	defaultDecimalScale  = 2
)

// ColumnChanges tracks which aspects of a column changed between two
// definitions.
type ColumnChanges struct {
	TypeChanged      bool
	LengthChanged    bool
	PrecisionChanged bool
	UniqueChanged    bool
	PrimaryChanged   bool
	IndexChanged     bool
	ValuesChanged    bool
	NullableChanged  bool
	DefaultChanged   bool
	OnUpdateChanged  bool
}

// DiffersInSomething returns true if any aspect changed.
func (c *ColumnChanges) DiffersInSomething() bool {
	return c.TypeChanged || c.LengthChanged || c.PrecisionChanged ||
		c.UniqueChanged || c.PrimaryChanged || c.IndexChanged ||
		c.ValuesChanged || c.NullableChanged || c.DefaultChanged ||
		c.OnUpdateChanged
}

// DetectColumnChanges compares two definitions aspect by aspect.
func DetectColumnChanges(old, new *schema.ColumnDefinition) *ColumnChanges {
	return &ColumnChanges{
		TypeChanged:      old.Type != new.Type,
		LengthChanged:    effectiveLength(old) != effectiveLength(new),
		PrecisionChanged: effectivePrecision(old) != effectivePrecision(new) || effectiveScale(old) != effectiveScale(new),
		UniqueChanged:    old.Unique != new.Unique,
		PrimaryChanged:   old.Primary != new.Primary,
		IndexChanged:     old.Index != new.Index,
		ValuesChanged:    !valueListsEqual(old.Values, new.Values),
		NullableChanged:  old.IsNullable() != new.IsNullable(),
		DefaultChanged:   !defaultsEqual(old.DefaultTo, new.DefaultTo),
		OnUpdateChanged:  old.OnUpdate != new.OnUpdate,
	}
}

// Classify grades one column change. In-place alter covers everything that
// cannot destroy data or rewrite a constraint: widening sizes, default
// changes, loosening nullability. Raw covers constraint, index and check
// rewrites that keep the column's data. Recreate covers type changes and
// narrowing sizes, which can silently truncate values.
func Classify(old, new *schema.ColumnDefinition) Alteration {
	if old.Type != new.Type {
		return AlterationRecreate
	}
	if new.Type == schema.TypeString && effectiveLength(new) < effectiveLength(old) {
		return AlterationRecreate
	}
	if hasPrecision(new.Type) &&
		(effectivePrecision(new) < effectivePrecision(old) || effectiveScale(new) < effectiveScale(old)) {
		return AlterationRecreate
	}

	if old.Unique != new.Unique || old.Primary != new.Primary {
		return AlterationRaw
	}
	if !valueListsEqual(old.Values, new.Values) {
		return AlterationRaw
	}
	if old.IsNullable() && !new.IsNullable() {
		return AlterationRaw
	}
	if old.Index != new.Index {
		return AlterationRaw
	}
	if old.OnUpdate != new.OnUpdate {
		return AlterationRaw
	}

	return AlterationAlter
}

func hasPrecision(t schema.ColumnType) bool {
	return t == schema.TypeDecimal || t == schema.TypeFloat || t == schema.TypeDouble
}

func effectiveLength(c *schema.ColumnDefinition) int {
	if c.Type != schema.TypeString {
		return 0
	}
	if c.MaxLength == 0 {
		return defaultStringLength
	}
	return c.MaxLength
}

func effectivePrecision(c *schema.ColumnDefinition) int {
	if !hasPrecision(c.Type) {
		return 0
	}
	if c.Precision == 0 {
		return defaultDecimalDigits
	}
	return c.Precision
}

func effectiveScale(c *schema.ColumnDefinition) int {
	if !hasPrecision(c.Type) {
		return 0
	}
	if c.Scale == 0 {
		return defaultDecimalScale
	}
	return c.Scale
}

func valueListsEqual(a, b []string) bool {
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

func defaultsEqual(a, b *schema.DefaultValue) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
