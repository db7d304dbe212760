package schema

import (
	"encoding/json"
	"sort"
)

// SchemaDefinition is an ordered set of column definitions for one table.
// Iteration follows declaration order, matching the source migration files.
type SchemaDefinition struct {
	names   []string
	columns map[string]*ColumnDefinition
}

// NewSchemaDefinition returns an empty schema definition.
func NewSchemaDefinition() *SchemaDefinition {
	return &SchemaDefinition{columns: make(map[string]*ColumnDefinition)}
}

// Set inserts or replaces a column. A replaced column keeps its original
// position.
func (s *SchemaDefinition) Set(name string, col *ColumnDefinition) {
	if s.columns == nil {
		s.columns = make(map[string]*ColumnDefinition)
	}
	if _, ok := s.columns[name]; !ok {
		s.names = append(s.names, name)
	}
	s.columns[name] = col
}

// Get returns the column with the given name.
func (s *SchemaDefinition) Get(name string) (*ColumnDefinition, bool) {
	col, ok := s.columns[name]
	return col, ok
}

// Delete removes a column and reports whether it existed.
func (s *SchemaDefinition) Delete(name string) bool {
	if _, ok := s.columns[name]; !ok {
		return false
	}
	delete(s.columns, name)
	for i, n := range s.names {
		if n == name {
			s.names = append(s.names[:i], s.names[i+1:]...)
			break
		}
	}
	return true
}

// Names returns the column names in declaration order.
func (s *SchemaDefinition) Names() []string {
	return append([]string(nil), s.names...)
}

// Len returns the number of columns.
func (s *SchemaDefinition) Len() int {
	return len(s.names)
}

// Clone returns a deep copy.
func (s *SchemaDefinition) Clone() *SchemaDefinition {
	if s == nil {
		return nil
	}
	out := NewSchemaDefinition()
	for _, name := range s.names {
		out.Set(name, s.columns[name].Clone())
	}
	return out
}

// Equal reports whether both definitions hold the same columns in the same
// order, comments included.
func (s *SchemaDefinition) Equal(o *SchemaDefinition) bool {
	if s == nil || o == nil {
		return s == o
	}
	if len(s.names) != len(o.names) {
		return false
	}
	for i, name := range s.names {
		if o.names[i] != name {
			return false
		}
		if !s.columns[name].Equal(o.columns[name]) {
			return false
		}
	}
	return true
}

type columnEntry struct {
	Name string `json:"name"`
	ColumnDefinition
}

// MarshalJSON renders the columns as an ordered array so snapshots stay
// stable across runs.
func (s *SchemaDefinition) MarshalJSON() ([]byte, error) {
	entries := make([]columnEntry, 0, len(s.names))
	for _, name := range s.names {
		entries = append(entries, columnEntry{Name: name, ColumnDefinition: *s.columns[name]})
	}
	return json.Marshal(entries)
}

// UnmarshalJSON restores a definition from its ordered array form.
func (s *SchemaDefinition) UnmarshalJSON(data []byte) error {
	var entries []columnEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	*s = *NewSchemaDefinition()
	for i := range entries {
		col := entries[i].ColumnDefinition
		s.Set(entries[i].Name, &col)
	}
	return nil
}

// SchemaSet maps table names to merged schema definitions. Insertion order
// is preserved; deterministic consumers sort the names themselves.
type SchemaSet struct {
	names  []string
	tables map[string]*SchemaDefinition
	views  map[string]bool
}

// NewSchemaSet returns an empty schema set.
func NewSchemaSet() *SchemaSet {
	return &SchemaSet{
		tables: make(map[string]*SchemaDefinition),
		views:  make(map[string]bool),
	}
}

// Set inserts or replaces a table definition.
func (s *SchemaSet) Set(table string, def *SchemaDefinition) {
	if s.tables == nil {
		s.tables = make(map[string]*SchemaDefinition)
	}
	if s.views == nil {
		s.views = make(map[string]bool)
	}
	if _, ok := s.tables[table]; !ok {
		s.names = append(s.names, table)
	}
	s.tables[table] = def
}

// MarkView flags a table as originating from a createView invocation.
func (s *SchemaSet) MarkView(table string) {
	if s.views == nil {
		s.views = make(map[string]bool)
	}
	s.views[table] = true
}

// IsView reports whether the table was flagged as a view.
func (s *SchemaSet) IsView(table string) bool {
	return s.views[table]
}

// Get returns the definition for a table.
func (s *SchemaSet) Get(table string) (*SchemaDefinition, bool) {
	def, ok := s.tables[table]
	return def, ok
}

// Delete removes a table and reports whether it existed.
func (s *SchemaSet) Delete(table string) bool {
	if _, ok := s.tables[table]; !ok {
		return false
	}
	delete(s.tables, table)
	delete(s.views, table)
	for i, n := range s.names {
		if n == table {
			s.names = append(s.names[:i], s.names[i+1:]...)
			break
		}
	}
	return true
}

// Names returns the table names in insertion order.
func (s *SchemaSet) Names() []string {
	return append([]string(nil), s.names...)
}

// SortedNames returns the table names sorted lexically.
func (s *SchemaSet) SortedNames() []string {
	names := s.Names()
	sort.Strings(names)
	return names
}

// Len returns the number of tables.
func (s *SchemaSet) Len() int {
	return len(s.names)
}

// Clone returns a deep copy.
func (s *SchemaSet) Clone() *SchemaSet {
	if s == nil {
		return nil
	}
	out := NewSchemaSet()
	for _, name := range s.names {
		out.Set(name, s.tables[name].Clone())
		if s.views[name] {
			out.MarkView(name)
		}
	}
	return out
}

// Equal reports whether two sets hold the same tables with equal
// definitions and view flags. Table insertion order does not matter.
func (s *SchemaSet) Equal(other *SchemaSet) bool {
	if s == nil || other == nil {
		return s == other
	}
	if len(s.names) != len(other.names) {
		return false
	}
	for _, name := range s.names {
		theirs, ok := other.tables[name]
		if !ok {
			return false
		}
		if s.views[name] != other.views[name] {
			return false
		}
		if !s.tables[name].Equal(theirs) {
			return false
		}
	}
	return true
}

type tableEntry struct {
	Name    string            `json:"name"`
	View    bool              `json:"view,omitempty"`
	Columns *SchemaDefinition `json:"columns"`
}

// MarshalJSON renders the tables sorted by name so snapshot files diff
// cleanly under version control.
func (s *SchemaSet) MarshalJSON() ([]byte, error) {
	entries := make([]tableEntry, 0, len(s.names))
	for _, name := range s.SortedNames() {
		entries = append(entries, tableEntry{
			Name:    name,
			View:    s.views[name],
			Columns: s.tables[name],
		})
	}
	return json.Marshal(entries)
}

// UnmarshalJSON restores a set from its array form.
func (s *SchemaSet) UnmarshalJSON(data []byte) error {
	var entries []tableEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	*s = *NewSchemaSet()
	for _, e := range entries {
		cols := e.Columns
		if cols == nil {
			cols = NewSchemaDefinition()
		}
		s.Set(e.Name, cols)
		if e.View {
			s.MarkView(e.Name)
		}
	}
	return nil
}
