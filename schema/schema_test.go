package schema

import (
	"encoding/json"
	"testing"
)

func TestSchemaDefinitionOrder(t *testing.T) {
	def := NewSchemaDefinition()
	def.Set("id", &ColumnDefinition{Type: TypeIncrements, Primary: true})
	def.Set("email", &ColumnDefinition{Type: TypeString, MaxLength: 255})
	def.Set("created_at", &ColumnDefinition{Type: TypeTimestamp})

	names := def.Names()
	if len(names) != 3 {
		t.Fatalf("Expected 3 columns, got %d", len(names))
	}
	want := []string{"id", "email", "created_at"}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("Expected column %d to be %q, got %q", i, name, names[i])
		}
	}

	// Replacing keeps the original position.
	def.Set("email", &ColumnDefinition{Type: TypeString, MaxLength: 500})
	names = def.Names()
	if names[1] != "email" {
		t.Errorf("Expected email to keep position 1, got %q", names[1])
	}
	col, ok := def.Get("email")
	if !ok || col.MaxLength != 500 {
		t.Errorf("Expected replaced email with maxLength 500, got %+v", col)
	}

	if !def.Delete("email") {
		t.Fatal("Expected Delete to report the column existed")
	}
	if def.Delete("email") {
		t.Error("Expected second Delete to report missing column")
	}
	if def.Len() != 2 {
		t.Errorf("Expected 2 columns after delete, got %d", def.Len())
	}
}

func TestSchemaDefinitionCloneIsDeep(t *testing.T) {
	def := NewSchemaDefinition()
	def.Set("status", &ColumnDefinition{
		Type:      TypeEnum,
		Values:    []string{"active", "inactive"},
		DefaultTo: &DefaultValue{Kind: DefaultString, Value: "active"},
	})

	clone := def.Clone()
	col, _ := clone.Get("status")
	col.Values[0] = "changed"
	col.DefaultTo.Value = "changed"

	orig, _ := def.Get("status")
	if orig.Values[0] != "active" {
		t.Errorf("Clone shares the values slice: %v", orig.Values)
	}
	if orig.DefaultTo.Value != "active" {
		t.Errorf("Clone shares the default value: %v", orig.DefaultTo)
	}
}

func TestSchemaDefinitionJSONRoundTrip(t *testing.T) {
	def := NewSchemaDefinition()
	def.Set("id", &ColumnDefinition{Type: TypeBigIncrements, Primary: true})
	def.Set("price", &ColumnDefinition{Type: TypeDecimal, Precision: 10, Scale: 2, Required: true})
	def.Set("note", &ColumnDefinition{Type: TypeText, Nullable: true, Comment: "free form"})
	def.Set("state", &ColumnDefinition{Type: TypeEnum, Values: []string{"new", "done"}, DefaultTo: &DefaultValue{Kind: DefaultString, Value: "new"}})

	data, err := json.Marshal(def)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	restored := NewSchemaDefinition()
	if err := json.Unmarshal(data, restored); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if !def.Equal(restored) {
		t.Errorf("Round trip changed the definition:\n%s", data)
	}
	names := restored.Names()
	if names[0] != "id" || names[3] != "state" {
		t.Errorf("Round trip lost column order: %v", names)
	}
}

func TestSchemaSetJSONRoundTrip(t *testing.T) {
	set := NewSchemaSet()
	users := NewSchemaDefinition()
	users.Set("id", &ColumnDefinition{Type: TypeIncrements, Primary: true})
	set.Set("users", users)

	active := NewSchemaDefinition()
	active.Set("id", &ColumnDefinition{Type: TypeInteger})
	set.Set("active_users", active)
	set.MarkView("active_users")

	data, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	restored := NewSchemaSet()
	if err := json.Unmarshal(data, restored); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if restored.Len() != 2 {
		t.Fatalf("Expected 2 tables, got %d", restored.Len())
	}
	if !restored.IsView("active_users") {
		t.Error("Expected active_users to stay flagged as a view")
	}
	if restored.IsView("users") {
		t.Error("Expected users not to be a view")
	}
	got, ok := restored.Get("users")
	if !ok || !got.Equal(users) {
		t.Errorf("Round trip changed the users table: %+v", got)
	}
}

func TestColumnDefinitionEquality(t *testing.T) {
	base := &ColumnDefinition{Type: TypeString, MaxLength: 255, Required: true}

	same := base.Clone()
	if !base.Equal(same) {
		t.Error("Expected clones to be equal")
	}

	commented := base.Clone()
	commented.Comment = "user email"
	if base.Equal(commented) {
		t.Error("Expected Equal to see the comment change")
	}
	if !base.EqualIgnoreComment(commented) {
		t.Error("Expected EqualIgnoreComment to ignore the comment change")
	}

	longer := base.Clone()
	longer.MaxLength = 500
	if base.EqualIgnoreComment(longer) {
		t.Error("Expected maxLength change to break structural equality")
	}

	reordered := &ColumnDefinition{Type: TypeEnum, Values: []string{"a", "b"}}
	swapped := &ColumnDefinition{Type: TypeEnum, Values: []string{"b", "a"}}
	if reordered.EqualIgnoreComment(swapped) {
		t.Error("Expected enum value order to participate in equality")
	}
}

func TestIsNullable(t *testing.T) {
	cases := []struct {
		name string
		col  ColumnDefinition
		want bool
	}{
		{"no modifiers", ColumnDefinition{Type: TypeString}, true},
		{"notNullable", ColumnDefinition{Type: TypeString, Required: true}, false},
		{"nullable", ColumnDefinition{Type: TypeString, Nullable: true}, true},
		{"both flags", ColumnDefinition{Type: TypeString, Required: true, Nullable: true}, true},
	}
	for _, tc := range cases {
		if got := tc.col.IsNullable(); got != tc.want {
			t.Errorf("%s: expected IsNullable %v, got %v", tc.name, tc.want, got)
		}
	}
}
