package history

import (
	"encoding/json"
	"fmt"

	"github.com/migforge/migforge/schema"
)

// SerializeSchema serializes a SchemaSet to JSON
func SerializeSchema(set *schema.SchemaSet) (string, error) {
	if set == nil {
		return "", nil
	}
	data, err := json.Marshal(set)
	if err != nil {
		return "", fmt.Errorf("failed to serialize schema: %w", err)
	}
	return string(data), nil
}
