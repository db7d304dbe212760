package schema

// Operation identifies what a parsed builder invocation does to a table.
type Operation string

// Table-level operations.
const (
	OpCreate Operation = "create"
	OpAlter  Operation = "alter"
	OpDrop   Operation = "drop"
)

// AlterOpType identifies a single column step inside an alterTable body.
type AlterOpType string

// Column-level alter steps.
const (
	AlterAddColumn    AlterOpType = "addColumn"
	AlterDropColumn   AlterOpType = "dropColumn"
	AlterModifyColumn AlterOpType = "modifyColumn"
)

// AlterOperation is one column step recovered from an alterTable body, in
// source order.
type AlterOperation struct {
	Type       AlterOpType
	ColumnName string
	Definition *ColumnDefinition // nil for dropColumn
}

// ParsedMigration is the outcome of parsing a single builder invocation in a
// migration file.
type ParsedMigration struct {
	TableName       string
	Operation       Operation
	IsView          bool
	Columns         *SchemaDefinition // column set for create operations
	AlterOperations []AlterOperation  // steps for alter operations
	SourceFile      string
}
