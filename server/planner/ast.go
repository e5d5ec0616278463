// Package planner compiles an already-parsed statement tree into an
// engine.Operator pipeline. The types in this file are that tree: a SQL
// front end builds one of these and hands it to the matching Compile*
// function; nothing here does any text parsing.
package planner

// ColumnDef is one column of a CREATE TABLE statement.
type ColumnDef struct {
	Name string // unqualified; table.Create qualifies it with the table name
	Type string // "INT" or "FLOAT"
}

// CreateTable creates a new, empty table.
type CreateTable struct {
	Table   string
	Columns []ColumnDef
}

// Literal is one value of an INSERT statement's VALUES list.
type Literal struct {
	IsFloat  bool
	IntVal   int32
	FloatVal float32
}

// Insert appends one row to an existing table.
type Insert struct {
	Table  string
	Values []Literal
}

// JoinSpec is one `JOIN <table> ON <left> = <right>` clause; Left and
// Right are qualified column names ("a.id").
type JoinSpec struct {
	Table string
	Left  string
	Right string
}

// Select is `SELECT <columns> FROM <table> [JOIN ...]`. Columns == nil (or
// the single entry "*") selects every column of the fully-joined schema.
type Select struct {
	Table   string
	Joins   []JoinSpec
	Columns []string
}
