// Package action defines the closed vocabulary of migration operations
// Vespertide knows how to plan, apply, and emit, plus the versioned
// MigrationPlan that groups them (spec.md §3).
package action

import "github.com/dev-five-git/vespertide/internal/schema"

// Kind is the tag of the MigrationAction sum type.
type Kind string

const (
	CreateTable          Kind = "create_table"
	DeleteTable          Kind = "delete_table"
	RenameTable          Kind = "rename_table"
	AddColumn            Kind = "add_column"
	DeleteColumn         Kind = "delete_column"
	RenameColumn         Kind = "rename_column"
	ModifyColumnType     Kind = "modify_column_type"
	ModifyColumnNullable Kind = "modify_column_nullable"
	ModifyColumnDefault  Kind = "modify_column_default"
	ModifyColumnComment  Kind = "modify_column_comment"
	AddConstraint        Kind = "add_constraint"
	RemoveConstraint     Kind = "remove_constraint"
	AddIndex             Kind = "add_index"
	RemoveIndex          Kind = "remove_index"
	CreateEnum           Kind = "create_enum"
	DropEnum             Kind = "drop_enum"
	AlterEnumAddValue    Kind = "alter_enum_add_value"
	Raw                  Kind = "raw"
)

// RawSQL carries per-backend opaque SQL for the Raw escape hatch. A blank
// string means "no statement for this backend".
type RawSQL struct {
	Postgres string `json:"postgres,omitempty"`
	MySQL    string `json:"mysql,omitempty"`
	SQLite   string `json:"sqlite,omitempty"`
}

// MigrationAction is one typed operation in the vocabulary. Only the
// fields relevant to Kind are populated; the per-field comments below name
// the kinds that use each one, and applier.Apply checks the required subset.
type MigrationAction struct {
	Kind Kind `json:"kind"`

	Table   string `json:"table,omitempty"`    // CreateTable, DeleteTable, *Column*, *Constraint*, *Index*
	NewName string `json:"new_name,omitempty"` // RenameTable, RenameColumn

	Column      *schema.ColumnDef  `json:"column,omitempty"`       // AddColumn
	ColumnName  string             `json:"column_name,omitempty"`  // DeleteColumn, RenameColumn, ModifyColumn*
	FillWith    string             `json:"fill_with,omitempty"`    // AddColumn backfill expression
	NewType     *schema.ColumnType `json:"new_type,omitempty"`
	NewNullable *bool              `json:"new_nullable,omitempty"`
	NewDefault  *string            `json:"new_default,omitempty"`
	NewComment  *string            `json:"new_comment,omitempty"`

	Columns     []*schema.ColumnDef       `json:"columns,omitempty"`     // CreateTable
	Constraints []*schema.TableConstraint `json:"constraints,omitempty"` // CreateTable
	Indexes     []*schema.IndexDef        `json:"indexes,omitempty"`     // CreateTable

	Constraint *schema.TableConstraint `json:"constraint,omitempty"` // AddConstraint
	Index      *schema.IndexDef        `json:"index,omitempty"`      // AddIndex

	ConstraintName string `json:"constraint_name,omitempty"` // RemoveConstraint
	IndexName      string `json:"index_name,omitempty"`      // RemoveIndex

	Enum      *schema.EnumDef `json:"enum,omitempty"`       // CreateEnum
	EnumName  string          `json:"enum_name,omitempty"`  // DropEnum, AlterEnumAddValue
	EnumValue string          `json:"enum_value,omitempty"` // AlterEnumAddValue

	Raw RawSQL `json:"raw,omitempty"`
}

// MigrationPlan is a single versioned, ordered, committed migration: spec.md
// §3's MigrationPlan record.
type MigrationPlan struct {
	Version   int64             `json:"version"`
	Comment   string            `json:"comment,omitempty"`
	Actions   []MigrationAction `json:"actions"`
	CreatedAt string            `json:"created_at,omitempty"` // ISO-8601, kept as a string: the core never interprets it, only orders by Version.
}
