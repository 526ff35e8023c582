package main

import (
	"fmt"

	"github.com/dev-five-git/vespertide/internal/action"
)

// describeAction renders a one-line human summary of an action, used by
// diff/status/log output. It never needs to be exact SQL — internal/sqlgen
// owns that — only legible enough for a human scanning a plan.
func describeAction(a action.MigrationAction) string {
	switch a.Kind {
	case action.CreateTable:
		return fmt.Sprintf("create table %s", a.Table)
	case action.DeleteTable:
		return fmt.Sprintf("delete table %s", a.Table)
	case action.RenameTable:
		return fmt.Sprintf("rename table %s -> %s", a.Table, a.NewName)
	case action.AddColumn:
		return fmt.Sprintf("add column %s.%s", a.Table, a.Column.Name)
	case action.DeleteColumn:
		return fmt.Sprintf("delete column %s.%s", a.Table, a.ColumnName)
	case action.RenameColumn:
		return fmt.Sprintf("rename column %s.%s -> %s", a.Table, a.ColumnName, a.NewName)
	case action.ModifyColumnType:
		return fmt.Sprintf("modify column type %s.%s", a.Table, a.ColumnName)
	case action.ModifyColumnNullable:
		return fmt.Sprintf("modify column nullability %s.%s", a.Table, a.ColumnName)
	case action.ModifyColumnDefault:
		return fmt.Sprintf("modify column default %s.%s", a.Table, a.ColumnName)
	case action.ModifyColumnComment:
		return fmt.Sprintf("modify column comment %s.%s", a.Table, a.ColumnName)
	case action.AddConstraint:
		return fmt.Sprintf("add constraint on %s", a.Table)
	case action.RemoveConstraint:
		return fmt.Sprintf("remove constraint %s on %s", a.ConstraintName, a.Table)
	case action.AddIndex:
		return fmt.Sprintf("add index on %s", a.Table)
	case action.RemoveIndex:
		return fmt.Sprintf("remove index %s on %s", a.IndexName, a.Table)
	case action.CreateEnum:
		return fmt.Sprintf("create enum %s", a.Enum.Name)
	case action.DropEnum:
		return fmt.Sprintf("drop enum %s", a.EnumName)
	case action.AlterEnumAddValue:
		return fmt.Sprintf("add value %q to enum %s", a.EnumValue, a.EnumName)
	case action.Raw:
		return "raw SQL"
	default:
		return string(a.Kind)
	}
}
