// A much-reduced descendant of the teacher's diff.BreakingChangeAnalyzer
// (internal/diff/breaking_changes.go): that analyzer has four severities and
// can suppress unsafe drops from the generated migration. This repository
// keeps planning a pure function (spec.md's non-goals), so BreakingChanges
// only classifies actions the differ already produced for the CLI's diff
// output; it never gates what Diff returns.
package planner

import (
	"fmt"

	"github.com/dev-five-git/vespertide/internal/action"
)

// Severity classifies how risky a Note is to apply against a live database.
type Severity string

const (
	SeverityInfo        Severity = "info"
	SeverityCaution     Severity = "caution"
	SeverityDestructive Severity = "destructive"
)

// Note is a human-readable annotation on one action, for display only.
type Note struct {
	Severity Severity
	Action   action.MigrationAction
	Message  string
}

// BreakingChanges classifies each action the differ produced. It never
// changes or reorders the input.
func BreakingChanges(actions []action.MigrationAction) []Note {
	var notes []Note
	for _, a := range actions {
		if n := classify(a); n != nil {
			notes = append(notes, *n)
		}
	}
	return notes
}

func classify(a action.MigrationAction) *Note {
	switch a.Kind {
	case action.DeleteTable:
		return &Note{SeverityDestructive, a, fmt.Sprintf("drops table %q and all of its data", a.Table)}
	case action.DeleteColumn:
		return &Note{SeverityDestructive, a, fmt.Sprintf("drops column %s.%s and its data", a.Table, a.ColumnName)}
	case action.DropEnum:
		return &Note{SeverityCaution, a, fmt.Sprintf("drops enum type %q", a.EnumName)}
	case action.RemoveConstraint:
		return &Note{SeverityCaution, a, fmt.Sprintf("removes constraint %s on %s", a.ConstraintName, a.Table)}
	case action.ModifyColumnType:
		return &Note{SeverityCaution, a, fmt.Sprintf("changes the type of %s.%s; existing values may not convert cleanly", a.Table, a.ColumnName)}
	case action.ModifyColumnNullable:
		if a.NewNullable != nil && !*a.NewNullable {
			return &Note{SeverityCaution, a, fmt.Sprintf("makes %s.%s non-nullable; existing NULLs will fail unless backfilled first", a.Table, a.ColumnName)}
		}
		return nil
	case action.AddColumn:
		if !a.Column.Nullable {
			return &Note{SeverityInfo, a, fmt.Sprintf("adds non-nullable column %s.%s", a.Table, a.Column.Name)}
		}
		return nil
	case action.CreateTable, action.AddConstraint, action.AddIndex, action.CreateEnum, action.AlterEnumAddValue:
		return nil
	default:
		return nil
	}
}
