// Package planner implements the algorithmic core: diffing two normalized
// schemas into an ordered action list, topologically sorting table
// create/delete order over the foreign-key graph, and validating a schema or
// a plan. Grounded on the teacher's internal/diff package shape (diff.go
// orchestrating phase-ordered sub-diffs from diff_table.go/diff_constraint.go/
// diff_index.go) with its breaking-change heuristics and the scoring-based
// diff_column_rename.go left behind, since spec.md forbids rename inference.
package planner

import (
	"github.com/dev-five-git/vespertide/internal/action"
	"github.com/dev-five-git/vespertide/internal/schema"
)

// Diff compares baseline against target and returns the ordered action list
// that transforms one into the other. Both inputs must already be
// normalized; passing an un-normalized schema is a programming error, not a
// user error, per spec.md §4.3.
func Diff(baseline, target *schema.Schema) ([]action.MigrationAction, error) {
	var out []action.MigrationAction

	enumCreates, enumAlters, enumDrops, err := diffEnums(baseline, target)
	if err != nil {
		return nil, err
	}
	out = append(out, enumCreates...)
	out = append(out, enumAlters...)

	deletes, err := diffTableDeletions(baseline, target)
	if err != nil {
		return nil, err
	}
	out = append(out, deletes...)

	creates, err := diffTableCreations(baseline, target)
	if err != nil {
		return nil, err
	}
	out = append(out, creates...)

	for _, name := range commonTableNames(baseline, target) {
		out = append(out, diffTable(baseline.Table(name), target.Table(name))...)
	}

	out = append(out, enumDrops...)

	return out, nil
}

func commonTableNames(baseline, target *schema.Schema) []string {
	var names []string
	for _, name := range target.SortedTableNames() {
		if baseline.Table(name) != nil {
			names = append(names, name)
		}
	}
	return names
}

// diffTableDeletions orders DeleteTable actions so dependents are dropped
// before the tables they reference, using the reverse of the baseline's
// forward topological order restricted to the tables being removed.
func diffTableDeletions(baseline, target *schema.Schema) ([]action.MigrationAction, error) {
	var toDelete []string
	for _, name := range baseline.SortedTableNames() {
		if target.Table(name) == nil {
			toDelete = append(toDelete, name)
		}
	}
	if len(toDelete) == 0 {
		return nil, nil
	}
	order, err := topoSortTables(baseline, toDelete)
	if err != nil {
		return nil, err
	}
	var out []action.MigrationAction
	for _, name := range reverseStrings(order) {
		out = append(out, action.MigrationAction{Kind: action.DeleteTable, Table: name})
	}
	return out, nil
}

// diffTableCreations orders CreateTable actions so every table a new table
// references already exists, using the target's forward topological order
// restricted to the new tables.
func diffTableCreations(baseline, target *schema.Schema) ([]action.MigrationAction, error) {
	var toCreate []string
	for _, name := range target.SortedTableNames() {
		if baseline.Table(name) == nil {
			toCreate = append(toCreate, name)
		}
	}
	if len(toCreate) == 0 {
		return nil, nil
	}
	order, err := topoSortTables(target, toCreate)
	if err != nil {
		return nil, err
	}
	var out []action.MigrationAction
	for _, name := range order {
		out = append(out, tableCreateAction(target.Table(name)))
	}
	return out, nil
}

func tableCreateAction(t *schema.TableDef) action.MigrationAction {
	a := action.MigrationAction{Kind: action.CreateTable, Table: t.Name}
	for _, c := range t.Columns {
		a.Columns = append(a.Columns, c.Clone())
	}
	for _, c := range t.Constraints {
		a.Constraints = append(a.Constraints, c.Clone())
	}
	for _, idx := range t.Indexes {
		a.Indexes = append(a.Indexes, idx.Clone())
	}
	return a
}
