// Table-level diff structure grounded on the teacher's internal/diff/diff_table.go
// ordered per-table column/constraint/index passes, with the heuristic rename
// scoring from diff_column_rename.go deliberately dropped (spec.md §9: renames
// are never inferred).
package planner

import (
	"github.com/dev-five-git/vespertide/internal/action"
	"github.com/dev-five-git/vespertide/internal/schema"
)

// diffTable compares two normalized TableDefs sharing a name and returns the
// ordered action list: every removal (constraints, then indexes, then
// columns) before every addition, before every column-attribute modify. This
// frees a name before anything tries to reuse it, generalizing normalize's
// own collision-avoidance discipline to the diff pass, and drops whatever
// references a column before the column itself goes.
func diffTable(old, newT *schema.TableDef) []action.MigrationAction {
	colRemoves, colAdds, colModifies := diffColumns(old, newT)
	constraintRemoves, constraintAdds := diffConstraints(old, newT)
	indexRemoves, indexAdds := diffIndexes(old, newT)

	var out []action.MigrationAction
	out = append(out, constraintRemoves...)
	out = append(out, indexRemoves...)
	out = append(out, colRemoves...)
	out = append(out, colAdds...)
	out = append(out, constraintAdds...)
	out = append(out, indexAdds...)
	out = append(out, colModifies...)
	return out
}

func constraintKey(c *schema.TableConstraint) string {
	if c.Name != "" {
		return c.Name
	}
	// An unnamed constraint is always the coalesced-inline primary key; a
	// table has at most one, so the kind alone is a stable diff key.
	return "@" + string(c.Kind)
}

// diffConstraints matches constraints by name (or, for the unnamed primary
// key, by kind), emitting remove-then-add for any pair that differs and
// add/remove for pairs present on only one side.
func diffConstraints(old, newT *schema.TableDef) (removes, adds []action.MigrationAction) {
	oldByKey := make(map[string]*schema.TableConstraint, len(old.Constraints))
	for _, c := range old.Constraints {
		oldByKey[constraintKey(c)] = c
	}
	newByKey := make(map[string]*schema.TableConstraint, len(newT.Constraints))
	for _, c := range newT.Constraints {
		newByKey[constraintKey(c)] = c
	}

	for _, key := range sortedKeysOf(oldByKey) {
		oc := oldByKey[key]
		nc, ok := newByKey[key]
		if !ok {
			removes = append(removes, action.MigrationAction{Kind: action.RemoveConstraint, Table: old.Name, ConstraintName: oc.Name})
			continue
		}
		if !oc.Equal(nc) {
			removes = append(removes, action.MigrationAction{Kind: action.RemoveConstraint, Table: old.Name, ConstraintName: oc.Name})
			adds = append(adds, action.MigrationAction{Kind: action.AddConstraint, Table: old.Name, Constraint: nc.Clone()})
		}
	}
	for _, key := range sortedKeysOf(newByKey) {
		if _, ok := oldByKey[key]; ok {
			continue
		}
		adds = append(adds, action.MigrationAction{Kind: action.AddConstraint, Table: old.Name, Constraint: newByKey[key].Clone()})
	}
	return removes, adds
}

// diffIndexes matches indexes by name, emitting remove-then-add for any pair
// that differs and add/remove for pairs present on only one side.
func diffIndexes(old, newT *schema.TableDef) (removes, adds []action.MigrationAction) {
	oldByName := make(map[string]*schema.IndexDef, len(old.Indexes))
	for _, i := range old.Indexes {
		oldByName[i.Name] = i
	}
	newByName := make(map[string]*schema.IndexDef, len(newT.Indexes))
	for _, i := range newT.Indexes {
		newByName[i.Name] = i
	}

	for _, name := range sortedKeysOf(oldByName) {
		oi := oldByName[name]
		ni, ok := newByName[name]
		if !ok {
			removes = append(removes, action.MigrationAction{Kind: action.RemoveIndex, Table: old.Name, IndexName: oi.Name})
			continue
		}
		if !oi.Equal(ni) {
			removes = append(removes, action.MigrationAction{Kind: action.RemoveIndex, Table: old.Name, IndexName: oi.Name})
			adds = append(adds, action.MigrationAction{Kind: action.AddIndex, Table: old.Name, Index: ni.Clone()})
		}
	}
	for _, name := range sortedKeysOf(newByName) {
		if _, ok := oldByName[name]; ok {
			continue
		}
		adds = append(adds, action.MigrationAction{Kind: action.AddIndex, Table: old.Name, Index: newByName[name].Clone()})
	}
	return removes, adds
}
