package planner

import (
	"sort"

	"github.com/dev-five-git/vespertide/internal/action"
	"github.com/dev-five-git/vespertide/internal/schema"
)

// diffColumns compares two normalized TableDefs' column lists, returning
// three buckets in the order the caller must emit them: removes, adds,
// modifies. Renames are never inferred here — a column present in old but
// absent in new (by name) is always a delete, symmetrically an add, per
// spec.md §9.
func diffColumns(old, newT *schema.TableDef) (removes, adds, modifies []action.MigrationAction) {
	oldCols := make(map[string]*schema.ColumnDef, len(old.Columns))
	for _, c := range old.Columns {
		oldCols[c.Name] = c
	}
	newCols := make(map[string]*schema.ColumnDef, len(newT.Columns))
	for _, c := range newT.Columns {
		newCols[c.Name] = c
	}

	oldNames := sortedColumnNames(old.Columns)
	newNames := sortedColumnNames(newT.Columns)

	for _, name := range oldNames {
		if _, ok := newCols[name]; !ok {
			removes = append(removes, action.MigrationAction{Kind: action.DeleteColumn, Table: old.Name, ColumnName: name})
		}
	}
	for _, name := range newNames {
		if _, ok := oldCols[name]; !ok {
			adds = append(adds, action.MigrationAction{Kind: action.AddColumn, Table: old.Name, Column: newCols[name].Clone()})
		}
	}
	for _, name := range newNames {
		oc, ok := oldCols[name]
		if !ok {
			continue
		}
		nc := newCols[name]
		modifies = append(modifies, diffColumnAttributes(old.Name, oc, nc)...)
	}
	return removes, adds, modifies
}

func diffColumnAttributes(table string, oc, nc *schema.ColumnDef) []action.MigrationAction {
	var out []action.MigrationAction
	if !oc.Type.Equal(nc.Type) {
		t := nc.Type
		out = append(out, action.MigrationAction{Kind: action.ModifyColumnType, Table: table, ColumnName: nc.Name, NewType: &t})
	}
	if oc.Nullable != nc.Nullable {
		v := nc.Nullable
		out = append(out, action.MigrationAction{Kind: action.ModifyColumnNullable, Table: table, ColumnName: nc.Name, NewNullable: &v})
	}
	if !stringPtrEqual(oc.Default, nc.Default) {
		out = append(out, action.MigrationAction{Kind: action.ModifyColumnDefault, Table: table, ColumnName: nc.Name, NewDefault: clonedStringPtr(nc.Default)})
	}
	if oc.Comment != nc.Comment {
		c := nc.Comment
		out = append(out, action.MigrationAction{Kind: action.ModifyColumnComment, Table: table, ColumnName: nc.Name, NewComment: &c})
	}
	return out
}

func sortedColumnNames(cols []*schema.ColumnDef) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	sort.Strings(names)
	return names
}

func stringPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func clonedStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
