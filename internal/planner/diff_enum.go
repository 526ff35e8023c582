package planner

import (
	"github.com/dev-five-git/vespertide/internal/action"
	"github.com/dev-five-git/vespertide/internal/errs"
	"github.com/dev-five-git/vespertide/internal/schema"
)

// diffEnums reconciles enum types. creates and alters are meant to run
// before any table work (a new table may already reference a new enum
// value); drops are returned separately so the caller can schedule them
// after every DeleteColumn/DeleteTable that might still reference them, per
// spec.md §4.3 phase 1.
func diffEnums(baseline, target *schema.Schema) (creates, alters, drops []action.MigrationAction, err error) {
	for _, name := range target.SortedEnumNames() {
		te := target.Enum(name)
		be := baseline.Enum(name)
		if be == nil {
			creates = append(creates, action.MigrationAction{Kind: action.CreateEnum, Enum: te.Clone()})
			continue
		}
		if err := checkEnumAppendOnly(be, te); err != nil {
			return nil, nil, nil, err
		}
		for _, v := range te.Values[len(be.Values):] {
			alters = append(alters, action.MigrationAction{Kind: action.AlterEnumAddValue, EnumName: name, EnumValue: v})
		}
	}
	for _, name := range baseline.SortedEnumNames() {
		if target.Enum(name) == nil {
			drops = append(drops, action.MigrationAction{Kind: action.DropEnum, EnumName: name})
		}
	}
	return creates, alters, drops, nil
}

// checkEnumAppendOnly enforces that an enum's value list only ever grows by
// appending: the existing prefix must be byte-identical, in order.
func checkEnumAppendOnly(old, newE *schema.EnumDef) error {
	if len(newE.Values) < len(old.Values) {
		return &errs.IncompatibleEnumChange{Enum: old.Name, Reason: "enum values were removed"}
	}
	for i, v := range old.Values {
		if newE.Values[i] != v {
			return &errs.IncompatibleEnumChange{Enum: old.Name, Reason: "existing enum values were reordered or renamed"}
		}
	}
	return nil
}
