package schema

import (
	"fmt"
	"strings"

	"github.com/dev-five-git/vespertide/internal/errs"
)

// Normalize rewrites a TableDef's inline constraint sugar into table-level
// constraints, so that two semantically identical tables produce
// bit-identical normalized forms. Normalize is idempotent: calling it on an
// already-normalized table returns an equivalent copy with nothing left to
// rewrite.
//
// Generated names follow spec.md §4.1:
//
//	unique:      uq_{table}__{column}
//	index:       ix_{table}__{column}
//	foreign key: fk_{table}__{columns_joined}
//
// A collision between two generated names (possible when two inline
// requests would otherwise produce the same name) is broken by appending a
// numeric discriminator in column declaration order. Explicit names always
// win: they are reserved before any name is generated, so a generated name
// that would repeat an explicit one gets the discriminator instead.
func Normalize(t *TableDef) (*TableDef, error) {
	out := t.clone()

	pkCols, err := collectInlinePK(out)
	if err != nil {
		return nil, err
	}

	used := map[string]struct{}{}
	for _, c := range out.Constraints {
		if c.Name != "" {
			used[c.Name] = struct{}{}
		}
	}
	for _, idx := range out.Indexes {
		if idx.Name != "" {
			used[idx.Name] = struct{}{}
		}
	}

	var generated []*TableConstraint
	var generatedIdx []*IndexDef

	for _, c := range out.Columns {
		if c.Unique {
			name := uniqueName(used, fmt.Sprintf("uq_%s__%s", out.Name, c.Name))
			generated = append(generated, &TableConstraint{
				Name: name, Kind: ConstraintUniqueIdx, Columns: []string{c.Name},
			})
		}
		if c.Index {
			name := uniqueName(used, fmt.Sprintf("ix_%s__%s", out.Name, c.Name))
			generatedIdx = append(generatedIdx, &IndexDef{Name: name, Columns: []string{c.Name}})
		}
		if c.ForeignKey != nil {
			name := uniqueName(used, fmt.Sprintf("fk_%s__%s", out.Name, c.Name))
			generated = append(generated, &TableConstraint{
				Name:              name,
				Kind:              ConstraintForeignKey,
				Columns:           []string{c.Name},
				ReferencedTable:   c.ForeignKey.ReferencedTable,
				ReferencedColumns: []string{c.ForeignKey.ReferencedColumn},
				OnDelete:          c.ForeignKey.OnDelete,
				OnUpdate:          c.ForeignKey.OnUpdate,
			})
		}
		c.PrimaryKey = false
		c.Unique = false
		c.Index = false
		c.ForeignKey = nil
	}

	if pk := out.PrimaryKey(); pk != nil && len(pkCols) > 0 {
		if !stringsEqual(pk.Columns, pkCols) {
			return nil, &errs.InvariantViolation{
				Entity: out.Name,
				Reason: "inline primary key columns conflict with table-level primary key constraint",
			}
		}
	} else if len(pkCols) > 0 {
		out.Constraints = append(out.Constraints, &TableConstraint{
			Name: "", Kind: ConstraintPrimaryKey, Columns: pkCols,
		})
	}

	out.Constraints = append(out.Constraints, generated...)
	out.Indexes = append(out.Indexes, generatedIdx...)

	return out, nil
}

func collectInlinePK(t *TableDef) ([]string, error) {
	var cols []string
	for _, c := range t.Columns {
		if c.PrimaryKey {
			cols = append(cols, c.Name)
		}
	}
	return cols, nil
}

func uniqueName(used map[string]struct{}, base string) string {
	if _, ok := used[base]; !ok {
		used[base] = struct{}{}
		return base
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s__%d", base, n)
		if _, ok := used[candidate]; !ok {
			used[candidate] = struct{}{}
			return candidate
		}
	}
}

// NormalizeSchema normalizes every table, returning a new Schema; s is left
// unchanged.
func NormalizeSchema(s *Schema) (*Schema, error) {
	out := New()
	for _, name := range s.SortedTableNames() {
		nt, err := Normalize(s.Table(name))
		if err != nil {
			return nil, err
		}
		out.Tables.Set(nt.Name, nt)
	}
	for _, name := range s.SortedEnumNames() {
		out.Enums.Set(name, s.Enum(name).clone())
	}
	return out, nil
}

// IsNormalized reports whether t has no remaining inline sugar. Useful as a
// defensive assertion before the differ, whose precondition is that both
// inputs are normalized.
func IsNormalized(t *TableDef) bool {
	for _, c := range t.Columns {
		if c.HasInlineSugar() {
			return false
		}
	}
	return true
}

// TrimSpaceNames normalizes whitespace-only differences in identifiers that
// would otherwise defeat name-based comparisons (e.g. hand-edited JSON with
// trailing spaces).
func TrimSpaceNames(t *TableDef) {
	t.Name = strings.TrimSpace(t.Name)
	for _, c := range t.Columns {
		c.Name = strings.TrimSpace(c.Name)
	}
}
