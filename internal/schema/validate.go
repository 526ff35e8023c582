package schema

import (
	"fmt"

	"github.com/dev-five-git/vespertide/internal/casing"
	"github.com/dev-five-git/vespertide/internal/errs"
)

// ValidationOptions configures name-casing conformance checks, the one
// schema-validation concern that is externally configurable (spec.md §6).
type ValidationOptions struct {
	TableNamingCase  casing.Case
	ColumnNamingCase casing.Case
}

// DefaultValidationOptions matches the configuration default: snake_case
// for both tables and columns.
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{TableNamingCase: casing.Snake, ColumnNamingCase: casing.Snake}
}

// Validate checks every invariant in spec.md §3 against a normalized
// Schema: name uniqueness, FK target existence and type compatibility, at
// most one primary key per table, enum value uniqueness, and naming-case
// conformance. It collects every violation it can find into a single
// errs.List rather than stopping at the first one.
func Validate(s *Schema, opts ValidationOptions) error {
	var problems errs.List

	tableNames := map[string]struct{}{}
	for _, name := range s.SortedTableNames() {
		if _, dup := tableNames[name]; dup {
			problems = append(problems, &errs.InvariantViolation{Entity: name, Reason: "duplicate table name"})
		}
		tableNames[name] = struct{}{}

		t := s.Table(name)
		problems = append(problems, validateTable(t, opts)...)
	}

	problems = append(problems, validateForeignKeys(s)...)
	problems = append(problems, validateConstraintNameUniqueness(s)...)
	problems = append(problems, validateEnums(s)...)

	if len(problems) == 0 {
		return nil
	}
	return problems
}

func validateTable(t *TableDef, opts ValidationOptions) errs.List {
	var problems errs.List

	if !casing.Matches(opts.TableNamingCase, t.Name) {
		problems = append(problems, &errs.InvariantViolation{
			Entity: t.Name,
			Reason: fmt.Sprintf("table name does not conform to %s naming", opts.TableNamingCase),
		})
	}

	colNames := map[string]struct{}{}
	for _, c := range t.Columns {
		if _, dup := colNames[c.Name]; dup {
			problems = append(problems, &errs.InvariantViolation{
				Entity: t.Name + "." + c.Name, Reason: "duplicate column name",
			})
		}
		colNames[c.Name] = struct{}{}

		if !casing.Matches(opts.ColumnNamingCase, c.Name) {
			problems = append(problems, &errs.InvariantViolation{
				Entity: t.Name + "." + c.Name,
				Reason: fmt.Sprintf("column name does not conform to %s naming", opts.ColumnNamingCase),
			})
		}
	}

	pkCount := 0
	constraintNames := map[string]struct{}{}
	for _, c := range t.Constraints {
		if c.Kind == ConstraintPrimaryKey {
			pkCount++
		}
		if c.Name != "" {
			if _, dup := constraintNames[c.Name]; dup {
				problems = append(problems, &errs.InvariantViolation{
					Entity: t.Name + "." + c.Name, Reason: "duplicate constraint name within table",
				})
			}
			constraintNames[c.Name] = struct{}{}
		}
		for _, col := range c.Columns {
			if t.Column(col) == nil {
				problems = append(problems, &errs.InvariantViolation{
					Entity: t.Name + "." + c.Name,
					Reason: fmt.Sprintf("constraint references unknown column %q", col),
				})
			}
		}
	}
	if pkCount > 1 {
		problems = append(problems, &errs.InvariantViolation{Entity: t.Name, Reason: "more than one primary key"})
	}

	indexNames := map[string]struct{}{}
	for _, idx := range t.Indexes {
		if _, dup := indexNames[idx.Name]; dup {
			problems = append(problems, &errs.InvariantViolation{
				Entity: t.Name + "." + idx.Name, Reason: "duplicate index name within table",
			})
		}
		indexNames[idx.Name] = struct{}{}
		for _, col := range idx.Columns {
			if t.Column(col) == nil {
				problems = append(problems, &errs.InvariantViolation{
					Entity: t.Name + "." + idx.Name,
					Reason: fmt.Sprintf("index references unknown column %q", col),
				})
			}
		}
	}

	return problems
}

// validateForeignKeys checks that every FK references an existing table and
// existing columns, and that those columns are a primary key or unique, of
// a compatible type.
func validateForeignKeys(s *Schema) errs.List {
	var problems errs.List
	for _, tn := range s.SortedTableNames() {
		t := s.Table(tn)
		for _, c := range t.Constraints {
			if c.Kind != ConstraintForeignKey {
				continue
			}
			target := s.Table(c.ReferencedTable)
			if target == nil {
				problems = append(problems, &errs.InvariantViolation{
					Entity: t.Name + "." + c.Name,
					Reason: fmt.Sprintf("references unknown table %q", c.ReferencedTable),
				})
				continue
			}
			if len(c.Columns) != len(c.ReferencedColumns) {
				problems = append(problems, &errs.InvariantViolation{
					Entity: t.Name + "." + c.Name, Reason: "local and referenced column counts differ",
				})
				continue
			}
			if !referencedColumnsAreKeyed(target, c.ReferencedColumns) {
				problems = append(problems, &errs.InvariantViolation{
					Entity: t.Name + "." + c.Name,
					Reason: fmt.Sprintf("referenced columns %v in %q are not a primary key or unique", c.ReferencedColumns, target.Name),
				})
			}
			for i, col := range c.Columns {
				localCol := t.Column(col)
				refCol := target.Column(c.ReferencedColumns[i])
				if localCol == nil {
					problems = append(problems, &errs.InvariantViolation{
						Entity: t.Name + "." + c.Name, Reason: fmt.Sprintf("unknown local column %q", col),
					})
					continue
				}
				if refCol == nil {
					problems = append(problems, &errs.InvariantViolation{
						Entity: t.Name + "." + c.Name,
						Reason: fmt.Sprintf("unknown referenced column %q", c.ReferencedColumns[i]),
					})
					continue
				}
				if !localCol.Type.Equal(refCol.Type) {
					problems = append(problems, &errs.InvariantViolation{
						Entity: t.Name + "." + c.Name,
						Reason: fmt.Sprintf("type mismatch between %s.%s and %s.%s", t.Name, col, target.Name, refCol.Name),
					})
				}
			}
		}
	}
	return problems
}

func referencedColumnsAreKeyed(t *TableDef, cols []string) bool {
	if pk := t.PrimaryKey(); pk != nil && stringsEqual(pk.Columns, cols) {
		return true
	}
	for _, c := range t.Constraints {
		if (c.Kind == ConstraintUnique || c.Kind == ConstraintUniqueIdx) && stringsEqual(c.Columns, cols) {
			return true
		}
	}
	return false
}

// validateConstraintNameUniqueness checks names are unique schema-wide, per
// spec.md §3 ("constraint and index names unique within a schema").
func validateConstraintNameUniqueness(s *Schema) errs.List {
	var problems errs.List
	seenConstraints := map[string]string{}
	seenIndexes := map[string]string{}
	for _, tn := range s.SortedTableNames() {
		t := s.Table(tn)
		for _, c := range t.Constraints {
			if c.Name == "" {
				continue
			}
			if owner, dup := seenConstraints[c.Name]; dup && owner != tn {
				problems = append(problems, &errs.InvariantViolation{
					Entity: c.Name,
					Reason: fmt.Sprintf("constraint name reused across tables %q and %q", owner, tn),
				})
				continue
			}
			seenConstraints[c.Name] = tn
		}
		for _, idx := range t.Indexes {
			if owner, dup := seenIndexes[idx.Name]; dup && owner != tn {
				problems = append(problems, &errs.InvariantViolation{
					Entity: idx.Name,
					Reason: fmt.Sprintf("index name reused across tables %q and %q", owner, tn),
				})
				continue
			}
			seenIndexes[idx.Name] = tn
		}
	}
	return problems
}

func validateEnums(s *Schema) errs.List {
	var problems errs.List
	for _, name := range s.SortedEnumNames() {
		e := s.Enum(name)
		seen := map[string]struct{}{}
		for _, v := range e.Values {
			if _, dup := seen[v]; dup {
				problems = append(problems, &errs.InvariantViolation{
					Entity: e.Name, Reason: fmt.Sprintf("duplicate enum value %q", v),
				})
			}
			seen[v] = struct{}{}
		}
	}
	return problems
}
