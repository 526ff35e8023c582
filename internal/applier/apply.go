// Package applier folds a single MigrationAction onto a Schema. It is pure:
// it never touches a database connection, only the in-memory model. The
// teacher's internal/apply package owns the same single concern — applying
// one operation at a time, one behavior-area test file apiece — but
// executes SQL against *sql.DB; this applier's "database" is a
// schema.Schema value.
package applier

import (
	"github.com/dev-five-git/vespertide/internal/action"
	"github.com/dev-five-git/vespertide/internal/errs"
	"github.com/dev-five-git/vespertide/internal/schema"
)

// Apply returns a new Schema with a (the action applied, leaving s
// untouched. Every branch below is a contract: the precondition it checks
// and the InvariantViolation it reports on failure are part of the applier's
// public behavior, not incidental validation.
func Apply(s *schema.Schema, a action.MigrationAction) (*schema.Schema, error) {
	out := s.Clone()

	switch a.Kind {
	case action.CreateTable:
		return out, applyCreateTable(out, a)
	case action.DeleteTable:
		return out, applyDeleteTable(out, a)
	case action.RenameTable:
		return out, applyRenameTable(out, a)
	case action.AddColumn:
		return out, applyAddColumn(out, a)
	case action.DeleteColumn:
		return out, applyDeleteColumn(out, a)
	case action.RenameColumn:
		return out, applyRenameColumn(out, a)
	case action.ModifyColumnType:
		return out, applyModifyColumnType(out, a)
	case action.ModifyColumnNullable:
		return out, applyModifyColumnNullable(out, a)
	case action.ModifyColumnDefault:
		return out, applyModifyColumnDefault(out, a)
	case action.ModifyColumnComment:
		return out, applyModifyColumnComment(out, a)
	case action.AddConstraint:
		return out, applyAddConstraint(out, a)
	case action.RemoveConstraint:
		return out, applyRemoveConstraint(out, a)
	case action.AddIndex:
		return out, applyAddIndex(out, a)
	case action.RemoveIndex:
		return out, applyRemoveIndex(out, a)
	case action.CreateEnum:
		return out, applyCreateEnum(out, a)
	case action.DropEnum:
		return out, applyDropEnum(out, a)
	case action.AlterEnumAddValue:
		return out, applyAlterEnumAddValue(out, a)
	case action.Raw:
		// Raw SQL has no representable effect on the in-memory model; the
		// replay schema simply does not see it. The planner is responsible
		// for never relying on a Raw action's side effect being visible to
		// a later diff.
		return out, nil
	default:
		return nil, &errs.InvariantViolation{Entity: string(a.Kind), Reason: "unknown action kind"}
	}
}

func applyCreateTable(s *schema.Schema, a action.MigrationAction) error {
	if s.Table(a.Table) != nil {
		return &errs.InvariantViolation{Entity: a.Table, Reason: "table already exists"}
	}
	t := &schema.TableDef{Name: a.Table}
	for _, c := range a.Columns {
		t.Columns = append(t.Columns, c.Clone())
	}
	for _, c := range a.Constraints {
		t.Constraints = append(t.Constraints, c.Clone())
	}
	for _, idx := range a.Indexes {
		t.Indexes = append(t.Indexes, idx.Clone())
	}
	nt, err := schema.Normalize(t)
	if err != nil {
		return err
	}
	s.Tables.Set(nt.Name, nt)
	return nil
}

func applyDeleteTable(s *schema.Schema, a action.MigrationAction) error {
	if s.Table(a.Table) == nil {
		return &errs.InvariantViolation{Entity: a.Table, Reason: "table does not exist"}
	}
	if ref, col := referencingForeignKey(s, a.Table); ref != "" {
		return &errs.InvariantViolation{
			Entity: a.Table,
			Reason: "table is still referenced by foreign key " + ref + "." + col,
		}
	}
	s.Tables.Delete(a.Table)
	return nil
}

func applyRenameTable(s *schema.Schema, a action.MigrationAction) error {
	t := s.Table(a.Table)
	if t == nil {
		return &errs.InvariantViolation{Entity: a.Table, Reason: "table does not exist"}
	}
	if s.Table(a.NewName) != nil {
		return &errs.InvariantViolation{Entity: a.NewName, Reason: "table already exists"}
	}
	t.Name = a.NewName
	s.Tables.Delete(a.Table)
	s.Tables.Set(a.NewName, t)
	renameForeignKeyReferences(s, a.Table, a.NewName)
	return nil
}

// referencingForeignKey returns the table and constraint name of the first
// foreign key found on another table that references table, or "" if none
// do. A table's own self-referencing foreign key does not block deleting it,
// since it is removed along with the table itself.
func referencingForeignKey(s *schema.Schema, table string) (refTable, constraintName string) {
	for _, tn := range s.SortedTableNames() {
		if tn == table {
			continue
		}
		for _, c := range s.Table(tn).Constraints {
			if c.Kind == schema.ConstraintForeignKey && c.ReferencedTable == table {
				return tn, c.Name
			}
		}
	}
	return "", ""
}

// renameForeignKeyReferences rewrites every foreign key across the schema
// that points at oldName so it points at newName instead, since renaming a
// table must not leave other tables' constraints referencing a name that no
// longer exists.
func renameForeignKeyReferences(s *schema.Schema, oldName, newName string) {
	for _, tn := range s.SortedTableNames() {
		for _, c := range s.Table(tn).Constraints {
			if c.Kind == schema.ConstraintForeignKey && c.ReferencedTable == oldName {
				c.ReferencedTable = newName
			}
		}
	}
}

func applyAddColumn(s *schema.Schema, a action.MigrationAction) error {
	t, err := requireTable(s, a.Table)
	if err != nil {
		return err
	}
	if t.Column(a.Column.Name) != nil {
		return &errs.InvariantViolation{Entity: a.Table + "." + a.Column.Name, Reason: "column already exists"}
	}
	if !a.Column.Nullable && a.Column.Default == nil && a.FillWith == "" {
		return &errs.MissingBackfill{Table: a.Table, Column: a.Column.Name}
	}
	t.Columns = append(t.Columns, a.Column.Clone())
	return nil
}

func applyDeleteColumn(s *schema.Schema, a action.MigrationAction) error {
	t, err := requireColumn(s, a.Table, a.ColumnName)
	if err != nil {
		return err
	}
	for _, c := range t.Constraints {
		for _, col := range c.Columns {
			if col == a.ColumnName {
				return &errs.InvariantViolation{
					Entity: a.Table + "." + a.ColumnName,
					Reason: "column is referenced by constraint " + c.Name,
				}
			}
		}
	}
	kept := t.Columns[:0]
	for _, c := range t.Columns {
		if c.Name != a.ColumnName {
			kept = append(kept, c)
		}
	}
	t.Columns = kept
	return nil
}

func applyRenameColumn(s *schema.Schema, a action.MigrationAction) error {
	t, err := requireColumn(s, a.Table, a.ColumnName)
	if err != nil {
		return err
	}
	if t.Column(a.NewName) != nil {
		return &errs.InvariantViolation{Entity: a.Table + "." + a.NewName, Reason: "column already exists"}
	}
	col := t.Column(a.ColumnName)
	col.Name = a.NewName
	renameColumnInConstraints(t, a.ColumnName, a.NewName)
	return nil
}

func renameColumnInConstraints(t *schema.TableDef, oldName, newName string) {
	rename := func(cols []string) {
		for i, c := range cols {
			if c == oldName {
				cols[i] = newName
			}
		}
	}
	for _, c := range t.Constraints {
		rename(c.Columns)
	}
	for _, idx := range t.Indexes {
		rename(idx.Columns)
	}
}

func applyModifyColumnType(s *schema.Schema, a action.MigrationAction) error {
	_, col, err := requireColumnDef(s, a.Table, a.ColumnName)
	if err != nil {
		return err
	}
	col.Type = *a.NewType
	return nil
}

func applyModifyColumnNullable(s *schema.Schema, a action.MigrationAction) error {
	_, col, err := requireColumnDef(s, a.Table, a.ColumnName)
	if err != nil {
		return err
	}
	if a.NewNullable == nil {
		return &errs.InvariantViolation{Entity: a.Table + "." + a.ColumnName, Reason: "modify_column_nullable missing new_nullable"}
	}
	col.Nullable = *a.NewNullable
	return nil
}

func applyModifyColumnDefault(s *schema.Schema, a action.MigrationAction) error {
	_, col, err := requireColumnDef(s, a.Table, a.ColumnName)
	if err != nil {
		return err
	}
	col.Default = a.NewDefault
	return nil
}

func applyModifyColumnComment(s *schema.Schema, a action.MigrationAction) error {
	_, col, err := requireColumnDef(s, a.Table, a.ColumnName)
	if err != nil {
		return err
	}
	if a.NewComment != nil {
		col.Comment = *a.NewComment
	} else {
		col.Comment = ""
	}
	return nil
}

func applyAddConstraint(s *schema.Schema, a action.MigrationAction) error {
	t, err := requireTable(s, a.Table)
	if err != nil {
		return err
	}
	if a.Constraint.Name != "" && t.Constraint(a.Constraint.Name) != nil {
		return &errs.InvariantViolation{Entity: a.Constraint.Name, Reason: "constraint already exists"}
	}
	t.Constraints = append(t.Constraints, a.Constraint.Clone())
	return nil
}

func applyRemoveConstraint(s *schema.Schema, a action.MigrationAction) error {
	t, err := requireTable(s, a.Table)
	if err != nil {
		return err
	}
	if t.Constraint(a.ConstraintName) == nil {
		return &errs.InvariantViolation{Entity: a.ConstraintName, Reason: "constraint does not exist"}
	}
	kept := t.Constraints[:0]
	for _, c := range t.Constraints {
		if c.Name != a.ConstraintName {
			kept = append(kept, c)
		}
	}
	t.Constraints = kept
	return nil
}

func applyAddIndex(s *schema.Schema, a action.MigrationAction) error {
	t, err := requireTable(s, a.Table)
	if err != nil {
		return err
	}
	if t.Index(a.Index.Name) != nil {
		return &errs.InvariantViolation{Entity: a.Index.Name, Reason: "index already exists"}
	}
	t.Indexes = append(t.Indexes, a.Index.Clone())
	return nil
}

func applyRemoveIndex(s *schema.Schema, a action.MigrationAction) error {
	t, err := requireTable(s, a.Table)
	if err != nil {
		return err
	}
	if t.Index(a.IndexName) == nil {
		return &errs.InvariantViolation{Entity: a.IndexName, Reason: "index does not exist"}
	}
	kept := t.Indexes[:0]
	for _, idx := range t.Indexes {
		if idx.Name != a.IndexName {
			kept = append(kept, idx)
		}
	}
	t.Indexes = kept
	return nil
}

func applyCreateEnum(s *schema.Schema, a action.MigrationAction) error {
	if s.Enum(a.Enum.Name) != nil {
		return &errs.InvariantViolation{Entity: a.Enum.Name, Reason: "enum already exists"}
	}
	s.Enums.Set(a.Enum.Name, a.Enum.Clone())
	return nil
}

func applyDropEnum(s *schema.Schema, a action.MigrationAction) error {
	if s.Enum(a.EnumName) == nil {
		return &errs.InvariantViolation{Entity: a.EnumName, Reason: "enum does not exist"}
	}
	for _, tn := range s.SortedTableNames() {
		for _, c := range s.Table(tn).Columns {
			if c.Type.IsEnum() && c.Type.EnumName == a.EnumName {
				return &errs.InvariantViolation{
					Entity: a.EnumName,
					Reason: "enum is still referenced by " + tn + "." + c.Name,
				}
			}
		}
	}
	s.Enums.Delete(a.EnumName)
	return nil
}

func applyAlterEnumAddValue(s *schema.Schema, a action.MigrationAction) error {
	e := s.Enum(a.EnumName)
	if e == nil {
		return &errs.InvariantViolation{Entity: a.EnumName, Reason: "enum does not exist"}
	}
	for _, v := range e.Values {
		if v == a.EnumValue {
			return &errs.InvariantViolation{Entity: a.EnumName, Reason: "value " + v + " already present"}
		}
	}
	e.Values = append(e.Values, a.EnumValue)
	return nil
}

func requireTable(s *schema.Schema, name string) (*schema.TableDef, error) {
	t := s.Table(name)
	if t == nil {
		return nil, &errs.InvariantViolation{Entity: name, Reason: "table does not exist"}
	}
	return t, nil
}

func requireColumn(s *schema.Schema, table, column string) (*schema.TableDef, error) {
	t, err := requireTable(s, table)
	if err != nil {
		return nil, err
	}
	if t.Column(column) == nil {
		return nil, &errs.InvariantViolation{Entity: table + "." + column, Reason: "column does not exist"}
	}
	return t, nil
}

func requireColumnDef(s *schema.Schema, table, column string) (*schema.TableDef, *schema.ColumnDef, error) {
	t, err := requireColumn(s, table, column)
	if err != nil {
		return nil, nil, err
	}
	return t, t.Column(column), nil
}
