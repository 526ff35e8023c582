// Package sqlite lowers migration actions into SQLite DDL. SQLite's ALTER
// TABLE is the most limited of the three backends: it can add/drop/rename
// columns and rename tables, but it cannot add or drop a constraint, retype
// a column, or flip nullability/default in place. Every such change goes
// through the standard SQLite rebuild recipe instead: create a shadow
// table with the desired shape, copy the shared columns across, drop the
// original, rename the shadow into place, and recreate its indexes — which
// is why every rebuilding action here hard-requires current_schema.
package sqlite

import (
	"fmt"
	"strings"

	"github.com/dev-five-git/vespertide/internal/action"
	"github.com/dev-five-git/vespertide/internal/errs"
	"github.com/dev-five-git/vespertide/internal/schema"
	"github.com/dev-five-git/vespertide/internal/sqlgen"
)

func init() {
	sqlgen.RegisterDialect(schema.SQLite, func() sqlgen.Dialect {
		return &Dialect{generator: &Generator{}}
	})
}

// Dialect binds the Generator to the sqlite backend name.
type Dialect struct {
	generator *Generator
}

func (d *Dialect) Backend() schema.Backend     { return schema.SQLite }
func (d *Dialect) Generator() sqlgen.Generator { return d.generator }

// Generator is the stateless SQLite lowering implementation.
type Generator struct{}

func (g *Generator) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (g *Generator) QuoteString(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

func q(name string) string { return (&Generator{}).QuoteIdentifier(name) }

func stmt(s string) sqlgen.BuiltQuery { return sqlgen.BuiltQuery{Statement: s} }

func (g *Generator) Lower(a action.MigrationAction, current *schema.Schema) ([]sqlgen.BuiltQuery, error) {
	switch a.Kind {
	case action.CreateTable:
		out := createTableQueries(a.Table, &schema.TableDef{Columns: a.Columns, Constraints: a.Constraints})
		for _, idx := range a.Indexes {
			out = append(out, stmt(createIndexStatement(a.Table, idx)))
		}
		return out, nil
	case action.DeleteTable:
		return []sqlgen.BuiltQuery{stmt(fmt.Sprintf("DROP TABLE %s;", q(a.Table)))}, nil
	case action.RenameTable:
		return []sqlgen.BuiltQuery{stmt(fmt.Sprintf("ALTER TABLE %s RENAME TO %s;", q(a.Table), q(a.NewName)))}, nil
	case action.AddColumn:
		return g.lowerAddColumn(a, current)
	case action.DeleteColumn:
		return []sqlgen.BuiltQuery{stmt(fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;", q(a.Table), q(a.ColumnName)))}, nil
	case action.RenameColumn:
		return []sqlgen.BuiltQuery{stmt(fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s;", q(a.Table), q(a.ColumnName), q(a.NewName)))}, nil
	case action.ModifyColumnType:
		return g.rebuildTable(current, a.Table, func(t *schema.TableDef) {
			if col := t.Column(a.ColumnName); col != nil {
				col.Type = *a.NewType
			}
		})
	case action.ModifyColumnNullable:
		return g.rebuildTable(current, a.Table, func(t *schema.TableDef) {
			if col := t.Column(a.ColumnName); col != nil {
				col.Nullable = *a.NewNullable
			}
		})
	case action.ModifyColumnDefault:
		return g.rebuildTable(current, a.Table, func(t *schema.TableDef) {
			if col := t.Column(a.ColumnName); col != nil {
				col.Default = a.NewDefault
			}
		})
	case action.ModifyColumnComment:
		return g.rebuildTable(current, a.Table, func(t *schema.TableDef) {
			if col := t.Column(a.ColumnName); col != nil {
				if a.NewComment != nil {
					col.Comment = *a.NewComment
				} else {
					col.Comment = ""
				}
			}
		})
	case action.AddConstraint:
		return g.rebuildTable(current, a.Table, func(t *schema.TableDef) {
			t.Constraints = append(t.Constraints, a.Constraint.Clone())
		})
	case action.RemoveConstraint:
		return g.rebuildTable(current, a.Table, func(t *schema.TableDef) {
			t.Constraints = removeConstraintByName(t.Constraints, a.ConstraintName)
		})
	case action.AddIndex:
		return []sqlgen.BuiltQuery{stmt(createIndexStatement(a.Table, a.Index))}, nil
	case action.RemoveIndex:
		return []sqlgen.BuiltQuery{stmt(fmt.Sprintf("DROP INDEX %s;", q(a.IndexName)))}, nil
	case action.CreateEnum, action.DropEnum:
		// Enums are inlined as a CHECK on the column; there is no
		// standalone object to create or drop on this backend.
		return nil, nil
	case action.AlterEnumAddValue:
		return g.lowerAlterEnumAddValue(a, current)
	case action.Raw:
		if strings.TrimSpace(a.Raw.SQLite) == "" {
			return nil, nil
		}
		return []sqlgen.BuiltQuery{stmt(a.Raw.SQLite)}, nil
	default:
		return nil, &errs.BackendUnsupported{Backend: string(schema.SQLite), Reason: fmt.Sprintf("unknown action kind %q", a.Kind)}
	}
}

func (g *Generator) lowerAddColumn(a action.MigrationAction, current *schema.Schema) ([]sqlgen.BuiltQuery, error) {
	col := a.Column
	if col.Nullable || col.Default != nil || a.FillWith == "" {
		return []sqlgen.BuiltQuery{stmt(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s;", q(a.Table), columnDefinition(col)))}, nil
	}
	if current == nil {
		return nil, &errs.BackendUnsupported{Backend: string(schema.SQLite), Reason: "backfilling a non-nullable column requires current_schema to rebuild the table"}
	}
	table := current.Table(a.Table)
	if table == nil {
		return nil, &errs.BackendUnsupported{Backend: string(schema.SQLite), Reason: fmt.Sprintf("table %q not found in current_schema", a.Table)}
	}
	nullable := col.Clone()
	nullable.Nullable = true
	var out []sqlgen.BuiltQuery
	out = append(out, stmt(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s;", q(a.Table), columnDefinition(nullable))))
	out = append(out, stmt(fmt.Sprintf("UPDATE %s SET %s = %s;", q(a.Table), q(col.Name), a.FillWith)))
	widened := cloneTable(table)
	widened.Columns = append(widened.Columns, nullable)
	tightened := cloneTable(table)
	tightened.Columns = append(tightened.Columns, col.Clone())
	out = append(out, rebuildQueries(a.Table, widened, tightened)...)
	return out, nil
}

func (g *Generator) lowerAlterEnumAddValue(a action.MigrationAction, current *schema.Schema) ([]sqlgen.BuiltQuery, error) {
	if current == nil {
		return nil, &errs.BackendUnsupported{Backend: string(schema.SQLite), Reason: "adding an enum value requires current_schema to find every table using it"}
	}
	enum := current.Enum(a.EnumName)
	if enum == nil {
		return nil, &errs.BackendUnsupported{Backend: string(schema.SQLite), Reason: fmt.Sprintf("enum %q not found in current_schema", a.EnumName)}
	}
	newValues := append(append([]string(nil), enum.Values...), a.EnumValue)
	var out []sqlgen.BuiltQuery
	for _, tableName := range current.SortedTableNames() {
		table := current.Table(tableName)
		usesEnum := false
		for _, c := range table.Columns {
			if c.Type.Kind == schema.KindEnum && c.Type.EnumName == a.EnumName {
				usesEnum = true
				break
			}
		}
		if !usesEnum {
			continue
		}
		queries, err := g.rebuildTable(current, tableName, func(t *schema.TableDef) {
			for _, c := range t.Columns {
				if c.Type.Kind == schema.KindEnum && c.Type.EnumName == a.EnumName {
					c.Type.EnumValues = newValues
				}
			}
		})
		if err != nil {
			return nil, err
		}
		out = append(out, queries...)
	}
	return out, nil
}

// rebuildTable runs the standard shadow-table recipe: clone the table's
// current shape out of current_schema, apply mutate, then emit the
// statements that carry the table from the old shape to the new one (four
// fixed steps plus one CREATE INDEX per unique-index constraint and index).
func (g *Generator) rebuildTable(current *schema.Schema, tableName string, mutate func(*schema.TableDef)) ([]sqlgen.BuiltQuery, error) {
	if current == nil {
		return nil, &errs.BackendUnsupported{Backend: string(schema.SQLite), Reason: "this change requires current_schema to rebuild the table"}
	}
	table := current.Table(tableName)
	if table == nil {
		return nil, &errs.BackendUnsupported{Backend: string(schema.SQLite), Reason: fmt.Sprintf("table %q not found in current_schema", tableName)}
	}
	newTable := cloneTable(table)
	mutate(newTable)
	return rebuildQueries(tableName, table, newTable), nil
}

// rebuildQueries builds the five-step shadow-table recipe. The shadow
// table's own unique-index constraints can't be created until after the
// RENAME step: SQLite index names are schema-global, and old still owns the
// very name a ConstraintUniqueIdx on newT would reuse until the DROP TABLE
// a few statements down removes it. Deferring every unique index (and the
// captured plain indexes, which already worked this way) to after the
// rename avoids the collision entirely.
func rebuildQueries(tableName string, old, newT *schema.TableDef) []sqlgen.BuiltQuery {
	tempName := tableName + "_temp"
	create, _ := createTableStatement(tempName, newT)
	out := []sqlgen.BuiltQuery{create}
	shared := intersectColumns(old.ColumnNames(), newT.ColumnNames())
	colList := quoteColumns(shared)
	out = append(out, stmt(fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s;", q(tempName), colList, colList, q(tableName))))
	out = append(out, stmt(fmt.Sprintf("DROP TABLE %s;", q(tableName))))
	out = append(out, stmt(fmt.Sprintf("ALTER TABLE %s RENAME TO %s;", q(tempName), q(tableName))))
	for _, c := range newT.Constraints {
		if c.Kind == schema.ConstraintUniqueIdx {
			out = append(out, stmt(createUniqueIndexStatement(tableName, c)))
		}
	}
	for _, idx := range old.Indexes {
		out = append(out, stmt(createIndexStatement(tableName, idx)))
	}
	return out
}

func cloneTable(t *schema.TableDef) *schema.TableDef {
	out := &schema.TableDef{Name: t.Name}
	for _, c := range t.Columns {
		out.Columns = append(out.Columns, c.Clone())
	}
	for _, c := range t.Constraints {
		out.Constraints = append(out.Constraints, c.Clone())
	}
	for _, i := range t.Indexes {
		out.Indexes = append(out.Indexes, i.Clone())
	}
	return out
}

func removeConstraintByName(cs []*schema.TableConstraint, name string) []*schema.TableConstraint {
	out := make([]*schema.TableConstraint, 0, len(cs))
	for _, c := range cs {
		if c.Name != name {
			out = append(out, c)
		}
	}
	return out
}

func intersectColumns(oldCols, newCols []string) []string {
	newSet := make(map[string]bool, len(newCols))
	for _, c := range newCols {
		newSet[c] = true
	}
	var out []string
	for _, c := range oldCols {
		if newSet[c] {
			out = append(out, c)
		}
	}
	return out
}

// createTableStatement renders the CREATE TABLE body for t under tableName,
// plus the CREATE UNIQUE INDEX statements its ConstraintUniqueIdx entries
// need. Callers that can emit the unique indexes immediately (a brand-new
// table has no name collision to worry about) use createTableQueries; a
// shadow-table rebuild defers them instead (see rebuildQueries).
func createTableStatement(tableName string, t *schema.TableDef) (create sqlgen.BuiltQuery, uniqueIndexes []sqlgen.BuiltQuery) {
	var parts []string
	for _, c := range t.Columns {
		parts = append(parts, columnDefinition(c))
	}
	for _, c := range t.Constraints {
		if c.Kind == schema.ConstraintUniqueIdx {
			uniqueIndexes = append(uniqueIndexes, stmt(createUniqueIndexStatement(tableName, c)))
			continue
		}
		parts = append(parts, namedConstraintDefinition(c))
	}
	return stmt(fmt.Sprintf("CREATE TABLE %s (\n  %s\n);", q(tableName), strings.Join(parts, ",\n  "))), uniqueIndexes
}

func createTableQueries(tableName string, t *schema.TableDef) []sqlgen.BuiltQuery {
	create, uniqueIndexes := createTableStatement(tableName, t)
	out := []sqlgen.BuiltQuery{create}
	out = append(out, uniqueIndexes...)
	return out
}

func columnDefinition(c *schema.ColumnDef) string {
	parts := []string{q(c.Name), renderType(c.Type)}
	if !c.Nullable {
		parts = append(parts, "NOT NULL")
	}
	if c.Default != nil {
		parts = append(parts, "DEFAULT", sqlgen.RenderDefaultLiteral(schema.SQLite, c.Type, *c.Default))
	}
	if c.Type.Kind == schema.KindEnum && c.Type.EnumInts == nil {
		gen := &Generator{}
		quoted := make([]string, len(c.Type.EnumValues))
		for i, v := range c.Type.EnumValues {
			quoted[i] = gen.QuoteString(v)
		}
		parts = append(parts, fmt.Sprintf("CHECK (%s IN (%s))", q(c.Name), strings.Join(quoted, ", ")))
	}
	return strings.Join(parts, " ")
}

// renderType collapses every declared type down to the handful of storage
// affinities SQLite actually has; dynamic typing means most of the
// distinctions the other backends care about don't exist here.
func renderType(t schema.ColumnType) string {
	switch t.Kind {
	case schema.KindSimple:
		return simpleTypes[t.Simple]
	case schema.KindChar, schema.KindVarchar:
		return "TEXT"
	case schema.KindNumeric:
		return "NUMERIC"
	case schema.KindEnum:
		if t.EnumInts != nil {
			return "INTEGER"
		}
		return "TEXT"
	case schema.KindCustom:
		return t.Raw
	default:
		return "TEXT"
	}
}

var simpleTypes = map[schema.SimpleType]string{
	schema.TypeInteger:         "INTEGER",
	schema.TypeBigInt:          "INTEGER",
	schema.TypeSmallInt:        "INTEGER",
	schema.TypeReal:            "REAL",
	schema.TypeDouble:          "REAL",
	schema.TypeText:            "TEXT",
	schema.TypeBoolean:         "INTEGER",
	schema.TypeUUID:            "TEXT",
	schema.TypeJSON:            "TEXT",
	schema.TypeJSONB:           "TEXT",
	schema.TypeBytea:           "BLOB",
	schema.TypeDate:            "TEXT",
	schema.TypeTime:            "TEXT",
	schema.TypeTimestamp:       "TEXT",
	schema.TypeTimestampWithTZ: "TEXT",
	schema.TypeInterval:        "TEXT",
	schema.TypeInet:            "TEXT",
	schema.TypeCIDR:            "TEXT",
	schema.TypeMACAddr:         "TEXT",
	schema.TypeXML:             "TEXT",
}

func namedConstraintDefinition(c *schema.TableConstraint) string {
	body := unnamedConstraintBody(c)
	if c.Name == "" {
		return body
	}
	return fmt.Sprintf("CONSTRAINT %s %s", q(c.Name), body)
}

func unnamedConstraintBody(c *schema.TableConstraint) string {
	switch c.Kind {
	case schema.ConstraintPrimaryKey:
		return fmt.Sprintf("PRIMARY KEY (%s)", quoteColumns(c.Columns))
	case schema.ConstraintUnique:
		return fmt.Sprintf("UNIQUE (%s)", quoteColumns(c.Columns))
	case schema.ConstraintForeignKey:
		fk := fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s)", quoteColumns(c.Columns), q(c.ReferencedTable), quoteColumns(c.ReferencedColumns))
		if c.OnDelete != "" {
			fk += " ON DELETE " + referentialActionSQL(c.OnDelete)
		}
		if c.OnUpdate != "" {
			fk += " ON UPDATE " + referentialActionSQL(c.OnUpdate)
		}
		return fk
	case schema.ConstraintCheck:
		return fmt.Sprintf("CHECK (%s)", c.CheckExpression)
	default:
		return ""
	}
}

func referentialActionSQL(a schema.ReferentialAction) string {
	switch a {
	case schema.RefCascade:
		return "CASCADE"
	case schema.RefRestrict:
		return "RESTRICT"
	case schema.RefSetNull:
		return "SET NULL"
	case schema.RefSetDefault:
		return "SET DEFAULT"
	default:
		return "NO ACTION"
	}
}

func createUniqueIndexStatement(table string, c *schema.TableConstraint) string {
	return fmt.Sprintf("CREATE UNIQUE INDEX %s ON %s (%s);", q(c.Name), q(table), quoteColumns(c.Columns))
}

func createIndexStatement(table string, idx *schema.IndexDef) string {
	unique := ""
	if idx.Unique {
		unique = "UNIQUE "
	}
	return fmt.Sprintf("CREATE %sINDEX %s ON %s (%s);", unique, q(idx.Name), q(table), quoteColumns(idx.Columns))
}

func quoteColumns(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = q(c)
	}
	return strings.Join(quoted, ", ")
}
