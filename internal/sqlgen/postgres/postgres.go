// Package postgres lowers migration actions into PostgreSQL DDL. Postgres
// has native ALTER TABLE support for nearly every structural change and a
// first-class enum type, so its Generator is the simplest of the three:
// it only needs current_schema to recover a constraint's Kind when
// dropping one by name.
package postgres

import (
	"fmt"
	"strings"

	"github.com/dev-five-git/vespertide/internal/action"
	"github.com/dev-five-git/vespertide/internal/errs"
	"github.com/dev-five-git/vespertide/internal/schema"
	"github.com/dev-five-git/vespertide/internal/sqlgen"
)

func init() {
	sqlgen.RegisterDialect(schema.Postgres, func() sqlgen.Dialect {
		return &Dialect{generator: &Generator{}}
	})
}

// Dialect binds the Generator to the postgres backend name.
type Dialect struct {
	generator *Generator
}

func (d *Dialect) Backend() schema.Backend     { return schema.Postgres }
func (d *Dialect) Generator() sqlgen.Generator { return d.generator }

// Generator is the stateless PostgreSQL lowering implementation.
type Generator struct{}

func (g *Generator) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (g *Generator) QuoteString(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

func q(name string) string { return (&Generator{}).QuoteIdentifier(name) }

func stmt(s string) sqlgen.BuiltQuery { return sqlgen.BuiltQuery{Statement: s} }

// Lower dispatches on the action kind. Every structural change maps onto a
// single ALTER TABLE / CREATE / DROP statement except CreateTable, which
// also needs trailing CREATE INDEX statements for unique-index-flavored
// constraints and any explicit indexes, and an AddColumn with a backfill,
// which adds the column nullable, fills it, then sets NOT NULL.
func (g *Generator) Lower(a action.MigrationAction, current *schema.Schema) ([]sqlgen.BuiltQuery, error) {
	switch a.Kind {
	case action.CreateTable:
		return g.lowerCreateTable(a)
	case action.DeleteTable:
		return []sqlgen.BuiltQuery{stmt(fmt.Sprintf("DROP TABLE %s;", q(a.Table)))}, nil
	case action.RenameTable:
		return []sqlgen.BuiltQuery{stmt(fmt.Sprintf("ALTER TABLE %s RENAME TO %s;", q(a.Table), q(a.NewName)))}, nil
	case action.AddColumn:
		return g.lowerAddColumn(a)
	case action.DeleteColumn:
		return []sqlgen.BuiltQuery{stmt(fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;", q(a.Table), q(a.ColumnName)))}, nil
	case action.RenameColumn:
		return []sqlgen.BuiltQuery{stmt(fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s;", q(a.Table), q(a.ColumnName), q(a.NewName)))}, nil
	case action.ModifyColumnType:
		return []sqlgen.BuiltQuery{stmt(fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s;", q(a.Table), q(a.ColumnName), renderType(*a.NewType)))}, nil
	case action.ModifyColumnNullable:
		verb := "SET NOT NULL"
		if a.NewNullable != nil && *a.NewNullable {
			verb = "DROP NOT NULL"
		}
		return []sqlgen.BuiltQuery{stmt(fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s %s;", q(a.Table), q(a.ColumnName), verb))}, nil
	case action.ModifyColumnDefault:
		return g.lowerModifyDefault(a)
	case action.ModifyColumnComment:
		text := "NULL"
		if a.NewComment != nil && *a.NewComment != "" {
			text = g.QuoteString(*a.NewComment)
		}
		return []sqlgen.BuiltQuery{stmt(fmt.Sprintf("COMMENT ON COLUMN %s.%s IS %s;", q(a.Table), q(a.ColumnName), text))}, nil
	case action.AddConstraint:
		return g.lowerAddConstraint(a)
	case action.RemoveConstraint:
		return g.lowerRemoveConstraint(a, current)
	case action.AddIndex:
		return []sqlgen.BuiltQuery{stmt(createIndexStatement(a.Table, a.Index))}, nil
	case action.RemoveIndex:
		return []sqlgen.BuiltQuery{stmt(fmt.Sprintf("DROP INDEX %s;", q(a.IndexName)))}, nil
	case action.CreateEnum:
		return []sqlgen.BuiltQuery{stmt(fmt.Sprintf("CREATE TYPE %s AS ENUM (%s);", q(a.Enum.Name), quotedList(a.Enum.Values)))}, nil
	case action.DropEnum:
		return []sqlgen.BuiltQuery{stmt(fmt.Sprintf("DROP TYPE %s;", q(a.EnumName)))}, nil
	case action.AlterEnumAddValue:
		return []sqlgen.BuiltQuery{stmt(fmt.Sprintf("ALTER TYPE %s ADD VALUE %s;", q(a.EnumName), (&Generator{}).QuoteString(a.EnumValue)))}, nil
	case action.Raw:
		if strings.TrimSpace(a.Raw.Postgres) == "" {
			return nil, nil
		}
		return []sqlgen.BuiltQuery{stmt(a.Raw.Postgres)}, nil
	default:
		return nil, &errs.BackendUnsupported{Backend: string(schema.Postgres), Reason: fmt.Sprintf("unknown action kind %q", a.Kind)}
	}
}

func (g *Generator) lowerCreateTable(a action.MigrationAction) ([]sqlgen.BuiltQuery, error) {
	var parts []string
	for _, c := range a.Columns {
		parts = append(parts, columnDefinition(c))
	}
	var trailing []sqlgen.BuiltQuery
	for _, c := range a.Constraints {
		if c.Kind == schema.ConstraintUniqueIdx {
			trailing = append(trailing, stmt(createUniqueIndexStatement(a.Table, c)))
			continue
		}
		parts = append(parts, inlineConstraintDefinition(c))
	}
	create := fmt.Sprintf("CREATE TABLE %s (\n  %s\n);", q(a.Table), strings.Join(parts, ",\n  "))
	out := []sqlgen.BuiltQuery{stmt(create)}
	out = append(out, trailing...)
	for _, idx := range a.Indexes {
		out = append(out, stmt(createIndexStatement(a.Table, idx)))
	}
	return out, nil
}

func (g *Generator) lowerAddColumn(a action.MigrationAction) ([]sqlgen.BuiltQuery, error) {
	col := a.Column
	if col.Nullable || col.Default != nil || a.FillWith == "" {
		return []sqlgen.BuiltQuery{stmt(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s;", q(a.Table), columnDefinition(col)))}, nil
	}
	// Non-nullable with a backfill expression and no constant default: add
	// nullable, backfill existing rows, then tighten.
	nullable := *col
	nullable.Nullable = true
	var out []sqlgen.BuiltQuery
	out = append(out, stmt(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s;", q(a.Table), columnDefinition(&nullable))))
	out = append(out, stmt(fmt.Sprintf("UPDATE %s SET %s = %s;", q(a.Table), q(col.Name), a.FillWith)))
	out = append(out, stmt(fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET NOT NULL;", q(a.Table), q(col.Name))))
	return out, nil
}

func (g *Generator) lowerModifyDefault(a action.MigrationAction) ([]sqlgen.BuiltQuery, error) {
	if a.NewDefault == nil {
		return []sqlgen.BuiltQuery{stmt(fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT;", q(a.Table), q(a.ColumnName)))}, nil
	}
	lit := *a.NewDefault
	if a.NewType != nil {
		lit = sqlgen.RenderDefaultLiteral(schema.Postgres, *a.NewType, lit)
	}
	return []sqlgen.BuiltQuery{stmt(fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s;", q(a.Table), q(a.ColumnName), lit))}, nil
}

func (g *Generator) lowerAddConstraint(a action.MigrationAction) ([]sqlgen.BuiltQuery, error) {
	c := a.Constraint
	if c.Kind == schema.ConstraintUniqueIdx {
		return []sqlgen.BuiltQuery{stmt(createUniqueIndexStatement(a.Table, c))}, nil
	}
	return []sqlgen.BuiltQuery{stmt(fmt.Sprintf("ALTER TABLE %s ADD %s;", q(a.Table), namedConstraintDefinition(c)))}, nil
}

func (g *Generator) lowerRemoveConstraint(a action.MigrationAction, current *schema.Schema) ([]sqlgen.BuiltQuery, error) {
	if current == nil {
		return nil, &errs.BackendUnsupported{Backend: string(schema.Postgres), Reason: "dropping a constraint requires current_schema to tell a unique index apart from a named constraint"}
	}
	table := current.Table(a.Table)
	if table == nil {
		return nil, &errs.BackendUnsupported{Backend: string(schema.Postgres), Reason: fmt.Sprintf("table %q not found in current_schema", a.Table)}
	}
	c := table.Constraint(a.ConstraintName)
	if c == nil {
		return nil, &errs.BackendUnsupported{Backend: string(schema.Postgres), Reason: fmt.Sprintf("constraint %q not found on %q in current_schema", a.ConstraintName, a.Table)}
	}
	if c.Kind == schema.ConstraintUniqueIdx {
		return []sqlgen.BuiltQuery{stmt(fmt.Sprintf("DROP INDEX %s;", q(a.ConstraintName)))}, nil
	}
	return []sqlgen.BuiltQuery{stmt(fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s;", q(a.Table), q(a.ConstraintName)))}, nil
}

func columnDefinition(c *schema.ColumnDef) string {
	parts := []string{q(c.Name), renderType(c.Type)}
	if !c.Nullable {
		parts = append(parts, "NOT NULL")
	}
	if c.Default != nil {
		parts = append(parts, "DEFAULT", sqlgen.RenderDefaultLiteral(schema.Postgres, c.Type, *c.Default))
	}
	return strings.Join(parts, " ")
}

func renderType(t schema.ColumnType) string {
	switch t.Kind {
	case schema.KindSimple:
		return simpleTypes[t.Simple]
	case schema.KindChar:
		return fmt.Sprintf("CHAR(%d)", t.Length)
	case schema.KindVarchar:
		return fmt.Sprintf("VARCHAR(%d)", t.Length)
	case schema.KindNumeric:
		return fmt.Sprintf("NUMERIC(%d,%d)", t.Precision, t.Scale)
	case schema.KindEnum:
		if t.EnumInts != nil {
			return "INTEGER"
		}
		return q(t.EnumName)
	case schema.KindCustom:
		return t.Raw
	default:
		return "TEXT"
	}
}

var simpleTypes = map[schema.SimpleType]string{
	schema.TypeInteger:         "INTEGER",
	schema.TypeBigInt:          "BIGINT",
	schema.TypeSmallInt:        "SMALLINT",
	schema.TypeReal:            "REAL",
	schema.TypeDouble:          "DOUBLE PRECISION",
	schema.TypeText:            "TEXT",
	schema.TypeBoolean:         "BOOLEAN",
	schema.TypeUUID:            "UUID",
	schema.TypeJSON:            "JSON",
	schema.TypeJSONB:           "JSONB",
	schema.TypeBytea:           "BYTEA",
	schema.TypeDate:            "DATE",
	schema.TypeTime:            "TIME",
	schema.TypeTimestamp:       "TIMESTAMP",
	schema.TypeTimestampWithTZ: "TIMESTAMPTZ",
	schema.TypeInterval:        "INTERVAL",
	schema.TypeInet:            "INET",
	schema.TypeCIDR:            "CIDR",
	schema.TypeMACAddr:         "MACADDR",
	schema.TypeXML:             "XML",
}

func inlineConstraintDefinition(c *schema.TableConstraint) string {
	if c.Name == "" {
		return unnamedConstraintBody(c)
	}
	return namedConstraintDefinition(c)
}

func namedConstraintDefinition(c *schema.TableConstraint) string {
	if c.Name == "" {
		return unnamedConstraintBody(c)
	}
	return fmt.Sprintf("CONSTRAINT %s %s", q(c.Name), unnamedConstraintBody(c))
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

func quotedList(values []string) string {
	gen := &Generator{}
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = gen.QuoteString(v)
	}
	return strings.Join(quoted, ", ")
}
