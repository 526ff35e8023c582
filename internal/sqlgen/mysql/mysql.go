// Package mysql lowers migration actions into MySQL DDL. MySQL has no
// standalone enum type: string enums are inlined as ENUM(...) on each
// column, so CreateEnum/DropEnum are no-ops here and AlterEnumAddValue
// instead fans out into one MODIFY COLUMN per column that currently uses
// the enum. That fan-out, RenameColumn and the ModifyColumn* actions (which
// restate the full column definition) and RemoveConstraint (which picks its
// DROP form by the constraint's kind) all hard-require current_schema on
// this backend.
package mysql

import (
	"fmt"
	"strings"

	"github.com/dev-five-git/vespertide/internal/action"
	"github.com/dev-five-git/vespertide/internal/errs"
	"github.com/dev-five-git/vespertide/internal/schema"
	"github.com/dev-five-git/vespertide/internal/sqlgen"
)

func init() {
	sqlgen.RegisterDialect(schema.MySQL, func() sqlgen.Dialect {
		return &Dialect{generator: &Generator{}}
	})
}

// Dialect binds the Generator to the mysql backend name.
type Dialect struct {
	generator *Generator
}

func (d *Dialect) Backend() schema.Backend     { return schema.MySQL }
func (d *Dialect) Generator() sqlgen.Generator { return d.generator }

// Generator is the stateless MySQL lowering implementation.
type Generator struct{}

// QuoteIdentifier backtick-quotes a name, doubling any embedded backtick.
func (g *Generator) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (g *Generator) QuoteString(value string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range value {
		switch r {
		case '\'':
			b.WriteString("\\'")
		case '\\':
			b.WriteString("\\\\")
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

func q(name string) string { return (&Generator{}).QuoteIdentifier(name) }

func stmt(s string) sqlgen.BuiltQuery { return sqlgen.BuiltQuery{Statement: s} }

func (g *Generator) Lower(a action.MigrationAction, current *schema.Schema) ([]sqlgen.BuiltQuery, error) {
	switch a.Kind {
	case action.CreateTable:
		return g.lowerCreateTable(a)
	case action.DeleteTable:
		return []sqlgen.BuiltQuery{stmt(fmt.Sprintf("DROP TABLE %s;", q(a.Table)))}, nil
	case action.RenameTable:
		return []sqlgen.BuiltQuery{stmt(fmt.Sprintf("RENAME TABLE %s TO %s;", q(a.Table), q(a.NewName)))}, nil
	case action.AddColumn:
		return g.lowerAddColumn(a)
	case action.DeleteColumn:
		return []sqlgen.BuiltQuery{stmt(fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;", q(a.Table), q(a.ColumnName)))}, nil
	case action.RenameColumn:
		return g.lowerRenameColumn(a, current)
	case action.ModifyColumnType:
		return g.lowerModifyColumn(a, current, func(col *schema.ColumnDef) { col.Type = *a.NewType })
	case action.ModifyColumnNullable:
		return g.lowerModifyColumn(a, current, func(col *schema.ColumnDef) { col.Nullable = *a.NewNullable })
	case action.ModifyColumnDefault:
		return g.lowerModifyColumn(a, current, func(col *schema.ColumnDef) { col.Default = a.NewDefault })
	case action.ModifyColumnComment:
		comment := ""
		if a.NewComment != nil {
			comment = *a.NewComment
		}
		return g.lowerModifyColumn(a, current, func(col *schema.ColumnDef) { col.Comment = comment })
	case action.AddConstraint:
		return g.lowerAddConstraint(a)
	case action.RemoveConstraint:
		return g.lowerRemoveConstraint(a, current)
	case action.AddIndex:
		return []sqlgen.BuiltQuery{stmt(createIndexStatement(a.Table, a.Index))}, nil
	case action.RemoveIndex:
		return []sqlgen.BuiltQuery{stmt(fmt.Sprintf("ALTER TABLE %s DROP INDEX %s;", q(a.Table), q(a.IndexName)))}, nil
	case action.CreateEnum, action.DropEnum:
		// Enums are inlined on the column; there is no standalone object to
		// create or drop on this backend.
		return nil, nil
	case action.AlterEnumAddValue:
		return g.lowerAlterEnumAddValue(a, current)
	case action.Raw:
		if strings.TrimSpace(a.Raw.MySQL) == "" {
			return nil, nil
		}
		return []sqlgen.BuiltQuery{stmt(a.Raw.MySQL)}, nil
	default:
		return nil, &errs.BackendUnsupported{Backend: string(schema.MySQL), Reason: fmt.Sprintf("unknown action kind %q", a.Kind)}
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
		parts = append(parts, namedConstraintDefinition(c))
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
	nullable := *col
	nullable.Nullable = true
	return []sqlgen.BuiltQuery{
		stmt(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s;", q(a.Table), columnDefinition(&nullable))),
		stmt(fmt.Sprintf("UPDATE %s SET %s = %s;", q(a.Table), q(col.Name), a.FillWith)),
		stmt(fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s;", q(a.Table), columnDefinition(col))),
	}, nil
}

// lowerRenameColumn and lowerModifyColumn both need the column's full
// current definition: MySQL's CHANGE/MODIFY COLUMN re-states type,
// nullability, default, and comment together rather than editing one
// attribute at a time.
func (g *Generator) lowerRenameColumn(a action.MigrationAction, current *schema.Schema) ([]sqlgen.BuiltQuery, error) {
	col, err := currentColumn(current, a.Table, a.ColumnName)
	if err != nil {
		return nil, err
	}
	renamed := col.Clone()
	renamed.Name = a.NewName
	return []sqlgen.BuiltQuery{stmt(fmt.Sprintf("ALTER TABLE %s CHANGE COLUMN %s %s;", q(a.Table), q(a.ColumnName), columnDefinition(renamed)))}, nil
}

func (g *Generator) lowerModifyColumn(a action.MigrationAction, current *schema.Schema, edit func(*schema.ColumnDef)) ([]sqlgen.BuiltQuery, error) {
	col, err := currentColumn(current, a.Table, a.ColumnName)
	if err != nil {
		return nil, err
	}
	modified := col.Clone()
	edit(modified)
	return []sqlgen.BuiltQuery{stmt(fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s;", q(a.Table), columnDefinition(modified)))}, nil
}

func currentColumn(current *schema.Schema, table, name string) (*schema.ColumnDef, error) {
	if current == nil {
		return nil, &errs.BackendUnsupported{Backend: string(schema.MySQL), Reason: "rewriting a column requires current_schema to restate its full definition"}
	}
	t := current.Table(table)
	if t == nil {
		return nil, &errs.BackendUnsupported{Backend: string(schema.MySQL), Reason: fmt.Sprintf("table %q not found in current_schema", table)}
	}
	col := t.Column(name)
	if col == nil {
		return nil, &errs.BackendUnsupported{Backend: string(schema.MySQL), Reason: fmt.Sprintf("column %q not found on %q in current_schema", name, table)}
	}
	return col, nil
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
		return nil, &errs.BackendUnsupported{Backend: string(schema.MySQL), Reason: "dropping a constraint requires current_schema to pick the right DROP form"}
	}
	table := current.Table(a.Table)
	if table == nil {
		return nil, &errs.BackendUnsupported{Backend: string(schema.MySQL), Reason: fmt.Sprintf("table %q not found in current_schema", a.Table)}
	}
	c := table.Constraint(a.ConstraintName)
	if c == nil {
		return nil, &errs.BackendUnsupported{Backend: string(schema.MySQL), Reason: fmt.Sprintf("constraint %q not found on %q in current_schema", a.ConstraintName, a.Table)}
	}
	switch c.Kind {
	case schema.ConstraintPrimaryKey:
		return []sqlgen.BuiltQuery{stmt(fmt.Sprintf("ALTER TABLE %s DROP PRIMARY KEY;", q(a.Table)))}, nil
	case schema.ConstraintForeignKey:
		return []sqlgen.BuiltQuery{stmt(fmt.Sprintf("ALTER TABLE %s DROP FOREIGN KEY %s;", q(a.Table), q(c.Name)))}, nil
	case schema.ConstraintCheck:
		return []sqlgen.BuiltQuery{stmt(fmt.Sprintf("ALTER TABLE %s DROP CHECK %s;", q(a.Table), q(c.Name)))}, nil
	default: // Unique, UniqueIdx: MySQL represents both as an index
		return []sqlgen.BuiltQuery{stmt(fmt.Sprintf("ALTER TABLE %s DROP INDEX %s;", q(a.Table), q(c.Name)))}, nil
	}
}

func (g *Generator) lowerAlterEnumAddValue(a action.MigrationAction, current *schema.Schema) ([]sqlgen.BuiltQuery, error) {
	if current == nil {
		return nil, &errs.BackendUnsupported{Backend: string(schema.MySQL), Reason: "adding an enum value requires current_schema to find every column using it"}
	}
	enum := current.Enum(a.EnumName)
	if enum == nil {
		return nil, &errs.BackendUnsupported{Backend: string(schema.MySQL), Reason: fmt.Sprintf("enum %q not found in current_schema", a.EnumName)}
	}
	newValues := append(append([]string(nil), enum.Values...), a.EnumValue)
	var out []sqlgen.BuiltQuery
	for _, tableName := range current.SortedTableNames() {
		table := current.Table(tableName)
		for _, col := range table.Columns {
			if col.Type.Kind != schema.KindEnum || col.Type.EnumName != a.EnumName {
				continue
			}
			modified := col.Clone()
			modified.Type.EnumValues = newValues
			out = append(out, stmt(fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s;", q(tableName), columnDefinition(modified))))
		}
	}
	return out, nil
}

func columnDefinition(c *schema.ColumnDef) string {
	parts := []string{q(c.Name), renderType(c.Type)}
	if !c.Nullable {
		parts = append(parts, "NOT NULL")
	}
	if c.Default != nil {
		parts = append(parts, "DEFAULT", sqlgen.RenderDefaultLiteral(schema.MySQL, c.Type, *c.Default))
	}
	if c.Comment != "" {
		parts = append(parts, "COMMENT", (&Generator{}).QuoteString(c.Comment))
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
		return fmt.Sprintf("DECIMAL(%d,%d)", t.Precision, t.Scale)
	case schema.KindEnum:
		if t.EnumInts != nil {
			return "INT"
		}
		gen := &Generator{}
		quoted := make([]string, len(t.EnumValues))
		for i, v := range t.EnumValues {
			quoted[i] = gen.QuoteString(v)
		}
		return fmt.Sprintf("ENUM(%s)", strings.Join(quoted, ", "))
	case schema.KindCustom:
		return t.Raw
	default:
		return "TEXT"
	}
}

var simpleTypes = map[schema.SimpleType]string{
	schema.TypeInteger:         "INT",
	schema.TypeBigInt:          "BIGINT",
	schema.TypeSmallInt:        "SMALLINT",
	schema.TypeReal:            "FLOAT",
	schema.TypeDouble:          "DOUBLE",
	schema.TypeText:            "TEXT",
	schema.TypeBoolean:         "TINYINT(1)",
	schema.TypeUUID:            "CHAR(36)",
	schema.TypeJSON:            "JSON",
	schema.TypeJSONB:           "JSON",
	schema.TypeBytea:           "BLOB",
	schema.TypeDate:            "DATE",
	schema.TypeTime:            "TIME",
	schema.TypeTimestamp:       "DATETIME",
	schema.TypeTimestampWithTZ: "TIMESTAMP",
	schema.TypeInterval:        "VARCHAR(255)",
	schema.TypeInet:            "VARCHAR(43)",
	schema.TypeCIDR:            "VARCHAR(43)",
	schema.TypeMACAddr:         "VARCHAR(17)",
	schema.TypeXML:             "TEXT",
}

func namedConstraintDefinition(c *schema.TableConstraint) string {
	body := unnamedConstraintBody(c)
	if c.Name == "" || c.Kind == schema.ConstraintPrimaryKey {
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
