package applier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-five-git/vespertide/internal/action"
	"github.com/dev-five-git/vespertide/internal/errs"
	"github.com/dev-five-git/vespertide/internal/schema"
)

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func TestApplyCreateTable(t *testing.T) {
	s := schema.New()
	col := &schema.ColumnDef{Name: "id", Type: schema.Simple(schema.TypeInteger), PrimaryKey: true}

	out, err := Apply(s, action.MigrationAction{
		Kind:    action.CreateTable,
		Table:   "users",
		Columns: []*schema.ColumnDef{col},
	})
	require.NoError(t, err)
	require.NotNil(t, out.Table("users"))
	assert.NotNil(t, out.Table("users").PrimaryKey())

	// the input schema is untouched
	assert.Nil(t, s.Table("users"))
}

func TestApplyCreateTableRejectsDuplicate(t *testing.T) {
	s := schema.New()
	s.Tables.Set("users", &schema.TableDef{Name: "users"})

	_, err := Apply(s, action.MigrationAction{Kind: action.CreateTable, Table: "users"})
	var iv *errs.InvariantViolation
	assert.ErrorAs(t, err, &iv)
}

func TestApplyAddColumnRequiresBackfill(t *testing.T) {
	s := schema.New()
	s.Tables.Set("users", &schema.TableDef{Name: "users"})

	_, err := Apply(s, action.MigrationAction{
		Kind:   action.AddColumn,
		Table:  "users",
		Column: &schema.ColumnDef{Name: "age", Type: schema.Simple(schema.TypeInteger), Nullable: false},
	})
	var mb *errs.MissingBackfill
	require.ErrorAs(t, err, &mb)
	assert.Equal(t, "users", mb.Table)
	assert.Equal(t, "age", mb.Column)
}

func TestApplyAddColumnAllowsNullable(t *testing.T) {
	s := schema.New()
	s.Tables.Set("users", &schema.TableDef{Name: "users"})

	out, err := Apply(s, action.MigrationAction{
		Kind:   action.AddColumn,
		Table:  "users",
		Column: &schema.ColumnDef{Name: "age", Type: schema.Simple(schema.TypeInteger), Nullable: true},
	})
	require.NoError(t, err)
	assert.NotNil(t, out.Table("users").Column("age"))
}

func TestApplyAddColumnDoesNotAliasAction(t *testing.T) {
	s := schema.New()
	s.Tables.Set("users", &schema.TableDef{Name: "users"})
	col := &schema.ColumnDef{Name: "age", Type: schema.Simple(schema.TypeInteger), Nullable: true}
	a := action.MigrationAction{Kind: action.AddColumn, Table: "users", Column: col}

	first, err := Apply(s, a)
	require.NoError(t, err)
	second, err := Apply(s, a)
	require.NoError(t, err)

	first.Table("users").Column("age").Comment = "first"
	assert.Empty(t, second.Table("users").Column("age").Comment)
	assert.Empty(t, col.Comment)
}

func TestApplyDeleteTableRejectsWhenReferencedByForeignKey(t *testing.T) {
	s := schema.New()
	s.Tables.Set("users", &schema.TableDef{Name: "users"})
	s.Tables.Set("posts", &schema.TableDef{
		Name: "posts",
		Constraints: []*schema.TableConstraint{
			{Name: "fk_posts_user", Kind: schema.ConstraintForeignKey, Columns: []string{"user_id"}, ReferencedTable: "users", ReferencedColumns: []string{"id"}},
		},
	})

	_, err := Apply(s, action.MigrationAction{Kind: action.DeleteTable, Table: "users"})
	var iv *errs.InvariantViolation
	assert.ErrorAs(t, err, &iv)
}

func TestApplyDeleteTableAllowsUnreferenced(t *testing.T) {
	s := schema.New()
	s.Tables.Set("users", &schema.TableDef{Name: "users"})

	out, err := Apply(s, action.MigrationAction{Kind: action.DeleteTable, Table: "users"})
	require.NoError(t, err)
	assert.Nil(t, out.Table("users"))
}

func TestApplyRenameTableRewritesForeignKeyReferences(t *testing.T) {
	s := schema.New()
	s.Tables.Set("users", &schema.TableDef{Name: "users"})
	s.Tables.Set("posts", &schema.TableDef{
		Name: "posts",
		Constraints: []*schema.TableConstraint{
			{Name: "fk_posts_user", Kind: schema.ConstraintForeignKey, Columns: []string{"user_id"}, ReferencedTable: "users", ReferencedColumns: []string{"id"}},
		},
	})

	out, err := Apply(s, action.MigrationAction{Kind: action.RenameTable, Table: "users", NewName: "accounts"})
	require.NoError(t, err)
	assert.Equal(t, "accounts", out.Table("posts").Constraints[0].ReferencedTable)
}

func TestApplyDeleteColumnRejectsReferenced(t *testing.T) {
	s := schema.New()
	s.Tables.Set("users", &schema.TableDef{
		Name:    "users",
		Columns: []*schema.ColumnDef{{Name: "id", Type: schema.Simple(schema.TypeInteger)}},
		Constraints: []*schema.TableConstraint{
			{Name: "pk_users", Kind: schema.ConstraintPrimaryKey, Columns: []string{"id"}},
		},
	})

	_, err := Apply(s, action.MigrationAction{Kind: action.DeleteColumn, Table: "users", ColumnName: "id"})
	var iv *errs.InvariantViolation
	assert.ErrorAs(t, err, &iv)
}

func TestApplyRenameColumnUpdatesConstraints(t *testing.T) {
	s := schema.New()
	s.Tables.Set("users", &schema.TableDef{
		Name:    "users",
		Columns: []*schema.ColumnDef{{Name: "id", Type: schema.Simple(schema.TypeInteger)}},
		Constraints: []*schema.TableConstraint{
			{Name: "pk_users", Kind: schema.ConstraintPrimaryKey, Columns: []string{"id"}},
		},
		Indexes: []*schema.IndexDef{{Name: "ix_users__id", Columns: []string{"id"}}},
	})

	out, err := Apply(s, action.MigrationAction{
		Kind: action.RenameColumn, Table: "users", ColumnName: "id", NewName: "user_id",
	})
	require.NoError(t, err)
	tbl := out.Table("users")
	assert.Nil(t, tbl.Column("id"))
	require.NotNil(t, tbl.Column("user_id"))
	assert.Equal(t, []string{"user_id"}, tbl.PrimaryKey().Columns)
	assert.Equal(t, []string{"user_id"}, tbl.Indexes[0].Columns)
}

func TestApplyModifyColumnNullableRequiresValue(t *testing.T) {
	s := schema.New()
	s.Tables.Set("t", &schema.TableDef{Name: "t", Columns: []*schema.ColumnDef{{Name: "c"}}})

	_, err := Apply(s, action.MigrationAction{Kind: action.ModifyColumnNullable, Table: "t", ColumnName: "c"})
	var iv *errs.InvariantViolation
	assert.ErrorAs(t, err, &iv)

	out, err := Apply(s, action.MigrationAction{
		Kind: action.ModifyColumnNullable, Table: "t", ColumnName: "c", NewNullable: boolPtr(true),
	})
	require.NoError(t, err)
	assert.True(t, out.Table("t").Column("c").Nullable)
}

func TestApplyModifyColumnDefaultClearsOnNil(t *testing.T) {
	s := schema.New()
	s.Tables.Set("t", &schema.TableDef{
		Name:    "t",
		Columns: []*schema.ColumnDef{{Name: "c", Default: strPtr("0")}},
	})

	out, err := Apply(s, action.MigrationAction{Kind: action.ModifyColumnDefault, Table: "t", ColumnName: "c"})
	require.NoError(t, err)
	assert.Nil(t, out.Table("t").Column("c").Default)
}

func TestApplyDropEnumRejectsInUse(t *testing.T) {
	s := schema.New()
	s.Enums.Set("status", &schema.EnumDef{Name: "status", Values: []string{"active"}})
	s.Tables.Set("users", &schema.TableDef{
		Name:    "users",
		Columns: []*schema.ColumnDef{{Name: "status", Type: schema.StringEnum("status", []string{"active"})}},
	})

	_, err := Apply(s, action.MigrationAction{Kind: action.DropEnum, EnumName: "status"})
	var iv *errs.InvariantViolation
	assert.ErrorAs(t, err, &iv)
}

func TestApplyAlterEnumAddValueRejectsDuplicate(t *testing.T) {
	s := schema.New()
	s.Enums.Set("status", &schema.EnumDef{Name: "status", Values: []string{"active"}})

	_, err := Apply(s, action.MigrationAction{Kind: action.AlterEnumAddValue, EnumName: "status", EnumValue: "active"})
	var iv *errs.InvariantViolation
	assert.ErrorAs(t, err, &iv)

	out, err := Apply(s, action.MigrationAction{Kind: action.AlterEnumAddValue, EnumName: "status", EnumValue: "archived"})
	require.NoError(t, err)
	assert.Equal(t, []string{"active", "archived"}, out.Enum("status").Values)
}

func TestApplyRawIsNoop(t *testing.T) {
	s := schema.New()
	out, err := Apply(s, action.MigrationAction{Kind: action.Raw, Raw: action.RawSQL{Postgres: "SELECT 1;"}})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Tables.Len())
}
