package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-five-git/vespertide/internal/casing"
	"github.com/dev-five-git/vespertide/internal/errs"
)

func TestValidateCollectsMultipleProblems(t *testing.T) {
	s := New()
	s.Tables.Set("Users", &TableDef{
		Name: "Users", // violates snake_case
		Columns: []*ColumnDef{
			{Name: "id", Type: Simple(TypeInteger)},
			{Name: "id", Type: Simple(TypeInteger)}, // duplicate column
		},
	})

	err := Validate(s, DefaultValidationOptions())
	require.Error(t, err)
	var list errs.List
	require.ErrorAs(t, err, &list)
	assert.GreaterOrEqual(t, len(list), 2)
}

func TestValidatePassesCleanSchema(t *testing.T) {
	s := New()
	users, err := Normalize(&TableDef{
		Name: "users",
		Columns: []*ColumnDef{
			{Name: "id", Type: Simple(TypeInteger), PrimaryKey: true},
		},
	})
	require.NoError(t, err)
	s.Tables.Set("users", users)

	assert.NoError(t, Validate(s, DefaultValidationOptions()))
}

func TestValidateForeignKeyMustReferenceKeyedColumn(t *testing.T) {
	s := New()
	s.Tables.Set("users", &TableDef{
		Name:    "users",
		Columns: []*ColumnDef{{Name: "id", Type: Simple(TypeInteger)}},
	})
	s.Tables.Set("posts", &TableDef{
		Name:    "posts",
		Columns: []*ColumnDef{{Name: "author_id", Type: Simple(TypeInteger)}},
		Constraints: []*TableConstraint{
			{
				Name: "fk_posts__author_id", Kind: ConstraintForeignKey,
				Columns: []string{"author_id"}, ReferencedTable: "users", ReferencedColumns: []string{"id"},
			},
		},
	})

	err := Validate(s, DefaultValidationOptions())
	require.Error(t, err)
	var list errs.List
	require.ErrorAs(t, err, &list)
	assert.NotEmpty(t, list)
}

func TestValidateRejectsTypeMismatchAcrossForeignKey(t *testing.T) {
	s := New()
	s.Tables.Set("users", &TableDef{
		Name:        "users",
		Columns:     []*ColumnDef{{Name: "id", Type: Simple(TypeBigInt)}},
		Constraints: []*TableConstraint{{Name: "pk_users", Kind: ConstraintPrimaryKey, Columns: []string{"id"}}},
	})
	s.Tables.Set("posts", &TableDef{
		Name:    "posts",
		Columns: []*ColumnDef{{Name: "author_id", Type: Simple(TypeInteger)}},
		Constraints: []*TableConstraint{
			{
				Name: "fk_posts__author_id", Kind: ConstraintForeignKey,
				Columns: []string{"author_id"}, ReferencedTable: "users", ReferencedColumns: []string{"id"},
			},
		},
	})

	assert.Error(t, Validate(s, DefaultValidationOptions()))
}

func TestValidateNamingCaseConfigurable(t *testing.T) {
	s := New()
	s.Tables.Set("UserAccounts", &TableDef{
		Name:    "UserAccounts",
		Columns: []*ColumnDef{{Name: "id", Type: Simple(TypeInteger)}},
	})

	opts := ValidationOptions{TableNamingCase: casing.Pascal, ColumnNamingCase: casing.Snake}
	assert.NoError(t, Validate(s, opts))

	opts.TableNamingCase = casing.Snake
	assert.Error(t, Validate(s, opts))
}

func TestValidateDuplicateEnumValue(t *testing.T) {
	s := New()
	s.Enums.Set("status", &EnumDef{Name: "status", Values: []string{"active", "active"}})

	assert.Error(t, Validate(s, DefaultValidationOptions()))
}
