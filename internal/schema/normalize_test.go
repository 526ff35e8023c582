package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePromotesInlineUnique(t *testing.T) {
	tbl := &TableDef{
		Name: "users",
		Columns: []*ColumnDef{
			{Name: "email", Type: Simple(TypeText), Unique: true},
		},
	}

	out, err := Normalize(tbl)
	require.NoError(t, err)
	assert.False(t, out.Columns[0].Unique)
	require.Len(t, out.Constraints, 1)
	assert.Equal(t, "uq_users__email", out.Constraints[0].Name)
	assert.Equal(t, ConstraintUniqueIdx, out.Constraints[0].Kind)
	assert.Equal(t, []string{"email"}, out.Constraints[0].Columns)
}

func TestNormalizePromotesInlineIndex(t *testing.T) {
	tbl := &TableDef{
		Name: "users",
		Columns: []*ColumnDef{
			{Name: "last_name", Type: Simple(TypeText), Index: true},
		},
	}

	out, err := Normalize(tbl)
	require.NoError(t, err)
	require.Len(t, out.Indexes, 1)
	assert.Equal(t, "ix_users__last_name", out.Indexes[0].Name)
}

func TestNormalizePromotesInlineForeignKey(t *testing.T) {
	tbl := &TableDef{
		Name: "posts",
		Columns: []*ColumnDef{
			{Name: "author_id", Type: Simple(TypeInteger), ForeignKey: &InlineForeignKey{
				ReferencedTable: "users", ReferencedColumn: "id", OnDelete: RefCascade,
			}},
		},
	}

	out, err := Normalize(tbl)
	require.NoError(t, err)
	require.Len(t, out.Constraints, 1)
	fk := out.Constraints[0]
	assert.Equal(t, "fk_posts__author_id", fk.Name)
	assert.Equal(t, ConstraintForeignKey, fk.Kind)
	assert.Equal(t, "users", fk.ReferencedTable)
	assert.Equal(t, []string{"id"}, fk.ReferencedColumns)
	assert.Equal(t, RefCascade, fk.OnDelete)
	assert.Nil(t, out.Columns[0].ForeignKey)
}

func TestNormalizeCoalescesInlinePrimaryKey(t *testing.T) {
	tbl := &TableDef{
		Name: "users",
		Columns: []*ColumnDef{
			{Name: "id", Type: Simple(TypeInteger), PrimaryKey: true},
		},
	}

	out, err := Normalize(tbl)
	require.NoError(t, err)
	require.NotNil(t, out.PrimaryKey())
	assert.Equal(t, []string{"id"}, out.PrimaryKey().Columns)
	assert.False(t, out.Columns[0].PrimaryKey)
}

func TestNormalizeRejectsConflictingPrimaryKey(t *testing.T) {
	tbl := &TableDef{
		Name: "users",
		Columns: []*ColumnDef{
			{Name: "id", Type: Simple(TypeInteger), PrimaryKey: true},
			{Name: "tenant_id", Type: Simple(TypeInteger)},
		},
		Constraints: []*TableConstraint{
			{Name: "pk_users", Kind: ConstraintPrimaryKey, Columns: []string{"tenant_id"}},
		},
	}

	_, err := Normalize(tbl)
	assert.Error(t, err)
}

func TestNormalizeBreaksNameCollisionsWithDiscriminator(t *testing.T) {
	tbl := &TableDef{
		Name: "t",
		Columns: []*ColumnDef{
			{Name: "a", Type: Simple(TypeText), Unique: true},
		},
		Constraints: []*TableConstraint{
			{Name: "uq_t__a", Kind: ConstraintUniqueIdx, Columns: []string{"other"}},
		},
	}

	out, err := Normalize(tbl)
	require.NoError(t, err)
	var generated *TableConstraint
	for _, c := range out.Constraints {
		if c.Kind == ConstraintUniqueIdx && len(c.Columns) == 1 && c.Columns[0] == "a" {
			generated = c
		}
	}
	require.NotNil(t, generated)
	assert.Equal(t, "uq_t__a__2", generated.Name)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	tbl := &TableDef{
		Name: "users",
		Columns: []*ColumnDef{
			{Name: "id", Type: Simple(TypeInteger), PrimaryKey: true},
			{Name: "email", Type: Simple(TypeText), Unique: true},
		},
	}

	once, err := Normalize(tbl)
	require.NoError(t, err)
	assert.True(t, IsNormalized(once))

	twice, err := Normalize(once)
	require.NoError(t, err)
	assert.Equal(t, len(once.Constraints), len(twice.Constraints))
	assert.Equal(t, len(once.Indexes), len(twice.Indexes))
}

func TestTrimSpaceNames(t *testing.T) {
	tbl := &TableDef{
		Name:    " users ",
		Columns: []*ColumnDef{{Name: " id "}},
	}
	TrimSpaceNames(tbl)
	assert.Equal(t, "users", tbl.Name)
	assert.Equal(t, "id", tbl.Columns[0].Name)
}
