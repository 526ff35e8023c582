package planner

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-five-git/vespertide/internal/action"
	"github.com/dev-five-git/vespertide/internal/applier"
	"github.com/dev-five-git/vespertide/internal/errs"
	"github.com/dev-five-git/vespertide/internal/schema"
)

func mustNormalize(t *testing.T, td *schema.TableDef) *schema.TableDef {
	t.Helper()
	out, err := schema.Normalize(td)
	require.NoError(t, err)
	return out
}

func TestDiffIdentityOnEqualSchemas(t *testing.T) {
	s := schema.New()
	s.Tables.Set("users", mustNormalize(t, &schema.TableDef{
		Name:    "users",
		Columns: []*schema.ColumnDef{{Name: "id", Type: schema.Simple(schema.TypeInteger), PrimaryKey: true}},
	}))

	actions, err := Diff(s, s)
	require.NoError(t, err)
	assert.Empty(t, actions)
}

func TestDiffEmptyToOneTable(t *testing.T) {
	baseline := schema.New()
	target := schema.New()
	target.Tables.Set("user", mustNormalize(t, &schema.TableDef{
		Name: "user",
		Columns: []*schema.ColumnDef{
			{Name: "id", Type: schema.Simple(schema.TypeInteger), PrimaryKey: true},
			{Name: "email", Type: schema.Simple(schema.TypeText), Unique: true},
		},
	}))

	actions, err := Diff(baseline, target)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, action.CreateTable, actions[0].Kind)
	assert.Equal(t, "user", actions[0].Table)
}

// TestDiffThenApplyReconstructsTarget checks the full round trip: diffing
// an empty baseline against a target and replaying the resulting actions
// through the applier must reproduce the target exactly, field for field,
// not merely "an equal number of tables".
func TestDiffThenApplyReconstructsTarget(t *testing.T) {
	baseline := schema.New()
	target := schema.New()
	target.Tables.Set("user", mustNormalize(t, &schema.TableDef{
		Name: "user",
		Columns: []*schema.ColumnDef{
			{Name: "id", Type: schema.Simple(schema.TypeInteger), PrimaryKey: true},
			{Name: "email", Type: schema.Simple(schema.TypeText), Unique: true},
		},
	}))

	actions, err := Diff(baseline, target)
	require.NoError(t, err)

	cur := baseline
	for _, a := range actions {
		cur, err = applier.Apply(cur, a)
		require.NoError(t, err)
	}

	if diff := cmp.Diff(target.Table("user"), cur.Table("user")); diff != "" {
		t.Errorf("applied result diverges from target (-want +got):\n%s", diff)
	}
}

func TestDiffCyclicDependencyAtCreate(t *testing.T) {
	baseline := schema.New()
	target := schema.New()
	a := &schema.TableDef{
		Name: "a",
		Columns: []*schema.ColumnDef{
			{Name: "id", Type: schema.Simple(schema.TypeInteger), PrimaryKey: true},
			{Name: "b_id", Type: schema.Simple(schema.TypeInteger), ForeignKey: &schema.InlineForeignKey{ReferencedTable: "b", ReferencedColumn: "id"}},
		},
	}
	b := &schema.TableDef{
		Name: "b",
		Columns: []*schema.ColumnDef{
			{Name: "id", Type: schema.Simple(schema.TypeInteger), PrimaryKey: true},
			{Name: "a_id", Type: schema.Simple(schema.TypeInteger), ForeignKey: &schema.InlineForeignKey{ReferencedTable: "a", ReferencedColumn: "id"}},
		},
	}
	target.Tables.Set("a", mustNormalize(t, a))
	target.Tables.Set("b", mustNormalize(t, b))

	_, err := Diff(baseline, target)
	var cyc *errs.CyclicDependency
	require.ErrorAs(t, err, &cyc)
}

func TestDiffTableCreationOrderIsDeterministic(t *testing.T) {
	baseline := schema.New()
	target := schema.New()
	target.Tables.Set("zebra", mustNormalize(t, &schema.TableDef{Name: "zebra", Columns: []*schema.ColumnDef{{Name: "id", Type: schema.Simple(schema.TypeInteger)}}}))
	target.Tables.Set("apple", mustNormalize(t, &schema.TableDef{Name: "apple", Columns: []*schema.ColumnDef{{Name: "id", Type: schema.Simple(schema.TypeInteger)}}}))

	actions, err := Diff(baseline, target)
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, "apple", actions[0].Table)
	assert.Equal(t, "zebra", actions[1].Table)
}

func TestDiffColumnAddRemoveModify(t *testing.T) {
	baseline := schema.New()
	baseline.Tables.Set("t", mustNormalize(t, &schema.TableDef{
		Name: "t",
		Columns: []*schema.ColumnDef{
			{Name: "id", Type: schema.Simple(schema.TypeInteger)},
			{Name: "old_col", Type: schema.Simple(schema.TypeText)},
		},
	}))
	target := schema.New()
	target.Tables.Set("t", mustNormalize(t, &schema.TableDef{
		Name: "t",
		Columns: []*schema.ColumnDef{
			{Name: "id", Type: schema.Simple(schema.TypeBigInt)},
			{Name: "new_col", Type: schema.Simple(schema.TypeText), Nullable: true},
		},
	}))

	actions, err := Diff(baseline, target)
	require.NoError(t, err)

	var kinds []action.Kind
	for _, a := range actions {
		kinds = append(kinds, a.Kind)
	}
	// removes before adds before modifies
	assert.Equal(t, []action.Kind{action.DeleteColumn, action.AddColumn, action.ModifyColumnType}, kinds)
}

func TestDiffEnumAppendOnly(t *testing.T) {
	baseline := schema.New()
	baseline.Enums.Set("status", &schema.EnumDef{Name: "status", Values: []string{"a", "b"}})
	target := schema.New()
	target.Enums.Set("status", &schema.EnumDef{Name: "status", Values: []string{"a", "b", "c"}})

	actions, err := Diff(baseline, target)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, action.AlterEnumAddValue, actions[0].Kind)
	assert.Equal(t, "c", actions[0].EnumValue)
}

func TestDiffEnumReorderFails(t *testing.T) {
	baseline := schema.New()
	baseline.Enums.Set("status", &schema.EnumDef{Name: "status", Values: []string{"a", "b"}})
	target := schema.New()
	target.Enums.Set("status", &schema.EnumDef{Name: "status", Values: []string{"b", "a"}})

	_, err := Diff(baseline, target)
	var ie *errs.IncompatibleEnumChange
	assert.ErrorAs(t, err, &ie)
}

func TestDiffDropEnumScheduledLast(t *testing.T) {
	baseline := schema.New()
	baseline.Enums.Set("status", &schema.EnumDef{Name: "status", Values: []string{"a"}})
	baseline.Tables.Set("t", mustNormalize(t, &schema.TableDef{
		Name:    "t",
		Columns: []*schema.ColumnDef{{Name: "s", Type: schema.StringEnum("status", []string{"a"})}},
	}))
	target := schema.New()
	target.Tables.Set("t", mustNormalize(t, &schema.TableDef{
		Name:    "t",
		Columns: []*schema.ColumnDef{{Name: "s", Type: schema.Simple(schema.TypeText)}},
	}))

	actions, err := Diff(baseline, target)
	require.NoError(t, err)
	last := actions[len(actions)-1]
	assert.Equal(t, action.DropEnum, last.Kind)
}
