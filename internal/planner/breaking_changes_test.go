package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-five-git/vespertide/internal/action"
	"github.com/dev-five-git/vespertide/internal/schema"
)

func TestBreakingChangesClassifiesDestructiveActions(t *testing.T) {
	notes := BreakingChanges([]action.MigrationAction{
		{Kind: action.DeleteTable, Table: "users"},
		{Kind: action.DeleteColumn, Table: "users", ColumnName: "legacy"},
		{Kind: action.CreateTable, Table: "posts"},
	})

	require.Len(t, notes, 2)
	assert.Equal(t, SeverityDestructive, notes[0].Severity)
	assert.Equal(t, SeverityDestructive, notes[1].Severity)
}

func TestBreakingChangesFlagsUnsafeNullabilityTightening(t *testing.T) {
	tightened := false
	notes := BreakingChanges([]action.MigrationAction{
		{Kind: action.ModifyColumnNullable, Table: "t", ColumnName: "c", NewNullable: boolPtr(false)},
	})
	for _, n := range notes {
		if n.Severity == SeverityCaution {
			tightened = true
		}
	}
	assert.True(t, tightened)
}

func TestBreakingChangesIgnoresSafeAdditions(t *testing.T) {
	notes := BreakingChanges([]action.MigrationAction{
		{Kind: action.AddColumn, Table: "t", Column: &schema.ColumnDef{Name: "c", Nullable: true}},
		{Kind: action.AddIndex, Table: "t", Index: &schema.IndexDef{Name: "ix_t__c", Columns: []string{"c"}}},
	})
	assert.Empty(t, notes)
}

func boolPtr(b bool) *bool { return &b }
