package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-five-git/vespertide/internal/action"
	"github.com/dev-five-git/vespertide/internal/schema"
)

func TestPlanReconstructsBaselineAndDiffs(t *testing.T) {
	history := []action.MigrationPlan{
		{Version: 1, Actions: []action.MigrationAction{
			{Kind: action.CreateTable, Table: "users", Columns: []*schema.ColumnDef{
				{Name: "id", Type: schema.Simple(schema.TypeInteger), PrimaryKey: true},
			}},
		}},
	}

	target := schema.New()
	target.Tables.Set("users", mustNormalize(t, &schema.TableDef{
		Name: "users",
		Columns: []*schema.ColumnDef{
			{Name: "id", Type: schema.Simple(schema.TypeInteger), PrimaryKey: true},
			{Name: "email", Type: schema.Simple(schema.TypeText), Nullable: true},
		},
	}))

	result, err := Plan(history, target, schema.DefaultValidationOptions())
	require.NoError(t, err)
	assert.Empty(t, result.ReplayIssues)
	assert.NoError(t, result.SchemaErr)
	require.Len(t, result.Actions, 1)
	assert.Equal(t, action.AddColumn, result.Actions[0].Kind)
}

func TestPlanSurfacesSchemaValidationWithoutFailing(t *testing.T) {
	target := schema.New()
	target.Tables.Set("Users", &schema.TableDef{
		Name:    "Users",
		Columns: []*schema.ColumnDef{{Name: "id", Type: schema.Simple(schema.TypeInteger)}},
	})

	result, err := Plan(nil, target, schema.DefaultValidationOptions())
	require.NoError(t, err)
	assert.Error(t, result.SchemaErr)
}
