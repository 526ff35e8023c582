package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-five-git/vespertide/internal/action"
	"github.com/dev-five-git/vespertide/internal/schema"
	"github.com/dev-five-git/vespertide/internal/sqlgen"
)

func TestCreateTableEmitsUniqueIndexSeparately(t *testing.T) {
	act := action.MigrationAction{
		Kind:  action.CreateTable,
		Table: "user",
		Columns: []*schema.ColumnDef{
			{Name: "id", Type: schema.Simple(schema.TypeInteger)},
			{Name: "email", Type: schema.Simple(schema.TypeText)},
		},
		Constraints: []*schema.TableConstraint{
			{Name: "pk_user", Kind: schema.ConstraintPrimaryKey, Columns: []string{"id"}},
			{Name: "uq_user__email", Kind: schema.ConstraintUniqueIdx, Columns: []string{"email"}},
		},
	}

	queries, err := sqlgen.Lower(act, schema.Postgres, nil)
	require.NoError(t, err)
	require.Len(t, queries, 2)
	assert.Contains(t, queries[0].Statement, `CREATE TABLE "user"`)
	assert.Contains(t, queries[0].Statement, `CONSTRAINT "pk_user" PRIMARY KEY ("id")`)
	assert.Equal(t, `CREATE UNIQUE INDEX "uq_user__email" ON "user" ("email");`, queries[1].Statement)
}

func TestAddColumnWithBackfillSplitsIntoThreeSteps(t *testing.T) {
	act := action.MigrationAction{
		Kind:  action.AddColumn,
		Table: "user",
		Column: &schema.ColumnDef{
			Name: "status", Type: schema.Simple(schema.TypeText), Nullable: false,
		},
		FillWith: "'active'",
	}

	queries, err := sqlgen.Lower(act, schema.Postgres, nil)
	require.NoError(t, err)
	require.Len(t, queries, 3)
	assert.Contains(t, queries[0].Statement, `ADD COLUMN "status" TEXT`)
	assert.Contains(t, queries[1].Statement, `UPDATE "user" SET "status" = 'active';`)
	assert.Contains(t, queries[2].Statement, `SET NOT NULL;`)
}

func TestRemoveConstraintNeedsCurrentSchema(t *testing.T) {
	act := action.MigrationAction{Kind: action.RemoveConstraint, Table: "user", ConstraintName: "uq_user__email"}
	_, err := sqlgen.Lower(act, schema.Postgres, nil)
	assert.Error(t, err)
}

func TestRemoveConstraintDropsIndexWhenKindIsUniqueIdx(t *testing.T) {
	current := schema.New()
	current.Tables.Set("user", &schema.TableDef{
		Name: "user",
		Constraints: []*schema.TableConstraint{
			{Name: "uq_user__email", Kind: schema.ConstraintUniqueIdx, Columns: []string{"email"}},
		},
	})
	act := action.MigrationAction{Kind: action.RemoveConstraint, Table: "user", ConstraintName: "uq_user__email"}
	queries, err := sqlgen.Lower(act, schema.Postgres, current)
	require.NoError(t, err)
	require.Len(t, queries, 1)
	assert.Equal(t, `DROP INDEX "uq_user__email";`, queries[0].Statement)
}

func TestEnumLifecycle(t *testing.T) {
	create, err := sqlgen.Lower(action.MigrationAction{
		Kind: action.CreateEnum,
		Enum: &schema.EnumDef{Name: "status", Values: []string{"active", "archived"}},
	}, schema.Postgres, nil)
	require.NoError(t, err)
	assert.Equal(t, `CREATE TYPE "status" AS ENUM ('active', 'archived');`, create[0].Statement)

	alter, err := sqlgen.Lower(action.MigrationAction{
		Kind: action.AlterEnumAddValue, EnumName: "status", EnumValue: "pending",
	}, schema.Postgres, nil)
	require.NoError(t, err)
	assert.Equal(t, `ALTER TYPE "status" ADD VALUE 'pending';`, alter[0].Statement)

	drop, err := sqlgen.Lower(action.MigrationAction{Kind: action.DropEnum, EnumName: "status"}, schema.Postgres, nil)
	require.NoError(t, err)
	assert.Equal(t, `DROP TYPE "status";`, drop[0].Statement)
}

func TestRawEmptyStatementYieldsNoQueries(t *testing.T) {
	queries, err := sqlgen.Lower(action.MigrationAction{Kind: action.Raw}, schema.Postgres, nil)
	require.NoError(t, err)
	assert.Empty(t, queries)
}
