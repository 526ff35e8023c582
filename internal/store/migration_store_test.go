package store

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-five-git/vespertide/internal/action"
)

func TestMigrationStoreLoadMissingDirReturnsNil(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewMigrationStore(fs, "migrations")

	got, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMigrationStoreWriteThenLoadRoundTrips(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewMigrationStore(fs, "migrations")

	plan := action.MigrationPlan{
		Version: 1,
		Comment: "create users",
		Actions: []action.MigrationAction{{Kind: action.CreateTable, Table: "users"}},
	}

	path, err := s.Write(plan)
	require.NoError(t, err)
	assert.Equal(t, "migrations/0001_create-users.json", path)

	loaded, err := s.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, plan.Version, loaded[0].Version)
	assert.Equal(t, plan.Comment, loaded[0].Comment)
	assert.Equal(t, plan.Actions, loaded[0].Actions)
}

func TestMigrationStoreNextVersion(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewMigrationStore(fs, "migrations")

	first, err := s.NextVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), first)

	_, err = s.Write(action.MigrationPlan{Version: 1, Comment: "one"})
	require.NoError(t, err)
	_, err = s.Write(action.MigrationPlan{Version: 2, Comment: "two"})
	require.NoError(t, err)

	next, err := s.NextVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(3), next)
}

func TestMigrationStoreLoadCollectsParseErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "migrations/0001_broken.json", []byte("{not json"), 0o644))

	s := NewMigrationStore(fs, "migrations")
	_, err := s.Load()
	assert.Error(t, err)
}

func TestNextFilenameSlugifiesComment(t *testing.T) {
	assert.Equal(t, "0042_add-users-email-index.json", NextFilename(42, "Add users' email index!"))
	assert.Equal(t, "0001_unnamed.json", NextFilename(1, "   "))
}
