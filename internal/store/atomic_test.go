package store

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomicLeavesNoTempFileBehind(t *testing.T) {
	fs := afero.NewMemMapFs()

	require.NoError(t, writeFileAtomic(fs, "migrations", "0001_init.json", []byte(`{"version":1}`)))

	entries, err := afero.ReadDir(fs, "migrations")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "0001_init.json", entries[0].Name())

	data, err := afero.ReadFile(fs, "migrations/0001_init.json")
	require.NoError(t, err)
	assert.Equal(t, `{"version":1}`, string(data))
}

func TestWriteFileAtomicCreatesDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()

	require.NoError(t, writeFileAtomic(fs, "a/b/c", "file.json", []byte("{}")))

	exists, err := afero.Exists(fs, "a/b/c/file.json")
	require.NoError(t, err)
	assert.True(t, exists)
}
