package main

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCreatesConfigAndDirectories(t *testing.T) {
	fs := afero.NewMemMapFs()
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	require.NoError(t, runInit(fs, "vespertide.json", cmd))

	exists, err := afero.Exists(fs, "vespertide.json")
	require.NoError(t, err)
	assert.True(t, exists)

	modelsExists, err := afero.DirExists(fs, "models")
	require.NoError(t, err)
	assert.True(t, modelsExists)

	migrationsExists, err := afero.DirExists(fs, "migrations")
	require.NoError(t, err)
	assert.True(t, migrationsExists)
}

func TestInitIsIdempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	require.NoError(t, runInit(fs, "vespertide.json", cmd))
	before, err := afero.ReadFile(fs, "vespertide.json")
	require.NoError(t, err)

	require.NoError(t, runInit(fs, "vespertide.json", cmd))
	after, err := afero.ReadFile(fs, "vespertide.json")
	require.NoError(t, err)

	assert.Equal(t, before, after)
}
