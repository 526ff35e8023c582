package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffShowsCreateTableForFreshProject(t *testing.T) {
	fs := seedProject(t)

	var buf strings.Builder
	require.NoError(t, runDiff(fs, "vespertide.json", newTestCommand(&buf)))
	assert.Contains(t, buf.String(), "users")
}

func TestDiffReportsNoPendingChangesOnceRecorded(t *testing.T) {
	fs := seedProject(t)

	var first strings.Builder
	require.NoError(t, runRevision(fs, "vespertide.json", "create users", nil, newTestCommand(&first)))

	var buf strings.Builder
	require.NoError(t, runDiff(fs, "vespertide.json", newTestCommand(&buf)))
	assert.Contains(t, buf.String(), "no pending changes")
}
