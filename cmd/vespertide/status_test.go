package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusReportsPendingChangesBeforeFirstRevision(t *testing.T) {
	fs := seedProject(t)

	var buf strings.Builder
	require.NoError(t, runStatus(fs, "vespertide.json", newTestCommand(&buf)))
	out := buf.String()
	assert.Contains(t, out, "0 migration(s) recorded")
	assert.Contains(t, out, "pending change")
}

func TestStatusReportsUpToDateAfterRevision(t *testing.T) {
	fs := seedProject(t)

	var rev strings.Builder
	require.NoError(t, runRevision(fs, "vespertide.json", "create users", nil, newTestCommand(&rev)))

	var buf strings.Builder
	require.NoError(t, runStatus(fs, "vespertide.json", newTestCommand(&buf)))
	out := buf.String()
	assert.Contains(t, out, "1 migration(s) recorded")
	assert.Contains(t, out, "up to date")
}
