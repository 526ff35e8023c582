package main

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// seedProject writes a vespertide.json and a single-table model, returning
// a fresh in-memory filesystem ready for diff/revision/sql/status/log.
func seedProject(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, runInit(fs, "vespertide.json", &cobra.Command{}))
	require.NoError(t, afero.WriteFile(fs, "models/users.json", []byte(`{
		"name": "users",
		"columns": [
			{"name": "id", "type": "integer", "primary_key": true},
			{"name": "email", "type": "text", "unique": true}
		]
	}`), 0o644))
	return fs
}

// newTestCommand returns a bare cobra.Command with both stdout and stderr
// wired to w, for the commands under test that write diagnostics to
// cmd.ErrOrStderr() as well as cmd.OutOrStdout().
func newTestCommand(w *strings.Builder) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetOut(w)
	cmd.SetErr(w)
	return cmd
}
