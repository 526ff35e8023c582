package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/dev-five-git/vespertide/internal/action"
	"github.com/dev-five-git/vespertide/internal/applier"
	"github.com/dev-five-git/vespertide/internal/schema"
	"github.com/dev-five-git/vespertide/internal/sqlgen"
)

// newSQLCommand prints the concrete statements a backend would run to
// apply the pending diff, in order. Unlike diff, this command stops at the
// first emission error, per spec.md §7's "the emitter stops at the first
// error because later statements may depend on earlier ones."
func newSQLCommand(fs afero.Fs, configPath *string) *cobra.Command {
	var backend string

	cmd := &cobra.Command{
		Use:   "sql",
		Short: "Print the SQL for the pending schema changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSQL(fs, *configPath, schema.Backend(backend), cmd)
		},
	}
	cmd.Flags().StringVar(&backend, "backend", string(schema.Postgres), "postgres, mysql, or sqlite")
	return cmd
}

func runSQL(fs afero.Fs, configPath string, backend schema.Backend, cmd *cobra.Command) error {
	result, err := plan(fs, configPath)
	if err != nil {
		return err
	}
	statements, err := lowerAll(result.Actions, backend, result.Baseline)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, stmt := range statements {
		fmt.Fprintln(out, stmt.Statement)
	}
	return nil
}

// lowerAll lowers each action against the schema state as of just before
// it, then folds the action through the applier so the next action's
// current_schema lookups see its effect — mirroring how replaying a
// migration history against a live database would actually progress.
func lowerAll(actions []action.MigrationAction, backend schema.Backend, baseline *schema.Schema) ([]sqlgen.BuiltQuery, error) {
	cur := baseline
	var out []sqlgen.BuiltQuery
	for _, a := range actions {
		queries, err := sqlgen.Lower(a, backend, cur)
		if err != nil {
			return nil, err
		}
		out = append(out, queries...)

		next, err := applier.Apply(cur, a)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return out, nil
}
