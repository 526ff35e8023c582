package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// newStatusCommand reports the recorded migration count, any replay
// warnings, and whether the target schema still diverges from the replayed
// history.
func newStatusCommand(fs afero.Fs, configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration history status and whether a new revision is pending",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(fs, *configPath, cmd)
		},
	}
}

func runStatus(fs afero.Fs, configPath string, cmd *cobra.Command) error {
	ctx, err := loadContext(fs, configPath)
	if err != nil {
		return err
	}
	history, err := ctx.history()
	if err != nil {
		return err
	}

	result, err := plan(fs, configPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d migration(s) recorded\n", len(history))
	if len(result.ReplayIssues) > 0 {
		fmt.Fprintf(out, "%d replay warning(s)\n", len(result.ReplayIssues))
		for _, w := range result.ReplayIssues {
			fmt.Fprintf(out, "  - %v\n", w)
		}
	}
	if result.SchemaErr != nil {
		fmt.Fprintf(out, "target schema has validation errors: %v\n", result.SchemaErr)
	}
	if len(result.Actions) == 0 {
		fmt.Fprintln(out, "up to date: no pending changes")
		return nil
	}
	fmt.Fprintf(out, "%d pending change(s):\n", len(result.Actions))
	for _, a := range result.Actions {
		fmt.Fprintf(out, "  %s\n", describeAction(a))
	}
	return nil
}
