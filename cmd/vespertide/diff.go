package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/dev-five-git/vespertide/internal/planner"
)

// newDiffCommand shows the actions Vespertide would emit to bring the
// replayed baseline in line with the declared target, without writing a
// migration file.
func newDiffCommand(fs afero.Fs, configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "diff",
		Short: "Show pending schema changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDiff(fs, *configPath, cmd)
		},
	}
}

func runDiff(fs afero.Fs, configPath string, cmd *cobra.Command) error {
	result, err := plan(fs, configPath)
	if err != nil {
		return err
	}
	printPlanResult(cmd, result)
	return nil
}

// plan loads the stored history and target schema and runs the full
// planner facade over them.
func plan(fs afero.Fs, configPath string) (*planner.PlanResult, error) {
	ctx, err := loadContext(fs, configPath)
	if err != nil {
		return nil, err
	}
	target, err := ctx.target()
	if err != nil {
		return nil, err
	}
	history, err := ctx.history()
	if err != nil {
		return nil, err
	}
	return planner.Plan(history, target, ctx.validationOptions())
}

func printPlanResult(cmd *cobra.Command, result *planner.PlanResult) {
	out := cmd.OutOrStdout()
	if len(result.Actions) == 0 {
		fmt.Fprintln(out, "no pending changes")
	}
	for _, a := range result.Actions {
		fmt.Fprintf(out, "  %s\n", describeAction(a))
	}
	for _, n := range result.Notes {
		fmt.Fprintf(out, "  [%s] %s\n", n.Severity, n.Message)
	}
	for _, w := range result.ReplayIssues {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", w)
	}
	if result.SchemaErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "target schema validation: %v\n", result.SchemaErr)
	}
}
