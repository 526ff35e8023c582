// Package main wires Vespertide's library packages (internal/schema,
// internal/planner, internal/sqlgen, internal/store, internal/config) into
// a cobra CLI, the way the teacher's cmd/smf/main.go wires internal/core,
// internal/diff, internal/apply, internal/dialect together. This command
// layer stays thin: every decision of consequence already lives in the
// library, and this file's job is parsing flags, loading files, and
// picking an exit code.
package main

import (
	"errors"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/dev-five-git/vespertide/internal/errs"
	"github.com/dev-five-git/vespertide/internal/log"
)

const defaultConfigPath = "vespertide.json"

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		log.WithError(err).Error("command failed")
		os.Exit(exitCodeFor(err))
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "vespertide",
		Short:         "Declarative database schema migrations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "path to vespertide.json")

	fs := afero.NewOsFs()

	root.AddCommand(newInitCommand(fs, &configPath))
	root.AddCommand(newNewCommand(fs, &configPath))
	root.AddCommand(newDiffCommand(fs, &configPath))
	root.AddCommand(newSQLCommand(fs, &configPath))
	root.AddCommand(newRevisionCommand(fs, &configPath))
	root.AddCommand(newStatusCommand(fs, &configPath))
	root.AddCommand(newLogCommand(fs, &configPath))
	root.AddCommand(newExportCommand())

	return root
}

// exitCodeFor maps the closed error taxonomy to spec.md §7's exit codes: 1
// for a user-facing mistake (bad input, bad flags, a backfill the CLI
// wasn't told how to supply), 2 for an internal invariant failure the
// planner detected.
func exitCodeFor(err error) int {
	var (
		invariant  *errs.InvariantViolation
		enumChange *errs.IncompatibleEnumChange
		cyclic     *errs.CyclicDependency
	)
	if errors.As(err, &invariant) || errors.As(err, &enumChange) || errors.As(err, &cyclic) {
		return 2
	}
	return 1
}
