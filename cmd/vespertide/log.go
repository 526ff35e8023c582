package main

import (
	"fmt"
	"sort"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/dev-five-git/vespertide/internal/applier"
	"github.com/dev-five-git/vespertide/internal/schema"
	"github.com/dev-five-git/vespertide/internal/sqlgen"
)

// newLogCommand lists the recorded migration history in version order,
// optionally rendering each migration's SQL for a backend.
func newLogCommand(fs afero.Fs, configPath *string) *cobra.Command {
	var backend string

	cmd := &cobra.Command{
		Use:   "log",
		Short: "List recorded migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLog(fs, *configPath, backend, cmd)
		},
	}
	cmd.Flags().StringVar(&backend, "backend", "", "also print SQL for this backend: postgres, mysql, or sqlite")
	return cmd
}

func runLog(fs afero.Fs, configPath, backend string, cmd *cobra.Command) error {
	ctx, err := loadContext(fs, configPath)
	if err != nil {
		return err
	}
	history, err := ctx.history()
	if err != nil {
		return err
	}
	sort.Slice(history, func(i, j int) bool { return history[i].Version < history[j].Version })

	out := cmd.OutOrStdout()
	cur := schema.New()
	for _, p := range history {
		fmt.Fprintf(out, "%04d %s (%d action(s))\n", p.Version, p.Comment, len(p.Actions))

		for _, a := range p.Actions {
			if backend != "" {
				queries, err := sqlgen.Lower(a, schema.Backend(backend), cur)
				if err != nil {
					return err
				}
				for _, q := range queries {
					fmt.Fprintf(out, "    %s\n", q.Statement)
				}
			}
			next, err := applier.Apply(cur, a)
			if err != nil {
				return err
			}
			cur = next
		}
	}
	return nil
}
