package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/dev-five-git/vespertide/internal/errs"
)

// newNewCommand writes a starter model file for a table.
func newNewCommand(fs afero.Fs, configPath *string) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create a starter model file for a new table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(fs, *configPath, args[0], format, cmd)
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "json or yaml (defaults to the configured modelFormat)")
	return cmd
}

func runNew(fs afero.Fs, configPath, name, format string, cmd *cobra.Command) error {
	ctx, err := loadContext(fs, configPath)
	if err != nil {
		return err
	}
	if format == "" {
		format = ctx.cfg.ModelFormat
	}
	if format != "json" && format != "yaml" {
		return &errs.ParseError{Reason: fmt.Sprintf("--format must be json or yaml, got %q", format)}
	}

	path, err := ctx.models.WriteTemplate(name, format)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}
