package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dev-five-git/vespertide/internal/errs"
)

// newExportCommand accepts the flags spec.md §6 documents for ORM code
// generation but always fails: generating SeaORM/SQLAlchemy/SQLModel
// models is explicitly out of scope (spec.md §1), so this exists only so
// "vespertide export" fails with a clear, typed reason instead of cobra's
// generic "unknown command".
func newExportCommand() *cobra.Command {
	var (
		orm string
		dir string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Generate ORM model code (not implemented)",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return &errs.BackendUnsupported{
				Backend: orm,
				Reason:  fmt.Sprintf("ORM code generation is out of scope; requested target %q, dir %q", orm, dir),
			}
		},
	}
	cmd.Flags().StringVar(&orm, "orm", "", "seaorm, sqlalchemy, or sqlmodel")
	cmd.Flags().StringVar(&dir, "dir", "", "output directory")
	return cmd
}
