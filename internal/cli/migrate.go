package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iliyamo/konbase/internal/database"
	"github.com/iliyamo/konbase/internal/migrations"
)

// NewMigrateCommand creates "migrate" with up, status and down.  All three
// target POSTGRES_URL / DATABASE_URL, whatever backend the application
// itself would select.
func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the relational schema",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(opts, func(r *migrations.Runner) error {
				res, err := r.Run(cmd.Context())
				var me *migrations.MigrationError
				if errors.As(err, &me) {
					_ = emit(cmd, opts, map[string]any{"applied": res.Applied, "failed": me.Version, "error": me.Err.Error()},
						fmt.Sprintf("applied %s; failed at %s", list(res.Applied), me.Version))
					return err
				}
				if err != nil {
					return err
				}
				return emit(cmd, opts, res, fmt.Sprintf("applied %s; already applied %s", list(res.Applied), list(res.Skipped)))
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(opts, func(r *migrations.Runner) error {
				st, err := r.Status(cmd.Context())
				if err != nil {
					return err
				}
				return emit(cmd, opts, st, fmt.Sprintf("up to date: %t; applied %s; pending %s",
					st.IsUpToDate, list(st.Applied), list(st.Pending)))
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Revert the most recently applied migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(opts, func(r *migrations.Runner) error {
				v, err := r.RevertLast(cmd.Context())
				if err != nil {
					return err
				}
				return emit(cmd, opts, map[string]string{"reverted": v}, "reverted "+v)
			})
		},
	})
	return cmd
}

func withRunner(opts *RootOptions, fn func(*migrations.Runner) error) error {
	db, err := database.NewPostgres(database.PostgresConfigFrom(opts.Cfg))
	if err != nil {
		return err
	}
	defer db.Close()
	r, err := migrations.NewPostgresRunner(db, opts.Log)
	if err != nil {
		return err
	}
	return fn(r)
}

func list(vs []string) string {
	if len(vs) == 0 {
		return "none"
	}
	return strings.Join(vs, ", ")
}
