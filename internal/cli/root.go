// Package cli implements the konbase command line tool.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iliyamo/konbase/internal/config"
	"github.com/iliyamo/konbase/internal/logger"
)

// RootOptions holds global flags and the environment every command shares.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	Cfg config.Config
	Log zerolog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "konbase",
		Short: "KonBase data layer administration",
		Long:  "Apply schema migrations, probe the configured backend and bootstrap the first administrator.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			opts.Cfg = config.Load()
			level := opts.Cfg.LogLevel
			if opts.Verbose {
				level = "debug"
			}
			// Logs go to stderr so JSON output on stdout stays parseable.
			opts.Log = logger.New(logger.Config{Level: level, ServiceName: "konbase-cli", Pretty: true, Output: cmd.ErrOrStderr()})
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewHealthCommand(opts))
	cmd.AddCommand(NewBootstrapAdminCommand(opts))

	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// emit writes v as indented JSON or text as a plain line, depending on
// --format.
func emit(cmd *cobra.Command, opts *RootOptions, v any, text string) error {
	if opts.Format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
	return err
}
