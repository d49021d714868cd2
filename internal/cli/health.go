package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/konbase/internal/repository"
)

// NewHealthCommand probes the backend the environment selects.  The
// command fails when the backend is unhealthy, so it can serve as a
// container health check.
func NewHealthCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check connectivity to the configured backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend := repository.DetectBackend(opts.Cfg)
			dal, err := repository.New(cmd.Context(), backend, opts.Cfg, opts.Log)
			if err != nil {
				return err
			}
			defer dal.Close()

			h := dal.HealthCheck(cmd.Context())
			text := fmt.Sprintf("%s: %s (%dms)", backend, h.Status, h.Latency)
			if !h.Healthy() {
				text = fmt.Sprintf("%s: %s: %s", backend, h.Status, h.Error)
			}
			if err := emit(cmd, opts, map[string]any{"backend": backend, "health": h}, text); err != nil {
				return err
			}
			if !h.Healthy() {
				return fmt.Errorf("%s backend unhealthy", backend)
			}
			return nil
		},
	}
}
