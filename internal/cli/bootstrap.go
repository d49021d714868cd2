package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/konbase/internal/access"
	"github.com/iliyamo/konbase/internal/model"
	"github.com/iliyamo/konbase/internal/queue"
	"github.com/iliyamo/konbase/internal/repository"
	"github.com/iliyamo/konbase/internal/service"
	"github.com/iliyamo/konbase/internal/utils"
)

type bootstrapFlags struct {
	email    string
	password string
	role     string
}

// NewBootstrapAdminCommand creates the first administrator account with
// its profile.  When JWT_SECRET is set an access token is printed too.
func NewBootstrapAdminCommand(opts *RootOptions) *cobra.Command {
	f := &bootstrapFlags{}
	cmd := &cobra.Command{
		Use:   "bootstrap-admin",
		Short: "Create an administrator account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBootstrap(cmd, opts, f)
		},
	}
	cmd.Flags().StringVar(&f.email, "email", "", "administrator email (required)")
	cmd.Flags().StringVar(&f.password, "password", "", "administrator password (required)")
	cmd.Flags().StringVar(&f.role, "role", string(model.RoleSuperAdmin), "global role")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func runBootstrap(cmd *cobra.Command, opts *RootOptions, f *bootstrapFlags) error {
	role := model.Role(f.role)
	if !access.HasRoleOrAbove(role, model.RoleAdmin) {
		return fmt.Errorf("role %q is not an administrator role", f.role)
	}
	ctx := cmd.Context()
	dal, err := repository.New(ctx, repository.DetectBackend(opts.Cfg), opts.Cfg, opts.Log)
	if err != nil {
		return err
	}
	defer dal.Close()

	hash, err := utils.HashPassword(f.password, opts.Cfg.BcryptCost)
	if err != nil {
		return err
	}
	u, err := dal.CreateUser(ctx, model.User{Email: f.email, PasswordHash: &hash, Role: role})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	if _, err := dal.CreateProfile(ctx, model.Profile{ID: u.ID}); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}

	rec := service.NewAuditRecorder(opts.Cfg.AMQPURL, dal, opts.Log)
	if err := rec.Record(ctx, queue.AuditEvent{
		ProfileID: &u.ID, Action: "user.bootstrap_admin", EntityType: "user", EntityID: &u.ID,
		Details: map[string]any{"role": string(role)},
	}); err != nil {
		opts.Log.Warn().Err(err).Msg("record bootstrap audit event")
	}

	out := map[string]any{"id": u.ID, "email": u.Email, "role": u.Role}
	text := fmt.Sprintf("created %s (%s) id=%s", u.Email, u.Role, u.ID)
	if opts.Cfg.JWTSecret != "" {
		tok, err := utils.NewAccessToken(opts.Cfg.JWTSecret, u.ID, string(u.Role), opts.Cfg.AccessTTLMin)
		if err != nil {
			return err
		}
		out["access_token"] = tok.Token
		text += "\naccess token: " + tok.Token
	}
	return emit(cmd, opts, out, text)
}
