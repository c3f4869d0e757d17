package auth

import (
	"fmt"
	"log/slog"

	"github.com/xbocquet/twcatele/internal/cmdutil"
	"github.com/xbocquet/twcatele/internal/config"
	"github.com/xbocquet/twcatele/internal/platform/backends"
	"github.com/xbocquet/twcatele/internal/services/auth"

	"github.com/spf13/cobra"
)

func LogoutCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out and remove the stored session",
		Long: `Sign out of the platform and remove the stored token and environment.
The application id is kept for the next login.

Example:
  twcatele auth logout`,
		Args:         cobra.NoArgs,
		RunE:         runLogout,
		SilenceUsage: true,
	}

	return cmd
}

func runLogout(cmd *cobra.Command, args []string) error {
	store := auth.DefaultStore()
	session, err := auth.LoadSession(store)
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx := cmdutil.Context(cmd)

	// The platform logout is best effort: an expired session still has to
	// be removed locally.
	if clients, err := backends.Connect(cfg, store); err == nil {
		if err := clients.Platform.Logout(ctx); err != nil {
			slog.Warn("platform logout failed", "error", err)
		}
		clients.Close()
	} else {
		slog.Warn("could not reach platform for logout", "error", err)
	}

	if err := cmdutil.ForgetLists(ctx, cfg, session); err != nil {
		slog.Warn("failed to clear cached lists", "error", err)
	}
	if err := auth.ClearSession(store); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
	return nil
}
