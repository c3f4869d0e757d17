package auth

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/xbocquet/twcatele/internal/platform/backends"
	"github.com/xbocquet/twcatele/internal/services/auth"
	"github.com/xbocquet/twcatele/internal/tui"

	"golang.org/x/term"

	"github.com/spf13/cobra"
)

func StatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the stored session and backend credentials",
		Long: `Show whether a platform session is stored, and which credentials
the telemetry backends have. Secrets are masked.

Example:
  twcatele auth status`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := auth.DefaultStore()

			if term.IsTerminal(int(os.Stdout.Fd())) {
				if err := tui.RunAuthStatus(store); err != nil {
					return fmt.Errorf("auth status failed: %w", err)
				}
				return nil
			}

			if auth.IsAuthenticated(store) {
				fmt.Fprintln(cmd.OutOrStdout(), "twinit: logged in")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "twinit: not logged in")
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "BACKEND\tCREDENTIAL\tVALUE")
			fmt.Fprintln(w, "-------\t----------\t-----")
			for _, state := range backends.CredentialStates(store) {
				fmt.Fprintf(w, "%s\t%s\t%s\n", state.Backend, state.Key.Label, state.Display())
			}
			return w.Flush()
		},
		SilenceUsage: true,
	}

	return cmd
}
