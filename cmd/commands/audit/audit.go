package audit

import "github.com/spf13/cobra"

// NewCommand returns the "audit" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "View and prune the local command history",
		Long: `Every twcatele command that talks to the platform leaves one entry in a
local audit trail: the command, its arguments with secrets masked, the
telemetry backend and project it used, the outcome and how long it took.

The trail is stored in the twcatele SQLite database under your user
config directory. Audit commands themselves are not recorded.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(ListCommand())
	cmd.AddCommand(PruneCommand())

	return cmd
}
