package project

import (
	"github.com/spf13/cobra"
)

// NewCommand returns the "project" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "List and select platform projects",
		Long: `List the projects visible to your session and select the one other
commands work in. The selection is stored as current-project.`,
	}

	cmd.AddCommand(ListCommand())
	cmd.AddCommand(UseCommand())

	return cmd
}
