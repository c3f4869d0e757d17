package collection

import (
	"github.com/spf13/cobra"
)

// NewCommand returns the "collection" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collection",
		Short: "List the collections of a project",
		Long: `List the named user, file, composite and telemetry collections of a
project.`,
	}

	cmd.PersistentFlags().String("project", "", "Project ID (defaults to current-project)")
	cmd.AddCommand(ListCommand())

	return cmd
}
