package telemetry

import (
	"github.com/spf13/cobra"
)

// NewCommand returns the "telemetry" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "telemetry",
		Short: "Show telemetry readings of collection items",
		Long: `Show the telemetry readings of one or more items of a collection, raw
or bucketed by period, as a table, JSON or a terminal chart.`,
	}

	cmd.AddCommand(ReadingsCommand())

	return cmd
}
