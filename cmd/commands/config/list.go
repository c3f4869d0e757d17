package config

import (
	"fmt"
	"text/tabwriter"

	"github.com/xbocquet/twcatele/internal/config"

	"github.com/spf13/cobra"
)

// ListCommand returns the "config list" command.
func ListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every configuration key",
		Long: `List every configuration key with the value stored in the config file,
the value in effect and where that value comes from (env, file or
default).`,
		Args:         cobra.NoArgs,
		RunE:         runList,
		SilenceUsage: true,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	file, err := config.LoadFile()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "KEY\tVALUE\tEFFECTIVE\tSOURCE")
	fmt.Fprintln(w, "---\t-----\t---------\t------")
	for _, spec := range config.Keys {
		stored := spec.Get(file)
		if stored == "" {
			stored = "(not set)"
		}
		effective := spec.Effective(cfg)
		if effective == "" {
			effective = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", spec.Name, stored, effective, source(spec, file))
	}
	return w.Flush()
}
