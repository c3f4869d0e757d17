package config

import (
	"fmt"
	"strings"

	"github.com/xbocquet/twcatele/internal/config"

	"github.com/spf13/cobra"
)

// SetCommand returns the "config set" command.
func SetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: "Set a persistent configuration value. Pass an empty string to unset.\n\n" +
			config.KeysHelp() +
			"\nExamples:\n" +
			"  twcatele config set item-service-origin https://api.invicara.com\n" +
			"  twcatele config set telemetry-backend influxdb\n" +
			"  twcatele config set current-project \"\"",
		Args:         cobra.ExactArgs(2),
		RunE:         runSet,
		SilenceUsage: true,
	}

	return cmd
}

func runSet(cmd *cobra.Command, args []string) error {
	spec, err := lookupKey(args[0])
	if err != nil {
		return err
	}

	value := strings.TrimSpace(args[1])
	if value != "" && spec.Validate != nil {
		if err := spec.Validate(value); err != nil {
			return fmt.Errorf("invalid value for %s: %w", spec.Name, err)
		}
	}

	cfg, err := config.LoadFile()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	spec.Set(cfg, value)
	if err := cfg.Save(); err != nil {
		return err
	}

	if value == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s unset\n", spec.Name)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s set to %q\n", spec.Name, spec.Get(cfg))
	return nil
}
