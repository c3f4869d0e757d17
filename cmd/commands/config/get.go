package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/xbocquet/twcatele/internal/config"
	"github.com/xbocquet/twcatele/internal/tui"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// GetCommand returns the "config get" command.
func GetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get [key]",
		Short: "Get a configuration value",
		Long: `Print a configuration value, including any environment override.
Without a key, a terminal opens the interactive editor and a pipe gets the
same table as "config list".

` + config.KeysHelp() + `
Examples:
  twcatele config get                            # interactive editor
  twcatele config get telemetry-backend
  twcatele config get base-root --effective      # falls back to the default`,
		Args:         cobra.MaximumNArgs(1),
		RunE:         runGet,
		SilenceUsage: true,
	}

	cmd.Flags().String("key", "", "Key to print (same as the positional argument)")
	cmd.Flags().Bool("effective", false, "Print the built-in default when the key is unset")

	return cmd
}

func runGet(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("key")
	if len(args) == 1 {
		name = args[0]
	}
	if strings.TrimSpace(name) == "" {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return runList(cmd, nil)
		}
		if err := tui.RunConfigView(); err != nil {
			return fmt.Errorf("config view failed: %w", err)
		}
		return nil
	}

	spec, err := lookupKey(name)
	if err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	value := spec.Get(cfg)
	if effective, _ := cmd.Flags().GetBool("effective"); effective {
		value = spec.Effective(cfg)
	}
	if value == "" {
		value = "not set"
	}
	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}
