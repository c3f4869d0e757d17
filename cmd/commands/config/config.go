package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/xbocquet/twcatele/internal/config"

	"github.com/spf13/cobra"
)

// NewCommand returns the "config" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage twcatele configuration",
		Long: `View and modify persistent twcatele settings.

Settings live in ~/.config/twcatele/config.json. Any key can be overridden
with a TWCATELE_<KEY> environment variable, e.g. TWCATELE_INFLUX_URL, set
in the shell or in a .env file in the working directory.

` + config.KeysHelp(),
	}

	cmd.AddCommand(SetCommand(), GetCommand(), ListCommand())
	return cmd
}

// lookupKey resolves a key name or lists the valid ones.
func lookupKey(name string) (*config.KeySpec, error) {
	if spec := config.Lookup(name); spec != nil {
		return spec, nil
	}
	return nil, fmt.Errorf("unknown configuration key %q (valid: %s)", name, strings.Join(config.KeyNames(), ", "))
}

// source names where the value in effect for spec comes from.
func source(spec config.KeySpec, file *config.Config) string {
	if v, ok := os.LookupEnv(config.EnvName(spec.Name)); ok && strings.TrimSpace(v) != "" {
		return "env"
	}
	if spec.Get(file) != "" {
		return "file"
	}
	if spec.Default != "" {
		return "default"
	}
	return "-"
}
