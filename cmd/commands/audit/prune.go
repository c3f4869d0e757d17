package audit

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xbocquet/twcatele/internal/auditlog"

	"github.com/spf13/cobra"
)

func PruneCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete audit entries older than a duration",
		Long: `Delete audit entries older than a duration. Durations accept the Go
units (h, m, s) plus d for days and w for weeks.

Examples:
  twcatele audit prune --older-than 30d
  twcatele audit prune --older-than 2w
  twcatele audit prune --older-than 72h`,
		Args:         cobra.NoArgs,
		RunE:         runPrune,
		SilenceUsage: true,
	}

	cmd.Flags().String("older-than", "", "Remove entries older than this duration (e.g. 30d, 2w, 72h)")
	cmd.MarkFlagRequired("older-than")

	return cmd
}

func runPrune(cmd *cobra.Command, args []string) error {
	raw, _ := cmd.Flags().GetString("older-than")
	olderThan, err := parseAge(strings.TrimSpace(raw))
	if err != nil {
		return err
	}

	repo, err := auditlog.Open()
	if err != nil {
		return err
	}
	defer repo.Close()

	removed, err := repo.Prune(olderThan)
	if err != nil {
		return err
	}

	noun := "entries"
	if removed == 1 {
		noun = "entry"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d audit %s.\n", removed, noun)
	return nil
}

// parseAge parses a non-negative age such as "30d", "2w" or "90m".
func parseAge(input string) (time.Duration, error) {
	day := 24 * time.Hour
	for suffix, unit := range map[string]time.Duration{"d": day, "w": 7 * day} {
		if num, ok := strings.CutSuffix(input, suffix); ok {
			n, err := strconv.Atoi(num)
			if err != nil {
				return 0, fmt.Errorf("invalid duration %q", input)
			}
			if n < 0 {
				return 0, fmt.Errorf("duration must be positive")
			}
			return time.Duration(n) * unit, nil
		}
	}

	d, err := time.ParseDuration(input)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", input)
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be positive")
	}
	return d, nil
}
