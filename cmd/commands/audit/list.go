package audit

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/xbocquet/twcatele/internal/auditlog"
	"github.com/xbocquet/twcatele/internal/cmdutil"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"
)

const detailWidth = 48

func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent audit entries",
		Long: `List recent audit entries, newest first.

Examples:
  twcatele audit list
  twcatele audit list --limit 50
  twcatele audit list --command "twcatele telemetry readings"
  twcatele audit list --project <project-id> --failed
  twcatele audit list -o json`,
		Args:         cobra.NoArgs,
		RunE:         runList,
		SilenceUsage: true,
	}

	cmd.Flags().Int("limit", 25, "Number of entries to display")
	cmd.Flags().String("command", "", "Filter by exact command path")
	cmd.Flags().String("project", "", "Only entries for this project")
	cmd.Flags().Bool("failed", false, "Only failed commands")
	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		return fmt.Errorf("limit must be greater than 0")
	}
	output, _ := cmd.Flags().GetString("output")
	if err := cmdutil.CheckOutput(output, cmdutil.OutputTable, cmdutil.OutputJSON); err != nil {
		return err
	}
	command, _ := cmd.Flags().GetString("command")
	project, _ := cmd.Flags().GetString("project")
	failed, _ := cmd.Flags().GetBool("failed")

	repo, err := auditlog.Open()
	if err != nil {
		return err
	}
	defer repo.Close()

	entries, err := repo.List(auditlog.Filter{
		Command:    command,
		Project:    project,
		FailedOnly: failed,
		Limit:      limit,
	})
	if err != nil {
		return err
	}

	if output == cmdutil.OutputJSON {
		if entries == nil {
			entries = []auditlog.AuditEntry{}
		}
		return cmdutil.PrintJSON(cmd.OutOrStdout(), entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No audit entries found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "TIME\tCOMMAND\tBACKEND\tPROJECT\tOUTCOME\tDURATION\tRESOURCE\tDETAIL")
	fmt.Fprintln(w, "----\t-------\t-------\t-------\t-------\t--------\t--------\t------")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			e.Command,
			orDash(e.Backend),
			orDash(e.Project),
			e.Outcome,
			formatDuration(e.DurationMs),
			formatResource(e),
			orDash(ansi.Truncate(e.Detail, detailWidth, "…")),
		)
	}
	return w.Flush()
}

func formatDuration(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", ms)
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
}

// formatResource renders "type:id (name)", dropping missing parts.
func formatResource(e auditlog.AuditEntry) string {
	s := e.ResourceType
	if e.ResourceID != "" {
		if s != "" {
			s += ":"
		}
		s += e.ResourceID
	}
	if e.ResourceName != "" {
		if s != "" {
			s += " (" + e.ResourceName + ")"
		} else {
			s = e.ResourceName
		}
	}
	return orDash(s)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
