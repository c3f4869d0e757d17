package project

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/xbocquet/twcatele/internal/cmdutil"

	"github.com/spf13/cobra"
)

func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Long: `List every project visible to your session, sorted by name. The current
project is marked with *.

Project lists are cached; --refresh drops the cache first.

Examples:
  twcatele project list
  twcatele project list -o json`,
		Args:         cobra.NoArgs,
		RunE:         runList,
		SilenceUsage: true,
	}

	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")
	cmd.Flags().Bool("refresh", false, "Bypass the project list cache")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	if err := cmdutil.CheckOutput(output, cmdutil.OutputTable, cmdutil.OutputJSON); err != nil {
		return err
	}

	sess, err := cmdutil.Connect()
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := cmdutil.Context(cmd)
	if refresh, _ := cmd.Flags().GetBool("refresh"); refresh {
		if err := sess.Catalog.Refresh(ctx); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
	}

	projects, err := sess.Catalog.Projects(ctx)
	if err != nil {
		return cmdutil.LoadFailed("projects", err)
	}

	if output == cmdutil.OutputJSON {
		return cmdutil.PrintJSON(cmd.OutOrStdout(), projects)
	}

	if len(projects) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No projects found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "\tID\tNAME\tSHORT NAME\tNAMESPACES")
	fmt.Fprintln(w, "\t--\t----\t----------\t----------")
	for _, p := range projects {
		marker := ""
		if p.ID == sess.Config.CurrentProject {
			marker = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", marker, p.ID, p.Name, dash(p.ShortName), strings.Join(p.Namespaces, ","))
	}
	return w.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
