package group

import (
	"fmt"
	"text/tabwriter"

	"github.com/xbocquet/twcatele/internal/cmdutil"
	"github.com/xbocquet/twcatele/internal/platform/domain"
	"github.com/xbocquet/twcatele/internal/services/groups"

	"github.com/spf13/cobra"
)

func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your user groups in the project",
		Long: `List the user groups you belong to in the project. The current group is
marked with *; an ADMIN column shows whether you administer the project.`,
		Args:         cobra.NoArgs,
		RunE:         runList,
		SilenceUsage: true,
	}

	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

type groupRow struct {
	domain.UserGroup
	Current bool `json:"current"`
}

func runList(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	if err := cmdutil.CheckOutput(output, cmdutil.OutputTable, cmdutil.OutputJSON); err != nil {
		return err
	}

	gs, err := connect(cmd)
	if err != nil {
		return err
	}
	defer gs.Close()

	ctx := cmdutil.Context(cmd)
	mine, err := gs.Groups.MyGroups(ctx)
	if err != nil {
		return cmdutil.LoadFailed("user groups", err)
	}
	all, err := gs.Groups.AllGroups(ctx)
	if err != nil {
		return cmdutil.LoadFailed("user groups", err)
	}
	current, err := gs.Groups.Current(mine)
	if err != nil {
		return err
	}

	rows := make([]groupRow, 0, len(mine))
	for _, g := range mine {
		rows = append(rows, groupRow{UserGroup: g, Current: current != nil && current.ID == g.ID})
	}

	if output == cmdutil.OutputJSON {
		return cmdutil.PrintJSON(cmd.OutOrStdout(), rows)
	}

	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "You are not a member of any user group in this project.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "\tID\tNAME\tDESCRIPTION")
	fmt.Fprintln(w, "\t--\t----\t-----------")
	for _, r := range rows {
		marker := ""
		if r.Current {
			marker = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", marker, r.ID, r.Name, r.Description)
	}
	w.Flush()

	fmt.Fprintf(cmd.OutOrStdout(), "\nAdmin: %t\n", groups.IsAdmin(all, mine))
	return nil
}
