package group

import (
	"fmt"
	"text/tabwriter"

	"github.com/xbocquet/twcatele/internal/cmdutil"
	"github.com/xbocquet/twcatele/internal/platform/domain"
	"github.com/xbocquet/twcatele/internal/tui/styles"

	"github.com/spf13/cobra"
)

func UsersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "users <group-id>",
		Short:        "List the members of a user group",
		Args:         cobra.ExactArgs(1),
		RunE:         runUsers,
		SilenceUsage: true,
	}
	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")
	return cmd
}

func runUsers(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	if err := cmdutil.CheckOutput(output, cmdutil.OutputTable, cmdutil.OutputJSON); err != nil {
		return err
	}

	gs, err := connect(cmd)
	if err != nil {
		return err
	}
	defer gs.Close()

	users, err := gs.Groups.Users(cmdutil.Context(cmd), args[0])
	if err != nil {
		return cmdutil.LoadFailed("users", err)
	}

	if output == cmdutil.OutputJSON {
		if users == nil {
			users = []domain.User{}
		}
		return cmdutil.PrintJSON(cmd.OutOrStdout(), users)
	}
	if len(users) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No users found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tEMAIL")
	fmt.Fprintln(w, "----\t-----")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\n", u.DisplayName(), u.Email)
	}
	return w.Flush()
}

func InvitesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "invites <group-id>",
		Short:        "List the pending and expired invitations of a user group",
		Args:         cobra.ExactArgs(1),
		RunE:         runInvites,
		SilenceUsage: true,
	}
	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")
	return cmd
}

func runInvites(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	if err := cmdutil.CheckOutput(output, cmdutil.OutputTable, cmdutil.OutputJSON); err != nil {
		return err
	}

	gs, err := connect(cmd)
	if err != nil {
		return err
	}
	defer gs.Close()

	invites, err := gs.Groups.Invites(cmdutil.Context(cmd), args[0])
	if err != nil {
		return cmdutil.LoadFailed("invites", err)
	}

	if output == cmdutil.OutputJSON {
		return cmdutil.PrintJSON(cmd.OutOrStdout(), invites)
	}
	printInvites(cmd, invites.Pending, invites.Expired)
	return nil
}

func printInvites(cmd *cobra.Command, pending, expired []domain.Invite) {
	if len(pending)+len(expired) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No invitations.")
		return
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "EMAIL\tSTATUS")
	fmt.Fprintln(w, "-----\t------")
	for _, inv := range append(append([]domain.Invite{}, pending...), expired...) {
		fmt.Fprintf(w, "%s\t%s\n", inv.Email, styles.StatusIndicator(inv.Status))
	}
	w.Flush()
}
