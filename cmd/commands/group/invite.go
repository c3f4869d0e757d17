package group

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/xbocquet/twcatele/internal/auditlog"
	"github.com/xbocquet/twcatele/internal/cmdutil"
	"github.com/xbocquet/twcatele/internal/services/groups"
	"github.com/xbocquet/twcatele/internal/tui"

	"golang.org/x/term"

	"github.com/spf13/cobra"
)

func InviteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invite",
		Short: "Invite users to one or more user groups",
		Long: `Invite users by email to one or more user groups of the project.

Addresses are trimmed and lower-cased; an invalid or repeated address
stops the command before anything is sent. Each group receives every
address, one group after the other, and the pending invitations of each
group are listed afterwards.

Run in a terminal without --group or --email, a form asks for the missing
groups and addresses; the current group is preselected.

Examples:
  twcatele group invite
  twcatele group invite --group <id> --email ada@example.com --email bob@example.com`,
		Args:         cobra.NoArgs,
		RunE:         runInvite,
		SilenceUsage: true,
	}

	cmd.Flags().StringArray("group", nil, "User group ID (repeatable)")
	cmd.Flags().StringArray("email", nil, "Email address to invite (repeatable)")

	return cmd
}

func runInvite(cmd *cobra.Command, args []string) error {
	groupIDs, _ := cmd.Flags().GetStringArray("group")
	addresses, _ := cmd.Flags().GetStringArray("email")

	interactive := len(groupIDs) == 0 || len(addresses) == 0
	if interactive && !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("--group and --email are required when not running in a terminal")
	}

	emails, err := groups.NewEmailList(addresses...)
	if err != nil {
		return fmt.Errorf("%w: %s", err, lastTried(addresses, emails.Len()))
	}

	gs, err := connect(cmd)
	if err != nil {
		return err
	}
	defer gs.Close()

	if interactive {
		sel, err := tui.InviteForm(gs.Groups, groupIDs, emails.All())
		if err != nil {
			if errors.Is(err, tui.ErrAborted) {
				fmt.Fprintln(cmd.ErrOrStderr(), "No invitations sent.")
				return nil
			}
			return cmdutil.AuthHint(err)
		}
		groupIDs, emails = sel.GroupIDs, sel.Emails
	}

	ctx := cmdutil.Context(cmd)
	inviter, err := gs.Clients.Platform.CurrentUser(ctx)
	if err != nil {
		slog.Debug("inviter unknown", "error", err)
		inviter = nil
	}
	base := gs.Config.Endpoints().BaseRoot
	params := groups.BuildInviteParams(base, base, gs.Groups.Project(), inviter)

	result, err := gs.Groups.SendInvites(ctx, groupIDs, emails, params)
	if err != nil && (result == nil || errors.Is(err, groups.ErrNothingToSend)) {
		return cmdutil.AuthHint(err)
	}

	cmdutil.Annotate(cmd, auditlog.Metadata{ResourceType: "usergroup", ResourceID: groupIDs[0]})
	fmt.Fprintf(cmd.OutOrStdout(), "Sent %d invitation(s) to %d user group(s).\n", result.Sent, result.Groups)
	for _, id := range groupIDs {
		inv, ok := result.Invites[id]
		if !ok {
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nGroup %s:\n", id)
		printInvites(cmd, inv.Pending, inv.Expired)
	}
	return err
}

// lastTried names the address NewEmailList stopped at.
func lastTried(addresses []string, accepted int) string {
	if accepted < len(addresses) {
		return fmt.Sprintf("%q", addresses[accepted])
	}
	return "(none)"
}
