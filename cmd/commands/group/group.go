package group

import (
	"log/slog"

	"github.com/xbocquet/twcatele/internal/cmdutil"
	"github.com/xbocquet/twcatele/internal/groupprefs"
	"github.com/xbocquet/twcatele/internal/services/groups"

	"github.com/spf13/cobra"
)

// NewCommand returns the "group" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage project user groups and invitations",
		Long: `List the user groups of the current project, pick the group you work in,
and invite users by email.`,
	}

	cmd.PersistentFlags().String("project", "", "Project ID (defaults to current-project)")

	cmd.AddCommand(ListCommand())
	cmd.AddCommand(UseCommand())
	cmd.AddCommand(UsersCommand())
	cmd.AddCommand(InvitesCommand())
	cmd.AddCommand(InviteCommand())

	return cmd
}

// groupSession bundles a platform session with the groups service of the
// selected project.
type groupSession struct {
	*cmdutil.Session
	Groups *groups.Service
	prefs  *groupprefs.SQLiteRepository
}

func (g *groupSession) Close() {
	if g.prefs != nil {
		g.prefs.Close()
	}
	g.Session.Close()
}

func connect(cmd *cobra.Command) (*groupSession, error) {
	sess, err := cmdutil.Connect()
	if err != nil {
		return nil, err
	}
	project, err := sess.Project(cmd)
	if err != nil {
		sess.Close()
		return nil, err
	}

	gs := &groupSession{Session: sess}
	prefs, err := groupprefs.Open()
	if err != nil {
		slog.Warn("group preferences unavailable", "error", err)
		gs.Groups = groups.New(sess.Clients.Platform, nil, *project)
		return gs, nil
	}
	gs.prefs = prefs
	gs.Groups = groups.New(sess.Clients.Platform, prefs, *project)
	return gs, nil
}
