package browse

import (
	"errors"
	"log/slog"
	"os"

	"github.com/xbocquet/twcatele/internal/cmdutil"
	"github.com/xbocquet/twcatele/internal/groupprefs"
	"github.com/xbocquet/twcatele/internal/tui"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewCommand returns the interactive browser command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse projects, collections, items and telemetry interactively",
		Long: `Open a full-screen browser over your projects.

Projects lead to their collections and collections to their items. Items
can be sorted and paged; telemetry items expand into their readings,
which can be charted, bucketed by hour, 3 hours, day, week or month, and
limited to a date range. Press g in a project to manage its user groups.

With --project, or when a current project is set, the browser opens on
that project's collections.`,
		Args:         cobra.NoArgs,
		RunE:         runBrowse,
		SilenceUsage: true,
	}

	cmd.Flags().String("project", "", "Project to open (default: current-project)")

	return cmd
}

func runBrowse(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("browse needs an interactive terminal")
	}

	sess, err := cmdutil.Connect()
	if err != nil {
		return err
	}
	defer sess.Close()

	projectID, err := cmdutil.ProjectID(cmd, sess.Config)
	if err != nil && !errors.Is(err, cmdutil.ErrNoProject) {
		return err
	}

	deps := tui.BrowseDeps{
		Catalog:   sess.Catalog,
		Readings:  sess.Clients.Readings,
		Passport:  sess.Clients.Platform,
		Env:       sess.Clients.Session.Env,
		ProjectID: projectID,
	}

	prefs, err := groupprefs.Open()
	if err != nil {
		slog.Warn("group preferences unavailable", "error", err)
	} else {
		defer prefs.Close()
		deps.Prefs = prefs
	}

	return tui.RunBrowse(deps)
}
