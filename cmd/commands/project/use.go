package project

import (
	"fmt"

	"github.com/xbocquet/twcatele/internal/auditlog"
	"github.com/xbocquet/twcatele/internal/cmdutil"
	"github.com/xbocquet/twcatele/internal/config"

	"github.com/spf13/cobra"
)

func UseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "use <project-id>",
		Short: "Select the current project",
		Long: `Select the project other commands work in. The id is checked against
the projects visible to your session before it is saved.

Example:
  twcatele project use 5f1a2b3c4d5e6f7a8b9c0d1e`,
		Args:         cobra.ExactArgs(1),
		RunE:         runUse,
		SilenceUsage: true,
	}

	return cmd
}

func runUse(cmd *cobra.Command, args []string) error {
	sess, err := cmdutil.Connect()
	if err != nil {
		return err
	}
	defer sess.Close()

	project, err := sess.Catalog.Project(cmdutil.Context(cmd), args[0])
	if err != nil {
		return cmdutil.AuthHint(err)
	}

	cfg, err := config.LoadFile()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.CurrentProject = project.ID
	if err := cfg.Save(); err != nil {
		return err
	}

	cmdutil.Annotate(cmd, auditlog.Metadata{
		Project:      project.ID,
		ResourceType: "project",
		ResourceID:   project.ID,
		ResourceName: project.Name,
	})

	fmt.Fprintf(cmd.OutOrStdout(), "Current project set to %q (%s)\n", project.Name, project.ID)
	return nil
}
