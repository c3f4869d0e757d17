package group

import (
	"fmt"

	"github.com/xbocquet/twcatele/internal/auditlog"
	"github.com/xbocquet/twcatele/internal/cmdutil"

	"github.com/spf13/cobra"
)

func UseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "use <group-id>",
		Short: "Select your current user group in the project",
		Long: `Select the user group you work in. You must be a member of it; the
choice is remembered per project.`,
		Args:         cobra.ExactArgs(1),
		RunE:         runUse,
		SilenceUsage: true,
	}
}

func runUse(cmd *cobra.Command, args []string) error {
	gs, err := connect(cmd)
	if err != nil {
		return err
	}
	defer gs.Close()

	mine, err := gs.Groups.MyGroups(cmdutil.Context(cmd))
	if err != nil {
		return cmdutil.LoadFailed("user groups", err)
	}
	selected, err := gs.Groups.Switch(mine, args[0])
	if err != nil {
		return err
	}

	cmdutil.Annotate(cmd, auditlog.Metadata{ResourceType: "usergroup", ResourceID: selected.ID, ResourceName: selected.Name})
	fmt.Fprintf(cmd.OutOrStdout(), "Current user group set to %q (%s)\n", selected.Name, selected.ID)
	return nil
}
