package item

import (
	"fmt"
	"text/tabwriter"

	"github.com/xbocquet/twcatele/internal/auditlog"
	"github.com/xbocquet/twcatele/internal/cmdutil"
	"github.com/xbocquet/twcatele/internal/platform/domain"
	"github.com/xbocquet/twcatele/internal/record"
	"github.com/xbocquet/twcatele/internal/telemetry"

	"github.com/spf13/cobra"
)

// ShowCommand returns a cobra.Command that displays the properties of one item.
func ShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <item-id>",
		Short: "Show the properties of an item",
		Long: `Show the properties of a single collection item. Internal metadata fields
are hidden in table output; -o json prints the item as stored.

Examples:
  twcatele item show --collection <id> <item-id>
  twcatele item show --collection <id> <item-id> -o json`,
		Args:         cobra.ExactArgs(1),
		RunE:         runShow,
		SilenceUsage: true,
	}

	cmd.Flags().Bool("telemetry", false, "Treat the item as a telemetry item")
	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	if err := cmdutil.CheckOutput(output, cmdutil.OutputTable, cmdutil.OutputJSON); err != nil {
		return err
	}

	sess, err := cmdutil.Connect()
	if err != nil {
		return err
	}
	defer sess.Close()

	project, err := sess.Project(cmd)
	if err != nil {
		return err
	}

	ctx := cmdutil.Context(cmd)
	collectionID, _ := cmd.Flags().GetString("collection")
	items, err := sess.Catalog.Items(ctx, *project, collectionID)
	if err != nil {
		return cmdutil.LoadFailed("items", err)
	}

	var item record.Record
	for _, it := range items {
		if it.ID() == args[0] {
			item = it
			break
		}
	}
	if item == nil {
		return fmt.Errorf("item %q: %w", args[0], domain.ErrNotFound)
	}

	isTelemetry := isTelemetryCollection(ctx, cmd, sess, *project, collectionID)
	name := record.DisplayName(item, isTelemetry)
	cmdutil.Annotate(cmd, auditlog.Metadata{ResourceType: "item", ResourceID: item.ID(), ResourceName: name})

	if output == cmdutil.OutputJSON {
		return cmdutil.PrintJSON(cmd.OutOrStdout(), item)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  ID:\t%s\n", item.ID())
	fmt.Fprintf(w, "  Name:\t%s\n", name)
	if isTelemetry {
		if unit := telemetry.ItemUnit(item); unit != "" {
			fmt.Fprintf(w, "  Unit:\t%s\n", unit)
		}
	}
	props := record.FilteredProperties(item)
	if len(props) > 0 {
		fmt.Fprintln(w, "  Properties:\t")
		for _, pair := range props {
			fmt.Fprintf(w, "    %s:\t%s\n", pair.Key, record.Stringify(pair.Value))
		}
	}
	return w.Flush()
}
