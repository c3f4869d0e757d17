package collection

import (
	"fmt"
	"text/tabwriter"

	"github.com/xbocquet/twcatele/internal/cmdutil"
	"github.com/xbocquet/twcatele/internal/itemsort"
	"github.com/xbocquet/twcatele/internal/record"
	"github.com/xbocquet/twcatele/internal/services/catalog"

	"github.com/spf13/cobra"
)

func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List collections",
		Long: `List the collections of a project. --filter narrows the list by class:
  all             every collection (default)
  namedUserItem   NamedUserCollection only
  telemetry       NamedTelemetryCollection only
  other           everything else

Examples:
  twcatele collection list
  twcatele collection list --filter telemetry
  twcatele collection list --project <id> -o json`,
		Args:         cobra.NoArgs,
		RunE:         runList,
		SilenceUsage: true,
	}

	cmd.Flags().String("filter", "all", "Collection class filter: all, namedUserItem, telemetry or other")
	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	if err := cmdutil.CheckOutput(output, cmdutil.OutputTable, cmdutil.OutputJSON); err != nil {
		return err
	}
	filterFlag, _ := cmd.Flags().GetString("filter")
	filter, err := itemsort.ParseCollectionFilter(filterFlag)
	if err != nil {
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

	collections, err := sess.Catalog.Collections(cmdutil.Context(cmd), *project)
	if err != nil {
		return cmdutil.LoadFailed("collections", err)
	}

	shown := make([]record.Record, 0, len(collections))
	for _, c := range collections {
		if filter.Allows(c.String("_itemClass")) {
			shown = append(shown, c)
		}
	}

	if output == cmdutil.OutputJSON {
		return cmdutil.PrintJSON(cmd.OutOrStdout(), shown)
	}

	if len(shown) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No collections found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCLASS")
	fmt.Fprintln(w, "--\t----\t-----")
	for _, c := range shown {
		class := c.String("_itemClass")
		if class == "" {
			class = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID(), catalog.CollectionText(c), class)
	}
	return w.Flush()
}
