package item

import (
	"fmt"
	"text/tabwriter"

	"github.com/xbocquet/twcatele/internal/cmdutil"
	"github.com/xbocquet/twcatele/internal/itemsort"
	"github.com/xbocquet/twcatele/internal/record"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"
)

// cellWidth bounds table cells so wide free-text fields do not wrap.
const cellWidth = 40

func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the items of a collection",
		Long: `List the items of a collection, one page at a time.

Columns are filled from the first property whose key contains the column
name, case-insensitively: name, equip and desc skip internal metadata
fields, kind and unit match any field. Telemetry items without a
name are named after their description.

Examples:
  twcatele item list --collection <id>
  twcatele item list --collection <id> --sort name --desc
  twcatele item list --collection <id> --page 2 --page-size 25
  twcatele item list --collection <id> -o json`,
		Args:         cobra.NoArgs,
		RunE:         runList,
		SilenceUsage: true,
	}

	cmd.Flags().String("sort", "", "Sort column: name, equip, desc, kind or unit")
	cmd.Flags().Bool("desc", false, "Sort descending")
	cmd.Flags().Int("page", 1, "Page number (1-based)")
	cmd.Flags().Int("page-size", itemsort.DefaultPageSize, "Rows per page: 5, 10, 15, 25 or 50")
	cmd.Flags().Bool("telemetry", false, "Treat items as telemetry items (detected from the collection class otherwise)")
	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	if err := cmdutil.CheckOutput(output, cmdutil.OutputTable, cmdutil.OutputJSON); err != nil {
		return err
	}

	state, err := tableState(cmd)
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

	ctx := cmdutil.Context(cmd)
	collectionID, _ := cmd.Flags().GetString("collection")
	items, err := sess.Catalog.Items(ctx, *project, collectionID)
	if err != nil {
		return cmdutil.LoadFailed("items", err)
	}
	isTelemetry := isTelemetryCollection(ctx, cmd, sess, *project, collectionID)

	page, _ := cmd.Flags().GetInt("page")
	state = state.GoToPage(page, len(items))
	rows := state.Apply(items, isTelemetry)

	if output == cmdutil.OutputJSON {
		return cmdutil.PrintJSON(cmd.OutOrStdout(), rows)
	}

	if len(items) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No items found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprint(w, "ID")
	for _, col := range itemsort.Columns {
		fmt.Fprintf(w, "\t%s", header(col, state))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "--\t----\t-----\t----\t----\t----")
	for _, it := range rows {
		fmt.Fprint(w, it.ID())
		for _, col := range itemsort.Columns {
			fmt.Fprintf(w, "\t%s", cell(itemsort.Value(it, col, isTelemetry)))
		}
		fmt.Fprintln(w)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nPage %d of %d (%d items, %d per page)\n",
		state.Page(), itemsort.PageCount(len(items), state.PageSize), len(items), state.PageSize)
	return nil
}

// tableState builds the sort and paging state from the flags.
func tableState(cmd *cobra.Command) (itemsort.State, error) {
	state := itemsort.NewState()

	size, _ := cmd.Flags().GetInt("page-size")
	state, err := state.SetPageSize(size)
	if err != nil {
		return state, err
	}

	sortFlag, _ := cmd.Flags().GetString("sort")
	if sortFlag == "" {
		return state, nil
	}
	col, err := itemsort.ParseColumn(sortFlag)
	if err != nil {
		return state, err
	}
	state = state.Click(col)
	if desc, _ := cmd.Flags().GetBool("desc"); desc {
		state = state.Click(col)
	}
	return state, nil
}

func header(col itemsort.Column, state itemsort.State) string {
	label := map[itemsort.Column]string{
		itemsort.ColumnName:  "NAME",
		itemsort.ColumnEquip: "EQUIP",
		itemsort.ColumnDesc:  "DESC",
		itemsort.ColumnKind:  "KIND",
		itemsort.ColumnUnit:  "UNIT",
	}[col]
	if state.Column == col {
		return label + " " + state.Indicator(col)
	}
	return label
}

func cell(v any) string {
	s := record.Stringify(v)
	if s == "" {
		return "-"
	}
	return ansi.Truncate(s, cellWidth, "…")
}
