package telemetry

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/xbocquet/twcatele/internal/auditlog"
	"github.com/xbocquet/twcatele/internal/cmdutil"
	"github.com/xbocquet/twcatele/internal/displaystate"
	"github.com/xbocquet/twcatele/internal/platform/domain"
	"github.com/xbocquet/twcatele/internal/record"
	"github.com/xbocquet/twcatele/internal/services/readings"
	"github.com/xbocquet/twcatele/internal/telemetry"
	"github.com/xbocquet/twcatele/internal/tui/components"

	"golang.org/x/term"

	"github.com/spf13/cobra"
)

// ReadingsCommand returns the "telemetry readings" command.
func ReadingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "readings",
		Short: "Show readings of telemetry items",
		Long: `Show the readings of telemetry items.

Without a date range the 10 newest readings of each item are fetched; with
--from and --to (YYYY-MM-DD, optional --from-time/--to-time HH:MM in local
time) up to 1000 readings inside the range are fetched.

--aggregate buckets the readings by hour, 3hours, day, week or month. The
buckets are computed locally from the fetched readings unless --server is
given, in which case the backend aggregates every reading in range.

Items are fetched concurrently; a failing item does not stop the others.

Examples:
  twcatele telemetry readings --collection <id> --item <id>
  twcatele telemetry readings --collection <id> --item <a> --item <b> -o chart
  twcatele telemetry readings --collection <id> --item <id> \
      --from 2024-03-01 --to 2024-03-31 --aggregate day --server`,
		Args:         cobra.NoArgs,
		RunE:         runReadings,
		SilenceUsage: true,
	}

	cmd.Flags().String("project", "", "Project ID (defaults to current-project)")
	cmd.Flags().String("collection", "", "Telemetry collection ID (required)")
	cmd.Flags().StringArray("item", nil, "Telemetry item ID (repeatable, required)")
	cmd.Flags().String("from", "", "Range start date (YYYY-MM-DD)")
	cmd.Flags().String("from-time", "", "Range start time (HH:MM, default 00:00)")
	cmd.Flags().String("to", "", "Range end date (YYYY-MM-DD)")
	cmd.Flags().String("to-time", "", "Range end time (HH:MM, default 23:59)")
	cmd.Flags().String("aggregate", "", "Bucket period: hour, 3hours, day, week or month")
	cmd.Flags().Bool("server", false, "Let the backend compute the buckets (requires --aggregate)")
	cmd.Flags().StringP("output", "o", "table", "Output format: table, json or chart")
	cmd.MarkFlagRequired("collection")
	cmd.MarkFlagRequired("item")

	return cmd
}

// itemResult is the JSON shape of one item's readings.
type itemResult struct {
	ID    string             `json:"id"`
	Name  string             `json:"name"`
	Unit  string             `json:"unit,omitempty"`
	Entry displaystate.Entry `json:"state"`
}

func runReadings(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	if err := cmdutil.CheckOutput(output, cmdutil.OutputTable, cmdutil.OutputJSON, cmdutil.OutputChart); err != nil {
		return err
	}

	rng, err := dateRange(cmd)
	if err != nil {
		return err
	}

	var period telemetry.Period
	aggregate, _ := cmd.Flags().GetString("aggregate")
	server, _ := cmd.Flags().GetBool("server")
	if aggregate != "" {
		if period, err = telemetry.ParsePeriod(aggregate); err != nil {
			return err
		}
	} else if server {
		return fmt.Errorf("--server requires --aggregate")
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
	all, err := sess.Catalog.Items(ctx, *project, collectionID)
	if err != nil {
		return cmdutil.LoadFailed("items", err)
	}

	itemIDs, _ := cmd.Flags().GetStringArray("item")
	items, err := pickItems(all, itemIDs)
	if err != nil {
		return err
	}
	if len(items) == 1 {
		cmdutil.Annotate(cmd, auditlog.Metadata{ResourceType: "item", ResourceID: items[0].ID(), ResourceName: record.DisplayName(items[0], true)})
	}

	svc := readings.New(sess.Clients.Readings, *project, nil)
	switch {
	case aggregate != "" && server:
		for _, it := range items {
			svc.AggregateServer(ctx, collectionID, it, period, rng)
		}
	default:
		// Per-item failures are kept in each entry and reported below.
		_ = svc.LoadMany(ctx, collectionID, items, rng)
		if aggregate != "" {
			for _, it := range items {
				if entry, _ := svc.State().Get(it.ID()); entry.Error == "" {
					svc.AggregateClient(it.ID(), period)
				}
			}
		}
	}

	results := make([]itemResult, 0, len(items))
	failed := 0
	for _, it := range items {
		entry, _ := svc.State().Get(it.ID())
		if entry.Error != "" {
			failed++
		}
		results = append(results, itemResult{
			ID:    it.ID(),
			Name:  record.DisplayName(it, true),
			Unit:  telemetry.ItemUnit(it),
			Entry: entry,
		})
	}

	switch output {
	case cmdutil.OutputJSON:
		if err := cmdutil.PrintJSON(cmd.OutOrStdout(), results); err != nil {
			return err
		}
	default:
		for i, res := range results {
			if i > 0 {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			printResult(cmd, res, output == cmdutil.OutputChart)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d items failed to load", failed, len(results))
	}
	return nil
}

// dateRange reads the range flags. Both dates or neither must be given.
func dateRange(cmd *cobra.Command) (*telemetry.DateRange, error) {
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	fromTime, _ := cmd.Flags().GetString("from-time")
	toTime, _ := cmd.Flags().GetString("to-time")

	if from == "" && to == "" {
		if fromTime != "" || toTime != "" {
			return nil, fmt.Errorf("--from-time and --to-time require --from and --to")
		}
		return nil, nil
	}
	rng := &telemetry.DateRange{StartDate: from, StartTime: fromTime, EndDate: to, EndTime: toTime}
	start, end, err := rng.Bounds(nil)
	if err != nil {
		return nil, fmt.Errorf("invalid date range: %w", err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("invalid date range: end is before start")
	}
	return rng, nil
}

func pickItems(all []record.Record, ids []string) ([]record.Record, error) {
	byID := make(map[string]record.Record, len(all))
	for _, it := range all {
		byID[it.ID()] = it
	}
	var picked []record.Record
	seen := map[string]bool{}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if seen[id] {
			continue
		}
		seen[id] = true
		it, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("item %q: %w", id, domain.ErrNotFound)
		}
		picked = append(picked, it)
	}
	return picked, nil
}

func printResult(cmd *cobra.Command, res itemResult, chart bool) {
	out := cmd.OutOrStdout()
	title := res.Name
	if res.Unit != "" {
		title += " [" + res.Unit + "]"
	}
	fmt.Fprintf(out, "%s (%s)\n", title, res.ID)

	entry := res.Entry
	if entry.Error != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s: %s\n", res.Name, entry.Error)
		return
	}
	if len(entry.Readings) == 0 {
		fmt.Fprintln(out, "No readings found.")
		return
	}

	if chart && (entry.Aggregated || entry.IsNumeric) {
		chartTitle := telemetry.RawChartTitle
		if entry.Aggregated {
			chartTitle = telemetry.ChartTitle(res.Name)
		}
		fmt.Fprintln(out, components.TelemetryChart(
			chartTitle,
			telemetry.YAxisTitle(res.Unit),
			telemetry.ChartSeries(entry.Readings, entry.Aggregated),
			chartWidth(),
			components.DefaultChartHeight,
		))
		return
	}
	if chart {
		fmt.Fprintln(cmd.ErrOrStderr(), "Readings are not numeric; showing a table instead.")
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	if entry.Aggregated {
		fmt.Fprintf(w, "BUCKET (%s)\tAVG\tMIN\tMAX\tCOUNT\n", entry.Period.Label())
		fmt.Fprintln(w, "------\t---\t---\t---\t-----")
		for _, r := range entry.Readings {
			b := telemetry.BucketFromRecord(r)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", formatTime(r), number(b.Avg), number(b.Min), number(b.Max), b.Count)
		}
	} else {
		fmt.Fprintln(w, "TIME\tVALUE")
		fmt.Fprintln(w, "----\t-----")
		for _, r := range entry.Readings {
			v, _ := telemetry.ReadingValue(r)
			fmt.Fprintf(w, "%s\t%s\n", formatTime(r), orDash(record.Stringify(v)))
		}
	}
	w.Flush()

	if entry.Aggregated {
		fmt.Fprintf(out, "%d buckets, computed by the %s\n", len(entry.Readings), entry.AggregationMethod)
	}
}

func formatTime(r record.Record) string {
	if ts, ok := telemetry.ReadingTime(r); ok {
		return ts.Local().Format("2006-01-02 15:04:05")
	}
	return orDash(r.String("_ts"))
}

// number renders a bucket statistic with two decimals.
func number(p *float64) string {
	if p == nil {
		return "-"
	}
	return strconv.FormatFloat(*p, 'f', 2, 64)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func chartWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 {
		return min(w, 160)
	}
	return 80
}
