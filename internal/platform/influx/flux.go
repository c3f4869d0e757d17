package influx

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xbocquet/twcatele/internal/record"
	"github.com/xbocquet/twcatele/internal/telemetry"
)

// filter is the subset of a platform match document Flux can express.
type filter struct {
	source string
	start  *time.Time
	stop   *time.Time
	field  string
}

// filterFromMatch reads _tsMetadata._sourceId and the _ts bounds of a
// $match document.
func filterFromMatch(match record.Record) filter {
	var f filter
	if v, ok := match.Get("_tsMetadata._sourceId"); ok {
		f.source = record.Stringify(v)
	}
	if v, ok := match.Get("_ts"); ok {
		if bounds, ok := v.(record.Record); ok {
			if t, ok := telemetry.ParseTimestamp(bounds.String("$gte")); ok {
				f.start = &t
			}
			if t, ok := telemetry.ParseTimestamp(bounds.String("$lte")); ok {
				f.stop = &t
			}
		}
	}
	return f
}

// rangeClause renders range(). Stop is exclusive in Flux, so the inclusive
// upper bound moves forward by one millisecond.
func (f filter) rangeClause() string {
	start := "0"
	if f.start != nil {
		start = f.start.UTC().Format(time.RFC3339Nano)
	}
	if f.stop == nil {
		return fmt.Sprintf("|> range(start: %s)", start)
	}
	stop := f.stop.Add(time.Millisecond).UTC().Format(time.RFC3339Nano)
	return fmt.Sprintf("|> range(start: %s, stop: %s)", start, stop)
}

func (f filter) predicates(measurement string) []string {
	preds := []string{fmt.Sprintf("|> filter(fn: (r) => r._measurement == %s)", strconv.Quote(measurement))}
	if f.source != "" {
		preds = append(preds, fmt.Sprintf("|> filter(fn: (r) => r.%s == %s)", SourceTag, strconv.Quote(f.source)))
	}
	if f.field != "" {
		preds = append(preds, fmt.Sprintf("|> filter(fn: (r) => r._field == %s)", strconv.Quote(f.field)))
	}
	return preds
}

func readingsFlux(bucket, measurement string, f filter, limit int) string {
	lines := []string{
		fmt.Sprintf("from(bucket: %s)", strconv.Quote(bucket)),
		f.rangeClause(),
	}
	lines = append(lines, f.predicates(measurement)...)
	lines = append(lines,
		`|> group()`,
		`|> sort(columns: ["_time"], desc: true)`,
		fmt.Sprintf("|> limit(n: %d)", limit),
	)
	return strings.Join(lines, "\n  ")
}

// windowEvery returns aggregateWindow's every and offset for a period.
// Weekly windows are shifted from the epoch Thursday back to Sunday.
func windowEvery(p telemetry.Period) (every, offset string) {
	switch p {
	case telemetry.Period3Hours:
		return "3h", "0s"
	case telemetry.PeriodDay:
		return "1d", "0s"
	case telemetry.PeriodWeek:
		return "1w", "-4d"
	case telemetry.PeriodMonth:
		return "1mo", "0s"
	}
	return "1h", "0s"
}

var aggregateYields = []struct {
	name string
	fn   string
}{
	{"avg", "mean"},
	{"min", "min"},
	{"max", "max"},
	{"count", "count"},
}

func aggregateFlux(bucket, measurement string, f filter, p telemetry.Period) string {
	base := []string{
		fmt.Sprintf("from(bucket: %s)", strconv.Quote(bucket)),
		f.rangeClause(),
	}
	base = append(base, f.predicates(measurement)...)
	base = append(base, "|> group()")

	every, offset := windowEvery(p)
	var b strings.Builder
	b.WriteString("data = ")
	b.WriteString(strings.Join(base, "\n  "))
	b.WriteString("\n")
	for _, y := range aggregateYields {
		fmt.Fprintf(&b, "\ndata\n  |> aggregateWindow(every: %s, offset: %s, fn: %s, createEmpty: false, timeSrc: \"_start\")\n  |> yield(name: %q)\n",
			every, offset, y.fn, y.name)
	}
	return b.String()
}
