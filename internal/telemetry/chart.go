package telemetry

import (
	"sort"
	"time"

	"github.com/xbocquet/twcatele/internal/record"
)

// Series names used in charts.
const (
	SeriesAverage = "Average"
	SeriesMin     = "Min"
	SeriesMax     = "Max"
	SeriesValue   = "Value"

	RawChartTitle = "Telemetry Readings"
)

// Point is one plotted value.
type Point struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// Series is a named line of points in ascending time order.
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// SortTime is the chart ordering key: _ts, else _id, else the epoch.
func SortTime(r record.Record) time.Time {
	for _, key := range []string{"_ts", "_id"} {
		if v, ok := r.Get(key); ok {
			if ts, ok := ParseTimestamp(v); ok {
				return ts
			}
		}
	}
	return time.Unix(0, 0).UTC()
}

// SortAscending returns a copy of readings ordered oldest first.
func SortAscending(readings []record.Record) []record.Record {
	sorted := make([]record.Record, len(readings))
	copy(sorted, readings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return SortTime(sorted[i]).Before(SortTime(sorted[j]))
	})
	return sorted
}

// ChartSeries converts readings into plot series.
//
// Aggregated input yields Average, Min and Max series built from the avg,
// min and max fields with nil points dropped. Raw input yields a single
// Value series; points that do not coerce to a finite number are dropped,
// never zero-filled.
func ChartSeries(readings []record.Record, aggregated bool) []Series {
	sorted := SortAscending(readings)

	if aggregated {
		avg := Series{Name: SeriesAverage, Points: []Point{}}
		mn := Series{Name: SeriesMin, Points: []Point{}}
		mx := Series{Name: SeriesMax, Points: []Point{}}
		for _, r := range sorted {
			ts := SortTime(r)
			b := BucketFromRecord(r)
			if b.Avg != nil {
				avg.Points = append(avg.Points, Point{Time: ts, Value: *b.Avg})
			}
			if b.Min != nil {
				mn.Points = append(mn.Points, Point{Time: ts, Value: *b.Min})
			}
			if b.Max != nil {
				mx.Points = append(mx.Points, Point{Time: ts, Value: *b.Max})
			}
		}
		return []Series{avg, mn, mx}
	}

	values := Series{Name: SeriesValue, Points: []Point{}}
	for _, r := range sorted {
		v, ok := NumericValue(r)
		if !ok {
			continue
		}
		values.Points = append(values.Points, Point{Time: SortTime(r), Value: v})
	}
	return []Series{values}
}

// ChartTitle names an aggregated chart after its telemetry item.
func ChartTitle(navName string) string {
	if navName == "" {
		return "Aggregated Telemetry Readings"
	}
	return "Aggregated Telemetry Reading for " + navName
}

// YAxisTitle labels the value axis with the item's unit when known.
func YAxisTitle(unit string) string {
	if unit == "" {
		return "Value"
	}
	return "Value (" + unit + ")"
}

// ItemUnit returns the first unit-like field of a telemetry item.
func ItemUnit(item record.Record) string {
	v, ok := record.FindFirst(item, "unit")
	if !ok {
		return ""
	}
	return record.Stringify(v)
}
