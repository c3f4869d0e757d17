package telemetry

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/xbocquet/twcatele/internal/record"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestChartSeries_RawDropsNonFinite(t *testing.T) {
	// Fetched newest first, as the table shows them.
	readings := []record.Record{
		record.New("_ts", "2024-03-05T03:00:00Z", "value", "3.5"),
		record.New("_ts", "2024-03-05T02:00:00Z", "value", "N/A"),
		record.New("_ts", "2024-03-05T01:00:00Z", "value", 1.0),
		record.New("_ts", "2024-03-05T00:00:00Z", "value", nil),
	}

	got := ChartSeries(readings, false)
	want := []Series{{
		Name: SeriesValue,
		Points: []Point{
			{Time: ts("2024-03-05T01:00:00Z"), Value: 1},
			{Time: ts("2024-03-05T03:00:00Z"), Value: 3.5},
		},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ChartSeries mismatch (-want +got):\n%s", diff)
	}
}

func TestChartSeries_RawBooleans(t *testing.T) {
	readings := []record.Record{
		record.New("_ts", "2024-03-05T01:00:00Z", "value", false),
		record.New("_ts", "2024-03-05T00:00:00Z", "value", true),
	}

	got := ChartSeries(readings, false)
	want := []Series{{
		Name: SeriesValue,
		Points: []Point{
			{Time: ts("2024-03-05T00:00:00Z"), Value: 1},
			{Time: ts("2024-03-05T01:00:00Z"), Value: 0},
		},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ChartSeries mismatch (-want +got):\n%s", diff)
	}
}

func TestChartSeries_Aggregated(t *testing.T) {
	readings := []record.Record{
		record.New("_ts", "2024-03-06T00:00:00.000Z", "avg", 2.0, "min", 1.0, "max", 3.0, "count", 2.0),
		record.New("_ts", "2024-03-05T00:00:00.000Z", "avg", 5.0, "min", nil, "max", 6.0, "count", 1.0),
	}

	got := ChartSeries(readings, true)
	want := []Series{
		{Name: SeriesAverage, Points: []Point{
			{Time: ts("2024-03-05T00:00:00Z"), Value: 5},
			{Time: ts("2024-03-06T00:00:00Z"), Value: 2},
		}},
		{Name: SeriesMin, Points: []Point{
			{Time: ts("2024-03-06T00:00:00Z"), Value: 1},
		}},
		{Name: SeriesMax, Points: []Point{
			{Time: ts("2024-03-05T00:00:00Z"), Value: 6},
			{Time: ts("2024-03-06T00:00:00Z"), Value: 3},
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ChartSeries mismatch (-want +got):\n%s", diff)
	}
}

func TestChartSeries_ClientBucketsRoundTrip(t *testing.T) {
	readings := []record.Record{
		record.New("_ts", "2024-03-05T14:10:00Z", "value", "3.5"),
		record.New("_ts", "2024-03-05T13:10:00Z", "value", "N/A"),
		record.New("_ts", "2024-03-05T12:10:00Z", "value", 1.5),
	}
	buckets := BucketRecords(Aggregate(readings, PeriodHour))
	series := ChartSeries(buckets, true)

	want := []Point{
		{Time: ts("2024-03-05T12:00:00Z"), Value: 1.5},
		{Time: ts("2024-03-05T14:00:00Z"), Value: 3.5},
	}
	if diff := cmp.Diff(want, series[0].Points); diff != "" {
		t.Errorf("average points mismatch (-want +got):\n%s", diff)
	}
}

func TestSortTime_Fallbacks(t *testing.T) {
	if got := SortTime(record.New("_id", "2024-03-05T00:00:00Z")); !got.Equal(ts("2024-03-05T00:00:00Z")) {
		t.Errorf("SortTime with _id = %s", got)
	}
	if got := SortTime(record.New("x", 1.0)); !got.Equal(time.Unix(0, 0)) {
		t.Errorf("SortTime without keys = %s, want epoch", got)
	}
}

func TestTitles(t *testing.T) {
	if got := ChartTitle("AHU-1 Supply"); got != "Aggregated Telemetry Reading for AHU-1 Supply" {
		t.Errorf("ChartTitle = %q", got)
	}
	if got := ChartTitle(""); got != "Aggregated Telemetry Readings" {
		t.Errorf("ChartTitle(\"\") = %q", got)
	}
	if got := YAxisTitle("kW"); got != "Value (kW)" {
		t.Errorf("YAxisTitle = %q", got)
	}
	if got := YAxisTitle(""); got != "Value" {
		t.Errorf("YAxisTitle(\"\") = %q", got)
	}
}
