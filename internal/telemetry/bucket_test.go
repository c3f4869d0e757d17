package telemetry

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xbocquet/twcatele/internal/record"
)

func f(v float64) *float64 { return &v }

func TestAggregate_Hourly(t *testing.T) {
	readings := []record.Record{
		record.New("_ts", "2024-03-05T14:05:00Z", "value", 10.0),
		record.New("_ts", "2024-03-05T14:45:00Z", "value", "20"),
		record.New("_ts", "2024-03-05T14:50:00Z", "value", "N/A"),
		record.New("_ts", "2024-03-05T15:10:00Z", "value", 5.0),
		record.New("value", 99.0),
	}

	got := Aggregate(readings, PeriodHour)
	want := []Bucket{
		{Timestamp: "2024-03-05T15:00:00.000Z", Avg: f(5), Min: f(5), Max: f(5), Count: 1},
		{Timestamp: "2024-03-05T14:00:00.000Z", Avg: f(15), Min: f(10), Max: f(20), Count: 3},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Aggregate mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregate_NonNumericBucket(t *testing.T) {
	readings := []record.Record{
		record.New("_ts", "2024-03-05T14:05:00Z", "value", "open"),
	}
	got := Aggregate(readings, PeriodDay)
	want := []Bucket{{Timestamp: "2024-03-05T00:00:00.000Z", Count: 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Aggregate mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregate_Empty(t *testing.T) {
	if got := Aggregate(nil, PeriodDay); len(got) != 0 {
		t.Errorf("Aggregate(nil) = %v, want empty", got)
	}
}

func TestBucketRecord_RoundTrip(t *testing.T) {
	b := Bucket{Timestamp: "2024-03-05T00:00:00.000Z", Avg: f(1.5), Min: f(1), Max: f(2), Count: 2}
	if diff := cmp.Diff(b, BucketFromRecord(b.Record())); diff != "" {
		t.Errorf("bucket mismatch (-want +got):\n%s", diff)
	}

	server := record.New("_ts", "2024-03-05T00:00:00.000Z", "avg", nil, "min", "3", "count", 4.0)
	got := BucketFromRecord(server)
	want := Bucket{Timestamp: "2024-03-05T00:00:00.000Z", Min: f(3), Count: 4}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BucketFromRecord mismatch (-want +got):\n%s", diff)
	}
}
