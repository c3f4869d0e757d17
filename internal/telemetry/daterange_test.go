package telemetry

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/xbocquet/twcatele/internal/record"
)

func TestDateRange_BoundsDefaults(t *testing.T) {
	rng := &DateRange{StartDate: "2024-03-01", EndDate: "2024-03-02"}
	start, end, err := rng.Bounds(time.UTC)
	if err != nil {
		t.Fatalf("Bounds failed: %v", err)
	}
	if want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC); !start.Equal(want) {
		t.Errorf("start = %s, want %s", start, want)
	}
	if want := time.Date(2024, 3, 2, 23, 59, 0, 0, time.UTC); !end.Equal(want) {
		t.Errorf("end = %s, want %s", end, want)
	}
}

func TestDateRange_Disabled(t *testing.T) {
	var nilRange *DateRange
	if nilRange.Enabled() {
		t.Error("nil range should be disabled")
	}
	if (&DateRange{StartDate: "2024-03-01"}).Enabled() {
		t.Error("range without end date should be disabled")
	}
	if FetchPageSize(nil) != 10 {
		t.Errorf("FetchPageSize(nil) = %d, want 10", FetchPageSize(nil))
	}
	if got := FetchPageSize(&DateRange{StartDate: "2024-03-01", EndDate: "2024-03-02"}); got != 1000 {
		t.Errorf("FetchPageSize(range) = %d, want 1000", got)
	}
}

func TestMatchCriteria(t *testing.T) {
	loc := time.FixedZone("UTC+1", 3600)
	rng := &DateRange{StartDate: "2024-03-01", StartTime: "08:30", EndDate: "2024-03-01", EndTime: "18:00"}

	got := MatchCriteria("src-1", rng, loc)
	want := record.New(
		"_tsMetadata._sourceId", "src-1",
		"_ts", record.New(
			"$gte", "2024-03-01T07:30:00.000Z",
			"$lte", "2024-03-01T17:00:00.000Z",
		),
	)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MatchCriteria mismatch (-want +got):\n%s", diff)
	}
}

func TestMatchCriteria_InvalidRangeOmitted(t *testing.T) {
	rng := &DateRange{StartDate: "not-a-date", EndDate: "2024-03-01"}
	got := MatchCriteria("src-1", rng, time.UTC)
	if got.Has("_ts") {
		t.Errorf("expected _ts to be omitted, got %v", got)
	}
}

func TestFilterByRange(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC)
	readings := []record.Record{
		record.New("_id", "before", "_ts", "2024-02-29T23:59:59Z"),
		record.New("_id", "start", "_ts", "2024-03-01T00:00:00.000Z"),
		record.New("_id", "mid", "_ts", "2024-03-01T12:00:00Z"),
		record.New("_id", "end", "_ts", "2024-03-01T23:59:00Z"),
		record.New("_id", "after", "_ts", "2024-03-02T00:00:00Z"),
		record.New("_id", "missing"),
		record.New("_id", "garbage", "_ts", "yesterday"),
	}

	got := FilterByRange(readings, start, end)
	var ids []string
	for _, r := range got {
		ids = append(ids, r.ID())
	}
	want := []string{"start", "mid", "end"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("FilterByRange mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterByRange_ZonelessInRangeLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	rng := &DateRange{StartDate: "2024-03-05", StartTime: "09:00", EndDate: "2024-03-05", EndTime: "11:00"}
	start, end, err := rng.Bounds(tokyo)
	if err != nil {
		t.Fatalf("Bounds: %v", err)
	}
	readings := []record.Record{
		record.New("_id", "local", "_ts", "2024-03-05T10:00:00"),
		record.New("_id", "utc", "_ts", "2024-03-05T10:00:00Z"),
	}

	got := FilterByRange(readings, start, end)
	if len(got) != 1 || got[0].ID() != "local" {
		t.Errorf("FilterByRange kept %v, want only the zone-less reading", got)
	}
}

func TestParseTimestampIn(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-05T10:00:00", time.Date(2024, 3, 5, 1, 0, 0, 0, time.UTC)},
		{"2024-03-05T10:00", time.Date(2024, 3, 5, 1, 0, 0, 0, time.UTC)},
		{"2024-03-05T10:00:00Z", time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)},
		{"2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, ok := ParseTimestampIn(tt.in, tokyo)
		if !ok || !got.Equal(tt.want) {
			t.Errorf("ParseTimestampIn(%q) = %s, %v; want %s", tt.in, got, ok, tt.want)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in     any
		want   time.Time
		wantOK bool
	}{
		{"2024-03-05T14:22:00Z", time.Date(2024, 3, 5, 14, 22, 0, 0, time.UTC), true},
		{"2024-03-05T14:22:00.123+01:00", time.Date(2024, 3, 5, 13, 22, 0, 123e6, time.UTC), true},
		{"2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{float64(1709648520000), time.Date(2024, 3, 5, 14, 22, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{nil, time.Time{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseTimestamp(tt.in)
		if ok != tt.wantOK {
			t.Errorf("ParseTimestamp(%#v) ok = %v, want %v", tt.in, ok, tt.wantOK)
			continue
		}
		if ok && !got.Equal(tt.want) {
			t.Errorf("ParseTimestamp(%#v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
