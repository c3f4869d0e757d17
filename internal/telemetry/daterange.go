package telemetry

import (
	"fmt"
	"strings"
	"time"

	"github.com/xbocquet/twcatele/internal/record"
)

const (
	DefaultStartTime = "00:00"
	DefaultEndTime   = "23:59"

	// isoMillis matches JavaScript's Date.toISOString output.
	isoMillis = "2006-01-02T15:04:05.000Z"
)

// DateRange is a user-entered reading window. Dates are YYYY-MM-DD and
// times HH:MM; empty times default to the whole day.
type DateRange struct {
	StartDate string `json:"start_date"`
	StartTime string `json:"start_time,omitempty"`
	EndDate   string `json:"end_date"`
	EndTime   string `json:"end_time,omitempty"`
}

// Enabled reports whether both dates are set.
func (d *DateRange) Enabled() bool {
	return d != nil && strings.TrimSpace(d.StartDate) != "" && strings.TrimSpace(d.EndDate) != ""
}

// Bounds resolves the inclusive [start, end] instants in loc.
func (d *DateRange) Bounds(loc *time.Location) (time.Time, time.Time, error) {
	if !d.Enabled() {
		return time.Time{}, time.Time{}, fmt.Errorf("date range requires a start and end date")
	}
	if loc == nil {
		loc = time.Local
	}
	start, err := parseDateTime(d.StartDate, d.StartTime, DefaultStartTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start: %w", err)
	}
	end, err := parseDateTime(d.EndDate, d.EndTime, DefaultEndTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end: %w", err)
	}
	return start, end, nil
}

func parseDateTime(date, clock, fallback string, loc *time.Location) (time.Time, error) {
	clock = strings.TrimSpace(clock)
	if clock == "" {
		clock = fallback
	}
	return time.ParseInLocation("2006-01-02T15:04", strings.TrimSpace(date)+"T"+clock, loc)
}

// MatchCriteria builds the reading filter for a telemetry source.
//
// A range that fails to parse is left out of the criteria rather than
// rejected; callers validate user input before it gets here.
func MatchCriteria(sourceID string, rng *DateRange, loc *time.Location) record.Record {
	criteria := record.Record{}
	if sourceID != "" {
		criteria = criteria.Set("_tsMetadata._sourceId", sourceID)
	}
	if rng.Enabled() {
		start, end, err := rng.Bounds(loc)
		if err == nil {
			criteria = criteria.Set("_ts", record.New(
				"$gte", FormatISO(start),
				"$lte", FormatISO(end),
			))
		}
	}
	return criteria
}

// FormatISO renders t in UTC with millisecond precision.
func FormatISO(t time.Time) string {
	return t.UTC().Format(isoMillis)
}

// ParseTimestamp interprets a reading timestamp, reading zone-less
// date-times as local time. See ParseTimestampIn.
func ParseTimestamp(v any) (time.Time, bool) {
	return ParseTimestampIn(v, time.Local)
}

// ParseTimestampIn interprets a reading timestamp. Strings in RFC 3339 and
// plain dates are accepted, as are numbers holding Unix milliseconds.
// Date-times without a zone are read in loc; plain dates are UTC midnight.
func ParseTimestampIn(v any, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return ts, true
		}
		for _, layout := range []string{"2006-01-02T15:04:05.999999999", "2006-01-02T15:04"} {
			if ts, err := time.ParseInLocation(layout, s, loc); err == nil {
				return ts, true
			}
		}
		if ts, err := time.Parse("2006-01-02", s); err == nil {
			return ts, true
		}
	case float64:
		return time.UnixMilli(int64(t)).UTC(), true
	case int64:
		return time.UnixMilli(t).UTC(), true
	}
	return time.Time{}, false
}

// ReadingTime parses a reading's _ts field.
func ReadingTime(r record.Record) (time.Time, bool) {
	return readingTimeIn(r, time.Local)
}

func readingTimeIn(r record.Record, loc *time.Location) (time.Time, bool) {
	v, ok := r.Get("_ts")
	if !ok {
		return time.Time{}, false
	}
	return ParseTimestampIn(v, loc)
}

// FilterByRange keeps readings whose _ts lies within [start, end].
// Zone-less timestamps are read in start's location. Readings with a
// missing or unparseable _ts are dropped.
func FilterByRange(readings []record.Record, start, end time.Time) []record.Record {
	out := make([]record.Record, 0, len(readings))
	for _, r := range readings {
		ts, ok := readingTimeIn(r, start.Location())
		if !ok {
			continue
		}
		if ts.Before(start) || ts.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// FetchPageSize is the number of readings requested from the platform.
func FetchPageSize(rng *DateRange) int {
	if rng.Enabled() {
		return 1000
	}
	return 10
}
