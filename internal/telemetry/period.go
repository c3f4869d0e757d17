package telemetry

import (
	"fmt"
	"strings"
	"time"
)

// Period is the width of an aggregation bucket.
type Period string

const (
	PeriodHour    Period = "hour"
	Period3Hours  Period = "3hours"
	PeriodDay     Period = "day"
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	DefaultPeriod        = PeriodHour
)

// Periods lists every supported period in display order.
var Periods = []Period{PeriodHour, Period3Hours, PeriodDay, PeriodWeek, PeriodMonth}

// BucketTimeFormat is the canonical bucket label layout.
const BucketTimeFormat = "2006-01-02T15:04:05.000Z"

// ParsePeriod validates a period name. The empty string yields the default.
func ParsePeriod(s string) (Period, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultPeriod, nil
	}
	for _, p := range Periods {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown period %q (valid: hour, 3hours, day, week, month)", s)
}

// Label returns a short human-readable name.
func (p Period) Label() string {
	switch p {
	case PeriodHour:
		return "Hourly"
	case Period3Hours:
		return "Every 3 hours"
	case PeriodDay:
		return "Daily"
	case PeriodWeek:
		return "Weekly"
	case PeriodMonth:
		return "Monthly"
	}
	return string(p)
}

// Unit is the $dateTrunc unit for the period.
func (p Period) Unit() string {
	switch p {
	case PeriodDay:
		return "day"
	case PeriodWeek:
		return "week"
	case PeriodMonth:
		return "month"
	}
	return "hour"
}

// BinSize is the $dateTrunc bin size for the period.
func (p Period) BinSize() int {
	if p == Period3Hours {
		return 3
	}
	return 1
}

// DateFormat is the $dateToString format used to label buckets.
func (p Period) DateFormat() string {
	switch p {
	case PeriodDay, PeriodWeek:
		return "%Y-%m-%dT00:00:00.000Z"
	case PeriodMonth:
		return "%Y-%m-01T00:00:00.000Z"
	}
	return "%Y-%m-%dT%H:00:00.000Z"
}

// Duration approximates the bucket width; months count as 30 days.
func (p Period) Duration() time.Duration {
	switch p {
	case Period3Hours:
		return 3 * time.Hour
	case PeriodDay:
		return 24 * time.Hour
	case PeriodWeek:
		return 7 * 24 * time.Hour
	case PeriodMonth:
		return 30 * 24 * time.Hour
	}
	return time.Hour
}

// Truncate returns the UTC start of the bucket containing t.
//
// Hour bins are counted from the Unix epoch hour, weeks start on Sunday and
// months on the first day.
func (p Period) Truncate(t time.Time) time.Time {
	t = t.UTC()
	switch p {
	case PeriodDay:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case PeriodWeek:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return day.AddDate(0, 0, -int(day.Weekday()))
	case PeriodMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	bin := int64(p.BinSize())
	hours := floorDiv(t.Unix(), 3600)
	hours -= mod(hours, bin)
	return time.Unix(hours*3600, 0).UTC()
}

// BucketKey labels the bucket containing t.
func (p Period) BucketKey(t time.Time) string {
	return p.Truncate(t).Format(BucketTimeFormat)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func mod(a, b int64) int64 {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
