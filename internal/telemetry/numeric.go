// Package telemetry holds the reading-level logic of the browser: numeric
// classification, date-range filtering, client-side bucketing, chart series
// conversion and the server aggregation pipeline.
package telemetry

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/xbocquet/twcatele/internal/record"
)

// ValuePatterns are the key patterns that locate a reading's value, in
// priority order.
var ValuePatterns = []string{"value", "val", "reading"}

// sampleLimit caps how many readings IsNumeric inspects.
const sampleLimit = 10

var numericPrefix = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)`)

// ReadingValue returns the first non-nil value matched by ValuePatterns.
func ReadingValue(r record.Record) (any, bool) {
	for _, p := range ValuePatterns {
		v, ok := record.FindFirst(r, p)
		if ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// ToNumber coerces a reading value to a finite float.
//
// Booleans count as 1 and 0. Strings are parsed leniently: leading
// whitespace is skipped and the longest numeric prefix is used, so "21.5 C"
// yields 21.5.
func ToNumber(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case bool:
		if t {
			f = 1
		}
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, ok := parseFloatPrefix(t)
		if !ok {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseFloatPrefix(s string) (float64, bool) {
	m := numericPrefix.FindString(strings.TrimLeft(s, " \t\n\r\v\f"))
	if m == "" {
		return 0, false
	}
	if strings.HasSuffix(m, "Infinity") {
		return math.Inf(1), true
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// NumericValue resolves and coerces a reading's value in one step.
func NumericValue(r record.Record) (float64, bool) {
	v, ok := ReadingValue(r)
	if !ok {
		return 0, false
	}
	return ToNumber(v)
}

// IsNumeric reports whether a reading set should be treated as numeric.
//
// The first min(n, 10) readings are sampled; the set is numeric when at
// least half of the sample coerces to a finite number. An empty set is not
// numeric.
func IsNumeric(readings []record.Record) bool {
	if len(readings) == 0 {
		return false
	}
	sample := min(len(readings), sampleLimit)
	count := 0
	for _, r := range readings[:sample] {
		if _, ok := NumericValue(r); ok {
			count++
		}
	}
	return float64(count) >= float64(sample)*0.5
}
