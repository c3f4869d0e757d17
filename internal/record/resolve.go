package record

import (
	"math"
	"strings"
)

// Unnamed is the display name used when no name-like field exists.
const Unnamed = "Unnamed"

// fallbackNameKeys are tried in order once pattern matching finds nothing.
var fallbackNameKeys = []string{"_name", "_shortName", "name", "Name"}

var reservedKeys = map[string]struct{}{
	"metadata":    {},
	"prototype":   {},
	"__proto__":   {},
	"constructor": {},
}

// IsReserved reports whether a key is internal and must never be listed as
// a regular field.
func IsReserved(key string) bool {
	if strings.HasPrefix(key, "_metadata") || strings.HasPrefix(key, "_prototype") {
		return true
	}
	_, ok := reservedKeys[key]
	return ok
}

func matches(key, lowerPattern string) bool {
	return strings.Contains(strings.ToLower(key), lowerPattern)
}

// FindFirst returns the value of the first key, in insertion order, whose
// lower-cased form contains the lower-cased pattern.
func FindFirst(r Record, pattern string) (any, bool) {
	p := strings.ToLower(pattern)
	for _, pair := range r {
		if matches(pair.Key, p) {
			return pair.Value, true
		}
	}
	return nil, false
}

// FindAll returns every non-reserved pair whose key contains the pattern,
// case-insensitively, in insertion order.
func FindAll(r Record, pattern string) []Pair {
	p := strings.ToLower(pattern)
	var out []Pair
	for _, pair := range r {
		if IsReserved(pair.Key) {
			continue
		}
		if matches(pair.Key, p) {
			out = append(out, pair)
		}
	}
	return out
}

// DisplayName picks a human-readable name for an item.
//
// Order: first key matching "name"; for telemetry items the first key
// matching "desc"; then _name, _shortName, name, Name; then Unnamed.
func DisplayName(r Record, isTelemetry bool) string {
	v, ok := FindFirst(r, "name")
	if (!ok || !truthy(v)) && isTelemetry {
		v, ok = FindFirst(r, "desc")
	}
	if ok && truthy(v) {
		return Stringify(v)
	}
	for _, key := range fallbackNameKeys {
		if v, ok := r.Get(key); ok && truthy(v) {
			return Stringify(v)
		}
	}
	return Unnamed
}

// FilteredProperties returns the record without reserved keys.
func FilteredProperties(r Record) Record {
	out := make(Record, 0, len(r))
	for _, pair := range r {
		if IsReserved(pair.Key) {
			continue
		}
		out = append(out, pair)
	}
	return out
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case int:
		return t != 0
	default:
		return true
	}
}
