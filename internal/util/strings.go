package util

import "strings"

// NormalizeKey turns a user-typed key into its lookup form: trimmed,
// lower-cased, with underscores read as dashes ("INFLUX_URL" -> "influx-url").
func NormalizeKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
}
