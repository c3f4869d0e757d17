package auditlog

import (
	"slices"
	"strings"
)

const redacted = "<redacted>"

// secretFlags take a value that must not reach the audit log: session
// tokens and invitee addresses.
var secretFlags = []string{"--token", "--influx-token", "--email"}

func isSecretFlag(name string) bool {
	return slices.Contains(secretFlags, name)
}

// SanitizeArgs redacts the values of secret flags, both "--flag value"
// and "--flag=value".
func SanitizeArgs(args []string) []string {
	out := make([]string, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		out[i] = arg
		if name, _, inline := strings.Cut(arg, "="); inline {
			if isSecretFlag(name) {
				out[i] = name + "=" + redacted
			}
			continue
		}
		if !isSecretFlag(arg) {
			continue
		}
		if i+1 < len(args) {
			i++
			out[i] = redacted
		} else {
			out = append(out, redacted)
		}
	}
	return out
}

// JoinArgs renders sanitized args for the args column.
func JoinArgs(args []string) string {
	return strings.Join(args, " ")
}
