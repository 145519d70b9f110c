// Package util holds small shared helpers.
package util

import "strings"

// MaxLogValueLength bounds attacker-controlled strings in log output.
const MaxLogValueLength = 256

// SanitizeLogValue makes a caller-supplied string safe to log. Indicator
// values and descriptions are attacker-controlled, so newlines and other
// control characters are stripped to prevent log injection, and the value is
// truncated to a sane length.
func SanitizeLogValue(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			b.WriteByte(' ')
		case r < 0x20 || r == 0x7f:
			// drop other control characters
		default:
			b.WriteRune(r)
		}
	}

	out := b.String()
	if len(out) > MaxLogValueLength {
		out = out[:MaxLogValueLength] + "... [truncated]"
	}
	return out
}
