package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeLogValue(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"plain value", "192.168.1.1", "192.168.1.1"},
		{"newline becomes space", "evil.com\nINJECTED LOG LINE", "evil.com INJECTED LOG LINE"},
		{"carriage return and tab", "a\r\tb", "a  b"},
		{"control characters dropped", "a\x00\x1bb", "ab"},
		{"unicode preserved", "dömäin.example", "dömäin.example"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, SanitizeLogValue(tc.input))
		})
	}
}

func TestSanitizeLogValue_Truncation(t *testing.T) {
	long := strings.Repeat("a", MaxLogValueLength+50)
	out := SanitizeLogValue(long)
	assert.True(t, strings.HasSuffix(out, "... [truncated]"))
	assert.Len(t, out, MaxLogValueLength+len("... [truncated]"))
}
