package core

import (
	"testing"
)

func TestDetectIOCType(t *testing.T) {
	tests := []struct {
		value    string
		expected IOCType
	}{
		{"192.168.1.1", IOCTypeIP},
		{"10.0.0.255", IOCTypeIP},
		{"example.com", IOCTypeDomain},
		{"sub.example.org", IOCTypeDomain},
		{"http://evil.example.com/payload", IOCTypeURL},
		{"https://example.com", IOCTypeURL},
		{"d41d8cd98f00b204e9800998ecf8427e", IOCTypeHashMD5},
		{"da39a3ee5e6b4b0d3255bfef95601890afd80709", IOCTypeHashSHA1},
		{"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", IOCTypeHashSHA256},
		{"attacker@evil.com", IOCTypeEmail},
		{"not an ioc at all", IOCTypeUnknown},
		{"", IOCTypeUnknown},
	}

	for _, tc := range tests {
		t.Run(tc.value, func(t *testing.T) {
			if got := DetectIOCType(tc.value); got != tc.expected {
				t.Errorf("DetectIOCType(%q) = %s, want %s", tc.value, got, tc.expected)
			}
		})
	}
}

func TestDetectIOCType_EmailBeforeDomain(t *testing.T) {
	// An email would also match the domain pattern on its host part if the
	// order were wrong; the email pattern must win.
	if got := DetectIOCType("user@example.com"); got != IOCTypeEmail {
		t.Errorf("Expected email, got %s", got)
	}
}

func TestIOCType_IsHash(t *testing.T) {
	tests := []struct {
		iocType IOCType
		want    bool
	}{
		{IOCTypeHashMD5, true},
		{IOCTypeHashSHA1, true},
		{IOCTypeHashSHA256, true},
		{IOCTypeIP, false},
		{IOCTypeDomain, false},
		{IOCTypeUnknown, false},
	}

	for _, tc := range tests {
		if got := tc.iocType.IsHash(); got != tc.want {
			t.Errorf("IOCType(%s).IsHash() = %v, want %v", tc.iocType, got, tc.want)
		}
	}
}
