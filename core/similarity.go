package core

import "strings"

// defaultSimilarity is returned when no type-specific heuristic applies.
const defaultSimilarity = 0.3

// Similarity computes a bounded similarity score in [0,1] between two
// indicators of the given type using type-specific heuristics:
//
//   - ip: 0.8 for the same /24, 0.6 for the same /16
//   - domain: 0.6 for an identical last label
//   - hashes: exact match only, 1.0 or 0.0
//
// Anything else, including malformed values, degrades to the default score
// rather than returning an error.
func Similarity(a, b string, iocType IOCType) float64 {
	switch {
	case iocType == IOCTypeIP:
		if s, ok := ipSimilarity(a, b); ok {
			return s
		}
	case iocType == IOCTypeDomain:
		if lastLabel(a) == lastLabel(b) {
			return 0.6
		}
	case iocType.IsHash():
		// Hashes never fall through to the default score.
		if a == b {
			return 1.0
		}
		return 0.0
	}
	return defaultSimilarity
}

// ipSimilarity compares dotted-quad prefixes. Values with fewer than four
// octets are treated as no-match so the caller falls back to the default.
func ipSimilarity(a, b string) (float64, bool) {
	octetsA := strings.Split(a, ".")
	octetsB := strings.Split(b, ".")
	if len(octetsA) < 4 || len(octetsB) < 4 {
		return 0, false
	}

	if octetsA[0] == octetsB[0] && octetsA[1] == octetsB[1] {
		if octetsA[2] == octetsB[2] {
			return 0.8, true // same /24
		}
		return 0.6, true // same /16
	}
	return 0, false
}

func lastLabel(domain string) string {
	labels := strings.Split(domain, ".")
	return labels[len(labels)-1]
}
