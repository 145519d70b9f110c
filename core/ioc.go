package core

import (
	"regexp"
	"time"
)

// IOCType classifies an indicator of compromise.
type IOCType string

const (
	IOCTypeIP         IOCType = "ip"
	IOCTypeDomain     IOCType = "domain"
	IOCTypeURL        IOCType = "url"
	IOCTypeHashMD5    IOCType = "hash_md5"
	IOCTypeHashSHA1   IOCType = "hash_sha1"
	IOCTypeHashSHA256 IOCType = "hash_sha256"
	IOCTypeEmail      IOCType = "email"
	IOCTypeUnknown    IOCType = "unknown"
)

// IsHash reports whether the type is one of the file hash types.
func (t IOCType) IsHash() bool {
	return t == IOCTypeHashMD5 || t == IOCTypeHashSHA1 || t == IOCTypeHashSHA256
}

// iocPatterns maps IOC types to their detection patterns. Order matters:
// hashes are length-disjoint but domains would otherwise shadow emails, so
// detection iterates the explicit order below rather than the map.
var iocPatterns = map[IOCType]*regexp.Regexp{
	IOCTypeIP:         regexp.MustCompile(`^(?:[0-9]{1,3}\.){3}[0-9]{1,3}$`),
	IOCTypeDomain:     regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,61}[a-zA-Z0-9]?\.[a-zA-Z]{2,}$`),
	IOCTypeURL:        regexp.MustCompile(`^https?://`),
	IOCTypeHashMD5:    regexp.MustCompile(`^[a-fA-F0-9]{32}$`),
	IOCTypeHashSHA1:   regexp.MustCompile(`^[a-fA-F0-9]{40}$`),
	IOCTypeHashSHA256: regexp.MustCompile(`^[a-fA-F0-9]{64}$`),
	IOCTypeEmail:      regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`),
}

// detectionOrder is the order in which patterns are tried. IP and hashes
// before domain, email before domain, so the more specific type wins.
var detectionOrder = []IOCType{
	IOCTypeIP,
	IOCTypeHashMD5,
	IOCTypeHashSHA1,
	IOCTypeHashSHA256,
	IOCTypeURL,
	IOCTypeEmail,
	IOCTypeDomain,
}

// allIOCTypes is the stable iteration order used wherever the full type
// partition is scanned.
var allIOCTypes = []IOCType{
	IOCTypeIP,
	IOCTypeHashMD5,
	IOCTypeHashSHA1,
	IOCTypeHashSHA256,
	IOCTypeURL,
	IOCTypeEmail,
	IOCTypeDomain,
	IOCTypeUnknown,
}

// DetectIOCType classifies an indicator value by pattern matching.
// Unrecognized values yield IOCTypeUnknown, never an error.
func DetectIOCType(value string) IOCType {
	for _, t := range detectionOrder {
		if iocPatterns[t].MatchString(value) {
			return t
		}
	}
	return IOCTypeUnknown
}

// ThreatRecord is a single observation of an indicator. Records are
// append-only: repeated observations of the same value produce distinct
// records.
type ThreatRecord struct {
	ID         string                 `json:"id"`
	Value      string                 `json:"iocValue"`
	Type       IOCType                `json:"iocType"`
	Metadata   map[string]interface{} `json:"metadata"`
	ObservedAt time.Time              `json:"observedAt"`
}

// RelationshipType describes how a related threat is linked to the queried
// indicator.
type RelationshipType string

const (
	// RelationshipSameType links indicators of the same type by similarity.
	RelationshipSameType RelationshipType = "same_type"
	// RelationshipDNSResolution links an IP to observed domains. This is a
	// fixed-confidence placeholder; no actual DNS resolution is performed.
	RelationshipDNSResolution RelationshipType = "dns_resolution"
)

// RelatedThreat is a correlation query result. It is derived per query and
// never stored.
type RelatedThreat struct {
	Value        string                 `json:"iocValue"`
	Type         IOCType                `json:"iocType"`
	Similarity   float64                `json:"similarity"`
	Relationship RelationshipType       `json:"relationship"`
	Metadata     map[string]interface{} `json:"metadata"`
}

// AnalysisResult is the full output of analyzing a single indicator.
type AnalysisResult struct {
	Value           string          `json:"iocValue"`
	Type            IOCType         `json:"iocType"`
	ThreatScore     float64         `json:"threatScore"`
	Severity        Severity        `json:"severity"`
	Tactics         []string        `json:"tactics"`
	Techniques      []string        `json:"techniques"`
	Description     string          `json:"description"`
	Recommendations []string        `json:"recommendations"`
	Sources         []string        `json:"sources"`
	Confidence      float64         `json:"confidence"`
	RelatedThreats  []RelatedThreat `json:"relatedThreats"`
	Timestamp       time.Time       `json:"timestamp"`
}
