package mitre

import "strings"

// TechniqueDetail carries display information for a matched technique.
type TechniqueDetail struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Tactic       string `json:"tactic"`
	ReferenceURL string `json:"referenceUrl"`
}

// MatchResult is the outcome of mapping a description onto the catalog.
// Techniques and Tactics are unique and ordered by catalog declaration
// order, not by match strength.
type MatchResult struct {
	Techniques []string          `json:"techniques"`
	Tactics    []string          `json:"tactics"`
	Details    []TechniqueDetail `json:"details"`
}

// Mapper maps free-text threat descriptions to catalog techniques.
type Mapper struct {
	catalog *Catalog
}

// NewMapper creates a mapper over the given catalog.
func NewMapper(catalog *Catalog) *Mapper {
	return &Mapper{catalog: catalog}
}

// Map scans the description for technique keywords. For each technique the
// first matching keyword wins and the remaining keywords are skipped; this
// is a first-match policy, so ties break by catalog order and results are
// reproducible. Matching is plain substring, no fuzzing.
func (m *Mapper) Map(description string) MatchResult {
	text := strings.ToLower(description)

	result := MatchResult{
		Techniques: make([]string, 0),
		Tactics:    make([]string, 0),
		Details:    make([]TechniqueDetail, 0),
	}
	seenTactics := make(map[string]bool)

	for _, t := range m.catalog.Techniques() {
		for _, kw := range t.Keywords {
			if !strings.Contains(text, kw) {
				continue
			}
			result.Techniques = append(result.Techniques, t.ID)
			result.Details = append(result.Details, TechniqueDetail{
				ID:           t.ID,
				Name:         t.Name,
				Tactic:       t.Tactic,
				ReferenceURL: t.ReferenceURL(),
			})
			if !seenTactics[t.Tactic] {
				seenTactics[t.Tactic] = true
				result.Tactics = append(result.Tactics, t.Tactic)
			}
			break
		}
	}
	return result
}
