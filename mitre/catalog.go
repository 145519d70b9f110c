// Package mitre provides the ATT&CK technique catalog and the keyword-based
// mapping of free-text threat descriptions onto it.
package mitre

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed techniques.yaml
var builtinTechniques []byte

// Technique is one entry of the catalog. Catalog entries are immutable after
// load.
type Technique struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Tactic   string   `json:"tactic" yaml:"tactic"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// ReferenceURL returns the attack.mitre.org page for the technique.
func (t Technique) ReferenceURL() string {
	return fmt.Sprintf("https://attack.mitre.org/techniques/%s/", t.ID)
}

// Catalog is a read-only, ordered technique table. It is loaded once at
// startup and shared process-wide; no method mutates it.
type Catalog struct {
	techniques []Technique
	byID       map[string]int
}

// LoadCatalog parses a YAML technique table, preserving declaration order.
func LoadCatalog(data []byte) (*Catalog, error) {
	var doc struct {
		Techniques []Technique `yaml:"techniques"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse technique catalog: %w", err)
	}
	if len(doc.Techniques) == 0 {
		return nil, fmt.Errorf("technique catalog is empty")
	}

	byID := make(map[string]int, len(doc.Techniques))
	for i, t := range doc.Techniques {
		if t.ID == "" {
			return nil, fmt.Errorf("technique at index %d missing id", i)
		}
		if _, dup := byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate technique id %s", t.ID)
		}
		byID[t.ID] = i

		// Keyword matching lowercases the text side only; normalize the
		// keywords here so external catalog files may use any case.
		for j, kw := range t.Keywords {
			doc.Techniques[i].Keywords[j] = strings.ToLower(kw)
		}
	}

	return &Catalog{techniques: doc.Techniques, byID: byID}, nil
}

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// DefaultCatalog returns the catalog built from the embedded technique
// table. The embedded data is validated at build review time, so a parse
// failure here is a programming error.
func DefaultCatalog() *Catalog {
	defaultCatalogOnce.Do(func() {
		c, err := LoadCatalog(builtinTechniques)
		if err != nil {
			panic(fmt.Sprintf("builtin technique catalog is invalid: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Lookup finds a technique by ID. A miss returns ok=false, never an error.
func (c *Catalog) Lookup(id string) (Technique, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Technique{}, false
	}
	return c.techniques[i], true
}

// Techniques returns the catalog entries in declaration order. Callers must
// not modify the returned slice.
func (c *Catalog) Techniques() []Technique {
	return c.techniques
}

// AllTactics returns the distinct tactics in first-seen catalog order.
func (c *Catalog) AllTactics() []string {
	seen := make(map[string]bool)
	var tactics []string
	for _, t := range c.techniques {
		if !seen[t.Tactic] {
			seen[t.Tactic] = true
			tactics = append(tactics, t.Tactic)
		}
	}
	return tactics
}

// TechniquesForTactic returns the IDs of all techniques under a tactic, in
// catalog order.
func (c *Catalog) TechniquesForTactic(tactic string) []string {
	var ids []string
	for _, t := range c.techniques {
		if t.Tactic == tactic {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// Search returns techniques whose keywords relate to the query. A technique
// matches when the query is a substring of any keyword OR any keyword is a
// substring of the query, case-insensitive. The rule is deliberately
// forgiving in both directions.
func (c *Catalog) Search(query string) []Technique {
	q := strings.ToLower(query)
	var results []Technique
	for _, t := range c.techniques {
		for _, kw := range t.Keywords {
			if strings.Contains(kw, q) || strings.Contains(q, kw) {
				results = append(results, t)
				break
			}
		}
	}
	return results
}
