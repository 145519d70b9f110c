package core

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// sameTypeThreshold is the strict minimum similarity for a same-type
// relation to be reported.
const sameTypeThreshold = 0.5

// crossTypeDNSSimilarity is the fixed similarity assigned to IP-to-domain
// relations. Placeholder heuristic: no DNS resolution is actually checked.
const crossTypeDNSSimilarity = 0.7

// clusterDisplayLimit caps the number of records carried by a cluster.
const clusterDisplayLimit = 10

// CorrelationRule describes one of the built-in correlation heuristics.
type CorrelationRule struct {
	Name       string  `json:"name"`
	Enabled    bool    `json:"enabled"`
	Confidence float64 `json:"confidence"`
}

// defaultCorrelationRules mirrors the heuristics the engine applies. Only
// ip_to_domain and temporal_clustering have active code paths today;
// hash_to_campaign is reserved for campaign attribution.
func defaultCorrelationRules() []CorrelationRule {
	return []CorrelationRule{
		{Name: "ip_to_domain", Enabled: true, Confidence: 0.8},
		{Name: "hash_to_campaign", Enabled: true, Confidence: 0.9},
		{Name: "temporal_clustering", Enabled: true, Confidence: 0.7},
	}
}

// Cluster groups threat records observed close together in time.
type Cluster struct {
	ID      string         `json:"clusterId"`
	Count   int            `json:"count"`
	Window  string         `json:"window"`
	Threats []ThreatRecord `json:"threats"`
}

// Statistics summarizes the correlation history.
type Statistics struct {
	TotalThreats int             `json:"totalThreats"`
	CountsByType map[IOCType]int `json:"countsByType"`
	ActiveRules  int             `json:"activeCorrelationRules"`
}

// Correlator keeps an append-only, type-partitioned history of observed
// threats and answers relationship queries over it. It is the only owner of
// the history; all access goes through its lock. The history is in-process
// and non-persistent.
type Correlator struct {
	mu      sync.RWMutex
	threats map[IOCType][]ThreatRecord
	rules   []CorrelationRule
	logger  *zap.SugaredLogger

	// now is swappable for temporal clustering tests.
	now func() time.Time
}

// NewCorrelator creates an empty correlator.
func NewCorrelator(logger *zap.SugaredLogger) *Correlator {
	return &Correlator{
		threats: make(map[IOCType][]ThreatRecord),
		rules:   defaultCorrelationRules(),
		logger:  logger,
		now:     time.Now,
	}
}

// Record appends an observation to the history. Duplicate values are kept as
// distinct records: every call represents a separate observation.
func (c *Correlator) Record(value string, iocType IOCType, metadata map[string]interface{}) ThreatRecord {
	rec := ThreatRecord{
		ID:         uuid.NewString(),
		Value:      value,
		Type:       iocType,
		Metadata:   metadata,
		ObservedAt: c.now().UTC(),
	}

	c.mu.Lock()
	c.threats[iocType] = append(c.threats[iocType], rec)
	c.mu.Unlock()

	c.logger.Debugw("Recorded threat observation", "ioc_type", iocType, "record_id", rec.ID)
	return rec
}

// FindRelated returns up to maxResults threats related to the given
// indicator, sorted by descending similarity. Same-type relations require
// similarity strictly above the threshold; on equal scores same-type results
// sort before cross-type ones, each in insertion order. The queried value is
// never part of the result.
func (c *Correlator) FindRelated(value string, iocType IOCType, maxResults int) []RelatedThreat {
	c.mu.RLock()
	defer c.mu.RUnlock()

	related := make([]RelatedThreat, 0)

	for _, rec := range c.threats[iocType] {
		if rec.Value == value {
			continue
		}
		sim := Similarity(value, rec.Value, iocType)
		if sim > sameTypeThreshold {
			related = append(related, RelatedThreat{
				Value:        rec.Value,
				Type:         rec.Type,
				Similarity:   sim,
				Relationship: RelationshipSameType,
				Metadata:     rec.Metadata,
			})
		}
	}

	related = append(related, c.crossTypeRelations(value, iocType)...)

	// Stable: ties keep same-type before cross-type, then insertion order.
	sort.SliceStable(related, func(i, j int) bool {
		return related[i].Similarity > related[j].Similarity
	})

	if maxResults >= 0 && len(related) > maxResults {
		related = related[:maxResults]
	}
	return related
}

// crossTypeRelations applies the cross-type heuristics. Callers must hold at
// least a read lock. Today only ip_to_domain is implemented: every observed
// domain is reported as a fixed-confidence dns_resolution relation.
func (c *Correlator) crossTypeRelations(value string, iocType IOCType) []RelatedThreat {
	if iocType != IOCTypeIP {
		return nil
	}

	var related []RelatedThreat
	for _, rec := range c.threats[IOCTypeDomain] {
		related = append(related, RelatedThreat{
			Value:        rec.Value,
			Type:         IOCTypeDomain,
			Similarity:   crossTypeDNSSimilarity,
			Relationship: RelationshipDNSResolution,
			Metadata:     rec.Metadata,
		})
	}
	return related
}

// ClusterByTime groups records across all types whose observation time falls
// within window of now. The current strategy yields at most one cluster,
// carrying the first clusterDisplayLimit records in insertion order.
func (c *Correlator) ClusterByTime(window time.Duration) []Cluster {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now().UTC()
	var recent []ThreatRecord
	for _, t := range allIOCTypes {
		for _, rec := range c.threats[t] {
			if now.Sub(rec.ObservedAt) <= window {
				recent = append(recent, rec)
			}
		}
	}

	if len(recent) == 0 {
		return []Cluster{}
	}

	display := recent
	if len(display) > clusterDisplayLimit {
		display = display[:clusterDisplayLimit]
	}

	return []Cluster{{
		ID:      uuid.NewString(),
		Count:   len(recent),
		Window:  window.String(),
		Threats: display,
	}}
}

// Statistics returns counters over the recorded history.
func (c *Correlator) Statistics() Statistics {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := Statistics{CountsByType: make(map[IOCType]int)}
	for iocType, recs := range c.threats {
		if len(recs) == 0 {
			continue
		}
		stats.CountsByType[iocType] = len(recs)
		stats.TotalThreats += len(recs)
	}
	for _, rule := range c.rules {
		if rule.Enabled {
			stats.ActiveRules++
		}
	}
	return stats
}

// Rules returns a copy of the configured correlation rules.
func (c *Correlator) Rules() []CorrelationRule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]CorrelationRule, len(c.rules))
	copy(out, c.rules)
	return out
}
