// Package metrics defines the Prometheus instrumentation for Argus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnalysesCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "argus_analyses_completed_total",
			Help: "Total number of IOC analyses completed",
		},
		[]string{"ioc_type", "severity"},
	)

	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "argus_analysis_duration_seconds",
			Help:    "Time taken to analyze a single IOC",
			Buckets: prometheus.DefBuckets,
		},
	)

	TechniqueMatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "argus_technique_matches_total",
			Help: "Total number of technique keyword matches",
		},
		[]string{"technique_id"},
	)

	ThreatsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "argus_threats_recorded_total",
			Help: "Total number of threat observations recorded",
		},
		[]string{"ioc_type"},
	)

	LLMRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "argus_llm_requests_total",
			Help: "Total number of LLM backend requests",
		},
		[]string{"provider", "status"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "argus_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"backend"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "argus_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"backend"},
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "argus_cache_errors_total",
			Help: "Total number of cache errors",
		},
		[]string{"backend", "operation"},
	)
)
