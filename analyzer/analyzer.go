// Package analyzer composes the catalog, scoring, correlation, and LLM
// collaborators into the indicator analysis pipeline.
package analyzer

import (
	"context"
	"time"

	"argus/core"
	"argus/llm"
	"argus/metrics"
	"argus/mitre"
	"argus/util"

	"go.uber.org/zap"
)

// Options tunes the analyzer.
type Options struct {
	// MaxRelated caps the related-threat list per result.
	MaxRelated int
	// BatchWorkers is the parallelism of BatchAnalyze.
	BatchWorkers int
}

// DefaultOptions returns the default tuning.
func DefaultOptions() Options {
	return Options{
		MaxRelated:   10,
		BatchWorkers: 4,
	}
}

// Analyzer runs the full analysis pipeline for indicators of compromise.
type Analyzer struct {
	engine     *llm.Engine
	catalog    *mitre.Catalog
	mapper     *mitre.Mapper
	correlator *core.Correlator
	cache      ResultCache
	opts       Options
	logger     *zap.SugaredLogger
}

// NewAnalyzer wires an analyzer from its collaborators. cache may be nil to
// disable result caching.
func NewAnalyzer(engine *llm.Engine, catalog *mitre.Catalog, correlator *core.Correlator, cache ResultCache, opts Options, logger *zap.SugaredLogger) *Analyzer {
	if opts.MaxRelated <= 0 {
		opts.MaxRelated = DefaultOptions().MaxRelated
	}
	if opts.BatchWorkers <= 0 {
		opts.BatchWorkers = DefaultOptions().BatchWorkers
	}
	return &Analyzer{
		engine:     engine,
		catalog:    catalog,
		mapper:     mitre.NewMapper(catalog),
		correlator: correlator,
		cache:      cache,
		opts:       opts,
		logger:     logger,
	}
}

// Catalog exposes the technique catalog for lookup endpoints.
func (a *Analyzer) Catalog() *mitre.Catalog {
	return a.catalog
}

// Correlator exposes the correlation store for record and stats endpoints.
func (a *Analyzer) Correlator() *core.Correlator {
	return a.correlator
}

// CacheStats reports cache statistics, or nil when caching is disabled.
func (a *Analyzer) CacheStats(ctx context.Context) map[string]interface{} {
	if a.cache == nil {
		return nil
	}
	return a.cache.Stats(ctx)
}

// Analyze runs the full pipeline for one indicator: type detection, cache
// lookup, LLM description, technique mapping, scoring, and correlation.
// It is total over its input: unrecognized values analyze as type
// "unknown" with zero technique matches rather than failing.
func (a *Analyzer) Analyze(ctx context.Context, value string, iocType core.IOCType, extra map[string]interface{}) (*core.AnalysisResult, error) {
	start := time.Now()

	if iocType == "" {
		iocType = core.DetectIOCType(value)
	}

	a.logger.Infow("Analyzing IOC",
		"ioc", util.SanitizeLogValue(value),
		"ioc_type", iocType,
	)

	if a.cache != nil {
		if cached, found := a.cache.Get(ctx, value); found {
			a.logger.Debugw("Analysis served from cache", "ioc_type", iocType)
			return cached, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parsed := a.engine.Describe(ctx, value, string(iocType), extra)
	result := a.AnalyzeDescription(value, iocType, parsed.Description, parsed.Confidence)
	result.Recommendations = parsed.Recommendations
	result.Sources = parsed.Sources

	if a.cache != nil {
		a.cache.Set(ctx, value, result)
	}

	metrics.AnalysesCompleted.WithLabelValues(string(iocType), string(result.Severity)).Inc()
	metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	return result, nil
}

// AnalyzeDescription is the correlation and scoring core: it maps the
// description onto the technique catalog, folds match count and confidence
// into a threat score, and records the indicator for future correlation.
// The operation has no failure paths.
func (a *Analyzer) AnalyzeDescription(value string, iocType core.IOCType, description string, confidence float64) *core.AnalysisResult {
	match := a.mapper.Map(description)
	for _, id := range match.Techniques {
		metrics.TechniqueMatches.WithLabelValues(id).Inc()
	}

	score := core.Score(len(match.Techniques), confidence)

	a.correlator.Record(value, iocType, map[string]interface{}{
		"severity":   string(core.ClassifySeverity(score)),
		"techniques": match.Techniques,
	})
	metrics.ThreatsRecorded.WithLabelValues(string(iocType)).Inc()

	related := a.correlator.FindRelated(value, iocType, a.opts.MaxRelated)

	return &core.AnalysisResult{
		Value:          value,
		Type:           iocType,
		ThreatScore:    score,
		Severity:       core.ClassifySeverity(score),
		Tactics:        match.Tactics,
		Techniques:     match.Techniques,
		Description:    description,
		Confidence:     confidence,
		RelatedThreats: related,
		Timestamp:      time.Now().UTC(),
	}
}

// batchOutcome carries one analyzed item back to the collector. A nil
// result marks a failed or abandoned item.
type batchOutcome struct {
	index  int
	result *core.AnalysisResult
}

// BatchAnalyze analyzes many indicators in parallel. Per-item failures are
// logged and excluded from the result; an empty input yields an empty
// slice. Result order follows input order. Cancelling the context ends the
// batch early with whatever completed by then.
func (a *Analyzer) BatchAnalyze(ctx context.Context, values []string, iocType core.IOCType) []*core.AnalysisResult {
	if len(values) == 0 {
		return []*core.AnalysisResult{}
	}

	pool := core.NewWorkerPool(ctx, a.opts.BatchWorkers, len(values), a.logger)
	pool.Start()
	defer pool.Stop()

	// Outcomes flow over a buffered channel sized to the batch, not a
	// WaitGroup: tasks still queued when the context is cancelled never
	// run, and waiting on their Done would block forever. The buffer also
	// lets in-flight stragglers report after the collector has given up.
	outcomes := make(chan batchOutcome, len(values))

	for i, value := range values {
		i, value := i, value
		err := pool.Submit(func() {
			result, err := a.Analyze(ctx, value, iocType, nil)
			if err != nil {
				a.logger.Errorw("Batch item failed",
					"ioc", util.SanitizeLogValue(value),
					"error", err,
				)
				outcomes <- batchOutcome{index: i}
				return
			}
			outcomes <- batchOutcome{index: i, result: result}
		})
		if err != nil {
			outcomes <- batchOutcome{index: i}
		}
	}

	slots := make([]*core.AnalysisResult, len(values))
	received := 0
collect:
	for received < len(values) {
		select {
		case out := <-outcomes:
			slots[out.index] = out.result
			received++
		case <-ctx.Done():
			// Drain whatever already finished; queued tasks that will
			// never run cannot report and are abandoned.
			for {
				select {
				case out := <-outcomes:
					slots[out.index] = out.result
				default:
					break collect
				}
			}
		}
	}

	results := make([]*core.AnalysisResult, 0, len(values))
	for _, r := range slots {
		if r != nil {
			results = append(results, r)
		}
	}
	return results
}
