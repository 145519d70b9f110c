package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// descriptionLimit truncates the raw backend text when building the parsed
// description.
const descriptionLimit = 500

// defaultConfidence is assigned to parsed analyses. The backend text is
// unstructured, so a fixed model confidence is used rather than trying to
// extract one.
const defaultConfidence = 0.7

// defaultRecommendations is the fixed recommendation set attached to every
// parsed analysis.
var defaultRecommendations = []string{
	"Monitor network traffic for suspicious activity",
	"Block the indicator at perimeter defenses",
	"Review logs for related indicators",
	"Update threat intelligence feeds",
}

// ParsedAnalysis is the structured form of a backend response.
type ParsedAnalysis struct {
	Description     string
	Recommendations []string
	Sources         []string
	Confidence      float64
}

// Engine drives the description step of an analysis: it builds the prompt,
// calls the configured provider, and degrades to the deterministic fallback
// text when the provider fails, so callers always receive text to parse.
type Engine struct {
	provider Provider
	logger   *zap.SugaredLogger
}

// NewEngine creates an engine around the given provider.
func NewEngine(provider Provider, logger *zap.SugaredLogger) *Engine {
	return &Engine{
		provider: provider,
		logger:   logger,
	}
}

// ProviderName reports which backend the engine is configured with.
func (e *Engine) ProviderName() string {
	return e.provider.Name()
}

// Describe generates and parses the analysis text for an indicator.
func (e *Engine) Describe(ctx context.Context, iocValue, iocType string, extra map[string]interface{}) ParsedAnalysis {
	prompt := BuildAnalysisPrompt(iocValue, iocType, extra)

	text, err := e.provider.Generate(ctx, prompt)
	if err != nil {
		// Upstream failure must not stop the pipeline; fall back to the
		// fixed-structure text and continue.
		e.logger.Warnf("LLM backend %s failed, using fallback analysis: %v", e.provider.Name(), err)
		text = MockAnalysisText()
	}

	return ParseResponse(text)
}

// BuildAnalysisPrompt constructs the analysis prompt for an indicator.
func BuildAnalysisPrompt(iocValue, iocType string, extra map[string]interface{}) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the following security indicator:\n\nIOC: %s\nType: %s\n", iocValue, iocType)

	if len(extra) > 0 {
		b.WriteString("\nAdditional Context:\n")
		keys := make([]string, 0, len(extra))
		for k := range extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s: %v\n", k, extra[k])
		}
	}

	b.WriteString(`
Provide a comprehensive threat intelligence analysis including:
1. Threat description and potential impact
2. Known attack patterns or campaigns
3. Recommended mitigation actions
4. Confidence level (0-1)
5. Related IOCs or threat actors if known

Format the response as structured data.
`)
	return b.String()
}

// ParseResponse turns raw backend text into a structured analysis. The
// parsing is intentionally simple: the text becomes the description
// (truncated), and recommendations, sources, and confidence are fixed.
func ParseResponse(text string) ParsedAnalysis {
	description := text
	if description == "" {
		description = "No description available"
	}
	if len(description) > descriptionLimit {
		cut := descriptionLimit
		// Back up to a rune boundary so the cut never splits a multi-byte
		// character.
		for cut > 0 && !utf8.RuneStart(description[cut]) {
			cut--
		}
		description = description[:cut]
	}

	recommendations := make([]string, len(defaultRecommendations))
	copy(recommendations, defaultRecommendations)

	return ParsedAnalysis{
		Description:     description,
		Recommendations: recommendations,
		Sources:         []string{"LLM Analysis"},
		Confidence:      defaultConfidence,
	}
}
