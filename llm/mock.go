package llm

import (
	"context"

	"argus/metrics"
)

// mockAnalysisText is the fixed-structure fallback analysis. It carries the
// same sections a live backend produces so downstream parsing always has a
// string to work with.
const mockAnalysisText = `THREAT ANALYSIS (Mock Mode):

The analyzed indicator appears to be potentially malicious based on pattern analysis.

Key Findings:
- Indicator shows characteristics associated with known threat patterns
- Recommended blocking at network perimeter
- Monitor for related indicators
- Review historical logs for similar patterns

MITRE ATT&CK Mapping:
- Tactic: Initial Access, Execution
- Technique: T1566 (Phishing), T1059 (Command and Scripting Interpreter)

Confidence Level: Medium (0.6)

Recommendations:
1. Implement network-level blocking
2. Enhance monitoring and detection rules
3. Conduct threat hunting activities
4. Update threat intelligence feeds

Note: This is a mock response. Configure an API key for full functionality.`

// MockProvider returns a deterministic analysis text regardless of the
// prompt. It is selected by configuration when no backend key is present,
// never by exception-driven fallback inside hot logic.
type MockProvider struct{}

// NewMockProvider creates the deterministic fallback provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// Name returns the provider name.
func (p *MockProvider) Name() string {
	return "mock"
}

// Generate returns the fixed analysis text. It never fails.
func (p *MockProvider) Generate(_ context.Context, _ string) (string, error) {
	metrics.LLMRequests.WithLabelValues(p.Name(), "success").Inc()
	return mockAnalysisText, nil
}

// MockAnalysisText exposes the fallback text for engines degrading after a
// live backend failure.
func MockAnalysisText() string {
	return mockAnalysisText
}
