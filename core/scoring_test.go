package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name           string
		techniqueCount int
		confidence     float64
		expected       float64
	}{
		{"no techniques, default confidence", 0, 0.7, 35.0},
		{"one technique, default confidence", 1, 0.7, 38.5},
		{"two techniques, default confidence", 2, 0.7, 42.0},
		{"technique bump saturates at six", 6, 1.0, 80.0},
		{"bump stays saturated past six", 10, 1.0, 80.0},
		{"zero confidence yields zero", 5, 0.0, 0.0},
		{"full confidence no techniques", 0, 1.0, 50.0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, Score(tc.techniqueCount, tc.confidence), 1e-9)
		})
	}
}

func TestScore_Bounds(t *testing.T) {
	// Score is clamped to [0,100] even for out-of-range inputs.
	assert.Equal(t, 100.0, Score(100, 5.0))
	assert.Equal(t, 0.0, Score(3, -1.0))
}

func TestClassifySeverity(t *testing.T) {
	tests := []struct {
		score    float64
		expected Severity
	}{
		{100, SeverityCritical},
		{80, SeverityCritical},
		{79.999, SeverityHigh},
		{60, SeverityHigh},
		{59.999, SeverityMedium},
		{40, SeverityMedium},
		{39.999, SeverityLow},
		{20, SeverityLow},
		{19.999, SeverityInfo},
		{0, SeverityInfo},
	}

	for _, tc := range tests {
		if got := ClassifySeverity(tc.score); got != tc.expected {
			t.Errorf("ClassifySeverity(%v) = %s, want %s", tc.score, got, tc.expected)
		}
	}
}
