package cmd

import (
	"fmt"
	"strings"

	"argus/core"

	"github.com/fatih/color"
)

// severityColor picks the display color for a severity band.
func severityColor(severity core.Severity) *color.Color {
	switch severity {
	case core.SeverityCritical:
		return errorColor
	case core.SeverityHigh:
		return color.New(color.FgRed)
	case core.SeverityMedium:
		return warningColor
	case core.SeverityLow:
		return color.New(color.FgGreen)
	default:
		return infoColor
	}
}

// renderResult prints a single analysis result as a human-readable report.
func renderResult(result *core.AnalysisResult) {
	headerColor.Printf("=== %s (%s) ===\n", result.Value, result.Type)

	fmt.Printf("  Threat score: %.1f/100  ", result.ThreatScore)
	severityColor(result.Severity).Printf("[%s]\n", result.Severity)
	fmt.Printf("  Confidence:   %.0f%%\n", result.Confidence*100)

	if len(result.Tactics) > 0 {
		fmt.Printf("  Tactics:      %s\n", strings.Join(result.Tactics, ", "))
	}
	if len(result.Techniques) > 0 {
		fmt.Printf("  Techniques:   %s\n", strings.Join(result.Techniques, ", "))
	}

	if result.Description != "" {
		fmt.Println("  Description:")
		for _, line := range strings.Split(strings.TrimSpace(result.Description), "\n") {
			fmt.Printf("    %s\n", line)
		}
	}

	if len(result.Recommendations) > 0 {
		fmt.Println("  Recommendations:")
		for _, rec := range result.Recommendations {
			fmt.Printf("    - %s\n", rec)
		}
	}

	if len(result.RelatedThreats) > 0 {
		fmt.Println("  Related threats:")
		for _, rel := range result.RelatedThreats {
			fmt.Printf("    %-40s %s similarity=%.2f (%s)\n",
				rel.Value, rel.Type, rel.Similarity, rel.Relationship)
		}
	}
	fmt.Println()
}
