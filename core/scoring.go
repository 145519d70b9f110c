package core

// Severity is the classification tier of a threat score.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityInfo     Severity = "INFO"
)

const (
	baseScore             = 50.0
	techniqueScoreWeight  = 5.0
	maxTechniqueScoreBump = 30.0
	maxThreatScore        = 100.0
)

// Score folds the number of matched techniques and an externally supplied
// confidence into a threat score in [0,100]. The technique contribution is
// capped so breadth of coverage saturates, and confidence scales the result
// multiplicatively: zero confidence always yields a zero score.
func Score(techniqueCount int, confidence float64) float64 {
	bump := float64(techniqueCount) * techniqueScoreWeight
	if bump > maxTechniqueScoreBump {
		bump = maxTechniqueScoreBump
	}

	score := (baseScore + bump) * confidence
	if score > maxThreatScore {
		score = maxThreatScore
	}
	if score < 0 {
		score = 0
	}
	return score
}

// ClassifySeverity maps a threat score to its severity tier. Thresholds are
// evaluated high to low with inclusive lower bounds, so the five tiers
// partition [0,100] with no gaps or overlaps.
func ClassifySeverity(score float64) Severity {
	switch {
	case score >= 80:
		return SeverityCritical
	case score >= 60:
		return SeverityHigh
	case score >= 40:
		return SeverityMedium
	case score >= 20:
		return SeverityLow
	default:
		return SeverityInfo
	}
}
