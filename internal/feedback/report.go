package feedback

import "fmt"

// DefaultAcceptableScore is the threshold below which a joke is
// considered to still need work.
const DefaultAcceptableScore = 60

// ScoreCategory buckets a score for display.
func ScoreCategory(score int) string {
	switch {
	case score >= 80:
		return "Excellent"
	case score >= 60:
		return "Good"
	case score >= 40:
		return "Fair"
	}
	return "Needs Work"
}

// Improvement describes the score movement between two evaluations.
type Improvement struct {
	Delta            int     `json:"delta"`
	PercentageChange float64 `json:"percentage_change"`
	Improved         bool    `json:"improved"`
	Declined         bool    `json:"declined"`
}

// CompareScores computes improvement metrics from an old score to a new one.
func CompareScores(oldScore, newScore int) Improvement {
	delta := newScore - oldScore
	var pct float64
	if oldScore > 0 {
		pct = float64(delta) / float64(oldScore) * 100
	}
	return Improvement{
		Delta:            delta,
		PercentageChange: pct,
		Improved:         delta > 0,
		Declined:         delta < 0,
	}
}

// Summary renders a one-line digest of the feedback.
func (f Feedback) Summary() string {
	verdict := f.Verdict
	if len(verdict) > 100 {
		verdict = verdict[:97] + "..."
	}
	return fmt.Sprintf("Score: %d/100 | Age: %s | %s", f.Score, f.Audience, verdict)
}

// Acceptable reports whether the score meets the given threshold.
func (f Feedback) Acceptable(threshold int) bool {
	return f.Score >= threshold
}
