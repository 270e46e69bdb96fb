package feedback

import (
	"strings"
	"testing"
)

func TestScoreCategory(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{95, "Excellent"},
		{80, "Excellent"},
		{79, "Good"},
		{60, "Good"},
		{59, "Fair"},
		{40, "Fair"},
		{39, "Needs Work"},
		{0, "Needs Work"},
	}
	for _, tt := range tests {
		if got := ScoreCategory(tt.score); got != tt.want {
			t.Errorf("ScoreCategory(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestCompareScores(t *testing.T) {
	up := CompareScores(70, 85)
	if up.Delta != 15 || !up.Improved || up.Declined {
		t.Errorf("CompareScores(70, 85) = %+v", up)
	}

	down := CompareScores(85, 60)
	if down.Delta != -25 || down.Improved || !down.Declined {
		t.Errorf("CompareScores(85, 60) = %+v", down)
	}

	flat := CompareScores(0, 0)
	if flat.PercentageChange != 0 || flat.Improved || flat.Declined {
		t.Errorf("CompareScores(0, 0) = %+v", flat)
	}
}

func TestSummary(t *testing.T) {
	fb := Feedback{Score: 70, Audience: RatingAdult, Verdict: "Pretty good"}

	got := fb.Summary()

	if got != "Score: 70/100 | Age: Adult | Pretty good" {
		t.Errorf("Summary() = %q", got)
	}

	fb.Verdict = strings.Repeat("x", 150)
	if long := fb.Summary(); !strings.HasSuffix(long, "...") {
		t.Errorf("long verdict not truncated: %q", long)
	}
}

func TestAcceptable(t *testing.T) {
	fb := Feedback{Score: 60}
	if !fb.Acceptable(DefaultAcceptableScore) {
		t.Error("score 60 should meet the default threshold")
	}
	if (Feedback{Score: 59}).Acceptable(DefaultAcceptableScore) {
		t.Error("score 59 should not meet the default threshold")
	}
}
