// Package feedback defines the structured evaluation record produced by
// the critic and the decoder that recovers it from free-text model output.
package feedback

// AudienceRating classifies the content maturity of a joke.
type AudienceRating string

const (
	RatingChild AudienceRating = "Child"
	RatingTeen  AudienceRating = "Teen"
	RatingAdult AudienceRating = "Adult"
)

// Valid reports whether r is one of the known ratings.
func (r AudienceRating) Valid() bool {
	switch r {
	case RatingChild, RatingTeen, RatingAdult:
		return true
	}
	return false
}

// Feedback is a fully populated evaluation of one joke. Values are only
// constructed by the Decoder, which guarantees every field is usable:
// the score is within [0,100], the rating is a known value, and the
// list fields each hold at least one entry.
type Feedback struct {
	Score       int            `json:"laughability_score"`
	Audience    AudienceRating `json:"age_appropriateness"`
	Strengths   []string       `json:"strengths"`
	Weaknesses  []string       `json:"weaknesses"`
	Suggestions []string       `json:"suggestions"`
	Verdict     string         `json:"overall_verdict"`
}

// FallbackVerdict marks a Feedback produced by the decoder's fallback
// path. Callers that care about degraded evaluations match on it.
const FallbackVerdict = "Evaluation incomplete due to a formatting error"

// Fallback returns the fixed record used when model output cannot be
// decoded at all.
func Fallback() Feedback {
	return Feedback{
		Score:       50,
		Audience:    RatingTeen,
		Strengths:   []string{"Joke was generated"},
		Weaknesses:  []string{"Could not properly evaluate"},
		Suggestions: []string{"Try again with clearer joke structure"},
		Verdict:     FallbackVerdict,
	}
}

// Degraded reports whether f came from the fallback path.
func (f Feedback) Degraded() bool {
	return f.Verdict == FallbackVerdict
}
