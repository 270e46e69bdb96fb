package feedback

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/tidwall/gjson"
)

// Decoder turns raw critic output into a validated Feedback. Decode is
// total: whatever the model emitted, the caller gets a usable record
// back, degraded at worst.
type Decoder struct {
	logger *slog.Logger
}

// NewDecoder creates a decoder that reports fallback events to logger.
func NewDecoder(logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Decoder{logger: logger}
}

// Decode extracts a Feedback from raw model output. Markdown fences,
// surrounding prose, and mildly malformed JSON are tolerated; anything
// unrecoverable yields the fixed fallback record.
func (d *Decoder) Decode(raw string) Feedback {
	text := stripFences(raw)

	candidate, ok := firstObject(text)
	if !ok {
		d.fallback(raw, "no JSON object found")
		return Fallback()
	}

	fb, recovered := parseCandidate(candidate)
	if recovered == 0 {
		d.fallback(raw, "no recognizable fields")
		return Fallback()
	}
	return fb
}

// parseCandidate tries strict JSON first, then a lenient gjson pass.
// It returns the sanitized record and how many schema fields were
// actually recovered from the payload.
func parseCandidate(candidate string) (Feedback, int) {
	var w struct {
		Score       *float64 `json:"laughability_score"`
		Audience    string   `json:"age_appropriateness"`
		Strengths   []string `json:"strengths"`
		Weaknesses  []string `json:"weaknesses"`
		Suggestions []string `json:"suggestions"`
		Verdict     string   `json:"overall_verdict"`
	}

	if err := json.Unmarshal([]byte(candidate), &w); err == nil {
		score, haveScore := -1.0, false
		if w.Score != nil {
			score, haveScore = *w.Score, true
		}
		return sanitize(score, haveScore, w.Audience, w.Strengths, w.Weaknesses, w.Suggestions, w.Verdict)
	}

	// Strict parse failed; pull whatever fields gjson can still see.
	root := gjson.Parse(candidate)
	score, haveScore := -1.0, false
	if v := root.Get("laughability_score"); v.Exists() && v.Type == gjson.Number {
		score, haveScore = v.Float(), true
	}
	return sanitize(
		score, haveScore,
		root.Get("age_appropriateness").String(),
		stringList(root.Get("strengths")),
		stringList(root.Get("weaknesses")),
		stringList(root.Get("suggestions")),
		root.Get("overall_verdict").String(),
	)
}

// sanitize enforces the Feedback invariants, filling per-field defaults
// for anything missing and counting how many fields were recovered.
func sanitize(score float64, haveScore bool, audience string, strengths, weaknesses, suggestions []string, verdict string) (Feedback, int) {
	recovered := 0

	fb := Feedback{Score: 50}
	if haveScore {
		recovered++
		fb.Score = clampScore(score)
	}

	fb.Audience = RatingTeen
	if r := AudienceRating(strings.TrimSpace(audience)); r.Valid() {
		recovered++
		fb.Audience = r
	}

	fb.Strengths = nonEmpty(strengths, "No strengths identified", &recovered)
	fb.Weaknesses = nonEmpty(weaknesses, "No weaknesses identified", &recovered)
	fb.Suggestions = nonEmpty(suggestions, "No suggestions provided", &recovered)

	fb.Verdict = "No verdict provided"
	if v := strings.TrimSpace(verdict); v != "" {
		recovered++
		fb.Verdict = v
	}

	return fb, recovered
}

func clampScore(v float64) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return int(v)
}

func nonEmpty(items []string, placeholder string, recovered *int) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return []string{placeholder}
	}
	*recovered++
	return out
}

func stringList(res gjson.Result) []string {
	if !res.IsArray() {
		return nil
	}
	var out []string
	for _, item := range res.Array() {
		out = append(out, item.String())
	}
	return out
}

// stripFences removes a markdown code fence wrapping the head and tail
// of the text, with or without a language tag.
func stripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[idx+1:]
	} else {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// firstObject scans for the first balanced {...} in text, tracking
// string literals and escapes so nested objects survive intact.
func firstObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

func (d *Decoder) fallback(raw, reason string) {
	d.logger.Warn("falling back to default feedback", "reason", reason, "raw", truncate(raw, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
