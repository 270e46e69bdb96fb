package llm

import (
	"context"
	"fmt"
	"strings"
)

// MockClient is an offline stand-in for local development. It answers
// critic personas with canned well-formed JSON and everything else with
// a canned joke, so the full loop runs without network access.
type MockClient struct{}

// NewMockClient creates the offline client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Generate implements Client.
func (m *MockClient) Generate(_ context.Context, system, user string, _ float64) (string, error) {
	if strings.Contains(system, "comedy critic") {
		return `{
			"laughability_score": 65,
			"age_appropriateness": "Teen",
			"strengths": ["clear setup", "recognizable premise"],
			"weaknesses": ["punchline is predictable"],
			"suggestions": ["subvert the expected ending"],
			"overall_verdict": "A serviceable joke that plays it safe."
		}`, nil
	}
	return fmt.Sprintf("Why did the mock cross the road? To stub out %q on the other side.", firstLine(user)), nil
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	if len(s) > 60 {
		s = s[:60]
	}
	return strings.TrimSpace(s)
}
