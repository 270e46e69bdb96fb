package roles

import (
	"fmt"
	"strings"

	"JokeSmith/internal/feedback"
)

const performerPersona = `You are a creative comedian and joke writer.

Your task is to generate ORIGINAL, FUNNY jokes based on the given theme or prompt.

Guidelines:
- Be creative and witty
- Keep jokes concise (2-4 sentences max)
- Make them memorable and punchy
- Aim for surprise and clever wordplay
- Consider different joke formats (puns, one-liners, setup-punchline, etc.)
- Stay tasteful and avoid offensive content

Generate ONE complete joke that will make people laugh.`

const criticPersona = `You are an expert comedy critic and writing coach.

Your task is to evaluate jokes objectively and provide constructive feedback.

Evaluate the joke based on:
1. **Laughability Score (0-100)**: How funny is it? Does it land?
2. **Age Appropriateness**: Child / Teen / Adult based on content
3. **Strengths**: What works well (humor technique, timing, wordplay, etc.)
4. **Weaknesses**: What falls flat or could be improved
5. **Suggestions**: Specific, actionable recommendations

Be honest but constructive. Your goal is to help improve comedy writing.

You MUST respond with valid JSON matching this exact structure:
{
    "laughability_score": <number 0-100>,
    "age_appropriateness": "<Child|Teen|Adult>",
    "strengths": ["strength1", "strength2"],
    "weaknesses": ["weakness1", "weakness2"],
    "suggestions": ["suggestion1", "suggestion2"],
    "overall_verdict": "<one sentence summary>"
}`

const freshPerspectiveNote = "\n\nNote: You are providing a fresh, independent evaluation of this joke. Focus on providing clear, actionable feedback."

func producePrompt(topic string) string {
	return fmt.Sprintf("Generate a joke about: %s", topic)
}

// revisePrompt embeds the critic's findings into a rewrite instruction
// that keeps the joke's core concept.
func revisePrompt(joke string, fb feedback.Feedback) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are revising a joke to make it better.\n\n")
	fmt.Fprintf(&b, "Original joke received a score of %d/100.\n\n", fb.Score)

	b.WriteString("Weaknesses identified:\n")
	for _, w := range fb.Weaknesses {
		fmt.Fprintf(&b, "- %s\n", w)
	}
	b.WriteString("\nSuggestions for improvement:\n")
	for _, s := range fb.Suggestions {
		fmt.Fprintf(&b, "- %s\n", s)
	}

	fmt.Fprintf(&b, "\nOriginal joke:\n%q\n\n", joke)
	b.WriteString(`Your task: Rewrite this joke to address the weaknesses and incorporate the suggestions.
- Keep the core concept but improve the delivery
- Make it funnier and more polished
- Fix any issues mentioned in the feedback
- Keep it concise (2-4 sentences max)

Generate the REVISED joke:`)
	return b.String()
}

func evaluatePrompt(joke string) string {
	return fmt.Sprintf("Evaluate this joke:\n\n%q\n\nRespond with valid JSON only.", joke)
}

func reevaluatePrompt(joke string) string {
	return fmt.Sprintf("Provide a fresh evaluation of this joke:\n\n%q\n\nRespond with valid JSON only.", joke)
}
