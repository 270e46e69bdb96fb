// Package roles implements the performer and critic personas on top of
// the provider-agnostic llm.Client.
package roles

import (
	"context"
	"errors"
	"strings"

	"JokeSmith/internal/feedback"
	"JokeSmith/internal/llm"
)

// PerformerTemperature keeps joke generation intentionally stochastic.
const PerformerTemperature = 0.9

// ErrEmptyTopic is returned when Produce is asked for a joke about nothing.
var ErrEmptyTopic = errors.New("topic must not be empty")

// Generator is the performer role: it writes new jokes and revises
// existing ones. Transport failures from the client propagate unchanged.
type Generator struct {
	client llm.Client
}

// NewGenerator wires the performer persona to a text-generation client.
func NewGenerator(client llm.Client) *Generator {
	return &Generator{client: client}
}

// Produce generates a new joke for the topic.
func (g *Generator) Produce(ctx context.Context, topic string) (string, error) {
	if strings.TrimSpace(topic) == "" {
		return "", ErrEmptyTopic
	}
	out, err := g.client.Generate(ctx, performerPersona, producePrompt(topic), PerformerTemperature)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Revise rewrites a joke to address the critic's weaknesses and
// suggestions while keeping the original concept. The input joke is
// never modified; the revised text is a new value.
func (g *Generator) Revise(ctx context.Context, joke string, fb feedback.Feedback) (string, error) {
	out, err := g.client.Generate(ctx, performerPersona, revisePrompt(joke, fb), PerformerTemperature)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
