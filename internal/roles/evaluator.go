package roles

import (
	"context"

	"JokeSmith/internal/feedback"
	"JokeSmith/internal/llm"
)

// CriticTemperature keeps evaluation the stable signal in the loop.
const CriticTemperature = 0.3

// Evaluator is the critic role. Malformed model output never surfaces
// as an error; the decoder absorbs it. Transport failures do surface.
type Evaluator struct {
	client  llm.Client
	decoder *feedback.Decoder
}

// NewEvaluator wires the critic persona to a client and a decoder.
func NewEvaluator(client llm.Client, decoder *feedback.Decoder) *Evaluator {
	return &Evaluator{client: client, decoder: decoder}
}

// Evaluate scores a joke and returns structured feedback.
func (e *Evaluator) Evaluate(ctx context.Context, joke string) (feedback.Feedback, error) {
	raw, err := e.client.Generate(ctx, criticPersona, evaluatePrompt(joke), CriticTemperature)
	if err != nil {
		return feedback.Feedback{}, err
	}
	return e.decoder.Decode(raw), nil
}

// Reevaluate scores the same joke again under a persona variant asked
// for an independent second opinion. Divergence from an earlier score
// is up to the model; nothing enforces it here.
func (e *Evaluator) Reevaluate(ctx context.Context, joke string) (feedback.Feedback, error) {
	raw, err := e.client.Generate(ctx, criticPersona+freshPerspectiveNote, reevaluatePrompt(joke), CriticTemperature)
	if err != nil {
		return feedback.Feedback{}, err
	}
	return e.decoder.Decode(raw), nil
}
