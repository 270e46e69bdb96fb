package llm

import (
	"context"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// OpenAIClient talks to the OpenAI chat completions API, or to any
// OpenAI-compatible endpoint (Groq) when a base URL is set.
type OpenAIClient struct {
	provider string
	model    string
	opts     []option.RequestOption
	tracer   trace.Tracer
	meter    metric.Meter
}

// OpenAIConfig configures an OpenAI-compatible client.
type OpenAIConfig struct {
	Provider string // label used in spans and errors, e.g. "openai", "groq"
	Model    string
	APIKey   string
	BaseURL  string // empty for api.openai.com
	Tracer   trace.Tracer
	Meter    metric.Meter
}

// NewOpenAIClient creates a client for OpenAI or an OpenAI-compatible API.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, transportErr(cfg.Provider, "API key not set")
	}
	if cfg.Model == "" {
		return nil, transportErr(cfg.Provider, "model not set")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIClient{
		provider: cfg.Provider,
		model:    cfg.Model,
		opts:     opts,
		tracer:   cfg.Tracer,
		meter:    cfg.Meter,
	}, nil
}

// Generate implements Client.
func (c *OpenAIClient) Generate(ctx context.Context, system, user string, temperature float64) (string, error) {
	if c.tracer != nil {
		var span trace.Span
		ctx, span = c.tracer.Start(ctx, c.provider+"_api_call")
		defer span.End()
	}

	start := time.Now()
	client := openai.NewClient(c.opts...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		return "", &TransportError{Provider: c.provider, Err: err}
	}

	recordDuration(ctx, c.meter, start)
	recordUsage(ctx, c.meter, map[string]int64{
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
		"total_tokens":      resp.Usage.TotalTokens,
	})

	if len(resp.Choices) == 0 {
		return "", transportErr(c.provider, "empty choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}
