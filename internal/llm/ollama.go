package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// DefaultOllamaURL is where a local Ollama daemon listens.
const DefaultOllamaURL = "http://localhost:11434"

// OllamaClient talks to a local Ollama daemon over its chat API.
type OllamaClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
	tracer     trace.Tracer
	meter      metric.Meter
}

// OllamaConfig configures an Ollama client.
type OllamaConfig struct {
	BaseURL string // defaults to DefaultOllamaURL
	Model   string
	Tracer  trace.Tracer
	Meter   metric.Meter
}

type ollamaRequest struct {
	Model    string              `json:"model"`
	Messages []map[string]string `json:"messages"`
	Stream   bool                `json:"stream"`
	Options  ollamaOptions       `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
}

type ollamaResponse struct {
	Model   string `json:"model"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}

type ollamaTagsResponse struct {
	Models []OllamaModel `json:"models"`
}

// OllamaModel describes one locally installed model.
type OllamaModel struct {
	Name       string `json:"name"`
	ModifiedAt string `json:"modified_at"`
	Size       int64  `json:"size"`
	Digest     string `json:"digest"`
}

// NewOllamaClient creates a client for a local Ollama daemon.
func NewOllamaClient(cfg OllamaConfig) (*OllamaClient, error) {
	if cfg.Model == "" {
		return nil, transportErr("ollama", "model not set")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	return &OllamaClient{
		baseURL:    baseURL,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		tracer:     cfg.Tracer,
		meter:      cfg.Meter,
	}, nil
}

// Generate implements Client.
func (c *OllamaClient) Generate(ctx context.Context, system, user string, temperature float64) (string, error) {
	if c.tracer != nil {
		var span trace.Span
		ctx, span = c.tracer.Start(ctx, "ollama_api_call")
		defer span.End()
	}

	start := time.Now()

	reqBody := ollamaRequest{
		Model: c.model,
		Messages: []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		Stream:  false,
		Options: ollamaOptions{Temperature: temperature},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/chat", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("content-type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", transportErr("ollama", "failed to send request (is Ollama running?): %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportErr("ollama", "failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", transportErr("ollama", "API error: %s - %s", resp.Status, string(body))
	}

	var apiResp ollamaResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", transportErr("ollama", "failed to unmarshal response: %w", err)
	}

	recordDuration(ctx, c.meter, start)

	return apiResp.Message.Content, nil
}

// ListOllamaModels fetches the installed models without a configured
// chat client. Used by the REPL's model listing command.
func ListOllamaModels(ctx context.Context, baseURL string) ([]OllamaModel, error) {
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	c := &OllamaClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	return c.ListModels(ctx)
}

// ListModels fetches the locally installed models from /api/tags.
func (c *OllamaClient) ListModels(ctx context.Context) ([]OllamaModel, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportErr("ollama", "failed to send request (is Ollama running?): %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportErr("ollama", "failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, transportErr("ollama", "API error: %s - %s", resp.Status, string(body))
	}

	var tagsResp ollamaTagsResponse
	if err := json.Unmarshal(body, &tagsResp); err != nil {
		return nil, transportErr("ollama", "failed to unmarshal response: %w", err)
	}

	return tagsResp.Models, nil
}
