package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaGenerate(t *testing.T) {
	var captured ollamaRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"model":   captured.Model,
			"message": map[string]string{"role": "assistant", "content": "a joke"},
			"done":    true,
		})
	}))
	defer srv.Close()

	client, err := NewOllamaClient(OllamaConfig{BaseURL: srv.URL, Model: "llama3:latest"})
	if err != nil {
		t.Fatalf("NewOllamaClient: %v", err)
	}

	got, err := client.Generate(context.Background(), "persona", "tell a joke", 0.9)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "a joke" {
		t.Errorf("Generate = %q, want %q", got, "a joke")
	}
	if captured.Model != "llama3:latest" {
		t.Errorf("model = %q", captured.Model)
	}
	if captured.Options.Temperature != 0.9 {
		t.Errorf("temperature = %v, want 0.9", captured.Options.Temperature)
	}
	if len(captured.Messages) != 2 || captured.Messages[0]["role"] != "system" {
		t.Errorf("messages = %v", captured.Messages)
	}
	if captured.Stream {
		t.Error("stream should be disabled")
	}
}

func TestOllamaGenerateTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	client, err := NewOllamaClient(OllamaConfig{BaseURL: srv.URL, Model: "nope"})
	if err != nil {
		t.Fatalf("NewOllamaClient: %v", err)
	}

	_, err = client.Generate(context.Background(), "persona", "joke", 0.3)
	if err == nil {
		t.Fatal("expected error from 404 response")
	}
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("error %v is not a TransportError", err)
	}
	if terr.Provider != "ollama" {
		t.Errorf("provider = %q", terr.Provider)
	}
}

func TestOllamaListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]any{
				{"name": "llama3:latest", "size": 4000000000},
				{"name": "mistral:7b", "size": 3800000000},
			},
		})
	}))
	defer srv.Close()

	client, err := NewOllamaClient(OllamaConfig{BaseURL: srv.URL, Model: "llama3:latest"})
	if err != nil {
		t.Fatalf("NewOllamaClient: %v", err)
	}

	models, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(models) != 2 || models[0].Name != "llama3:latest" {
		t.Errorf("models = %v", models)
	}
}

func TestNewOllamaClientRequiresModel(t *testing.T) {
	if _, err := NewOllamaClient(OllamaConfig{}); err == nil {
		t.Fatal("expected error for missing model")
	}
}
