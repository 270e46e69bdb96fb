package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateFillsDefaultModel(t *testing.T) {
	cfg := Config{
		Performer: RoleConfig{Provider: ProviderGroq},
		Critic:    RoleConfig{Provider: ProviderGroq},
		GroqKey:   "gsk-test",
	}
	if err := cfg.Validate(DefaultCatalog()); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Performer.Model != "llama-3.3-70b-versatile" {
		t.Errorf("performer model = %q", cfg.Performer.Model)
	}
	if cfg.Critic.Model != "llama-3.3-70b-versatile" {
		t.Errorf("critic model = %q", cfg.Critic.Model)
	}
}

func TestValidateRequiresKey(t *testing.T) {
	cfg := Config{
		Performer: RoleConfig{Provider: ProviderOpenAI, Model: "gpt-4o-mini"},
		Critic:    RoleConfig{Provider: ProviderMock},
	}
	err := cfg.Validate(DefaultCatalog())
	if err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Errorf("err = %v, want missing-key error", err)
	}
}

func TestValidateRejectsRetiredModel(t *testing.T) {
	cfg := Config{
		Performer: RoleConfig{Provider: ProviderGroq, Model: "mixtral-8x7b-32768"},
		Critic:    RoleConfig{Provider: ProviderMock},
		GroqKey:   "gsk-test",
	}
	err := cfg.Validate(DefaultCatalog())
	if err == nil || !strings.Contains(err.Error(), "deprecated") {
		t.Errorf("err = %v, want deprecated-model error", err)
	}
}

func TestValidateUnknownProvider(t *testing.T) {
	cfg := Config{
		Performer: RoleConfig{Provider: "carrier-pigeon"},
		Critic:    RoleConfig{Provider: ProviderMock},
	}
	if err := cfg.Validate(DefaultCatalog()); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestMockNeedsNoModel(t *testing.T) {
	cfg := Config{
		Performer: RoleConfig{Provider: ProviderMock},
		Critic:    RoleConfig{Provider: ProviderMock},
	}
	if err := cfg.Validate(DefaultCatalog()); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadCatalogOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := `
models:
  groq:
    - some-new-model
defaults:
  groq: some-new-model
retired:
  groq:
    - llama-3.3-70b-versatile
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	cat, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if cat.Default(ProviderGroq) != "some-new-model" {
		t.Errorf("Default = %q", cat.Default(ProviderGroq))
	}
	if !cat.Deprecated(ProviderGroq, "llama-3.3-70b-versatile") {
		t.Error("override should mark the old default deprecated")
	}
	if !cat.Known(ProviderGroq, "some-new-model") || cat.Known(ProviderGroq, "other") {
		t.Error("Known should follow the override list")
	}
}

func TestCatalogKnownUnlistedProvider(t *testing.T) {
	if !DefaultCatalog().Known(ProviderOllama, "llama3:latest") {
		t.Error("providers without a catalog entry accept any model")
	}
}
