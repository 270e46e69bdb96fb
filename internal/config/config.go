// Package config centralizes provider selection, model choice, and
// environment-backed settings for the app.
package config

import (
	"fmt"
	"os"
)

const (
	ProviderOpenAI = "openai"
	ProviderGroq   = "groq"
	ProviderOllama = "ollama"
	ProviderMock   = "mock"
)

// GroqBaseURL is Groq's OpenAI-compatible endpoint.
const GroqBaseURL = "https://api.groq.com/openai/v1"

// RoleConfig selects the provider and model for one role. Performer and
// critic are configured independently so a cheap fast model can write
// jokes while a stronger one judges them.
type RoleConfig struct {
	Provider string
	Model    string
}

// Config holds application configuration.
type Config struct {
	Performer RoleConfig
	Critic    RoleConfig

	Debug     bool
	Serve     bool
	Addr      string
	DBPath    string
	Catalog   string // optional path to a YAML model catalog override
	OllamaURL string

	OpenAIKey string
	GroqKey   string
}

// Load builds the default configuration from the environment. Flags in
// cmd override the result afterwards.
func Load() Config {
	return Config{
		Performer: RoleConfig{Provider: ProviderGroq},
		Critic:    RoleConfig{Provider: ProviderGroq},
		Addr:      getEnv("JOKESMITH_ADDR", ":8080"),
		DBPath:    getEnv("JOKESMITH_DB", "jokesmith.db"),
		OllamaURL: getEnv("OLLAMA_URL", "http://localhost:11434"),
		OpenAIKey: os.Getenv("OPENAI_API_KEY"),
		GroqKey:   os.Getenv("GROQ_API_KEY"),
	}
}

// Validate checks that every selected provider has what it needs and
// fills missing models from the catalog defaults.
func (c *Config) Validate(catalog *Catalog) error {
	for name, role := range map[string]*RoleConfig{"performer": &c.Performer, "critic": &c.Critic} {
		if err := c.validateRole(name, role, catalog); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateRole(name string, role *RoleConfig, catalog *Catalog) error {
	switch role.Provider {
	case ProviderOpenAI:
		if c.OpenAIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when the %s uses the openai provider", name)
		}
	case ProviderGroq:
		if c.GroqKey == "" {
			return fmt.Errorf("GROQ_API_KEY is required when the %s uses the groq provider", name)
		}
	case ProviderOllama, ProviderMock:
		// no key needed
	default:
		return fmt.Errorf("unknown provider %q for %s", role.Provider, name)
	}

	if role.Model == "" {
		role.Model = catalog.Default(role.Provider)
	}
	if role.Model == "" && role.Provider != ProviderMock {
		return fmt.Errorf("no model configured for %s provider %q", name, role.Provider)
	}
	if catalog.Deprecated(role.Provider, role.Model) {
		return fmt.Errorf("model %q is deprecated for provider %q, pick a current one", role.Model, role.Provider)
	}
	return nil
}

// APIKey returns the key for an OpenAI-compatible provider.
func (c *Config) APIKey(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return c.OpenAIKey
	case ProviderGroq:
		return c.GroqKey
	}
	return ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
