package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalog lists the known models per provider, the default pick, and
// models that providers have retired. It ships with a compiled-in
// catalog and can be overridden from a YAML file.
type Catalog struct {
	Models   map[string][]string `yaml:"models"`
	Defaults map[string]string   `yaml:"defaults"`
	Retired  map[string][]string `yaml:"retired"`
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Models: map[string][]string{
			ProviderGroq: {
				"llama-3.3-70b-versatile",
				"llama-3.1-8b-instant",
			},
			ProviderOpenAI: {
				"gpt-4o-mini",
				"gpt-4o",
				"gpt-4-turbo",
				"gpt-3.5-turbo",
			},
		},
		Defaults: map[string]string{
			ProviderGroq:   "llama-3.3-70b-versatile",
			ProviderOpenAI: "gpt-4o-mini",
		},
		Retired: map[string][]string{
			// Groq removes models aggressively; keep this list current.
			ProviderGroq: {
				"llama-3.1-70b-versatile",
				"llama-3.3-70b-specdec",
				"mixtral-8x7b-32768",
				"gemma2-9b-it",
			},
		},
	}
}

// LoadCatalog reads a catalog from a YAML file, or returns the built-in
// one when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model catalog: %w", err)
	}
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("failed to parse model catalog: %w", err)
	}
	return &cat, nil
}

// Default returns the default model for a provider, or "".
func (c *Catalog) Default(provider string) string {
	return c.Defaults[provider]
}

// Known reports whether the catalog lists the model for the provider.
// Providers with no catalog entry accept any model (ollama serves
// whatever is pulled locally).
func (c *Catalog) Known(provider, model string) bool {
	models, ok := c.Models[provider]
	if !ok {
		return true
	}
	for _, m := range models {
		if m == model {
			return true
		}
	}
	return false
}

// Deprecated reports whether a provider has retired the model.
func (c *Catalog) Deprecated(provider, model string) bool {
	for _, m := range c.Retired[provider] {
		if m == model {
			return true
		}
	}
	return false
}
