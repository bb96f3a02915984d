// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// Provider names accepted in configuration. The generic aliases
// (local, hosted-chat, hosted-generative) are normalized onto these.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

var providerAliases = map[string]string{
	"local":             ProviderOllama,
	"hosted-chat":       ProviderOpenAI,
	"hosted-generative": ProviderGemini,
}

// CanonicalProvider resolves a provider alias onto its canonical name.
// Unknown values pass through unchanged for Validate to reject.
func CanonicalProvider(name string) string {
	if canonical, ok := providerAliases[name]; ok {
		return canonical
	}
	return name
}

// ProviderConfig holds the settings for one LLM backend.
type ProviderConfig struct {
	URL    string `json:"url,omitempty"`     // Endpoint URL (required for ollama, optional override otherwise)
	Model  string `json:"model,omitempty"`   // Model name
	APIKey string `json:"api_key,omitempty"` // API key (not used by ollama)
}

// GenerationConfig controls the batching loop.
type GenerationConfig struct {
	Total                  int  `json:"total,omitempty" validate:"omitempty,min=1"`      // Target number of incidents
	BatchSize              int  `json:"batch_size,omitempty" validate:"omitempty,min=1"` // Records requested per LLM call
	NumWorkers             int  `json:"num_workers,omitempty" validate:"omitempty,min=1"`
	MaxRetries             int  `json:"max_retries,omitempty" validate:"omitempty,min=1"`
	ContinueOnBatchFailure bool `json:"continue_on_batch_failure,omitempty"` // Drop a batch that exhausts retries instead of halting
	KeepCache              bool `json:"keep_cache,omitempty"`                // Retain the intermediate cache after a successful export
}

// Config represents the generator configuration that can be loaded from a
// JSON file. All fields are optional; missing values use defaults or must be
// provided via CLI flags.
type Config struct {
	LLMProvider string           `json:"llm_provider,omitempty" validate:"omitempty,oneof=ollama openai gemini"`
	Ollama      ProviderConfig   `json:"ollama,omitempty"`
	OpenAI      ProviderConfig   `json:"openai,omitempty"`
	Gemini      ProviderConfig   `json:"gemini,omitempty"`
	Generation  GenerationConfig `json:"generation,omitempty"`
	Categories  Taxonomy         `json:"categories,omitempty"`
}

// Defaults used when the config file is silent: small batches, sequential
// issuance, a handful of retries.
const (
	DefaultBatchSize  = 5
	DefaultNumWorkers = 1
	DefaultMaxRetries = 3

	defaultOpenAIModel = "gpt-3.5-turbo"
	defaultGeminiModel = "gemini-2.0-flash"
)

// Load reads configuration from a JSON file. Keys starting with "_" are
// comment entries and are stripped before use, both at the top level and
// inside the taxonomy maps.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	cfg.normalize()
	return &cfg, nil
}

// normalize resolves provider aliases and drops "_"-prefixed comment keys
// that json.Unmarshal routed into the taxonomy maps.
func (c *Config) normalize() {
	c.LLMProvider = CanonicalProvider(c.LLMProvider)
	c.Categories.stripComments()
}

// ApplyDefaults fills unset generation settings and per-provider model names.
func (c *Config) ApplyDefaults() {
	if c.Generation.BatchSize == 0 {
		c.Generation.BatchSize = DefaultBatchSize
	}
	if c.Generation.NumWorkers == 0 {
		c.Generation.NumWorkers = DefaultNumWorkers
	}
	if c.Generation.MaxRetries == 0 {
		c.Generation.MaxRetries = DefaultMaxRetries
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = defaultOpenAIModel
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = defaultGeminiModel
	}
}

// Validate checks structural constraints and that the selected provider's
// section is complete enough to build a client from.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	switch c.LLMProvider {
	case ProviderOllama:
		if c.Ollama.URL == "" {
			return fmt.Errorf("config error: ollama provider requires 'ollama.url'")
		}
		if c.Ollama.Model == "" {
			return fmt.Errorf("config error: ollama provider requires 'ollama.model'")
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("config error: openai provider requires 'openai.api_key' (or OPENAI_API_KEY)")
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("config error: gemini provider requires 'gemini.api_key' (or GEMINI_API_KEY)")
		}
	case "":
		return fmt.Errorf("config error: 'llm_provider' is required (ollama, openai, or gemini)")
	}

	return c.Categories.Validate()
}
