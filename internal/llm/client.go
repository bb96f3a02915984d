// Package llm provides a uniform client abstraction over the supported LLM
// providers and normalizes their transport errors.
package llm

import (
	"context"
	"fmt"
	"time"
)

// DefaultTimeout bounds every provider request. Batch generation responses
// are large, so this is deliberately generous.
const DefaultTimeout = 120 * time.Second

// Client is the single capability the generation pipeline needs from a
// provider: turn a prompt into raw text. Adapters never retry internally;
// retry policy belongs to the orchestrator.
type Client interface {
	// Generate sends the prompt and returns the model's raw text output.
	Generate(ctx context.Context, prompt string) (string, error)
	// Name returns the provider name for logs and error messages.
	Name() string
	// Close releases any resources held by the client.
	Close() error
}

// Settings selects and configures a provider backend.
type Settings struct {
	Provider     string        // "ollama", "openai", or "gemini"
	URL          string        // Endpoint (required for ollama, base-URL override for openai)
	Model        string        // Model name
	APIKey       string        // Credential for hosted providers
	SystemPrompt string        // System instruction prepended/attached per provider convention
	Timeout      time.Duration // Per-request deadline; DefaultTimeout when zero
}

func (s *Settings) timeout() time.Duration {
	if s.Timeout > 0 {
		return s.Timeout
	}
	return DefaultTimeout
}

// NewClient creates the client for the configured provider.
func NewClient(ctx context.Context, settings Settings) (Client, error) {
	switch settings.Provider {
	case "ollama":
		return NewOllamaClient(settings)
	case "openai":
		return NewOpenAIClient(settings)
	case "gemini":
		return NewGeminiClient(ctx, settings)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", settings.Provider)
	}
}
