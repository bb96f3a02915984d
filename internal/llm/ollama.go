package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// OllamaClient talks to a local Ollama-compatible generate endpoint. No
// authentication; a refused connection or timeout is the dominant failure.
type OllamaClient struct {
	url          string
	model        string
	systemPrompt string
	httpClient   *http.Client
}

// NewOllamaClient creates a client for a local HTTP LLM server.
func NewOllamaClient(settings Settings) (*OllamaClient, error) {
	if settings.URL == "" {
		return nil, fmt.Errorf("ollama URL is required")
	}
	if settings.Model == "" {
		return nil, fmt.Errorf("ollama model is required")
	}
	return &OllamaClient{
		url:          settings.URL,
		model:        settings.Model,
		systemPrompt: settings.SystemPrompt,
		httpClient:   &http.Client{Timeout: settings.timeout()},
	}, nil
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// ollamaResponse covers both response envelopes Ollama-style servers emit.
type ollamaResponse struct {
	Response string `json:"response"`
	Text     string `json:"text"`
}

// Generate issues a plain POST with {model, prompt, stream:false}. The
// system prompt has no dedicated field in this envelope and is prepended to
// the user prompt.
func (c *OllamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	full := prompt
	if c.systemPrompt != "" {
		full = c.systemPrompt + "\n\n" + prompt
	}

	body, err := json.Marshal(ollamaRequest{Model: c.model, Prompt: full, Stream: false})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &ProviderError{
			Provider: c.Name(),
			Kind:     classifyTransport(err),
			Message:  "request failed",
			Cause:    err,
		}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ProviderError{
			Provider: c.Name(),
			Kind:     classifyTransport(err),
			Message:  "reading response body",
			Cause:    err,
		}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{
			Provider: c.Name(),
			Kind:     classifyStatus(resp.StatusCode),
			Message:  fmt.Sprintf("unexpected status %d", resp.StatusCode),
		}
	}

	var envelope ollamaResponse
	if err := json.Unmarshal(data, &envelope); err != nil {
		return "", &ProviderError{
			Provider: c.Name(),
			Kind:     KindMalformed,
			Message:  "response is not valid JSON",
			Cause:    err,
		}
	}

	switch {
	case envelope.Response != "":
		return envelope.Response, nil
	case envelope.Text != "":
		return envelope.Text, nil
	default:
		return "", &ProviderError{
			Provider: c.Name(),
			Kind:     KindMalformed,
			Message:  "response contains neither 'response' nor 'text'",
		}
	}
}

// Name returns the provider name.
func (c *OllamaClient) Name() string { return "ollama" }

// Close is a no-op; the HTTP client holds no resources worth releasing.
func (c *OllamaClient) Close() error { return nil }
