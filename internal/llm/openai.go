package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient is the hosted chat-completion variant. The system message
// enforces JSON-only output; authentication and rate-limit failures are
// surfaced as distinct error kinds.
type OpenAIClient struct {
	client       *openai.Client
	model        string
	systemPrompt string
}

// NewOpenAIClient creates a chat-completion client. Settings.URL, when set,
// overrides the API base URL for OpenAI-compatible endpoints.
func NewOpenAIClient(settings Settings) (*OpenAIClient, error) {
	if settings.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if settings.Model == "" {
		return nil, fmt.Errorf("OpenAI model is required")
	}

	cfg := openai.DefaultConfig(settings.APIKey)
	if settings.URL != "" {
		cfg.BaseURL = settings.URL
	}
	cfg.HTTPClient = &http.Client{Timeout: settings.timeout()}

	return &OpenAIClient{
		client:       openai.NewClientWithConfig(cfg),
		model:        settings.Model,
		systemPrompt: settings.SystemPrompt,
	}, nil
}

// Generate sends system + user messages and returns the first choice.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	}
	if c.systemPrompt != "" {
		messages = append([]openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.systemPrompt},
		}, messages...)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0.7,
	})
	if err != nil {
		return "", c.classify(err)
	}

	if len(resp.Choices) == 0 {
		return "", &ProviderError{
			Provider: c.Name(),
			Kind:     KindMalformed,
			Message:  "no choices in response",
		}
	}
	return resp.Choices[0].Message.Content, nil
}

// classify maps SDK errors onto the shared taxonomy.
func (c *OpenAIClient) classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &ProviderError{
			Provider: c.Name(),
			Kind:     classifyStatus(apiErr.HTTPStatusCode),
			Message:  fmt.Sprintf("API error (status %d)", apiErr.HTTPStatusCode),
			Cause:    err,
		}
	}
	return &ProviderError{
		Provider: c.Name(),
		Kind:     classifyTransport(err),
		Message:  "request failed",
		Cause:    err,
	}
}

// Name returns the provider name.
func (c *OpenAIClient) Name() string { return "openai" }

// Close is a no-op for the OpenAI SDK.
func (c *OpenAIClient) Close() error { return nil }
