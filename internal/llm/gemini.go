package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GeminiClient is the hosted generative variant. The flash models operate
// without a request rate limit on the free tier, which makes this the
// recommended default provider.
type GeminiClient struct {
	client       *genai.Client
	model        string
	systemPrompt string
}

// NewGeminiClient creates a Gemini client.
func NewGeminiClient(ctx context.Context, settings Settings) (*GeminiClient, error) {
	if settings.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if settings.Model == "" {
		return nil, fmt.Errorf("Gemini model is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(settings.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:       client,
		model:        settings.Model,
		systemPrompt: settings.SystemPrompt,
	}, nil
}

// Generate runs one generation request. JSON output is requested both via
// the system instruction and the response MIME type; models still wrap the
// payload in prose often enough that the codec strips it again.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(0.7)
	model.ResponseMIMEType = "application/json"
	if c.systemPrompt != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(c.systemPrompt)},
		}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", c.classify(err)
	}

	text, err := extractText(resp)
	if err != nil {
		return "", &ProviderError{
			Provider: c.Name(),
			Kind:     KindMalformed,
			Message:  "unusable response envelope",
			Cause:    err,
		}
	}
	return text, nil
}

// classify maps SDK errors onto the shared taxonomy.
func (c *GeminiClient) classify(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &ProviderError{
			Provider: c.Name(),
			Kind:     classifyStatus(apiErr.Code),
			Message:  fmt.Sprintf("API error (status %d)", apiErr.Code),
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
func (c *GeminiClient) Name() string { return "gemini" }

// Close releases resources held by the underlying client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractText collects the text parts from a Gemini response.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}
	return strings.Join(parts, ""), nil
}
