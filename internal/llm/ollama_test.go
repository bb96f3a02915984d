package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOllamaServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *OllamaClient) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewOllamaClient(Settings{
		URL:          server.URL,
		Model:        "llama2",
		SystemPrompt: "You generate incident data.",
	})
	require.NoError(t, err)
	return server, client
}

func TestOllamaGenerate(t *testing.T) {
	_, client := newOllamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var req ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama2", req.Model)
		assert.False(t, req.Stream)
		// system prompt is prepended to the user prompt
		assert.Contains(t, req.Prompt, "You generate incident data.")
		assert.Contains(t, req.Prompt, "generate 5 records")

		json.NewEncoder(w).Encode(map[string]string{"response": `[{"a": 1}]`})
	})

	text, err := client.Generate(context.Background(), "generate 5 records")
	require.NoError(t, err)
	assert.Equal(t, `[{"a": 1}]`, text)
}

func TestOllamaGenerate_TextEnvelope(t *testing.T) {
	_, client := newOllamaServer(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"text": "fallback envelope"})
	})

	text, err := client.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "fallback envelope", text)
}

func TestOllamaGenerate_ServerError(t *testing.T) {
	_, client := newOllamaServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindUnreachable))
}

func TestOllamaGenerate_ConnectionRefused(t *testing.T) {
	server, client := newOllamaServer(t, func(w http.ResponseWriter, _ *http.Request) {})
	server.Close()

	_, err := client.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindUnreachable))
}

func TestOllamaGenerate_MalformedEnvelope(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not JSON", body: "plain text response"},
		{name: "unknown envelope", body: `{"output": "hello"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, client := newOllamaServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte(tt.body))
			})

			_, err := client.Generate(context.Background(), "prompt")
			require.Error(t, err)
			assert.True(t, IsKind(err, KindMalformed))
		})
	}
}

func TestNewOllamaClient_RequiresURLAndModel(t *testing.T) {
	_, err := NewOllamaClient(Settings{Model: "llama2"})
	assert.Error(t, err)

	_, err = NewOllamaClient(Settings{URL: "http://localhost:11434/api/generate"})
	assert.Error(t, err)
}
