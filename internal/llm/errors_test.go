package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		code int
		want Kind
	}{
		{http.StatusUnauthorized, KindUnauthorized},
		{http.StatusForbidden, KindUnauthorized},
		{http.StatusTooManyRequests, KindRateLimited},
		{http.StatusRequestTimeout, KindTimeout},
		{http.StatusGatewayTimeout, KindTimeout},
		{http.StatusInternalServerError, KindUnreachable},
		{http.StatusBadGateway, KindUnreachable},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status %d", tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, classifyStatus(tt.code))
		})
	}
}

func TestClassifyTransport(t *testing.T) {
	assert.Equal(t, KindTimeout, classifyTransport(context.DeadlineExceeded))
	assert.Equal(t, KindTimeout, classifyTransport(fmt.Errorf("wrapped: %w", context.DeadlineExceeded)))
	assert.Equal(t, KindUnreachable, classifyTransport(errors.New("connection refused")))
}

func TestKindOf(t *testing.T) {
	pe := &ProviderError{Provider: "openai", Kind: KindRateLimited, Message: "throttled"}
	assert.Equal(t, KindRateLimited, KindOf(pe))
	assert.Equal(t, KindRateLimited, KindOf(fmt.Errorf("request failed: %w", pe)))
	assert.Equal(t, KindUnreachable, KindOf(errors.New("plain error")))
}

func TestIsKind(t *testing.T) {
	pe := &ProviderError{Provider: "gemini", Kind: KindUnauthorized, Message: "bad key"}
	assert.True(t, IsKind(pe, KindUnauthorized))
	assert.True(t, IsKind(fmt.Errorf("outer: %w", pe), KindUnauthorized))
	assert.False(t, IsKind(pe, KindRateLimited))
	assert.False(t, IsKind(errors.New("plain"), KindUnauthorized))
}

func TestProviderErrorMessage(t *testing.T) {
	pe := &ProviderError{
		Provider: "ollama",
		Kind:     KindUnreachable,
		Message:  "request failed",
		Cause:    errors.New("dial tcp: connection refused"),
	}
	assert.Contains(t, pe.Error(), "ollama")
	assert.Contains(t, pe.Error(), "unreachable")
	assert.ErrorIs(t, pe, pe.Cause)
}
