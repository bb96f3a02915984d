package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kind classifies a provider failure for the orchestrator's retry policy.
// Adapters normalize every transport-specific error into exactly one Kind;
// retry decisions never inspect provider SDK types.
type Kind string

const (
	// KindUnauthorized means the API rejected our credentials. Fatal, never retried.
	KindUnauthorized Kind = "unauthorized"
	// KindRateLimited means the API throttled us. Retried after a long backoff.
	KindRateLimited Kind = "rate_limited"
	// KindUnreachable covers connection failures and server-side errors.
	KindUnreachable Kind = "unreachable"
	// KindTimeout means the request exceeded its deadline.
	KindTimeout Kind = "timeout"
	// KindMalformed means the provider answered but the payload was unusable.
	KindMalformed Kind = "malformed"
)

// ProviderError is the normalized error surfaced by every adapter variant.
type ProviderError struct {
	Provider string
	Kind     Kind
	Message  string
	Cause    error
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s provider %s: %s: %v", e.Provider, e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s provider %s: %s", e.Provider, e.Kind, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// KindOf extracts the failure Kind from an error chain. Errors that did not
// pass through an adapter classify as KindUnreachable.
func KindOf(err error) Kind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnreachable
}

// IsKind reports whether an error chain carries the given Kind.
func IsKind(err error, kind Kind) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Kind == kind
}

// classifyStatus maps an HTTP status code onto a Kind.
func classifyStatus(code int) Kind {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return KindUnauthorized
	case code == http.StatusTooManyRequests:
		return KindRateLimited
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return KindTimeout
	default:
		return KindUnreachable
	}
}

// classifyTransport maps a client-side transport error onto a Kind.
func classifyTransport(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindUnreachable
}
