// Package llm provides the provider-agnostic text-generation client
// consumed by the performer and critic roles.
package llm

import (
	"context"
	"fmt"
)

// Client is the single capability the rest of the system needs from a
// language model provider.
type Client interface {
	// Generate sends one system persona plus one user message and
	// returns the model's text. Network, auth, and rate-limit problems
	// surface as *TransportError.
	Generate(ctx context.Context, system, user string, temperature float64) (string, error)
}

// TransportError wraps a provider failure (timeout, auth, rate limit).
// Callers detect it with errors.As and may retry; the core never does.
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func transportErr(provider string, format string, args ...any) error {
	return &TransportError{Provider: provider, Err: fmt.Errorf(format, args...)}
}
