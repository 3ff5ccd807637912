package ai

import (
	"errors"
	"fmt"
)

// ErrInvocationFailed matches every error returned by a provider call.
var ErrInvocationFailed = errors.New("model invocation failed")

// Kind classifies a provider failure.
type Kind string

const (
	KindThrottled Kind = "throttled"
	KindTimeout   Kind = "timeout"
	KindFailed    Kind = "failed"
)

// ProviderError reports a failed completion call.
type ProviderError struct {
	Provider string
	Kind     Kind
	Err      error
}

func (e *ProviderError) Error() string {
	kind := e.Kind
	if kind == "" {
		kind = KindFailed
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s: %s", e.Provider, ErrInvocationFailed, kind)
	}
	return fmt.Sprintf("%s: %s (%s): %v", e.Provider, ErrInvocationFailed, kind, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *ProviderError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvocationFailed}
	}
	return []error{ErrInvocationFailed, e.Err}
}

// NewProviderError wraps err with the provider name and failure kind.
func NewProviderError(provider string, kind Kind, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: kind, Err: err}
}
