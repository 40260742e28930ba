package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

type GenerationParams struct {
	Temperature *float32 `json:"temperature"`
	MaxTokens   *int     `json:"max_tokens"`
}

// Client is the model backend used by the stage agents.
type Client interface {
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)
}

// ProviderError is a failed call to the model provider with its HTTP status, when known.
type ProviderError struct {
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("model provider status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("model provider: %v", e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Transient reports a rate-limit or overload response worth retrying.
func (e *ProviderError) Transient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode == http.StatusServiceUnavailable
}

// ErrDisabled is returned by DisabledClient for every call.
var ErrDisabled = errors.New("model provider not configured")

// DisabledClient stands in when no API key is configured.
type DisabledClient struct{}

func (DisabledClient) Generate(context.Context, string, GenerationParams) (string, error) {
	return "", ErrDisabled
}

// Float32 and Int build optional generation parameters.
func Float32(v float32) *float32 { return &v }
func Int(v int) *int             { return &v }
