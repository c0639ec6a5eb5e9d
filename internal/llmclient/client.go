// Package llmclient defines a provider-agnostic chat contract for the
// browser agent loop, with three concrete clients (Gemini's native
// function-calling, and Perplexity and Hugging Face, which both send a
// role/content message list to a chat-completions endpoint and use the
// text-protocol fallback) sharing retry, token budgeting, and error
// classification. No client renders the conversation into a single
// chat-template prompt.
package llmclient

import (
	"context"
	"errors"

	"github.com/wayfarerhq/pilot/pkg/models"
)

// Client is the provider-agnostic contract every LLM backend implements.
type Client interface {
	// Chat sends the conversation and available tools to the provider and
	// returns its reply. temperature and maxTokens are provider hints.
	Chat(ctx context.Context, messages []models.LLMMessage, tools []models.ToolDefinition, temperature float64, maxTokens int) (models.LLMResponse, error)

	// FormatToolResult builds the LLMMessage that reports a tool's outcome
	// back to the provider, in whatever shape that provider expects.
	FormatToolResult(toolCallID, toolName string, result map[string]any) models.LLMMessage

	// Name identifies the provider for logging and error messages.
	Name() string
}

// Error classification, mirrored from the retry policy's decision table.
var (
	// ErrConfiguration covers missing/invalid API keys and unknown providers.
	ErrConfiguration = errors.New("llmclient: configuration error")
	// ErrPermanent covers 400/404-class provider responses that retrying cannot fix
	// (401 and 403 are classified as ErrConfiguration).
	ErrPermanent = errors.New("llmclient: permanent provider error")
	// ErrTransient covers timeouts, connection resets, 429 and 5xx responses.
	ErrTransient = errors.New("llmclient: transient provider error")
)

// ProviderError wraps an underlying error with the provider name and a
// classification, so callers can branch with errors.Is(err, ErrTransient).
type ProviderError struct {
	Provider string
	Class    error // one of ErrConfiguration, ErrPermanent, ErrTransient
	Err      error
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is(err, ErrTransient) etc. to match the classification.
func (e *ProviderError) Is(target error) bool {
	return e.Class == target
}

// IsRetryable reports whether err should trigger another attempt.
func IsRetryable(err error) bool {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Class == ErrTransient
	}
	// Unclassified errors (context deadline, network-layer failures from a
	// custom HTTP transport) are treated as transient by default.
	return !errors.Is(err, context.Canceled)
}
