// Package llm implements the multi-vendor LLM adapter layer: a uniform
// Provider contract with one implementation per vendor, plus the factory
// that constructs the right adapter for a user's stored configuration.
package llm

import (
	"context"
	"time"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one message in a vendor conversation. Messages are
// constructed fresh per request and never mutated; ordering is
// significant. Vendors that take the system prompt out-of-band split it
// off inside their adapter — callers never special-case vendor quirks.
type ChatMessage struct {
	Role    Role
	Content string
}

// Usage reports vendor-metered token counts and the estimated cost for
// one call. Display only — never billing-of-record.
type Usage struct {
	PromptTokens     int     `json:"promptTokens"`
	CompletionTokens int     `json:"completionTokens"`
	TotalTokens      int     `json:"totalTokens"`
	EstimatedCostUSD float64 `json:"estimatedCostUsd"`
}

// CompletionOptions tunes a single vendor call. Zero values mean vendor
// defaults.
type CompletionOptions struct {
	Temperature float64
	MaxTokens   int
}

// Completion is the uniform result of a vendor call. For structured calls
// Content holds the raw JSON text; the response validator owns typing.
type Completion struct {
	Content   string    `json:"content"`
	Usage     Usage     `json:"usage"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	Timestamp time.Time `json:"timestamp"`
}

// Provider is the uniform adapter contract implemented once per vendor.
type Provider interface {
	// Name returns the vendor name ("openai", "anthropic", "gemini", "local").
	Name() string
	// Model returns the configured model identifier.
	Model() string

	// GenerateCompletion sends a free-text completion request.
	GenerateCompletion(ctx context.Context, messages []ChatMessage, opts CompletionOptions) (*Completion, error)

	// GenerateStructuredOutput requests JSON-shaped output conforming to
	// the given textual schema description. Vendors with native JSON mode
	// set the request flag; others receive an explicit JSON-only
	// instruction appended to the prompt.
	GenerateStructuredOutput(ctx context.Context, messages []ChatMessage, schema string, opts CompletionOptions) (*Completion, error)

	// TestConnection issues the cheapest possible vendor call to confirm
	// the credential works. Never used for real generation.
	TestConnection(ctx context.Context) error

	// CostPer1KInputTokens and CostPer1KOutputTokens expose the static
	// price table entry for the configured model.
	CostPer1KInputTokens() float64
	CostPer1KOutputTokens() float64
}

// VendorCredential is a user's stored AI configuration. EncryptedKey is a
// vault payload; the decrypted key never outlives a single generation
// call.
type VendorCredential struct {
	Provider     string `json:"provider" yaml:"provider"`
	EncryptedKey string `json:"encryptedKey" yaml:"encryptedKey"`
	Model        string `json:"model,omitempty" yaml:"model"`
	EndpointURL  string `json:"endpointUrl,omitempty" yaml:"endpointUrl"`
	Enabled      bool   `json:"enabled" yaml:"enabled"`
}
