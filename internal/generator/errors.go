package generator

import (
	"context"
	"errors"
	"fmt"

	"fitforge/internal/llm"
	"fitforge/internal/plan"
)

// ErrorKind buckets a terminal generation failure for the caller:
// configuration and invalid-request errors need user/caller action,
// rate-limit may be retried by the caller with backoff, timeout invites a
// plain "try again", schema-validation carries the defect list.
type ErrorKind string

const (
	KindInvalidRequest   ErrorKind = "invalid_request"
	KindConfiguration    ErrorKind = "configuration"
	KindAuthentication   ErrorKind = "authentication"
	KindRateLimit        ErrorKind = "rate_limit"
	KindTimeout          ErrorKind = "timeout"
	KindSchemaValidation ErrorKind = "schema_validation"
	KindCancelled        ErrorKind = "cancelled"
	KindVendor           ErrorKind = "vendor"
)

// GenerationError is the single terminal error type the orchestrator
// surfaces. It always carries enough structure (kind, provider, validation
// defects) for the caller to render an actionable message.
type GenerationError struct {
	Kind             ErrorKind
	Provider         string
	Err              error
	ValidationErrors []plan.ValidationError
}

func (e *GenerationError) Error() string {
	if len(e.ValidationErrors) > 0 {
		return fmt.Sprintf("generation failed (%s): %d validation errors after exhausting retries", e.Kind, len(e.ValidationErrors))
	}
	return fmt.Sprintf("generation failed (%s): %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// classifyError maps pipeline and vendor errors onto an ErrorKind.
func classifyError(err error, provider string) *GenerationError {
	var cfgErr *llm.ConfigurationError
	if errors.As(err, &cfgErr) {
		return &GenerationError{Kind: KindConfiguration, Provider: provider, Err: err}
	}
	var authErr *llm.AuthenticationError
	if errors.As(err, &authErr) {
		return &GenerationError{Kind: KindAuthentication, Provider: provider, Err: err}
	}
	var rlErr *llm.RateLimitError
	if errors.As(err, &rlErr) {
		return &GenerationError{Kind: KindRateLimit, Provider: provider, Err: err}
	}
	var invErr *llm.InvalidRequestError
	if errors.As(err, &invErr) {
		return &GenerationError{Kind: KindInvalidRequest, Provider: provider, Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return &GenerationError{Kind: KindCancelled, Provider: provider, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &GenerationError{Kind: KindTimeout, Provider: provider, Err: err}
	}
	return &GenerationError{Kind: KindVendor, Provider: provider, Err: err}
}
