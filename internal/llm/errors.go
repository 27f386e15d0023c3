package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	openai "github.com/sashabaranov/go-openai"
)

// Vendor-agnostic error taxonomy. Adapters map vendor-specific HTTP
// statuses onto these types so callers can decide retryability and render
// an actionable message without knowing which vendor was behind the call.

// AuthenticationError means the credential was rejected (401). Never
// retryable; the user must re-enter their key.
type AuthenticationError struct {
	Provider string
	Err      error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("%s: authentication failed (check your API key): %v", e.Provider, e.Err)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// RateLimitError means the vendor throttled the call (429). Retryable
// after RetryAfter; when the vendor supplied no window a conservative
// estimate is filled in.
type RateLimitError struct {
	Provider   string
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: rate limited, retry after %s: %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// InvalidRequestError means the vendor rejected the request shape (400).
// Non-retryable; indicates a prompt-builder bug, not a user problem.
type InvalidRequestError struct {
	Provider string
	Err      error
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("%s: invalid request: %v", e.Provider, e.Err)
}

func (e *InvalidRequestError) Unwrap() error { return e.Err }

// Error is the generic vendor failure for anything the taxonomy does not
// name. Non-retryable by default.
type Error struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: vendor error (HTTP %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: vendor error: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ConfigurationError means no usable credential or provider configuration
// exists. Distinct from runtime generation errors so the caller can
// present a "fix your settings" message.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider configuration error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("provider configuration error: %s", e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// estimatedRateLimitBackoff is used when a 429 carries no Retry-After.
const estimatedRateLimitBackoff = 30 * time.Second

// wrapVendorError maps a vendor SDK error onto the taxonomy. Context
// errors pass through unchanged so the orchestrator can distinguish
// timeout and cancellation.
func wrapVendorError(provider string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}

	status := vendorStatusCode(err)
	return errorForStatus(provider, status, err)
}

// errorForStatus converts an HTTP status into the taxonomy entry.
func errorForStatus(provider string, status int, err error) error {
	switch status {
	case http.StatusUnauthorized:
		return &AuthenticationError{Provider: provider, Err: err}
	case http.StatusTooManyRequests:
		retryAfter := vendorRetryAfter(err)
		if retryAfter <= 0 {
			retryAfter = estimatedRateLimitBackoff
		}
		return &RateLimitError{Provider: provider, RetryAfter: retryAfter, Err: err}
	case http.StatusBadRequest:
		return &InvalidRequestError{Provider: provider, Err: err}
	default:
		return &Error{Provider: provider, StatusCode: status, Err: err}
	}
}

// vendorRetryAfter reads the Retry-After window from SDK errors that
// carry the HTTP response. The go-openai error types expose no response
// headers, so OpenAI-family 429s keep the estimate. Returns 0 when the
// vendor supplied no usable window.
func vendorRetryAfter(err error) time.Duration {
	var antErr *anthropic.Error
	if !errors.As(err, &antErr) || antErr.Response == nil {
		return 0
	}

	header := antErr.Response.Header.Get("Retry-After")
	if header == "" {
		return 0
	}
	if secs, convErr := strconv.Atoi(header); convErr == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, parseErr := http.ParseTime(header); parseErr == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

// vendorStatusCode digs the HTTP status out of the known SDK error types.
// Returns 0 when none is present (network failure etc.).
func vendorStatusCode(err error) int {
	var oaiAPIErr *openai.APIError
	if errors.As(err, &oaiAPIErr) {
		return oaiAPIErr.HTTPStatusCode
	}
	var oaiReqErr *openai.RequestError
	if errors.As(err, &oaiReqErr) {
		return oaiReqErr.HTTPStatusCode
	}
	var antErr *anthropic.Error
	if errors.As(err, &antErr) {
		return antErr.StatusCode
	}
	return 0
}
