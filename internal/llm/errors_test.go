package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	openai "github.com/sashabaranov/go-openai"
)

func TestErrorForStatus_Taxonomy(t *testing.T) {
	base := errors.New("boom")

	cases := []struct {
		status int
		check  func(error) bool
	}{
		{401, func(err error) bool { var e *AuthenticationError; return errors.As(err, &e) }},
		{429, func(err error) bool { var e *RateLimitError; return errors.As(err, &e) }},
		{400, func(err error) bool { var e *InvalidRequestError; return errors.As(err, &e) }},
		{500, func(err error) bool { var e *Error; return errors.As(err, &e) }},
		{0, func(err error) bool { var e *Error; return errors.As(err, &e) }},
	}

	for _, c := range cases {
		err := errorForStatus("openai", c.status, base)
		if !c.check(err) {
			t.Errorf("errorForStatus(%d) = %T, wrong taxonomy type", c.status, err)
		}
		if !errors.Is(err, base) {
			t.Errorf("errorForStatus(%d) does not unwrap to the original error", c.status)
		}
	}
}

func TestWrapVendorError_OpenAIStatusCode(t *testing.T) {
	apiErr := &openai.APIError{HTTPStatusCode: 401, Message: "invalid api key"}
	wrapped := wrapVendorError("openai", fmt.Errorf("call failed: %w", apiErr))

	var authErr *AuthenticationError
	if !errors.As(wrapped, &authErr) {
		t.Fatalf("wrapVendorError() = %T, want *AuthenticationError", wrapped)
	}
	if authErr.Provider != "openai" {
		t.Errorf("Provider = %q, want %q", authErr.Provider, "openai")
	}
}

func TestWrapVendorError_RateLimitHasBackoff(t *testing.T) {
	apiErr := &openai.APIError{HTTPStatusCode: 429}
	wrapped := wrapVendorError("openai", apiErr)

	var rlErr *RateLimitError
	if !errors.As(wrapped, &rlErr) {
		t.Fatalf("wrapVendorError() = %T, want *RateLimitError", wrapped)
	}
	if rlErr.RetryAfter != estimatedRateLimitBackoff {
		t.Errorf("RetryAfter = %v, want the estimate when the vendor supplies no window", rlErr.RetryAfter)
	}
}

func TestWrapVendorError_RateLimitUsesVendorRetryAfter(t *testing.T) {
	antErr := &anthropic.Error{
		StatusCode: 429,
		Response: &http.Response{
			Header: http.Header{"Retry-After": []string{"7"}},
		},
	}
	wrapped := wrapVendorError("anthropic", antErr)

	var rlErr *RateLimitError
	if !errors.As(wrapped, &rlErr) {
		t.Fatalf("wrapVendorError() = %T, want *RateLimitError", wrapped)
	}
	if rlErr.RetryAfter != 7*time.Second {
		t.Errorf("RetryAfter = %v, want the vendor-supplied 7s", rlErr.RetryAfter)
	}
}

func TestVendorRetryAfter_UnusableHeaders(t *testing.T) {
	cases := []struct {
		name  string
		value string
	}{
		{"absent", ""},
		{"garbage", "soon"},
		{"negative", "-3"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			header := http.Header{}
			if c.value != "" {
				header.Set("Retry-After", c.value)
			}
			antErr := &anthropic.Error{StatusCode: 429, Response: &http.Response{Header: header}}
			if got := vendorRetryAfter(antErr); got != 0 {
				t.Errorf("vendorRetryAfter(%q) = %v, want 0", c.value, got)
			}
		})
	}
}

func TestWrapVendorError_ContextErrorsPassThrough(t *testing.T) {
	for _, sentinel := range []error{context.DeadlineExceeded, context.Canceled} {
		wrapped := wrapVendorError("openai", fmt.Errorf("call: %w", sentinel))
		if !errors.Is(wrapped, sentinel) {
			t.Errorf("wrapVendorError(%v) lost the context sentinel", sentinel)
		}
		var generic *Error
		if errors.As(wrapped, &generic) {
			t.Errorf("context error %v must not be wrapped as a vendor error", sentinel)
		}
	}
}

func TestWrapVendorError_Nil(t *testing.T) {
	if wrapVendorError("openai", nil) != nil {
		t.Error("wrapVendorError(nil) should be nil")
	}
}
