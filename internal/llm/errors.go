package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrRateLimit indicates the provider returned a rate limit error (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the provider is down, unreachable or
// answered with a server-class error.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generator unavailable: %v", e.Err)
	}
	return "generator unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrInvalidRequest indicates the provider rejected the request itself
// (bad input, unknown model, auth failure). Retrying cannot help.
type ErrInvalidRequest struct {
	StatusCode int
	Err        error
}

func (e *ErrInvalidRequest) Error() string {
	return fmt.Sprintf("request rejected (status %d): %v", e.StatusCode, e.Err)
}

func (e *ErrInvalidRequest) Unwrap() error { return e.Err }

// ErrContentFiltered indicates the provider refused to produce output for
// safety reasons.
type ErrContentFiltered struct {
	Reason string
}

func (e *ErrContentFiltered) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("content blocked by safety filter: %s", e.Reason)
	}
	return "content blocked by safety filter"
}

// ErrInvalidResponse indicates the model returned content that does not
// conform to the requested schema.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid generator response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded indicates the response was truncated because it
// hit the MaxTokens limit.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "generator response truncated: max tokens exceeded"
}

// IsTransient reports whether err is a network or server-class failure
// worth retrying. Context errors and every permanent error return false.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if IsPermanent(err) {
		return false
	}
	// Rate limits, unavailability and untyped network errors.
	return true
}

// IsPermanent reports whether err can only be fixed by changing the input.
func IsPermanent(err error) bool {
	var (
		invReq  *ErrInvalidRequest
		filter  *ErrContentFiltered
		invResp *ErrInvalidResponse
		maxTok  *ErrMaxTokensExceeded
	)
	return errors.As(err, &invReq) ||
		errors.As(err, &filter) ||
		errors.As(err, &invResp) ||
		errors.As(err, &maxTok)
}

// Describe turns a generation error into a short message for the user,
// distinguishing causes the user can act on.
func Describe(err error) string {
	var (
		rl      *ErrRateLimit
		unavail *ErrProviderUnavailable
		invReq  *ErrInvalidRequest
		filter  *ErrContentFiltered
		invResp *ErrInvalidResponse
		maxTok  *ErrMaxTokensExceeded
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return "Request cancelled."
	case errors.Is(err, context.DeadlineExceeded):
		return "The request timed out. Please try again."
	case errors.As(err, &filter):
		return "The content was blocked by the provider's safety filter. Try rephrasing your material."
	case errors.As(err, &invResp):
		return "The generated result was malformed. Try again with shorter or clearer material."
	case errors.As(err, &maxTok):
		return "The result was too long and got cut off. Try a smaller piece of material."
	case errors.As(err, &invReq):
		return "The request was rejected. Check your API key, model name and input."
	case errors.As(err, &rl):
		return "The service is rate limiting requests. Please wait a moment and try again."
	case errors.As(err, &unavail):
		return "The service might be temporarily unavailable. Please try again in a moment."
	default:
		return fmt.Sprintf("Generation failed: %v", err)
	}
}

// classifyTransport tags an error that never produced an HTTP status.
// Context errors pass through untouched so callers can detect them.
func classifyTransport(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &ErrProviderUnavailable{Err: err}
}
