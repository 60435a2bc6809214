package imageedit

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrValidation marks a request rejected locally, before any network call.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyResult is returned when the model answered but produced no image.
	// This is how the upstream signals that it declined or could not perform the edit.
	ErrEmptyResult = errors.New("model did not return an image")

	// ErrMissingAPIKey is returned at startup when no credential is configured.
	ErrMissingAPIKey = errors.New("API key not configured")
)

// ErrorKind is the coarse classification of an edit failure.
type ErrorKind string

const (
	ErrorKindNone        ErrorKind = ""
	ErrorKindValidation  ErrorKind = "validation"
	ErrorKindEmptyResult ErrorKind = "empty_result"
	ErrorKindTransport   ErrorKind = "transport"
)

// TransportError wraps any failure talking to the provider: network errors,
// non-success statuses and undecodable payloads.
type TransportError struct {
	Model string
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("edit request to %s failed: %v", e.Model, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RateLimitError is returned when a rate limit is hit, either by the local
// limiter or by the provider.
type RateLimitError struct {
	RetryAfter time.Duration
	LimitType  string
	Model      string
	Err        error // Underlying error from the provider
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s: %s limit, retry after %v",
		e.Model, e.LimitType, e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// IsRateLimitError checks if an error is a RateLimitError.
func IsRateLimitError(err error) bool {
	var rlErr *RateLimitError
	return errors.As(err, &rlErr)
}

// Classify maps an error returned by Edit to its ErrorKind.
// Anything that is neither a validation failure nor an empty result is a transport failure.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrorKindNone
	case errors.Is(err, ErrValidation):
		return ErrorKindValidation
	case errors.Is(err, ErrEmptyResult):
		return ErrorKindEmptyResult
	default:
		return ErrorKindTransport
	}
}
