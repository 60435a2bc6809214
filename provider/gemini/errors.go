package gemini

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/mhpenta/imageedit"
	"google.golang.org/genai"
)

// defaultRetryAfter is reported on 429s; the API doesn't reliably provide Retry-After.
const defaultRetryAfter = 60 * time.Second

// wrapAPIError turns an SDK error into a RateLimitError for 429/RESOURCE_EXHAUSTED
// and a TransportError for everything else. Context cancellation is kept
// recognizable through Unwrap.
func wrapAPIError(err error, model string) error {
	if err == nil {
		return nil
	}

	if code, status, ok := apiErrorCode(err); ok && (code == http.StatusTooManyRequests || status == "RESOURCE_EXHAUSTED") {
		return &imageedit.RateLimitError{
			RetryAfter: defaultRetryAfter,
			LimitType:  "requests",
			Model:      model,
			Err:        err,
		}
	}

	return &imageedit.TransportError{Model: model, Err: err}
}

// apiErrorCode extracts the HTTP code and status from a genai.APIError,
// whichever way the SDK returned it.
func apiErrorCode(err error) (int, string, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.Status, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, apiErrPtr.Status, true
	}
	return 0, "", false
}

// IsAuthError reports whether err means the API key was rejected.
func IsAuthError(err error) bool {
	code, status, ok := apiErrorCode(err)
	if !ok {
		return false
	}
	switch {
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return true
	case status == "PERMISSION_DENIED", status == "UNAUTHENTICATED":
		return true
	default:
		return false
	}
}

// ValidateAPIKey makes a cheap metadata call for the default model to check
// that the key is accepted. It does not consume generation quota.
func (g *GeminiEditor) ValidateAPIKey(ctx context.Context) error {
	model := g.Models()[0].APIModelName
	if _, err := g.client.Models.Get(ctx, model, nil); err != nil {
		return wrapAPIError(err, model)
	}
	return nil
}
