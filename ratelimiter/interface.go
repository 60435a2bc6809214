// Package ratelimiter bounds how fast edit requests are sent to a model.
package ratelimiter

import "time"

// Limiter admits or rejects a request of a given token cost. It never blocks:
// callers that are refused report the delay to the user instead of waiting.
type Limiter interface {
	// TryConsume admits the request and charges its cost, or charges nothing
	// and returns false.
	TryConsume(numTokens int) bool

	// TimeUntilAvailable reports how long until a request of this cost would
	// be admitted. It does not charge anything.
	TimeUntilAvailable(tokens int) time.Duration
}
