package ratelimiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter enforces a per-minute token budget and a per-minute request budget.
// Both buckets start full and refill continuously.
type RateLimiter struct {
	mu       sync.Mutex
	tokens   *rate.Limiter
	requests *rate.Limiter
}

// Ensure RateLimiter implements Limiter.
var _ Limiter = (*RateLimiter)(nil)

// New creates a limiter allowing tokensPerMinute tokens and requestsPerMinute requests.
// A non-positive budget leaves that dimension unlimited.
func New(tokensPerMinute, requestsPerMinute int) *RateLimiter {
	return &RateLimiter{
		tokens:   perMinute(tokensPerMinute),
		requests: perMinute(requestsPerMinute),
	}
}

// NewFromLimits creates a RateLimiter from a RateLimits configuration.
func NewFromLimits(limits RateLimits) *RateLimiter {
	return New(limits.TokensPerMinute, limits.RequestsPerMinute)
}

func perMinute(n int) *rate.Limiter {
	if n <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(float64(n)/time.Minute.Seconds()), n)
}

// TryConsume takes numTokens from the token bucket and one request from the request
// bucket, or nothing at all.
func (rl *RateLimiter) TryConsume(numTokens int) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	tr := rl.tokens.ReserveN(now, numTokens)
	if !tr.OK() || tr.DelayFrom(now) > 0 {
		tr.CancelAt(now)
		return false
	}

	rr := rl.requests.ReserveN(now, 1)
	if !rr.OK() || rr.DelayFrom(now) > 0 {
		rr.CancelAt(now)
		tr.CancelAt(now)
		return false
	}
	return true
}

// TimeUntilAvailable returns how long until the specified tokens and one request would be available.
// Requests larger than the bucket never become available and report rate.InfDuration.
func (rl *RateLimiter) TimeUntilAvailable(tokens int) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	return max(peekDelay(rl.tokens, now, tokens), peekDelay(rl.requests, now, 1))
}

func peekDelay(l *rate.Limiter, now time.Time, n int) time.Duration {
	r := l.ReserveN(now, n)
	if !r.OK() {
		return rate.InfDuration
	}
	d := r.DelayFrom(now)
	r.CancelAt(now)
	return d
}

// RateLimits mirrors the imageedit.RateLimits type to avoid circular imports.
type RateLimits struct {
	TokensPerMinute   int
	RequestsPerMinute int
}
