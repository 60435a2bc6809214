package ratelimiter

import (
	"testing"
	"time"
)

func TestRateLimiter_TryConsume(t *testing.T) {
	rl := New(100, 10)

	// Should be able to proceed
	if !rl.TryConsume(10) {
		t.Error("should be able to proceed with valid request")
	}

	// Test running out of tokens
	smallTokenRL := New(10, 100)
	if !smallTokenRL.TryConsume(10) {
		t.Error("should be able to consume exactly available tokens")
	}
	if smallTokenRL.TryConsume(1) {
		t.Error("should not proceed when tokens exhausted")
	}

	// Test running out of requests
	smallReqRL := New(100, 1)
	if !smallReqRL.TryConsume(1) {
		t.Error("should be able to proceed with 1st request")
	}
	if smallReqRL.TryConsume(1) {
		t.Error("should not proceed when requests exhausted")
	}
}

func TestRateLimiter_RejectedRequestKeepsTokens(t *testing.T) {
	rl := New(100, 1)

	if !rl.TryConsume(10) {
		t.Fatal("first request should pass")
	}
	// Request bucket is empty, so this must not drain the token bucket.
	if rl.TryConsume(50) {
		t.Fatal("second request should be rejected by the request budget")
	}

	remaining := rl.tokens.TokensAt(time.Now())
	if remaining < 89 {
		t.Errorf("expected ~90 tokens left, got %.1f", remaining)
	}
}

func TestRateLimiter_OversizedRequest(t *testing.T) {
	rl := New(10, 10)

	if rl.TryConsume(11) {
		t.Error("request larger than the bucket should never pass")
	}
	if got := rl.TimeUntilAvailable(11); got < time.Hour {
		t.Errorf("expected effectively infinite wait, got %v", got)
	}
}

func TestRateLimiter_TimeUntilAvailable(t *testing.T) {
	rl := New(60, 60) // 1 token per second

	// Consume all tokens
	if !rl.TryConsume(60) {
		t.Fatal("should consume full bucket")
	}

	// We need 1 token. Refill rate is 1/sec.
	wait := rl.TimeUntilAvailable(1)
	if wait < 900*time.Millisecond || wait > 1500*time.Millisecond {
		t.Errorf("expected wait around 1s, got %v", wait)
	}

	// Peeking must not consume anything.
	again := rl.TimeUntilAvailable(1)
	if again > wait {
		t.Errorf("TimeUntilAvailable consumed capacity: %v then %v", wait, again)
	}
}

func TestRateLimiter_Unlimited(t *testing.T) {
	rl := New(0, 0)
	for i := 0; i < 1000; i++ {
		if !rl.TryConsume(1_000_000) {
			t.Fatalf("unlimited limiter rejected request %d", i)
		}
	}
	if got := rl.TimeUntilAvailable(1_000_000); got != 0 {
		t.Errorf("expected no wait, got %v", got)
	}
}
