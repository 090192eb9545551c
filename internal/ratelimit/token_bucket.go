// Package ratelimit implements token bucket rate limiting for API clients.
//
// The token bucket algorithm allows for burst traffic up to the bucket
// capacity while maintaining a sustained rate limit over time. Plan
// computation is cheap but persistence is not, so the /plan endpoint is
// the main consumer.
package ratelimit

import (
	"sync"
	"time"
)

// TokenBucket implements a thread-safe token bucket rate limiter.
//
// The bucket has a fixed capacity and refills at a constant rate.
// Each request consumes one token. When the bucket is empty,
// requests are rejected until tokens refill.
type TokenBucket struct {
	capacity   int        // Maximum number of tokens the bucket can hold
	tokens     int        // Current number of tokens in the bucket
	refillRate int        // Number of tokens added per second
	lastRefill time.Time  // Last time tokens were added to the bucket
	mu         sync.Mutex // Protects all bucket state
	hitCount   int64      // Number of requests that were rate limited
	totalCount int64      // Total number of requests processed
}

// NewTokenBucket creates a bucket with the given burst capacity and
// per-second refill rate. The bucket starts full.
func NewTokenBucket(capacity, refillRate int) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		tokens:     capacity,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow attempts to consume one token from the bucket.
//
// Returns true if a token was available and consumed (request allowed).
// Returns false if no tokens are available (request should be rate limited).
// Tokens refill automatically based on elapsed time since the last refill.
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.totalCount++

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill)

	tokensToAdd := int(elapsed.Seconds() * float64(tb.refillRate))
	if tokensToAdd > 0 {
		tb.tokens = min(tb.capacity, tb.tokens+tokensToAdd)
		tb.lastRefill = now
	}

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}

	tb.hitCount++
	return false
}

// Stats returns the number of rate limited requests and the total number
// of requests processed by this bucket.
func (tb *TokenBucket) Stats() (hits, total int64) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.hitCount, tb.totalCount
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
