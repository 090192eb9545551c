package ratelimit

import (
	"fmt"
	"sync"

	"github.com/openimc/planserve/internal/observability"
)

// ClientLimiter manages rate limiting across API clients.
//
// Each client gets its own token bucket, created lazily on first access.
// Clients are identified by API key when present, otherwise by remote
// address. The limiter reports activity through the injected metrics
// registry.
type ClientLimiter struct {
	buckets map[string]*TokenBucket       // Map of client ID to token bucket
	mu      sync.RWMutex                  // Protects the buckets map
	config  Config                        // Rate limiting configuration
	metrics observability.MetricsRegistry // Metrics registry for tracking rate limiting activity
}

// Config holds the configuration for rate limiting.
type Config struct {
	Capacity   int  // Token bucket capacity (burst allowance)
	RefillRate int  // Tokens added per second (sustained rate)
	Enabled    bool // Whether rate limiting is active
}

// NewClientLimiter creates a new per-client rate limiter.
func NewClientLimiter(config Config, metrics observability.MetricsRegistry) *ClientLimiter {
	return &ClientLimiter{
		buckets: make(map[string]*TokenBucket),
		config:  config,
		metrics: metrics,
	}
}

// Allow checks if a request from the given client should be allowed.
//
// If rate limiting is disabled via config, this method always returns true.
// Buckets for unseen clients are created on demand.
func (cl *ClientLimiter) Allow(clientID string) bool {
	if !cl.config.Enabled {
		return true
	}

	cl.metrics.IncrementRateLimitRequests(clientID)

	cl.mu.RLock()
	bucket, exists := cl.buckets[clientID]
	cl.mu.RUnlock()

	if !exists {
		// Double-checked locking pattern to avoid race conditions
		cl.mu.Lock()
		bucket, exists = cl.buckets[clientID]
		if !exists {
			bucket = NewTokenBucket(cl.config.Capacity, cl.config.RefillRate)
			cl.buckets[clientID] = bucket
		}
		cl.mu.Unlock()
	}

	allowed := bucket.Allow()
	if !allowed {
		cl.metrics.IncrementRateLimitHits(clientID)
	}

	return allowed
}

// GetStats returns a snapshot of rate limiting statistics per client.
func (cl *ClientLimiter) GetStats() map[string]RateLimitStats {
	cl.mu.RLock()
	defer cl.mu.RUnlock()

	stats := make(map[string]RateLimitStats)
	for clientID, bucket := range cl.buckets {
		hits, total := bucket.Stats()
		hitRate := 0.0
		if total > 0 {
			hitRate = float64(hits) / float64(total)
		}
		stats[clientID] = RateLimitStats{
			ClientID: clientID,
			Hits:     hits,
			Total:    total,
			HitRate:  hitRate,
		}
	}

	return stats
}

// RateLimitStats contains statistics about rate limiting for a single client.
type RateLimitStats struct {
	ClientID string  `json:"ClientID"` // Client identifier
	Hits     int64   `json:"Hits"`     // Number of rate limited requests
	Total    int64   `json:"Total"`    // Total number of requests processed
	HitRate  float64 `json:"HitRate"`  // Percentage of requests rate limited (0.0-1.0)
}

// String returns a human-readable representation of the rate limit statistics.
func (rls RateLimitStats) String() string {
	return fmt.Sprintf("Client %s: %d/%d hits (%.2f%%)",
		rls.ClientID, rls.Hits, rls.Total, rls.HitRate*100)
}
