package ratelimit

import (
	"testing"

	"github.com/openimc/planserve/internal/observability"
)

func TestClientLimiter_Disabled(t *testing.T) {
	limiter := NewClientLimiter(Config{Capacity: 1, RefillRate: 1, Enabled: false}, observability.NewNoOpRegistry())

	for i := 0; i < 10; i++ {
		if !limiter.Allow("agency-a") {
			t.Fatal("disabled limiter must always allow")
		}
	}
}

func TestClientLimiter_PerClientBuckets(t *testing.T) {
	limiter := NewClientLimiter(Config{Capacity: 2, RefillRate: 1, Enabled: true}, observability.NewNoOpRegistry())

	// Exhaust client A's bucket
	limiter.Allow("agency-a")
	limiter.Allow("agency-a")
	if limiter.Allow("agency-a") {
		t.Error("expected agency-a to be rate limited")
	}

	// Client B is unaffected
	if !limiter.Allow("agency-b") {
		t.Error("expected agency-b to be allowed")
	}
}

func TestClientLimiter_GetStats(t *testing.T) {
	limiter := NewClientLimiter(Config{Capacity: 1, RefillRate: 1, Enabled: true}, observability.NewNoOpRegistry())

	limiter.Allow("agency-a")
	limiter.Allow("agency-a") // rate limited

	stats := limiter.GetStats()
	s, ok := stats["agency-a"]
	if !ok {
		t.Fatal("expected stats for agency-a")
	}
	if s.Total != 2 || s.Hits != 1 {
		t.Errorf("unexpected stats: %s", s)
	}
	if s.HitRate != 0.5 {
		t.Errorf("expected hit rate 0.5, got %f", s.HitRate)
	}
}
