// Package narrative is the client for the external narrative generator,
// the LLM-backed collaborator that phrases calculated metrics and budget
// distributions as prose campaign plans. The generator is strictly a
// one-way consumer: its output never feeds back into the engine, and a
// failed call only means the plan ships without prose.
package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/openimc/planserve/internal/models"
	"github.com/openimc/planserve/internal/observability"
)

// Client calls the narrative generation service over HTTP with a tight
// timeout and caches responses per plan.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      map[string]*cachedNarrative
	cacheMu    sync.RWMutex
	cacheTTL   time.Duration
	logger     *zap.Logger
	metrics    observability.MetricsRegistry
}

// Request is the payload sent to the narrative generator: the numbers to
// phrase plus industry channel-name hints from the benchmark table.
type Request struct {
	PlanID        string                     `json:"plan_id"`
	Industry      string                     `json:"industry"`
	TimelineWeeks int                        `json:"timeline_weeks"`
	ChannelHints  []string                   `json:"channel_hints,omitempty"`
	Metrics       models.CalculatedMetrics   `json:"metrics"`
	Distribution  *models.BudgetDistribution `json:"distribution,omitempty"`
}

type cachedNarrative struct {
	narrative *models.PlanNarrative
	timestamp time.Time
	ttl       time.Duration
}

func (c *cachedNarrative) expired() bool {
	return time.Since(c.timestamp) > c.ttl
}

// NewClient creates a narrative client.
func NewClient(baseURL string, timeout, cacheTTL time.Duration, logger *zap.Logger, metrics observability.MetricsRegistry) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		cache:      make(map[string]*cachedNarrative),
		cacheTTL:   cacheTTL,
		logger:     logger,
		metrics:    metrics,
	}
}

// Generate returns the prose narrative for a plan. Responses are cached by
// plan ID. Errors mean the plan proceeds without a narrative; the caller
// must not treat them as fatal.
func (c *Client) Generate(ctx context.Context, req *Request) (*models.PlanNarrative, error) {
	c.cacheMu.RLock()
	cached, exists := c.cache[req.PlanID]
	c.cacheMu.RUnlock()
	if exists && !cached.expired() {
		return cached.narrative, nil
	}

	narrative, err := c.callService(ctx, req)
	if err != nil {
		c.logger.Warn("narrative service unavailable, plan ships without prose",
			zap.Error(err),
			zap.String("plan_id", req.PlanID))
		return nil, err
	}

	c.cacheMu.Lock()
	c.cache[req.PlanID] = &cachedNarrative{
		narrative: narrative,
		timestamp: time.Now(),
		ttl:       c.cacheTTL,
	}
	c.cacheMu.Unlock()

	return narrative, nil
}

func (c *Client) callService(ctx context.Context, req *Request) (*models.PlanNarrative, error) {
	start := time.Now()
	outcome := "success"
	defer func() {
		c.metrics.RecordNarrativeLatency(time.Since(start))
		c.metrics.IncrementNarrativeRequests(outcome)
	}()

	reqBody, err := json.Marshal(req)
	if err != nil {
		outcome = "failure"
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/narrative", bytes.NewReader(reqBody))
	if err != nil {
		outcome = "failure"
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		outcome = "failure"
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil && c.logger != nil {
			c.logger.Warn("failed to close response body", zap.Error(err))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		outcome = "failure"
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(body))
	}

	var narrative models.PlanNarrative
	if err := json.NewDecoder(resp.Body).Decode(&narrative); err != nil {
		outcome = "failure"
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &narrative, nil
}

// HealthCheck checks if the narrative service is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create health check request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil && c.logger != nil {
			c.logger.Warn("failed to close response body", zap.Error(err))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status %d", resp.StatusCode)
	}
	return nil
}

// CleanupExpiredCache removes expired entries from the cache.
func (c *Client) CleanupExpiredCache() {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	for key, cached := range c.cache {
		if cached.expired() {
			delete(c.cache, key)
		}
	}
}

// StartCacheCleanup periodically evicts expired cache entries.
func (c *Client) StartCacheCleanup(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			c.CleanupExpiredCache()
		}
	}()
}

// SetBaseURL overrides the service URL (for testing).
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}
