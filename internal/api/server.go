// Package api exposes the planning engine over HTTP: stateless forecast
// and distribution endpoints, the full plan pipeline with persistence,
// and read access to stored plans and aggregate reports.
package api

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/openimc/planserve/internal/allocation"
	"github.com/openimc/planserve/internal/analytics"
	"github.com/openimc/planserve/internal/config"
	"github.com/openimc/planserve/internal/db"
	"github.com/openimc/planserve/internal/engine"
	"github.com/openimc/planserve/internal/models"
	"github.com/openimc/planserve/internal/narrative"
	"github.com/openimc/planserve/internal/observability"
	"github.com/openimc/planserve/internal/plan"
	"github.com/openimc/planserve/internal/ratelimit"
)

// Server groups dependencies for HTTP handlers. Postgres, Redis, ClickHouse
// and the narrative client may all be nil: the calculation endpoints stay
// functional and only persistence-backed features degrade.
type Server struct {
	Logger    *zap.Logger
	PG        *db.Postgres
	Redis     *db.RedisStore
	Analytics analytics.AnalyticsService
	Engine    *engine.Engine
	Allocator *allocation.Allocator
	Assembler *plan.Assembler
	Narrative *narrative.Client
	Limiter   *ratelimit.ClientLimiter
	Metrics   observability.MetricsRegistry
	Config    config.Config
}

// NewServer constructs a Server. A nil metrics registry falls back to the
// no-op implementation so tests don't touch global Prometheus state.
func NewServer(logger *zap.Logger, pg *db.Postgres, redis *db.RedisStore, an analytics.AnalyticsService, eng *engine.Engine, alloc *allocation.Allocator, nc *narrative.Client, limiter *ratelimit.ClientLimiter, metrics observability.MetricsRegistry, cfg config.Config) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NewNoOpRegistry()
	}
	return &Server{
		Logger:    logger,
		PG:        pg,
		Redis:     redis,
		Analytics: an,
		Engine:    eng,
		Allocator: alloc,
		Assembler: plan.NewAssembler(eng, alloc, logger),
		Narrative: nc,
		Limiter:   limiter,
		Metrics:   metrics,
		Config:    cfg,
	}
}

// writeJSON writes v as a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse is the uniform error body for all endpoints.
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// writeEngineError maps calculation errors to HTTP responses. Validation
// errors carry the offending field and return 400; anything else is a 500.
func (s *Server) writeEngineError(w http.ResponseWriter, endpoint, method string, err error) string {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		s.Metrics.IncrementValidationFailures(verr.Field)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error(), Field: verr.Field})
		return "400"
	}
	s.Logger.Error("calculation failed", zap.String("endpoint", endpoint), zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	return "500"
}

// clientID identifies the caller for rate limiting: the API key when one is
// sent, otherwise the remote host.
func clientID(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
