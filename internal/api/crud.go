package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/openimc/planserve/internal/models"
)

// ListPlans handles GET /api/plans. The limit query parameter caps the
// result count; it defaults to 100 in the store.
func (s *Server) ListPlans(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "/api/plans"
	const method = "GET"

	if s.PG == nil {
		s.Metrics.IncrementRequests(endpoint, method, "503")
		http.Error(w, "plan store unavailable", http.StatusServiceUnavailable)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.Metrics.IncrementRequests(endpoint, method, "400")
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	plans, err := s.PG.LoadPlans(r.Context(), limit)
	if err != nil {
		s.Logger.Error("load plans", zap.Error(err))
		s.Metrics.IncrementRequests(endpoint, method, "500")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if plans == nil {
		plans = []models.MarketingPlan{}
	}

	writeJSON(w, http.StatusOK, plans)
	s.Metrics.IncrementRequests(endpoint, method, "200")
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
}

// GetPlan handles GET /api/plans/{id}. Reads go through the Redis cache
// first and fall back to Postgres, warming the cache on the way back.
func (s *Server) GetPlan(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "/api/plans/{id}"
	const method = "GET"

	id := mux.Vars(r)["id"]
	if id == "" {
		s.Metrics.IncrementRequests(endpoint, method, "400")
		http.Error(w, "plan id required", http.StatusBadRequest)
		return
	}

	if s.Redis != nil {
		if p, err := s.Redis.GetCachedPlan(id); err == nil {
			writeJSON(w, http.StatusOK, p)
			s.Metrics.IncrementRequests(endpoint, method, "200")
			s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
			return
		}
	}

	if s.PG == nil {
		s.Metrics.IncrementRequests(endpoint, method, "503")
		http.Error(w, "plan store unavailable", http.StatusServiceUnavailable)
		return
	}

	p, err := s.PG.GetPlan(r.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		s.Metrics.IncrementRequests(endpoint, method, "404")
		http.Error(w, "plan not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.Logger.Error("get plan", zap.Error(err), zap.String("plan_id", id))
		s.Metrics.IncrementRequests(endpoint, method, "500")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if s.Redis != nil {
		if err := s.Redis.CachePlan(p); err != nil {
			s.Logger.Warn("warm plan cache", zap.Error(err), zap.String("plan_id", id))
		}
	}

	writeJSON(w, http.StatusOK, p)
	s.Metrics.IncrementRequests(endpoint, method, "200")
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
}

// DeletePlan handles DELETE /api/plans/{id}. The cache entry is dropped
// even when Postgres reports the plan missing.
func (s *Server) DeletePlan(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "/api/plans/{id}"
	const method = "DELETE"

	id := mux.Vars(r)["id"]
	if id == "" {
		s.Metrics.IncrementRequests(endpoint, method, "400")
		http.Error(w, "plan id required", http.StatusBadRequest)
		return
	}

	if s.PG == nil {
		s.Metrics.IncrementRequests(endpoint, method, "503")
		http.Error(w, "plan store unavailable", http.StatusServiceUnavailable)
		return
	}

	if s.Redis != nil {
		if err := s.Redis.InvalidatePlan(id); err != nil {
			s.Logger.Warn("invalidate plan cache", zap.Error(err), zap.String("plan_id", id))
		}
	}

	err := s.PG.DeletePlan(r.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		s.Metrics.IncrementRequests(endpoint, method, "404")
		http.Error(w, "plan not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.Logger.Error("delete plan", zap.Error(err), zap.String("plan_id", id))
		s.Metrics.IncrementRequests(endpoint, method, "500")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
	s.Metrics.IncrementRequests(endpoint, method, "204")
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
}
