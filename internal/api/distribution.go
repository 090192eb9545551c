package api

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/openimc/planserve/internal/models"
)

// DistributionRequest is the payload for a standalone channel allocation,
// bypassing the funnel forecast.
type DistributionRequest struct {
	TotalBudget   float64                `json:"total_budget"`
	CampaignFocus string                 `json:"campaign_focus"`
	Industry      string                 `json:"industry,omitempty"`
	Assets        *models.AssetChecklist `json:"assets,omitempty"`
}

// DistributionHandler handles POST /distribution: splits a known budget
// across channels without running the forecast first.
func (s *Server) DistributionHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "/distribution"
	method := r.Method

	if r.Method != http.MethodPost {
		s.Metrics.IncrementRequests(endpoint, method, "405")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req DistributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.Logger.Error("invalid distribution request", zap.Error(err))
		s.Metrics.IncrementRequests(endpoint, method, "400")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if min := s.Allocator.Benchmarks.MinTotalBudget; req.TotalBudget < min {
		err := models.NewValidationError("total_budget", "total_budget must be at least %.0f", min)
		status := s.writeEngineError(w, endpoint, method, err)
		s.Metrics.IncrementRequests(endpoint, method, status)
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		return
	}

	assets := models.DefaultAssetChecklist()
	if req.Assets != nil {
		assets = *req.Assets
	}

	dist, err := s.Allocator.ComputeDistribution(req.TotalBudget, req.CampaignFocus, req.Industry, assets)
	if err != nil {
		status := s.writeEngineError(w, endpoint, method, err)
		s.Metrics.IncrementRequests(endpoint, method, status)
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		return
	}

	if n := len(dist.DisabledChannels); n > 0 {
		s.Metrics.IncrementDisabledChannels(req.CampaignFocus, n)
	}

	writeJSON(w, http.StatusOK, dist)
	s.Metrics.IncrementRequests(endpoint, method, "200")
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
}
