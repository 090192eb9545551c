package api

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/openimc/planserve/internal/models"
	"github.com/openimc/planserve/internal/observability"
)

// ForecastHandler handles POST /forecast: funnel metrics and a feasibility
// verdict for one campaign input, without allocation or persistence.
func (s *Server) ForecastHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "/forecast"
	method := r.Method

	if r.Method != http.MethodPost {
		s.Metrics.IncrementRequests(endpoint, method, "405")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var input models.IMCInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.Logger.Error("invalid forecast request", zap.Error(err))
		s.Metrics.IncrementRequests(endpoint, method, "400")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	metrics, err := s.Engine.ComputeMetrics(&input)
	if err != nil {
		status := s.writeEngineError(w, endpoint, method, err)
		s.Metrics.IncrementRequests(endpoint, method, status)
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		return
	}

	s.Metrics.RecordImpliedROAS(input.CampaignFocus, metrics.ImpliedROAS)
	writeJSON(w, http.StatusOK, metrics)

	s.Metrics.IncrementRequests(endpoint, method, "200")
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))

	if observability.ShouldSample(observability.GetSamplingRate()) {
		s.Logger.Info("forecast completed",
			zap.String("mode", input.PlanningMode),
			zap.String("focus", input.CampaignFocus),
			zap.Float64("implied_roas", metrics.ImpliedROAS),
			zap.String("risk_level", metrics.Feasibility.RiskLevel),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
