package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/openimc/planserve/internal/analytics"
	"github.com/openimc/planserve/internal/models"
	"github.com/openimc/planserve/internal/narrative"
)

// PlanHandler handles POST /plan: the full pipeline. It forecasts, allocates,
// optionally asks the narrative service for prose, persists the plan and
// records a calculation event. Persistence failures degrade to a warning in
// the response rather than failing the computation.
func (s *Server) PlanHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "/plan"
	method := r.Method

	if r.Method != http.MethodPost {
		s.Metrics.IncrementRequests(endpoint, method, "405")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.Limiter != nil && !s.Limiter.Allow(clientID(r)) {
		s.Metrics.IncrementRequests(endpoint, method, "429")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
		return
	}

	var input models.IMCInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.Logger.Error("invalid plan request", zap.Error(err))
		s.Metrics.IncrementRequests(endpoint, method, "400")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p, err := s.Assembler.BuildPlan(&input)
	if err != nil {
		status := s.writeEngineError(w, endpoint, method, err)
		s.Metrics.IncrementRequests(endpoint, method, status)
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		return
	}

	if s.Narrative != nil && s.Config.NarrativeEnabled {
		req := &narrative.Request{
			PlanID:        p.ID,
			Industry:      input.Industry,
			TimelineWeeks: input.TimelineWeeks,
			ChannelHints:  s.Engine.Benchmarks.HintsForIndustry(input.Industry),
			Metrics:       p.Metrics,
			Distribution:  p.Distribution,
		}
		// Fail open: a plan without prose is still a plan.
		if n, err := s.Narrative.Generate(r.Context(), req); err == nil {
			p.Narrative = n
		}
	}

	s.persistPlan(r.Context(), p, time.Since(start))

	s.Metrics.IncrementPlans(input.PlanningMode, p.Metrics.Feasibility.RiskLevel)
	s.Metrics.RecordImpliedROAS(input.CampaignFocus, p.Metrics.ImpliedROAS)
	if p.Distribution != nil {
		if n := len(p.Distribution.DisabledChannels); n > 0 {
			s.Metrics.IncrementDisabledChannels(input.CampaignFocus, n)
		}
	}

	writeJSON(w, http.StatusCreated, p)
	s.Metrics.IncrementRequests(endpoint, method, "201")
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
}

// persistPlan writes the plan to Postgres, warms the Redis cache, bumps the
// daily counter and logs a calculation event to ClickHouse. Each sink is
// independent; one failing does not stop the others.
func (s *Server) persistPlan(ctx context.Context, p *models.MarketingPlan, duration time.Duration) {
	if s.PG != nil {
		if err := s.PG.SavePlan(ctx, p); err != nil {
			s.Logger.Error("save plan", zap.Error(err), zap.String("plan_id", p.ID))
			s.Metrics.IncrementPlanPersistErrors()
		}
	}

	if s.Redis != nil {
		if err := s.Redis.CachePlan(p); err != nil {
			s.Logger.Warn("cache plan", zap.Error(err), zap.String("plan_id", p.ID))
		}
		if _, err := s.Redis.IncrementPlanCount(p.Input.Industry); err != nil {
			s.Logger.Warn("increment plan count", zap.Error(err))
		}
	}

	if s.Analytics != nil {
		ev := analytics.EventFromPlan(p, duration)
		if err := s.Analytics.RecordCalculation(ctx, ev); err != nil {
			s.Logger.Warn("record calculation event", zap.Error(err), zap.String("plan_id", p.ID))
		}
	}
}
