package api

import (
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/openimc/planserve/internal/analytics"
	"github.com/openimc/planserve/internal/reporting"
)

// PlanningReportHandler handles GET /report/planning: aggregate plan volume,
// risk mix and per-focus averages from the ClickHouse calculation log. The
// days query parameter sets the trailing window (default 7).
func (s *Server) PlanningReportHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "/report/planning"
	const method = "GET"

	ch, ok := s.Analytics.(*analytics.Analytics)
	if !ok || ch == nil || ch.DB == nil {
		s.Metrics.IncrementRequests(endpoint, method, "503")
		http.Error(w, "reporting unavailable", http.StatusServiceUnavailable)
		return
	}

	days := 7
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.Metrics.IncrementRequests(endpoint, method, "400")
			http.Error(w, "invalid days", http.StatusBadRequest)
			return
		}
		days = n
	}

	summary, err := reporting.GeneratePlanningReport(r.Context(), ch.DB, days)
	if err != nil {
		s.Logger.Error("planning report", zap.Error(err))
		s.Metrics.IncrementRequests(endpoint, method, "500")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, summary)
	s.Metrics.IncrementRequests(endpoint, method, "200")
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
}
