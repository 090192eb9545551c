package api

import (
	"net/http"
	"time"
)

// HealthHandler reports liveness. It deliberately checks nothing beyond
// the process itself: the planning core has no required backends, and the
// store-backed endpoints degrade on their own when one is down.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))

	s.Metrics.IncrementRequests("health", r.Method, "200")
	s.Metrics.RecordRequestLatency("health", r.Method, time.Since(start))
}
