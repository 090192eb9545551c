package observability

import "time"

// MetricsRegistry provides an interface for recording application metrics
// This replaces direct access to global Prometheus metrics with dependency injection
type MetricsRegistry interface {
	// HTTP request metrics
	IncrementRequests(endpoint, method, status string)
	RecordRequestLatency(endpoint, method string, duration time.Duration)

	// Plan calculation metrics
	IncrementPlans(mode, riskLevel string)
	RecordImpliedROAS(focus string, roas float64)
	IncrementValidationFailures(field string)
	IncrementDisabledChannels(focus string, count int)

	// Persistence metrics
	IncrementPlanPersistErrors()

	// Narrative generation metrics
	IncrementNarrativeRequests(outcome string)
	RecordNarrativeLatency(duration time.Duration)

	// Rate limiting metrics
	IncrementRateLimitRequests(client string)
	IncrementRateLimitHits(client string)
}

// PrometheusRegistry implements MetricsRegistry using the global Prometheus metrics
type PrometheusRegistry struct{}

// NewPrometheusRegistry creates a new PrometheusRegistry
func NewPrometheusRegistry() *PrometheusRegistry {
	return &PrometheusRegistry{}
}

func (r *PrometheusRegistry) IncrementRequests(endpoint, method, status string) {
	RequestCount.WithLabelValues(endpoint, method, status).Inc()
}

func (r *PrometheusRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {
	RequestLatency.WithLabelValues(endpoint, method).Observe(duration.Seconds())
}

func (r *PrometheusRegistry) IncrementPlans(mode, riskLevel string) {
	PlanCount.WithLabelValues(mode, riskLevel).Inc()
}

func (r *PrometheusRegistry) RecordImpliedROAS(focus string, roas float64) {
	ImpliedROAS.WithLabelValues(focus).Observe(roas)
}

func (r *PrometheusRegistry) IncrementValidationFailures(field string) {
	ValidationFailures.WithLabelValues(field).Inc()
}

func (r *PrometheusRegistry) IncrementDisabledChannels(focus string, count int) {
	DisabledChannelCount.WithLabelValues(focus).Add(float64(count))
}

func (r *PrometheusRegistry) IncrementPlanPersistErrors() {
	PlanPersistErrors.Inc()
}

func (r *PrometheusRegistry) IncrementNarrativeRequests(outcome string) {
	NarrativeRequests.WithLabelValues(outcome).Inc()
}

func (r *PrometheusRegistry) RecordNarrativeLatency(duration time.Duration) {
	NarrativeLatency.Observe(duration.Seconds())
}

func (r *PrometheusRegistry) IncrementRateLimitRequests(client string) {
	RateLimitRequests.WithLabelValues(client).Inc()
}

func (r *PrometheusRegistry) IncrementRateLimitHits(client string) {
	RateLimitHits.WithLabelValues(client).Inc()
}

// NoOpRegistry implements MetricsRegistry with no-op methods for testing
type NoOpRegistry struct{}

// NewNoOpRegistry creates a new NoOpRegistry
func NewNoOpRegistry() *NoOpRegistry {
	return &NoOpRegistry{}
}

func (r *NoOpRegistry) IncrementRequests(endpoint, method, status string)                    {}
func (r *NoOpRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {}
func (r *NoOpRegistry) IncrementPlans(mode, riskLevel string)                                {}
func (r *NoOpRegistry) RecordImpliedROAS(focus string, roas float64)                         {}
func (r *NoOpRegistry) IncrementValidationFailures(field string)                             {}
func (r *NoOpRegistry) IncrementDisabledChannels(focus string, count int)                    {}
func (r *NoOpRegistry) IncrementPlanPersistErrors()                                          {}
func (r *NoOpRegistry) IncrementNarrativeRequests(outcome string)                            {}
func (r *NoOpRegistry) RecordNarrativeLatency(duration time.Duration)                        {}
func (r *NoOpRegistry) IncrementRateLimitRequests(client string)                             {}
func (r *NoOpRegistry) IncrementRateLimitHits(client string)                                 {}
