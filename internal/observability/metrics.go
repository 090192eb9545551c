package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// total requests per endpoint, method and status code
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planserve_requests_total",
			Help: "Total API requests received",
		},
		[]string{"endpoint", "method", "status"},
	)

	// request latency in seconds per endpoint/method
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "planserve_request_duration_seconds",
			Help:    "Histogram of request latencies",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)

	// plans computed, labelled by planning mode and resulting risk tier
	PlanCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planserve_plans_total",
			Help: "Total plans computed",
		},
		[]string{"mode", "risk_level"},
	)

	// distribution of implied ROAS values by campaign focus
	ImpliedROAS = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "planserve_implied_roas",
			Help:    "Histogram of implied ROAS values",
			Buckets: prometheus.LinearBuckets(0, 1, 16),
		},
		[]string{"focus"},
	)

	// validation failures per offending field
	ValidationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planserve_validation_failures_total",
			Help: "Total input validation failures",
		},
		[]string{"field"},
	)

	// channels removed from allocations by asset gating
	DisabledChannelCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planserve_disabled_channels_total",
			Help: "Total channels disabled by asset gating",
		},
		[]string{"focus"},
	)

	// number of errors persisting plans
	PlanPersistErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "planserve_plan_persist_errors_total",
			Help: "Total plan persistence errors",
		},
	)

	// narrative generation requests labelled by outcome
	NarrativeRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planserve_narrative_total",
			Help: "Total narrative generation requests",
		},
		[]string{"outcome"},
	)

	// latency of narrative service calls
	NarrativeLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "planserve_narrative_duration_seconds",
			Help:    "Duration of narrative generation requests",
			Buckets: prometheus.DefBuckets,
		},
	)

	// rate limit requests per client
	RateLimitRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planserve_ratelimit_requests_total",
			Help: "Total rate limit checks per client",
		},
		[]string{"client"},
	)

	// rate limit hits per client
	RateLimitHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planserve_ratelimit_hits_total",
			Help: "Total rate limit rejections per client",
		},
		[]string{"client"},
	)
)

func init() {
	// register all metrics
	prometheus.MustRegister(
		RequestCount,
		RequestLatency,
		PlanCount,
		ImpliedROAS,
		ValidationFailures,
		DisabledChannelCount,
		PlanPersistErrors,
		NarrativeRequests,
		NarrativeLatency,
		RateLimitRequests,
		RateLimitHits,
	)
}
