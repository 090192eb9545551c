package models

// Risk tiers for an implied ROAS, ordered from safest to unachievable.
const (
	RiskLow        = "low"
	RiskMedium     = "medium"
	RiskHigh       = "high"
	RiskImpossible = "impossible"
)

// FeasibilityResult classifies an implied ROAS against fixed benchmark
// thresholds. High and Impossible tiers are warnings, not errors: the
// funnel forecast is still returned in full and the caller decides whether
// to block plan creation.
type FeasibilityResult struct {
	IsFeasible     bool    `json:"is_feasible"`
	ImpliedROAS    float64 `json:"implied_roas"`
	RiskLevel      string  `json:"risk_level"`
	WarningMessage string  `json:"warning_message,omitempty"`
	Recommendation string  `json:"recommendation,omitempty"`
}

// AuditSummary carries the gap analysis produced in audit mode: the budget
// the target would actually require, the revenue the supplied budget can
// actually deliver, and the distance between wish and reality.
type AuditSummary struct {
	RequiredBudget    float64 `json:"required_budget"`
	AchievableRevenue float64 `json:"achievable_revenue"`
	BudgetGap         float64 `json:"budget_gap"`
	RevenueGap        float64 `json:"revenue_gap"`
}

// CalculatedMetrics is the funnel forecast for one calculation.
// TotalBudget always equals MediaSpend + ProductionBudget, and ImpliedROAS
// equals EstimatedRevenue / TotalBudget except in audit mode, where it is
// the caller's target-to-budget ratio reported directly.
type CalculatedMetrics struct {
	TotalBudget      float64           `json:"total_budget"`
	MediaSpend       float64           `json:"media_spend"`
	ProductionBudget float64           `json:"production_budget"`
	EstimatedTraffic int64             `json:"estimated_traffic"`
	EstimatedOrders  int64             `json:"estimated_orders"`
	EstimatedRevenue float64           `json:"estimated_revenue"`
	ImpliedROAS      float64           `json:"implied_roas"`
	Feasibility      FeasibilityResult `json:"feasibility"`
	Audit            *AuditSummary     `json:"audit,omitempty"`
}
