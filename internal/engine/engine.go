// Package engine implements the budget and feasibility calculations at the
// heart of the planning service. Everything here is a pure transform from
// input values to output values: no I/O, no shared mutable state, safe to
// call concurrently without locking.
package engine

import (
	"math"

	"go.uber.org/zap"

	"github.com/openimc/planserve/internal/benchmarks"
	"github.com/openimc/planserve/internal/models"
)

// Engine computes funnel forecasts and feasibility verdicts against an
// injected benchmark table.
type Engine struct {
	Benchmarks *benchmarks.Table
	Logger     *zap.Logger
}

// NewEngine creates an engine. A nil table falls back to the shipped
// benchmarks; a nil logger falls back to a no-op logger.
func NewEngine(table *benchmarks.Table, logger *zap.Logger) *Engine {
	if table == nil {
		table = benchmarks.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{Benchmarks: table, Logger: logger}
}

// ComputeMetrics validates the input and runs the calculation strategy
// selected by its planning mode. Validation failures return a
// *models.ValidationError with no partial computation.
func (e *Engine) ComputeMetrics(input *models.IMCInput) (*models.CalculatedMetrics, error) {
	if err := e.validate(input); err != nil {
		return nil, err
	}

	var metrics *models.CalculatedMetrics
	switch input.PlanningMode {
	case models.ModeBudgetDriven:
		metrics = e.budgetDriven(input)
	case models.ModeGoalDriven:
		metrics = e.goalDriven(input)
	case models.ModeAudit:
		metrics = e.audit(input)
	}

	e.Logger.Debug("metrics computed",
		zap.String("mode", input.PlanningMode),
		zap.String("focus", input.CampaignFocus),
		zap.Float64("total_budget", metrics.TotalBudget),
		zap.Float64("implied_roas", metrics.ImpliedROAS),
		zap.String("risk_level", metrics.Feasibility.RiskLevel),
	)
	return metrics, nil
}

// validate enforces the per-mode input invariants.
func (e *Engine) validate(input *models.IMCInput) error {
	if input == nil {
		return models.NewValidationError("input", "input is required")
	}
	if input.ProductPrice <= 0 {
		return models.NewValidationError("product_price", "must be positive")
	}
	if input.TimelineWeeks <= 0 {
		return models.NewValidationError("timeline_weeks", "must be positive")
	}
	if _, ok := e.Benchmarks.ConversionRate[input.CampaignFocus]; !ok {
		return models.NewValidationError("campaign_focus", "must be %q or %q", models.FocusBranding, models.FocusConversion)
	}

	switch input.PlanningMode {
	case models.ModeBudgetDriven:
		if input.Budget <= 0 {
			return models.NewValidationError("budget", "required for budget-driven planning")
		}
		if input.Budget < e.Benchmarks.MinTotalBudget {
			return models.NewValidationError("budget", "must be at least %.0f", e.Benchmarks.MinTotalBudget)
		}
	case models.ModeGoalDriven:
		if input.RevenueTarget <= 0 {
			return models.NewValidationError("revenue_target", "required for goal-driven planning")
		}
	case models.ModeAudit:
		if input.Budget <= 0 {
			return models.NewValidationError("budget", "required for audit planning")
		}
		if input.RevenueTarget <= 0 {
			return models.NewValidationError("revenue_target", "required for audit planning")
		}
		if input.Budget < e.Benchmarks.MinTotalBudget {
			return models.NewValidationError("budget", "must be at least %.0f", e.Benchmarks.MinTotalBudget)
		}
	default:
		return models.NewValidationError("planning_mode", "must be %q, %q or %q",
			models.ModeBudgetDriven, models.ModeGoalDriven, models.ModeAudit)
	}
	return nil
}

// budgetDriven forecasts the funnel a fixed budget can buy.
func (e *Engine) budgetDriven(input *models.IMCInput) *models.CalculatedMetrics {
	t := e.Benchmarks
	budget := input.Budget

	ratio := t.ProductionRatio(budget, input.Checklist())
	production := math.Max(math.Round(budget*ratio), t.MinProductionBudget)
	if production > budget {
		production = budget
	}
	media := budget - production

	traffic := int64(math.Floor(media / t.DefaultCPC))
	orders := int64(math.Floor(float64(traffic) * t.ConversionRate[input.CampaignFocus]))
	revenue := float64(orders) * input.ProductPrice
	roas := revenue / budget

	return &models.CalculatedMetrics{
		TotalBudget:      budget,
		MediaSpend:       media,
		ProductionBudget: production,
		EstimatedTraffic: traffic,
		EstimatedOrders:  orders,
		EstimatedRevenue: revenue,
		ImpliedROAS:      roas,
		Feasibility:      e.Assess(roas),
	}
}

// goalDriven works the funnel backwards: from revenue target to required
// orders, traffic, media spend, and finally the grossed-up total budget.
func (e *Engine) goalDriven(input *models.IMCInput) *models.CalculatedMetrics {
	t := e.Benchmarks
	convRate := t.ConversionRate[input.CampaignFocus]

	orders := int64(math.Ceil(input.RevenueTarget / input.ProductPrice))
	traffic := int64(math.Ceil(float64(orders) / convRate))
	media := float64(traffic) * t.DefaultCPC

	// Gross up for production. The tier ratio depends on the total we are
	// solving for, so estimate once from the media spend's tier and then
	// re-evaluate at the grossed-up figure.
	assets := input.Checklist()
	estimate := media / (1 - t.ProductionRatio(media, assets))
	ratio := t.ProductionRatio(estimate, assets)
	total := math.Round(media / (1 - ratio))
	production := total - media

	// The minimum-production floor is applied after the gross-up, never
	// before: flooring first would shrink the media side and under-fund
	// the traffic the target needs.
	if production < t.MinProductionBudget {
		production = t.MinProductionBudget
		total = media + production
	}

	revenue := float64(orders) * input.ProductPrice
	roas := revenue / total

	return &models.CalculatedMetrics{
		TotalBudget:      total,
		MediaSpend:       media,
		ProductionBudget: production,
		EstimatedTraffic: traffic,
		EstimatedOrders:  orders,
		EstimatedRevenue: revenue,
		ImpliedROAS:      roas,
		Feasibility:      e.Assess(roas),
	}
}

// audit compares what the supplied budget can deliver against what the
// revenue target would require. The implied ROAS is the caller's own
// target-to-budget ratio, not a ratio derived from either sub-result.
func (e *Engine) audit(input *models.IMCInput) *models.CalculatedMetrics {
	achievable := e.budgetDriven(&models.IMCInput{
		ProductPrice:  input.ProductPrice,
		TimelineWeeks: input.TimelineWeeks,
		Industry:      input.Industry,
		PlanningMode:  models.ModeBudgetDriven,
		CampaignFocus: input.CampaignFocus,
		Budget:        input.Budget,
		Assets:        input.Assets,
	})
	required := e.goalDriven(&models.IMCInput{
		ProductPrice:  input.ProductPrice,
		TimelineWeeks: input.TimelineWeeks,
		Industry:      input.Industry,
		PlanningMode:  models.ModeGoalDriven,
		CampaignFocus: input.CampaignFocus,
		RevenueTarget: input.RevenueTarget,
		Assets:        input.Assets,
	})

	roas := input.RevenueTarget / input.Budget
	feasibility := e.Assess(roas)

	summary := &models.AuditSummary{
		RequiredBudget:    required.TotalBudget,
		AchievableRevenue: achievable.EstimatedRevenue,
		BudgetGap:         math.Max(required.TotalBudget-input.Budget, 0),
		RevenueGap:        math.Max(input.RevenueTarget-achievable.EstimatedRevenue, 0),
	}
	feasibility.Recommendation = auditRecommendation(feasibility.RiskLevel, input, summary)

	metrics := *achievable
	metrics.ImpliedROAS = roas
	metrics.Feasibility = feasibility
	metrics.Audit = summary
	return &metrics
}
