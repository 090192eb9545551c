package engine

import (
	"fmt"

	"github.com/openimc/planserve/internal/models"
)

// Assess classifies an implied ROAS into a risk tier. Thresholds are
// evaluated high to low with strict comparisons, so a boundary value
// belongs to the lower tier: exactly 5.0 is low risk, exactly 10.0 is
// high risk rather than impossible.
func (e *Engine) Assess(roas float64) models.FeasibilityResult {
	t := e.Benchmarks

	switch {
	case roas > t.ImpossibleROAS:
		return models.FeasibilityResult{
			IsFeasible:     false,
			ImpliedROAS:    roas,
			RiskLevel:      models.RiskImpossible,
			WarningMessage: fmt.Sprintf("An implied ROAS of %.1fx is beyond what any channel mix can deliver.", roas),
			Recommendation: "Raise the budget or lower the revenue target before committing to this plan.",
		}
	case roas > t.OptimisticMaxROAS:
		return models.FeasibilityResult{
			IsFeasible:     false,
			ImpliedROAS:    roas,
			RiskLevel:      models.RiskHigh,
			WarningMessage: fmt.Sprintf("An implied ROAS of %.1fx exceeds optimistic benchmarks and is unlikely to be met.", roas),
			Recommendation: "Increase the budget or trim the target until the implied ROAS drops below 8x.",
		}
	case roas > t.RealisticMaxROAS:
		return models.FeasibilityResult{
			IsFeasible:     true,
			ImpliedROAS:    roas,
			RiskLevel:      models.RiskMedium,
			WarningMessage: fmt.Sprintf("An implied ROAS of %.1fx is achievable but challenging; expect pressure on every channel.", roas),
			Recommendation: "Proceed with tight weekly tracking and a contingency budget.",
		}
	default:
		return models.FeasibilityResult{
			IsFeasible:     true,
			ImpliedROAS:    roas,
			RiskLevel:      models.RiskLow,
			Recommendation: fmt.Sprintf("An implied ROAS of %.1fx is a healthy plan with comfortable margins.", roas),
		}
	}
}

// auditRecommendation phrases the gap analysis for the narrative layer.
// Impossible plans cite both correction levers with concrete numbers;
// merely high-risk plans suggest covering part of the budget gap.
func auditRecommendation(riskLevel string, input *models.IMCInput, summary *models.AuditSummary) string {
	switch riskLevel {
	case models.RiskImpossible:
		return fmt.Sprintf(
			"This target cannot be met at this budget. Either raise the budget to about %.0f, or lower the revenue target toward the %.0f this budget can realistically deliver.",
			summary.RequiredBudget, summary.AchievableRevenue)
	case models.RiskHigh:
		return fmt.Sprintf(
			"The target is aggressive for this budget. A budget increase of about %.0f (half the gap) would bring the plan into a defensible range.",
			summary.BudgetGap/2)
	case models.RiskMedium:
		return fmt.Sprintf(
			"The target is within reach but leaves little slack; budget headroom of up to %.0f would de-risk the plan.",
			summary.BudgetGap)
	default:
		return fmt.Sprintf(
			"The budget comfortably supports the target; roughly %.0f of revenue is already achievable at current benchmarks.",
			summary.AchievableRevenue)
	}
}
