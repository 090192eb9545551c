package engine

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/openimc/planserve/internal/models"
)

func newTestEngine() *Engine {
	return NewEngine(nil, zap.NewNop())
}

func conversionInput() *models.IMCInput {
	return &models.IMCInput{
		ProductPrice:  200_000,
		TimelineWeeks: 8,
		Industry:      "beauty",
		PlanningMode:  models.ModeBudgetDriven,
		CampaignFocus: models.FocusConversion,
		Budget:        50_000_000,
	}
}

func TestComputeMetrics_Validation(t *testing.T) {
	eng := newTestEngine()

	tests := []struct {
		name   string
		mutate func(*models.IMCInput)
		field  string
	}{
		{"zero price", func(in *models.IMCInput) { in.ProductPrice = 0 }, "product_price"},
		{"negative price", func(in *models.IMCInput) { in.ProductPrice = -1 }, "product_price"},
		{"zero timeline", func(in *models.IMCInput) { in.TimelineWeeks = 0 }, "timeline_weeks"},
		{"unknown focus", func(in *models.IMCInput) { in.CampaignFocus = "growth" }, "campaign_focus"},
		{"unknown mode", func(in *models.IMCInput) { in.PlanningMode = "hybrid" }, "planning_mode"},
		{"missing budget", func(in *models.IMCInput) { in.Budget = 0 }, "budget"},
		{"budget below minimum", func(in *models.IMCInput) { in.Budget = 9_000_000 }, "budget"},
		{"goal driven without target", func(in *models.IMCInput) {
			in.PlanningMode = models.ModeGoalDriven
			in.RevenueTarget = 0
		}, "revenue_target"},
		{"audit without target", func(in *models.IMCInput) {
			in.PlanningMode = models.ModeAudit
			in.RevenueTarget = 0
		}, "revenue_target"},
		{"audit without budget", func(in *models.IMCInput) {
			in.PlanningMode = models.ModeAudit
			in.RevenueTarget = 100_000_000
			in.Budget = 0
		}, "budget"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := conversionInput()
			tt.mutate(in)

			_, err := eng.ComputeMetrics(in)
			var verr *models.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, verr.Field)
			}
		})
	}
}

func TestBudgetDriven(t *testing.T) {
	eng := newTestEngine()

	m, err := eng.ComputeMetrics(conversionInput())
	if err != nil {
		t.Fatal(err)
	}

	// 50M at the 30% tier: 15M production, 35M media.
	if m.ProductionBudget != 15_000_000 {
		t.Errorf("production = %f, want 15000000", m.ProductionBudget)
	}
	if m.MediaSpend != 35_000_000 {
		t.Errorf("media = %f, want 35000000", m.MediaSpend)
	}
	// 35M / 3000 CPC = 11666 clicks, 2% conversion = 233 orders.
	if m.EstimatedTraffic != 11_666 {
		t.Errorf("traffic = %d, want 11666", m.EstimatedTraffic)
	}
	if m.EstimatedOrders != 233 {
		t.Errorf("orders = %d, want 233", m.EstimatedOrders)
	}
	if m.EstimatedRevenue != 46_600_000 {
		t.Errorf("revenue = %f, want 46600000", m.EstimatedRevenue)
	}
	if math.Abs(m.ImpliedROAS-0.932) > 1e-9 {
		t.Errorf("roas = %f, want 0.932", m.ImpliedROAS)
	}
	if m.Feasibility.RiskLevel != models.RiskLow || !m.Feasibility.IsFeasible {
		t.Errorf("expected low-risk feasible verdict, got %+v", m.Feasibility)
	}
	if m.Audit != nil {
		t.Error("budget-driven metrics must not carry an audit summary")
	}
}

func TestBudgetDriven_MinProductionFloor(t *testing.T) {
	eng := newTestEngine()

	in := conversionInput()
	in.Budget = 12_000_000

	m, err := eng.ComputeMetrics(in)
	if err != nil {
		t.Fatal(err)
	}

	// 30% of 12M is 3.6M, below the 5M production floor.
	if m.ProductionBudget != 5_000_000 {
		t.Errorf("production = %f, want 5000000", m.ProductionBudget)
	}
	if m.MediaSpend != 7_000_000 {
		t.Errorf("media = %f, want 7000000", m.MediaSpend)
	}
}

func TestGoalDriven(t *testing.T) {
	eng := newTestEngine()

	in := &models.IMCInput{
		ProductPrice:  500_000,
		TimelineWeeks: 12,
		PlanningMode:  models.ModeGoalDriven,
		CampaignFocus: models.FocusConversion,
		RevenueTarget: 100_000_000,
	}

	m, err := eng.ComputeMetrics(in)
	if err != nil {
		t.Fatal(err)
	}

	// 100M / 500k = 200 orders, / 2% = 10000 clicks, * 3000 CPC = 30M media.
	if m.EstimatedOrders != 200 {
		t.Errorf("orders = %d, want 200", m.EstimatedOrders)
	}
	if m.EstimatedTraffic != 10_000 {
		t.Errorf("traffic = %d, want 10000", m.EstimatedTraffic)
	}
	if m.MediaSpend != 30_000_000 {
		t.Errorf("media = %f, want 30000000", m.MediaSpend)
	}
	// Grossed up at the 30% tier: 30M / 0.7.
	if m.TotalBudget != 42_857_143 {
		t.Errorf("total = %f, want 42857143", m.TotalBudget)
	}
	if m.EstimatedRevenue != 100_000_000 {
		t.Errorf("revenue = %f, want 100000000", m.EstimatedRevenue)
	}
	if m.Feasibility.RiskLevel != models.RiskLow {
		t.Errorf("risk = %s, want low", m.Feasibility.RiskLevel)
	}
}

func TestGoalDriven_TierReevaluation(t *testing.T) {
	eng := newTestEngine()

	// 280 orders at 250k: media lands at 42M, whose naive gross-up at 30%
	// crosses into the 25% tier. The final total must use the re-evaluated
	// ratio: 42M / 0.75 = 56M.
	in := &models.IMCInput{
		ProductPrice:  250_000,
		TimelineWeeks: 12,
		PlanningMode:  models.ModeGoalDriven,
		CampaignFocus: models.FocusConversion,
		RevenueTarget: 70_000_000,
	}

	m, err := eng.ComputeMetrics(in)
	if err != nil {
		t.Fatal(err)
	}

	if m.MediaSpend != 42_000_000 {
		t.Fatalf("media = %f, want 42000000", m.MediaSpend)
	}
	if m.TotalBudget != 56_000_000 {
		t.Errorf("total = %f, want 56000000", m.TotalBudget)
	}
	if m.ProductionBudget != 14_000_000 {
		t.Errorf("production = %f, want 14000000", m.ProductionBudget)
	}
}

func TestGoalDriven_ProductionFloorAfterGrossUp(t *testing.T) {
	eng := newTestEngine()

	in := &models.IMCInput{
		ProductPrice:  500_000,
		TimelineWeeks: 4,
		PlanningMode:  models.ModeGoalDriven,
		CampaignFocus: models.FocusConversion,
		RevenueTarget: 5_000_000,
	}

	m, err := eng.ComputeMetrics(in)
	if err != nil {
		t.Fatal(err)
	}

	// 10 orders need 500 clicks = 1.5M media; grossed-up production would be
	// well under the floor, so the floor is added on top of the media spend.
	if m.MediaSpend != 1_500_000 {
		t.Fatalf("media = %f, want 1500000", m.MediaSpend)
	}
	if m.ProductionBudget != 5_000_000 {
		t.Errorf("production = %f, want 5000000", m.ProductionBudget)
	}
	if m.TotalBudget != 6_500_000 {
		t.Errorf("total = %f, want 6500000", m.TotalBudget)
	}
}

func TestGoalDriven_BudgetRoundTrip(t *testing.T) {
	eng := newTestEngine()

	// Planning a target and then replaying the solved budget through
	// budget-driven mode must land back on the target, give or take the
	// rounding of a single order.
	targets := []float64{30_000_000, 70_000_000, 100_000_000, 250_000_000, 999_999_999}
	for _, target := range targets {
		t.Run(fmt.Sprintf("%.0f", target), func(t *testing.T) {
			forward, err := eng.ComputeMetrics(&models.IMCInput{
				ProductPrice:  250_000,
				TimelineWeeks: 12,
				PlanningMode:  models.ModeGoalDriven,
				CampaignFocus: models.FocusConversion,
				RevenueTarget: target,
			})
			if err != nil {
				t.Fatal(err)
			}

			back, err := eng.ComputeMetrics(&models.IMCInput{
				ProductPrice:  250_000,
				TimelineWeeks: 12,
				PlanningMode:  models.ModeBudgetDriven,
				CampaignFocus: models.FocusConversion,
				Budget:        forward.TotalBudget,
			})
			if err != nil {
				t.Fatal(err)
			}

			if diff := math.Abs(back.EstimatedRevenue - target); diff > 250_000 {
				t.Errorf("replayed revenue %f misses target %f by %f, want within one order",
					back.EstimatedRevenue, target, diff)
			}
		})
	}
}

func TestAudit(t *testing.T) {
	eng := newTestEngine()

	in := &models.IMCInput{
		ProductPrice:  300_000,
		TimelineWeeks: 8,
		PlanningMode:  models.ModeAudit,
		CampaignFocus: models.FocusConversion,
		Budget:        20_000_000,
		RevenueTarget: 500_000_000,
	}

	m, err := eng.ComputeMetrics(in)
	if err != nil {
		t.Fatal(err)
	}

	// The verdict judges the caller's own target-to-budget ratio.
	if m.ImpliedROAS != 25.0 {
		t.Errorf("roas = %f, want 25.0", m.ImpliedROAS)
	}
	if m.Feasibility.RiskLevel != models.RiskImpossible || m.Feasibility.IsFeasible {
		t.Errorf("expected impossible verdict, got %+v", m.Feasibility)
	}

	if m.Audit == nil {
		t.Fatal("audit metrics must carry an audit summary")
	}
	// The funnel shows what the 20M budget can actually deliver.
	if m.TotalBudget != 20_000_000 {
		t.Errorf("total = %f, want 20000000", m.TotalBudget)
	}
	if m.Audit.AchievableRevenue != m.EstimatedRevenue {
		t.Errorf("achievable revenue %f != estimated revenue %f", m.Audit.AchievableRevenue, m.EstimatedRevenue)
	}
	if m.Audit.RequiredBudget <= in.Budget {
		t.Errorf("required budget %f should exceed the audited budget", m.Audit.RequiredBudget)
	}
	if m.Audit.BudgetGap != m.Audit.RequiredBudget-in.Budget {
		t.Errorf("budget gap %f inconsistent with required budget %f", m.Audit.BudgetGap, m.Audit.RequiredBudget)
	}
	if m.Audit.RevenueGap != in.RevenueTarget-m.Audit.AchievableRevenue {
		t.Errorf("revenue gap %f inconsistent", m.Audit.RevenueGap)
	}

	// Impossible verdicts must cite both correction levers with numbers.
	rec := m.Feasibility.Recommendation
	wantBudget := fmt.Sprintf("%.0f", m.Audit.RequiredBudget)
	wantRevenue := fmt.Sprintf("%.0f", m.Audit.AchievableRevenue)
	if !strings.Contains(rec, wantBudget) || !strings.Contains(rec, wantRevenue) {
		t.Errorf("recommendation %q must cite required budget %s and achievable revenue %s", rec, wantBudget, wantRevenue)
	}
}

func TestAudit_AggressiveTarget(t *testing.T) {
	eng := newTestEngine()

	in := &models.IMCInput{
		ProductPrice:  300_000,
		TimelineWeeks: 8,
		PlanningMode:  models.ModeAudit,
		CampaignFocus: models.FocusConversion,
		Budget:        20_000_000,
		RevenueTarget: 180_000_000,
	}

	m, err := eng.ComputeMetrics(in)
	if err != nil {
		t.Fatal(err)
	}

	// 180M against 20M implies 9x: past optimistic benchmarks but short
	// of the impossible threshold.
	if m.ImpliedROAS != 9.0 {
		t.Errorf("roas = %f, want 9.0", m.ImpliedROAS)
	}
	if m.Feasibility.RiskLevel != models.RiskHigh || m.Feasibility.IsFeasible {
		t.Errorf("expected high-risk infeasible verdict, got %+v", m.Feasibility)
	}
	if m.Feasibility.WarningMessage == "" {
		t.Error("high-risk verdicts must carry a warning")
	}

	// High-risk plans are asked to cover half the budget gap.
	wantHalf := fmt.Sprintf("%.0f", m.Audit.BudgetGap/2)
	if !strings.Contains(m.Feasibility.Recommendation, wantHalf) {
		t.Errorf("recommendation %q must cite half the budget gap (%s)", m.Feasibility.Recommendation, wantHalf)
	}
}

func TestAudit_FeasibleTarget(t *testing.T) {
	eng := newTestEngine()

	in := &models.IMCInput{
		ProductPrice:  300_000,
		TimelineWeeks: 8,
		PlanningMode:  models.ModeAudit,
		CampaignFocus: models.FocusConversion,
		Budget:        50_000_000,
		RevenueTarget: 40_000_000,
	}

	m, err := eng.ComputeMetrics(in)
	if err != nil {
		t.Fatal(err)
	}

	if m.ImpliedROAS != 0.8 {
		t.Errorf("roas = %f, want 0.8", m.ImpliedROAS)
	}
	if m.Feasibility.RiskLevel != models.RiskLow || !m.Feasibility.IsFeasible {
		t.Errorf("expected low-risk verdict, got %+v", m.Feasibility)
	}
	if m.Audit.RevenueGap != 0 {
		t.Errorf("revenue gap = %f, want 0 when the budget covers the target", m.Audit.RevenueGap)
	}
}
