package main

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/openimc/planserve/internal/allocation"
	"github.com/openimc/planserve/internal/engine"
	"github.com/openimc/planserve/internal/models"
	"github.com/openimc/planserve/internal/plan"
)

func newTestPlanServer() *planServer {
	eng := engine.NewEngine(nil, zap.NewNop())
	alloc := allocation.NewAllocator(nil, zap.NewNop())
	return &planServer{
		engine:    eng,
		allocator: alloc,
		assembler: plan.NewAssembler(eng, alloc, zap.NewNop()),
		logger:    zap.NewNop(),
	}
}

func TestChecklistDefaults(t *testing.T) {
	got := checklist(nil, nil, nil)
	if !got.HasWebsite || !got.HasCustomerList || !got.HasCreativeAssets {
		t.Errorf("unset flags default to true, got %+v", got)
	}

	f := false
	got = checklist(&f, nil, &f)
	if got.HasWebsite || !got.HasCustomerList || got.HasCreativeAssets {
		t.Errorf("explicit flags must override defaults, got %+v", got)
	}
}

func TestForecastPlanTool(t *testing.T) {
	srv := newTestPlanServer()

	_, metrics, err := srv.ForecastPlan(context.Background(), nil, ForecastPlanInput{
		ProductPrice:  200_000,
		TimelineWeeks: 8,
		PlanningMode:  models.ModeBudgetDriven,
		CampaignFocus: models.FocusConversion,
		Budget:        50_000_000,
	})
	if err != nil {
		t.Fatal(err)
	}
	if metrics.TotalBudget != 50_000_000 {
		t.Errorf("total = %f, want 50000000", metrics.TotalBudget)
	}
}

func TestSavePlanTool_NoPostgres(t *testing.T) {
	srv := newTestPlanServer()

	_, out, err := srv.SavePlan(context.Background(), nil, SavePlanInput{
		ForecastPlanInput: ForecastPlanInput{
			ProductPrice:  200_000,
			TimelineWeeks: 8,
			PlanningMode:  models.ModeBudgetDriven,
			CampaignFocus: models.FocusConversion,
			Budget:        50_000_000,
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.PlanID == "" {
		t.Error("expected a plan id")
	}
	if out.Persisted {
		t.Error("persisted must be false without a database")
	}
}
