// Command seed_plans fills the plan store with randomized but plausible
// marketing plans, for demos and for exercising the reporting endpoints
// against non-empty tables.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/openimc/planserve/internal/allocation"
	"github.com/openimc/planserve/internal/analytics"
	"github.com/openimc/planserve/internal/benchmarks"
	"github.com/openimc/planserve/internal/config"
	"github.com/openimc/planserve/internal/db"
	"github.com/openimc/planserve/internal/engine"
	"github.com/openimc/planserve/internal/models"
	"github.com/openimc/planserve/internal/observability"
	"github.com/openimc/planserve/internal/plan"
)

var (
	planCount = flag.Int("plans", 50, "number of plans to generate")
	seed      = flag.Int64("seed", time.Now().UnixNano(), "rng seed")
	withCH    = flag.Bool("clickhouse", true, "also log calculation events to ClickHouse")
)

var industries = []string{"fnb", "fashion", "beauty", "education", "b2b", ""}

func main() {
	flag.Parse()

	logger, err := observability.InitLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Load()
	pg, err := db.InitPostgres(cfg.PostgresDSN, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetime, cfg.DBConnMaxIdleTime)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect postgres: %v\n", err)
		os.Exit(1)
	}
	defer pg.Close()

	var ch *analytics.Analytics
	if *withCH {
		a, err := analytics.InitClickHouse(cfg.ClickHouseDSN, cfg.CHMaxOpenConns, observability.NewNoOpRegistry())
		if err != nil {
			logger.Warn("clickhouse unavailable, skipping calculation events", zap.Error(err))
		} else {
			ch = a
			defer ch.Close()
		}
	}

	r := rand.New(rand.NewSource(*seed))
	table := benchmarks.Default()
	assembler := plan.NewAssembler(
		engine.NewEngine(table, logger),
		allocation.NewAllocator(table, logger),
		logger,
	)

	ctx := context.Background()
	saved := 0
	for i := 0; i < *planCount; i++ {
		input := randomInput(r)

		start := time.Now()
		p, err := assembler.BuildPlan(input)
		if err != nil {
			logger.Warn("skipping unbuildable input", zap.Error(err))
			continue
		}

		if err := pg.SavePlan(ctx, p); err != nil {
			logger.Fatal("save plan", zap.Error(err))
		}
		if ch != nil {
			if err := ch.RecordCalculation(ctx, analytics.EventFromPlan(p, time.Since(start))); err != nil {
				logger.Warn("record calculation event", zap.Error(err))
			}
		}
		saved++
	}

	logger.Info("seeding complete", zap.Int("plans", saved), zap.Int64("seed", *seed))
}

// randomInput generates a plausible campaign brief. Budgets skew small the
// way real briefs do, and a slice of them carry revenue targets that make
// the audit mode produce high-risk and impossible verdicts.
func randomInput(r *rand.Rand) *models.IMCInput {
	assets := models.AssetChecklist{
		HasWebsite:        r.Float64() < 0.8,
		HasCustomerList:   r.Float64() < 0.6,
		HasCreativeAssets: r.Float64() < 0.7,
	}

	input := &models.IMCInput{
		ProductPrice:  float64(50+r.Intn(950)) * 1_000,
		TimelineWeeks: 4 + r.Intn(12),
		Industry:      industries[r.Intn(len(industries))],
		CampaignFocus: models.FocusConversion,
		Assets:        &assets,
	}
	if r.Float64() < 0.3 {
		input.CampaignFocus = models.FocusBranding
	}

	budget := float64(10+r.Intn(190)) * 1_000_000

	switch r.Intn(3) {
	case 0:
		input.PlanningMode = models.ModeBudgetDriven
		input.Budget = budget
	case 1:
		input.PlanningMode = models.ModeGoalDriven
		input.RevenueTarget = budget * (0.5 + r.Float64()*4)
	default:
		input.PlanningMode = models.ModeAudit
		input.Budget = budget
		input.RevenueTarget = budget * (0.5 + r.Float64()*14)
	}
	return input
}
