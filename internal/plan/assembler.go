// Package plan assembles full marketing plans from the calculation core:
// funnel metrics, channel distribution, and identity/timestamps for the
// plan store.
package plan

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openimc/planserve/internal/allocation"
	"github.com/openimc/planserve/internal/engine"
	"github.com/openimc/planserve/internal/models"
)

// Assembler combines the engine and allocator into the full-plan entry
// point used by the API and the MCP server.
type Assembler struct {
	Engine    *engine.Engine
	Allocator *allocation.Allocator
	Logger    *zap.Logger
}

// NewAssembler creates an assembler over an existing engine and allocator.
func NewAssembler(eng *engine.Engine, alloc *allocation.Allocator, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{Engine: eng, Allocator: alloc, Logger: logger}
}

// BuildPlan runs the funnel forecast and, when it succeeds, allocates the
// resulting total budget across channels. The distribution always works
// from the metrics' total budget so the campaign-level production ratio is
// computed against the full budget rather than the already-net media spend.
func (a *Assembler) BuildPlan(input *models.IMCInput) (*models.MarketingPlan, error) {
	metrics, err := a.Engine.ComputeMetrics(input)
	if err != nil {
		return nil, err
	}

	dist, err := a.Allocator.ComputeDistribution(
		metrics.TotalBudget, input.CampaignFocus, input.Industry, input.Checklist())
	if err != nil {
		return nil, err
	}

	p := &models.MarketingPlan{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now().UTC(),
		Input:        *input,
		Metrics:      *metrics,
		Distribution: dist,
	}

	a.Logger.Info("plan assembled",
		zap.String("plan_id", p.ID),
		zap.String("mode", input.PlanningMode),
		zap.String("risk_level", metrics.Feasibility.RiskLevel),
		zap.Int("channels", len(dist.Channels)),
	)
	return p, nil
}
