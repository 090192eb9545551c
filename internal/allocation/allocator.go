// Package allocation splits a campaign budget across media channels.
// Channel templates are keyed by campaign focus; channels whose required
// assets are missing are removed and their shares redistributed across the
// survivors so the media budget is always spent in full.
package allocation

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/openimc/planserve/internal/benchmarks"
	"github.com/openimc/planserve/internal/models"
)

// Allocator computes channel-by-channel budget distributions against an
// injected benchmark table. Like the engine it is pure and stateless.
type Allocator struct {
	Benchmarks *benchmarks.Table
	Logger     *zap.Logger
}

// NewAllocator creates an allocator with the same nil-fallbacks as the engine.
func NewAllocator(table *benchmarks.Table, logger *zap.Logger) *Allocator {
	if table == nil {
		table = benchmarks.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Allocator{Benchmarks: table, Logger: logger}
}

// ComputeDistribution splits totalBudget into production and media, then
// allocates the media budget across the focus template's channels.
//
// The production ratio is computed against the full campaign budget, not
// the media budget handed to individual channels. Rounding drift from the
// per-channel share split is absorbed by the largest channel so the
// channel allocations sum to the media budget exactly.
func (a *Allocator) ComputeDistribution(totalBudget float64, focus, industry string, assets models.AssetChecklist) (*models.BudgetDistribution, error) {
	t := a.Benchmarks

	if totalBudget <= 0 {
		return nil, models.NewValidationError("total_budget", "must be positive")
	}
	template, ok := t.ChannelTemplates[focus]
	if !ok {
		return nil, models.NewValidationError("campaign_focus", "must be %q or %q", models.FocusBranding, models.FocusConversion)
	}

	ratio := t.ProductionRatio(totalBudget, assets)
	production := math.Max(math.Round(totalBudget*ratio), t.MinProductionBudget)
	if production > totalBudget {
		production = totalBudget
	}
	media := totalBudget - production

	dist := &models.BudgetDistribution{
		TotalBudget:      totalBudget,
		ProductionBudget: production,
		MediaBudget:      media,
		ProductionRatio:  ratio,
		Channels:         []models.ChannelAllocation{},
	}

	if media <= 0 {
		dist.Warnings = append(dist.Warnings,
			"media budget exhausted by production costs; increase the total budget before allocating channels")
		return dist, nil
	}

	// Filter out channels whose asset gate is unmet and renormalize the
	// surviving shares so they still sum to 1.0. Skipping redistribution
	// would silently under-spend the media budget.
	var entries []benchmarks.TemplateEntry
	var shareSum float64
	for _, entry := range template {
		if reason := unmetRequirement(entry.Requires, assets); reason != "" {
			dist.DisabledChannels = append(dist.DisabledChannels,
				fmt.Sprintf("%s: %s", t.ChannelCosts[entry.Channel].DisplayName, reason))
			continue
		}
		entries = append(entries, entry)
		shareSum += entry.Share
	}

	if len(entries) == 0 || shareSum <= 0 {
		dist.Warnings = append(dist.Warnings,
			"no channels remain after asset filtering; provide a website or customer list to enable allocation")
		return dist, nil
	}

	allocations := make([]float64, len(entries))
	largest := 0
	var allocated float64
	for i, entry := range entries {
		allocations[i] = math.Round(media * entry.Share / shareSum)
		allocated += allocations[i]
		if allocations[i] > allocations[largest] {
			largest = i
		}
	}
	// Largest-remainder correction: hand the rounding drift to the biggest
	// channel instead of leaving aggregate drift in the distribution.
	allocations[largest] += media - allocated

	largestName := t.ChannelCosts[entries[largest].Channel].DisplayName
	for i, entry := range entries {
		ch := a.buildChannel(entry, allocations[i], largestName)
		if ch.Warning != "" {
			dist.Warnings = append(dist.Warnings, fmt.Sprintf("%s: %s", ch.ChannelName, ch.Warning))
		}
		dist.Channels = append(dist.Channels, ch)
	}

	a.Logger.Debug("distribution computed",
		zap.String("focus", focus),
		zap.String("industry", industry),
		zap.Float64("media_budget", media),
		zap.Int("channels", len(dist.Channels)),
		zap.Int("disabled", len(dist.DisabledChannels)),
	)
	return dist, nil
}

// buildChannel splits one channel's allocation into media and production
// and converts the media side into the channel's primary KPI.
func (a *Allocator) buildChannel(entry benchmarks.TemplateEntry, allocation float64, largestName string) models.ChannelAllocation {
	cost := a.Benchmarks.ChannelCosts[entry.Channel]

	productionCost := math.Round(allocation * cost.ProductionRatio)
	mediaSpend := allocation - productionCost

	var kpiValue int64
	switch cost.KPIMetric {
	case models.KPIImpressions:
		// Unit cost is per thousand impressions.
		kpiValue = int64(math.Floor(mediaSpend / cost.UnitCost * 1000))
	default:
		kpiValue = int64(math.Floor(mediaSpend / cost.UnitCost))
	}

	ch := models.ChannelAllocation{
		ChannelName:     cost.DisplayName,
		ChannelType:     cost.ChannelType,
		Phase:           entry.Phase,
		TotalAllocation: allocation,
		MediaSpend:      mediaSpend,
		ProductionCost:  productionCost,
		EstimatedKPI: models.ChannelKPI{
			Metric:   cost.KPIMetric,
			Value:    kpiValue,
			UnitCost: cost.UnitCost,
		},
		ActionItem: cost.ActionItem,
	}

	if allocation < a.Benchmarks.MinChannelBudget && cost.DisplayName != largestName {
		ch.Warning = fmt.Sprintf(
			"allocation of %.0f is below the minimum viable budget of %.0f; consider consolidating into %s",
			allocation, a.Benchmarks.MinChannelBudget, largestName)
	}

	return ch
}

// unmetRequirement returns a human-readable reason when the entry's asset
// gate is not satisfied, or an empty string when the channel is eligible.
func unmetRequirement(requires string, assets models.AssetChecklist) string {
	switch requires {
	case benchmarks.RequiresWebsite:
		if !assets.HasWebsite {
			return "requires a website for landing pages and tracking"
		}
	case benchmarks.RequiresCustomerList:
		if !assets.HasCustomerList {
			return "requires an existing customer list"
		}
	}
	return ""
}
