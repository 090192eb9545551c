package allocation

import (
	"errors"
	"math"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/openimc/planserve/internal/models"
)

func newTestAllocator() *Allocator {
	return NewAllocator(nil, zap.NewNop())
}

func TestComputeDistribution_SumsToMediaBudget(t *testing.T) {
	alloc := newTestAllocator()

	dist, err := alloc.ComputeDistribution(50_000_000, models.FocusConversion, "beauty", models.DefaultAssetChecklist())
	if err != nil {
		t.Fatal(err)
	}

	if dist.ProductionBudget != 15_000_000 {
		t.Errorf("production = %f, want 15000000", dist.ProductionBudget)
	}
	if dist.MediaBudget != 35_000_000 {
		t.Errorf("media = %f, want 35000000", dist.MediaBudget)
	}
	if len(dist.Channels) != 6 {
		t.Fatalf("expected 6 channels with all assets present, got %d", len(dist.Channels))
	}

	var sum float64
	for _, ch := range dist.Channels {
		sum += ch.TotalAllocation
		if got := ch.MediaSpend + ch.ProductionCost; got != ch.TotalAllocation {
			t.Errorf("%s: media %f + production %f != allocation %f", ch.ChannelName, ch.MediaSpend, ch.ProductionCost, ch.TotalAllocation)
		}
		if ch.EstimatedKPI.Value <= 0 {
			t.Errorf("%s: KPI value must be positive, got %d", ch.ChannelName, ch.EstimatedKPI.Value)
		}
	}
	if sum != dist.MediaBudget {
		t.Errorf("channel allocations sum to %f, want exactly %f", sum, dist.MediaBudget)
	}
	if len(dist.DisabledChannels) != 0 {
		t.Errorf("no channels should be disabled, got %v", dist.DisabledChannels)
	}
}

func TestComputeDistribution_WebsiteGate(t *testing.T) {
	alloc := newTestAllocator()

	assets := models.DefaultAssetChecklist()
	assets.HasWebsite = false

	dist, err := alloc.ComputeDistribution(50_000_000, models.FocusConversion, "", assets)
	if err != nil {
		t.Fatal(err)
	}

	if len(dist.DisabledChannels) != 1 {
		t.Fatalf("expected 1 disabled channel, got %v", dist.DisabledChannels)
	}
	if !strings.Contains(dist.DisabledChannels[0], "Meta Retargeting") {
		t.Errorf("disabled entry should name retargeting, got %q", dist.DisabledChannels[0])
	}
	for _, ch := range dist.Channels {
		if ch.ChannelName == "Meta Retargeting Ads" {
			t.Error("retargeting must not be allocated without a website")
		}
	}

	// The removed share is redistributed, never dropped.
	var sum float64
	for _, ch := range dist.Channels {
		sum += ch.TotalAllocation
	}
	if sum != dist.MediaBudget {
		t.Errorf("allocations sum to %f after gating, want %f", sum, dist.MediaBudget)
	}
}

func TestComputeDistribution_CustomerListGate(t *testing.T) {
	alloc := newTestAllocator()

	assets := models.DefaultAssetChecklist()
	assets.HasCustomerList = false

	dist, err := alloc.ComputeDistribution(50_000_000, models.FocusConversion, "", assets)
	if err != nil {
		t.Fatal(err)
	}

	// Both CRM channels gate on the customer list.
	if len(dist.DisabledChannels) != 2 {
		t.Fatalf("expected 2 disabled channels, got %v", dist.DisabledChannels)
	}
	if len(dist.Channels) != 4 {
		t.Errorf("expected 4 surviving channels, got %d", len(dist.Channels))
	}
}

func TestComputeDistribution_CreativeGapRatio(t *testing.T) {
	alloc := newTestAllocator()

	assets := models.DefaultAssetChecklist()
	assets.HasCreativeAssets = false

	dist, err := alloc.ComputeDistribution(75_000_000, models.FocusBranding, "", assets)
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(dist.ProductionRatio-0.35) > 1e-9 {
		t.Errorf("production ratio = %f, want 0.35 with the creative surcharge", dist.ProductionRatio)
	}
	if dist.ProductionBudget != 26_250_000 {
		t.Errorf("production = %f, want 26250000", dist.ProductionBudget)
	}
}

func TestComputeDistribution_MediaExhausted(t *testing.T) {
	alloc := newTestAllocator()

	// 4M total: the 5M production floor swallows the whole budget.
	dist, err := alloc.ComputeDistribution(4_000_000, models.FocusConversion, "", models.DefaultAssetChecklist())
	if err != nil {
		t.Fatal(err)
	}

	if dist.MediaBudget != 0 {
		t.Errorf("media = %f, want 0", dist.MediaBudget)
	}
	if len(dist.Channels) != 0 {
		t.Errorf("expected no channels, got %d", len(dist.Channels))
	}
	if len(dist.Warnings) == 0 || !strings.Contains(dist.Warnings[0], "media budget exhausted") {
		t.Errorf("expected an exhausted-media warning, got %v", dist.Warnings)
	}
}

func TestComputeDistribution_MinChannelWarnings(t *testing.T) {
	alloc := newTestAllocator()

	// 20M total leaves 14M media; the 10% channels land at 1.4M, under the
	// 2M minimum, and should recommend consolidating into Search Ads.
	dist, err := alloc.ComputeDistribution(20_000_000, models.FocusConversion, "", models.DefaultAssetChecklist())
	if err != nil {
		t.Fatal(err)
	}

	if len(dist.Warnings) != 2 {
		t.Fatalf("expected 2 under-minimum warnings, got %v", dist.Warnings)
	}
	for _, w := range dist.Warnings {
		if !strings.Contains(w, "Search Ads") {
			t.Errorf("warning should point at the largest channel, got %q", w)
		}
	}
}

func TestComputeDistribution_InvalidInput(t *testing.T) {
	alloc := newTestAllocator()

	_, err := alloc.ComputeDistribution(0, models.FocusConversion, "", models.DefaultAssetChecklist())
	var verr *models.ValidationError
	if !errors.As(err, &verr) || verr.Field != "total_budget" {
		t.Errorf("expected total_budget validation error, got %v", err)
	}

	_, err = alloc.ComputeDistribution(50_000_000, "growth", "", models.DefaultAssetChecklist())
	if !errors.As(err, &verr) || verr.Field != "campaign_focus" {
		t.Errorf("expected campaign_focus validation error, got %v", err)
	}
}
