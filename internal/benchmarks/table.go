// Package benchmarks holds the fixed domain heuristics the engine
// calculates against: channel unit costs, conversion rates, production
// ratio tiers and feasibility thresholds. The table is read-only for the
// lifetime of the process and is passed into the engine explicitly so
// tests can run against alternate numbers.
package benchmarks

import "github.com/openimc/planserve/internal/models"

// Channel identifies a media channel in the cost and template tables.
// Keeping this a dedicated type means a misnamed channel is a compile-time
// error rather than a silent zero-cost lookup.
type Channel string

const (
	ChannelSearchAds       Channel = "search_ads"
	ChannelMetaProspecting Channel = "meta_prospecting"
	ChannelMetaRetargeting Channel = "meta_retargeting"
	ChannelMetaReach       Channel = "meta_reach"
	ChannelVideoAds        Channel = "video_ads"
	ChannelKOL             Channel = "kol"
	ChannelPR              Channel = "pr_articles"
	ChannelEmail           Channel = "email_crm"
	ChannelZaloSMS         Channel = "zalo_sms"
)

// Asset gates a template entry may require.
const (
	RequiresNothing      = ""
	RequiresWebsite      = "website"
	RequiresCustomerList = "customer_list"
)

// ChannelCost describes how one channel converts media spend into its
// primary KPI and how much of its allocation typically goes to production.
type ChannelCost struct {
	DisplayName     string
	ChannelType     string
	KPIMetric       string
	UnitCost        float64 // cost per click/message/send/reach unit; per 1000 for impressions
	ProductionRatio float64
	ActionItem      string
}

// TemplateEntry is one channel's slot in a campaign-focus template.
// Shares within a template sum to 1.0 before asset filtering.
type TemplateEntry struct {
	Channel  Channel
	Phase    string
	Share    float64
	Requires string
}

// ProductionTier maps a total-budget ceiling to the campaign-level
// production ratio. Ceilings are inclusive.
type ProductionTier struct {
	MaxBudget float64
	Ratio     float64
}

// Table is the complete benchmark set. All money values are plain
// currency units (VND in the shipped defaults).
type Table struct {
	BaseROAS       map[string]float64
	ConversionRate map[string]float64

	DefaultCPC float64

	ProductionTiers      []ProductionTier
	TopTierRatio         float64
	CreativeGapSurcharge float64
	MaxProductionRatio   float64

	MinProductionBudget float64
	MinTotalBudget      float64
	MinChannelBudget    float64

	RealisticMaxROAS  float64
	OptimisticMaxROAS float64
	ImpossibleROAS    float64

	ChannelCosts     map[Channel]ChannelCost
	ChannelTemplates map[string][]TemplateEntry

	IndustryChannelHints map[string][]string
}

// Default returns the shipped benchmark table.
func Default() *Table {
	return &Table{
		BaseROAS: map[string]float64{
			models.FocusBranding:   3.0,
			models.FocusConversion: 4.5,
		},
		ConversionRate: map[string]float64{
			models.FocusBranding:   0.01,
			models.FocusConversion: 0.02,
		},

		DefaultCPC: 3_000,

		ProductionTiers: []ProductionTier{
			{MaxBudget: 50_000_000, Ratio: 0.30},
			{MaxBudget: 100_000_000, Ratio: 0.25},
		},
		TopTierRatio:         0.15,
		CreativeGapSurcharge: 0.10,
		MaxProductionRatio:   0.40,

		MinProductionBudget: 5_000_000,
		MinTotalBudget:      10_000_000,
		MinChannelBudget:    2_000_000,

		RealisticMaxROAS:  5.0,
		OptimisticMaxROAS: 8.0,
		ImpossibleROAS:    10.0,

		ChannelCosts: map[Channel]ChannelCost{
			ChannelSearchAds: {
				DisplayName:     "Search Ads",
				ChannelType:     models.ChannelTypePaidMedia,
				KPIMetric:       models.KPIClicks,
				UnitCost:        3_000,
				ProductionRatio: 0.10,
				ActionItem:      "Set up keyword campaigns around high-intent product searches",
			},
			ChannelMetaProspecting: {
				DisplayName:     "Meta Prospecting Ads",
				ChannelType:     models.ChannelTypePaidMedia,
				KPIMetric:       models.KPIClicks,
				UnitCost:        2_800,
				ProductionRatio: 0.15,
				ActionItem:      "Run interest and lookalike campaigns to feed the funnel",
			},
			ChannelMetaRetargeting: {
				DisplayName:     "Meta Retargeting Ads",
				ChannelType:     models.ChannelTypePaidMedia,
				KPIMetric:       models.KPIClicks,
				UnitCost:        2_200,
				ProductionRatio: 0.15,
				ActionItem:      "Retarget website visitors with dynamic product ads",
			},
			ChannelMetaReach: {
				DisplayName:     "Meta Reach Ads",
				ChannelType:     models.ChannelTypePaidMedia,
				KPIMetric:       models.KPIImpressions,
				UnitCost:        40_000, // per 1000 impressions
				ProductionRatio: 0.15,
				ActionItem:      "Run reach-optimized campaigns against broad brand audiences",
			},
			ChannelVideoAds: {
				DisplayName:     "Video Ads",
				ChannelType:     models.ChannelTypePaidMedia,
				KPIMetric:       models.KPIImpressions,
				UnitCost:        50_000, // per 1000 impressions
				ProductionRatio: 0.30,
				ActionItem:      "Produce a hero video and cut-downs for in-stream placement",
			},
			ChannelKOL: {
				DisplayName:     "KOL & Influencers",
				ChannelType:     models.ChannelTypeContent,
				KPIMetric:       models.KPIReach,
				UnitCost:        50,
				ProductionRatio: 0.40,
				ActionItem:      "Book mid-tier creators for authentic product content",
			},
			ChannelPR: {
				DisplayName:     "PR Articles",
				ChannelType:     models.ChannelTypeContent,
				KPIMetric:       models.KPIReach,
				UnitCost:        80,
				ProductionRatio: 0.35,
				ActionItem:      "Place editorial features in industry publications",
			},
			ChannelEmail: {
				DisplayName:     "Email Marketing",
				ChannelType:     models.ChannelTypeCRM,
				KPIMetric:       models.KPISends,
				UnitCost:        250,
				ProductionRatio: 0.15,
				ActionItem:      "Build a nurture flow over the existing customer list",
			},
			ChannelZaloSMS: {
				DisplayName:     "Zalo ZNS / SMS",
				ChannelType:     models.ChannelTypeCRM,
				KPIMetric:       models.KPIMessages,
				UnitCost:        700,
				ProductionRatio: 0.05,
				ActionItem:      "Send transactional offers to opted-in customers",
			},
		},

		ChannelTemplates: map[string][]TemplateEntry{
			models.FocusConversion: {
				{Channel: ChannelSearchAds, Phase: models.PhaseConvert, Share: 0.25},
				{Channel: ChannelMetaRetargeting, Phase: models.PhaseConvert, Share: 0.20, Requires: RequiresWebsite},
				{Channel: ChannelMetaProspecting, Phase: models.PhaseTrigger, Share: 0.20},
				{Channel: ChannelZaloSMS, Phase: models.PhaseTrigger, Share: 0.10, Requires: RequiresCustomerList},
				{Channel: ChannelEmail, Phase: models.PhaseConvert, Share: 0.10, Requires: RequiresCustomerList},
				{Channel: ChannelKOL, Phase: models.PhaseAware, Share: 0.15},
			},
			models.FocusBranding: {
				{Channel: ChannelKOL, Phase: models.PhaseAware, Share: 0.25},
				{Channel: ChannelMetaReach, Phase: models.PhaseAware, Share: 0.20},
				{Channel: ChannelVideoAds, Phase: models.PhaseAware, Share: 0.20},
				{Channel: ChannelPR, Phase: models.PhaseTrigger, Share: 0.15},
				{Channel: ChannelSearchAds, Phase: models.PhaseConvert, Share: 0.10},
				{Channel: ChannelEmail, Phase: models.PhaseConvert, Share: 0.10, Requires: RequiresCustomerList},
			},
		},

		IndustryChannelHints: map[string][]string{
			"fnb":       {"TikTok food reviews", "GrabFood co-promotions", "local food KOLs"},
			"fashion":   {"Instagram lookbooks", "TikTok try-on hauls", "style KOLs"},
			"beauty":    {"beauty KOL reviews", "Shopee livestreams", "before/after UGC"},
			"education": {"webinar funnels", "parent community groups", "alumni testimonials"},
			"b2b":       {"LinkedIn thought leadership", "industry webinars", "case-study outreach"},
		},
	}
}

// ProductionRatio returns the campaign-level production ratio for the
// given total budget and asset situation: the tiered base rate plus the
// creative-gap surcharge, capped at MaxProductionRatio. Tier boundaries
// are inclusive, so a budget of exactly 50M still lands in the 30% tier.
func (t *Table) ProductionRatio(totalBudget float64, assets models.AssetChecklist) float64 {
	ratio := t.TopTierRatio
	for _, tier := range t.ProductionTiers {
		if totalBudget <= tier.MaxBudget {
			ratio = tier.Ratio
			break
		}
	}
	if !assets.HasCreativeAssets {
		ratio += t.CreativeGapSurcharge
	}
	if ratio > t.MaxProductionRatio {
		ratio = t.MaxProductionRatio
	}
	return ratio
}

// HintsForIndustry returns narrative channel-name hints for an industry,
// or nil when none are configured.
func (t *Table) HintsForIndustry(industry string) []string {
	return t.IndustryChannelHints[industry]
}
