package models

// Channel categories used for grouping allocations in reports.
const (
	ChannelTypePaidMedia = "paid_media"
	ChannelTypeCRM       = "crm"
	ChannelTypeContent   = "content"
	ChannelTypeTools     = "tools"
)

// Funnel phases a channel primarily serves.
const (
	PhaseAware   = "aware"
	PhaseTrigger = "trigger"
	PhaseConvert = "convert"
)

// KPI metric kinds. Each channel's spend converts into exactly one of
// these through its benchmark unit cost.
const (
	KPIClicks      = "clicks"
	KPIImpressions = "impressions"
	KPIMessages    = "messages"
	KPISends       = "sends"
	KPIReach       = "reach"
)

// ChannelKPI is the expected primary KPI for a channel at its allocated
// media spend.
type ChannelKPI struct {
	Metric   string  `json:"metric"`
	Value    int64   `json:"value"`
	UnitCost float64 `json:"unit_cost"`
}

// ChannelAllocation is one channel's slice of the media budget.
// TotalAllocation always equals MediaSpend + ProductionCost.
type ChannelAllocation struct {
	ChannelName     string     `json:"channel_name"`
	ChannelType     string     `json:"channel_type"`
	Phase           string     `json:"phase"`
	TotalAllocation float64    `json:"total_allocation"`
	MediaSpend      float64    `json:"media_spend"`
	ProductionCost  float64    `json:"production_cost"`
	EstimatedKPI    ChannelKPI `json:"estimated_kpi"`
	ActionItem      string     `json:"action_item"`
	Warning         string     `json:"warning,omitempty"`
}

// BudgetDistribution is the channel-by-channel split of a campaign budget.
// Channel allocations sum to MediaBudget exactly; ProductionRatio is the
// campaign-level ratio actually applied, capped at 0.40.
type BudgetDistribution struct {
	TotalBudget      float64             `json:"total_budget"`
	ProductionBudget float64             `json:"production_budget"`
	MediaBudget      float64             `json:"media_budget"`
	ProductionRatio  float64             `json:"production_ratio"`
	Channels         []ChannelAllocation `json:"channels"`
	Warnings         []string            `json:"warnings,omitempty"`
	DisabledChannels []string            `json:"disabled_channels,omitempty"`
}
