package models

// Planning modes select which calculation strategy turns the caller's
// financial inputs into a funnel forecast.
const (
	// ModeBudgetDriven forecasts what a fixed budget can realistically buy.
	ModeBudgetDriven = "budget_driven"
	// ModeGoalDriven works backwards from a revenue target to the budget
	// required to reach it.
	ModeGoalDriven = "goal_driven"
	// ModeAudit takes both a budget and a target and reports the gap
	// between what the caller wants and what the budget can deliver.
	ModeAudit = "audit"
)

// Campaign focus values. The benchmark tables carry exactly these two
// entries; any other value is rejected during validation.
const (
	FocusBranding   = "branding"
	FocusConversion = "conversion"
)

// AssetChecklist declares which marketing assets the advertiser already
// has. Missing assets gate channels out of the allocation (no website means
// no retargeting, no customer list means no CRM channels) and raise the
// required production ratio when creatives have to be made from scratch.
type AssetChecklist struct {
	HasWebsite        bool `json:"has_website"`
	HasCustomerList   bool `json:"has_customer_list"`
	HasCreativeAssets bool `json:"has_creative_assets"`
}

// DefaultAssetChecklist returns the checklist assumed when the caller
// omits one: everything available.
func DefaultAssetChecklist() AssetChecklist {
	return AssetChecklist{HasWebsite: true, HasCustomerList: true, HasCreativeAssets: true}
}

// IMCInput is the caller-supplied configuration for one calculation.
// Budget and RevenueTarget are optional depending on PlanningMode:
// budget_driven requires Budget, goal_driven requires RevenueTarget,
// audit requires both. A zero value means "not provided".
type IMCInput struct {
	ProductPrice  float64         `json:"product_price"`
	TimelineWeeks int             `json:"timeline_weeks"`
	Industry      string          `json:"industry"`
	PlanningMode  string          `json:"planning_mode"`
	CampaignFocus string          `json:"campaign_focus"`
	Budget        float64         `json:"budget,omitempty"`
	RevenueTarget float64         `json:"revenue_target,omitempty"`
	Assets        *AssetChecklist `json:"assets,omitempty"`
}

// Checklist returns the input's asset checklist, falling back to the
// all-true default when the caller omitted it.
func (in *IMCInput) Checklist() AssetChecklist {
	if in.Assets == nil {
		return DefaultAssetChecklist()
	}
	return *in.Assets
}
