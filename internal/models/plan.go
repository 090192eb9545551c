package models

import "time"

// PlanNarrative is prose produced by the external narrative generator.
// It is a one-way consumer of the calculated numbers: nothing here feeds
// back into the engine.
type PlanNarrative struct {
	Summary      string   `json:"summary"`
	Phases       []string `json:"phases,omitempty"`
	ChannelNotes []string `json:"channel_notes,omitempty"`
	Timeline     string   `json:"timeline,omitempty"`
}

// MarketingPlan is the full result handed to callers and to the plan
// store: the input that produced it, the funnel forecast, the channel
// split, and (when the narrative generator is enabled) the prose plan.
type MarketingPlan struct {
	ID           string              `json:"id"`
	CreatedAt    time.Time           `json:"created_at"`
	Input        IMCInput            `json:"input"`
	Metrics      CalculatedMetrics   `json:"metrics"`
	Distribution *BudgetDistribution `json:"distribution,omitempty"`
	Narrative    *PlanNarrative      `json:"narrative,omitempty"`
}
