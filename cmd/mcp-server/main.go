// Command mcp-server exposes the planning engine over the Model Context
// Protocol so LLM agents can run forecasts, allocate budgets and save
// plans through tool calls instead of HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/openimc/planserve/internal/allocation"
	"github.com/openimc/planserve/internal/benchmarks"
	"github.com/openimc/planserve/internal/db"
	"github.com/openimc/planserve/internal/engine"
	"github.com/openimc/planserve/internal/models"
	"github.com/openimc/planserve/internal/plan"
)

// ForecastPlanInput mirrors the /forecast request body.
type ForecastPlanInput struct {
	ProductPrice  float64 `json:"product_price"`
	TimelineWeeks int     `json:"timeline_weeks"`
	Industry      string  `json:"industry,omitempty"`
	PlanningMode  string  `json:"planning_mode"`
	CampaignFocus string  `json:"campaign_focus"`
	Budget        float64 `json:"budget,omitempty"`
	RevenueTarget float64 `json:"revenue_target,omitempty"`
}

// AllocateBudgetInput mirrors the /distribution request body.
type AllocateBudgetInput struct {
	TotalBudget     float64 `json:"total_budget"`
	CampaignFocus   string  `json:"campaign_focus"`
	Industry        string  `json:"industry,omitempty"`
	HasWebsite      *bool   `json:"has_website,omitempty"`
	HasCustomerList *bool   `json:"has_customer_list,omitempty"`
	HasCreatives    *bool   `json:"has_creative_assets,omitempty"`
}

// SavePlanInput runs the full pipeline and persists the result.
type SavePlanInput struct {
	ForecastPlanInput
	HasWebsite      *bool `json:"has_website,omitempty"`
	HasCustomerList *bool `json:"has_customer_list,omitempty"`
	HasCreatives    *bool `json:"has_creative_assets,omitempty"`
}

type SavePlanOutput struct {
	PlanID    string               `json:"plan_id"`
	Persisted bool                 `json:"persisted"`
	Plan      models.MarketingPlan `json:"plan"`
}

// planServer holds the tool dependencies. Postgres is optional: without it
// save_plan still computes but reports persisted=false.
type planServer struct {
	engine    *engine.Engine
	allocator *allocation.Allocator
	assembler *plan.Assembler
	pg        *db.Postgres
	logger    *zap.Logger
}

func checklist(website, customerList, creatives *bool) models.AssetChecklist {
	assets := models.DefaultAssetChecklist()
	if website != nil {
		assets.HasWebsite = *website
	}
	if customerList != nil {
		assets.HasCustomerList = *customerList
	}
	if creatives != nil {
		assets.HasCreativeAssets = *creatives
	}
	return assets
}

func (s *planServer) imcInput(in ForecastPlanInput, assets models.AssetChecklist) *models.IMCInput {
	return &models.IMCInput{
		ProductPrice:  in.ProductPrice,
		TimelineWeeks: in.TimelineWeeks,
		Industry:      in.Industry,
		PlanningMode:  in.PlanningMode,
		CampaignFocus: in.CampaignFocus,
		Budget:        in.Budget,
		RevenueTarget: in.RevenueTarget,
		Assets:        &assets,
	}
}

// ForecastPlan implements the forecast_plan tool.
func (s *planServer) ForecastPlan(ctx context.Context, req *mcp.CallToolRequest, input ForecastPlanInput) (*mcp.CallToolResult, *models.CalculatedMetrics, error) {
	metrics, err := s.engine.ComputeMetrics(s.imcInput(input, models.DefaultAssetChecklist()))
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("forecast tool call",
		zap.String("mode", input.PlanningMode),
		zap.Float64("implied_roas", metrics.ImpliedROAS),
		zap.String("risk_level", metrics.Feasibility.RiskLevel))
	return nil, metrics, nil
}

// AllocateBudget implements the allocate_budget tool.
func (s *planServer) AllocateBudget(ctx context.Context, req *mcp.CallToolRequest, input AllocateBudgetInput) (*mcp.CallToolResult, *models.BudgetDistribution, error) {
	assets := checklist(input.HasWebsite, input.HasCustomerList, input.HasCreatives)
	dist, err := s.allocator.ComputeDistribution(input.TotalBudget, input.CampaignFocus, input.Industry, assets)
	if err != nil {
		return nil, nil, err
	}
	return nil, dist, nil
}

// SavePlan implements the save_plan tool.
func (s *planServer) SavePlan(ctx context.Context, req *mcp.CallToolRequest, input SavePlanInput) (*mcp.CallToolResult, SavePlanOutput, error) {
	assets := checklist(input.HasWebsite, input.HasCustomerList, input.HasCreatives)
	p, err := s.assembler.BuildPlan(s.imcInput(input.ForecastPlanInput, assets))
	if err != nil {
		return nil, SavePlanOutput{}, err
	}

	persisted := false
	if s.pg != nil {
		saveCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := s.pg.SavePlan(saveCtx, p); err != nil {
			s.logger.Error("save plan", zap.Error(err), zap.String("plan_id", p.ID))
		} else {
			persisted = true
		}
	}

	return nil, SavePlanOutput{PlanID: p.ID, Persisted: persisted, Plan: *p}, nil
}

func main() {
	// Use stderr for all logging to avoid stdio transport conflicts
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.NameKey = "logger"
	cfg.EncoderConfig.CallerKey = "caller"
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.StacktraceKey = "stacktrace"

	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	logger = logger.Named("planserve-mcp").With(zap.String("service", "planserve-mcp"))
	logger.Info("Starting planserve MCP server")

	table := benchmarks.Default()
	eng := engine.NewEngine(table, logger)
	alloc := allocation.NewAllocator(table, logger)
	assembler := plan.NewAssembler(eng, alloc, logger)

	// Postgres is optional for the MCP server; computations don't need it.
	var pg *db.Postgres
	if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" {
		p, err := db.InitPostgres(dsn, 10, 5, 30*time.Minute, time.Minute)
		if err != nil {
			logger.Warn("Postgres unavailable, save_plan will not persist", zap.Error(err))
		} else {
			pg = p
			defer pg.Close()
		}
	}

	srv := &planServer{
		engine:    eng,
		allocator: alloc,
		assembler: assembler,
		pg:        pg,
		logger:    logger,
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "planserve",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "forecast_plan",
		Description: "Forecast funnel metrics and feasibility for a campaign budget or revenue target",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"product_price": map[string]interface{}{
					"type":        "number",
					"description": "Average selling price per order",
				},
				"timeline_weeks": map[string]interface{}{
					"type":        "integer",
					"description": "Campaign length in weeks",
				},
				"industry": map[string]interface{}{
					"type":        "string",
					"description": "Industry slug for channel hints (optional)",
				},
				"planning_mode": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"budget_driven", "goal_driven", "audit"},
					"description": "Calculation strategy",
				},
				"campaign_focus": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"branding", "conversion"},
					"description": "Campaign objective",
				},
				"budget": map[string]interface{}{
					"type":        "number",
					"description": "Total budget (required for budget_driven and audit)",
				},
				"revenue_target": map[string]interface{}{
					"type":        "number",
					"description": "Revenue goal (required for goal_driven and audit)",
				},
			},
			"required": []string{"product_price", "timeline_weeks", "planning_mode", "campaign_focus"},
		},
	}, srv.ForecastPlan)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "allocate_budget",
		Description: "Split a total budget across marketing channels with asset gating",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"total_budget": map[string]interface{}{
					"type":        "number",
					"description": "Total budget to distribute",
				},
				"campaign_focus": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"branding", "conversion"},
					"description": "Campaign objective, selects the channel template",
				},
				"industry": map[string]interface{}{
					"type":        "string",
					"description": "Industry slug (optional)",
				},
				"has_website": map[string]interface{}{
					"type":        "boolean",
					"description": "Whether the advertiser has a working website (optional, defaults true)",
				},
				"has_customer_list": map[string]interface{}{
					"type":        "boolean",
					"description": "Whether a customer contact list exists (optional, defaults true)",
				},
				"has_creative_assets": map[string]interface{}{
					"type":        "boolean",
					"description": "Whether creative assets already exist (optional, defaults true)",
				},
			},
			"required": []string{"total_budget", "campaign_focus"},
		},
	}, srv.AllocateBudget)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "save_plan",
		Description: "Run the full planning pipeline and persist the resulting plan",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"product_price": map[string]interface{}{
					"type":        "number",
					"description": "Average selling price per order",
				},
				"timeline_weeks": map[string]interface{}{
					"type":        "integer",
					"description": "Campaign length in weeks",
				},
				"industry": map[string]interface{}{
					"type":        "string",
					"description": "Industry slug (optional)",
				},
				"planning_mode": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"budget_driven", "goal_driven", "audit"},
					"description": "Calculation strategy",
				},
				"campaign_focus": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"branding", "conversion"},
					"description": "Campaign objective",
				},
				"budget": map[string]interface{}{
					"type":        "number",
					"description": "Total budget (required for budget_driven and audit)",
				},
				"revenue_target": map[string]interface{}{
					"type":        "number",
					"description": "Revenue goal (required for goal_driven and audit)",
				},
				"has_website": map[string]interface{}{
					"type":        "boolean",
					"description": "Whether the advertiser has a working website (optional, defaults true)",
				},
				"has_customer_list": map[string]interface{}{
					"type":        "boolean",
					"description": "Whether a customer contact list exists (optional, defaults true)",
				},
				"has_creative_assets": map[string]interface{}{
					"type":        "boolean",
					"description": "Whether creative assets already exist (optional, defaults true)",
				},
			},
			"required": []string{"product_price", "timeline_weeks", "planning_mode", "campaign_focus"},
		},
	}, srv.SavePlan)

	logger.Info("MCP server running via stdio")

	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}
