package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	_ "github.com/ClickHouse/clickhouse-go/v2" // clickhouse driver

	"github.com/openimc/planserve/internal/models"
	"github.com/openimc/planserve/internal/observability"
)

// AnalyticsService defines the interface for analytics operations.
// Implementations should handle cases where underlying storage is
// unavailable by returning ErrUnavailable.
type AnalyticsService interface {
	// RecordCalculation records one engine run with its inputs and verdict.
	RecordCalculation(ctx context.Context, ev CalculationEvent) error
}

// ErrUnavailable is returned when the analytics DB is not configured.
var ErrUnavailable = fmt.Errorf("analytics unavailable")

// Analytics wraps a ClickHouse DB connection.
type Analytics struct {
	DB      *sql.DB
	Metrics observability.MetricsRegistry
}

// CalculationEvent mirrors a row in the plan_events table. One row is
// written per engine invocation, successful or not.
type CalculationEvent struct {
	Timestamp     time.Time `json:"timestamp"`
	PlanID        string    `json:"plan_id"`
	PlanningMode  string    `json:"planning_mode"`
	CampaignFocus string    `json:"campaign_focus"`
	Industry      string    `json:"industry"`
	TotalBudget   float64   `json:"total_budget"`
	ImpliedROAS   float64   `json:"implied_roas"`
	RiskLevel     string    `json:"risk_level"`
	Feasible      bool      `json:"feasible"`
	ChannelCount  int32     `json:"channel_count"`
	DurationMs    float64   `json:"duration_ms"`
}

// InitClickHouse connects to ClickHouse and ensures the plan_events table exists.
func InitClickHouse(dsn string, maxOpenConns int, metrics observability.MetricsRegistry) (*Analytics, error) {
	db, err := sql.Open("clickhouse", dsn)
	if err != nil {
		return nil, fmt.Errorf("clickhouse open: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("clickhouse ping: %w", err)
	}
	create := `CREATE TABLE IF NOT EXISTS plan_events (
       timestamp      DateTime,
       plan_id        String,
       planning_mode  String,
       campaign_focus String,
       industry       String,
       total_budget   Float64,
       implied_roas   Float64,
       risk_level     String,
       feasible       UInt8,
       channel_count  Int32,
       duration_ms    Float64
   ) ENGINE=MergeTree() ORDER BY (planning_mode, timestamp)`
	if _, err := db.ExecContext(context.Background(), create); err != nil {
		return nil, fmt.Errorf("clickhouse create table: %w", err)
	}

	zap.L().Info("Connected to ClickHouse")
	return &Analytics{DB: db, Metrics: metrics}, nil
}

// RecordCalculation inserts a single calculation row into plan_events.
func (a *Analytics) RecordCalculation(ctx context.Context, ev CalculationEvent) error {
	if a == nil || a.DB == nil {
		return ErrUnavailable
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	feasible := uint8(0)
	if ev.Feasible {
		feasible = 1
	}

	stmt := `INSERT INTO plan_events (timestamp, plan_id, planning_mode, campaign_focus, industry, total_budget, implied_roas, risk_level, feasible, channel_count, duration_ms) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := a.DB.ExecContext(ctx, stmt,
		ev.Timestamp, ev.PlanID, ev.PlanningMode, ev.CampaignFocus, ev.Industry,
		ev.TotalBudget, ev.ImpliedROAS, ev.RiskLevel, feasible, ev.ChannelCount, ev.DurationMs); err != nil {
		zap.L().Error("clickhouse insert failed", zap.Error(err), zap.String("plan_id", ev.PlanID))
		return fmt.Errorf("insert calculation event: %w", err)
	}
	return nil
}

// RecentEvents returns the newest calculation events, most recent first.
func (a *Analytics) RecentEvents(ctx context.Context, limit int) ([]CalculationEvent, error) {
	if a == nil || a.DB == nil {
		return nil, ErrUnavailable
	}
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT timestamp, plan_id, planning_mode, campaign_focus, industry, total_budget, implied_roas, risk_level, feasible, channel_count, duration_ms
        FROM plan_events ORDER BY timestamp DESC LIMIT ?`
	rows, err := a.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []CalculationEvent
	for rows.Next() {
		var ev CalculationEvent
		var feasible uint8
		if err := rows.Scan(&ev.Timestamp, &ev.PlanID, &ev.PlanningMode, &ev.CampaignFocus, &ev.Industry,
			&ev.TotalBudget, &ev.ImpliedROAS, &ev.RiskLevel, &feasible, &ev.ChannelCount, &ev.DurationMs); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Feasible = feasible == 1
		events = append(events, ev)
	}
	return events, rows.Err()
}

// EventFromPlan builds a CalculationEvent from a finished plan.
func EventFromPlan(p *models.MarketingPlan, duration time.Duration) CalculationEvent {
	ev := CalculationEvent{
		Timestamp:     p.CreatedAt,
		PlanID:        p.ID,
		PlanningMode:  p.Input.PlanningMode,
		CampaignFocus: p.Input.CampaignFocus,
		Industry:      p.Input.Industry,
		TotalBudget:   p.Metrics.TotalBudget,
		ImpliedROAS:   p.Metrics.ImpliedROAS,
		RiskLevel:     p.Metrics.Feasibility.RiskLevel,
		Feasible:      p.Metrics.Feasibility.IsFeasible,
		DurationMs:    float64(duration.Microseconds()) / 1000.0,
	}
	if p.Distribution != nil {
		ev.ChannelCount = int32(len(p.Distribution.Channels))
	}
	return ev
}

// Close terminates the ClickHouse connection.
func (a *Analytics) Close() {
	if a != nil && a.DB != nil {
		if err := a.DB.Close(); err != nil {
			zap.L().Error("clickhouse close", zap.Error(err))
		}
	}
}
