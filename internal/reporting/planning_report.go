// Package reporting generates aggregate planning reports from the
// ClickHouse calculation log: plan volume over time, the mix of risk
// tiers, and average implied ROAS per campaign focus.
package reporting

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// DailyVolume is the number of plans computed on one day with the day's
// average implied ROAS.
type DailyVolume struct {
	Date        time.Time `json:"date"`
	Plans       int64     `json:"plans"`
	AvgROAS     float64   `json:"avg_roas"`
	TotalBudget float64   `json:"total_budget"`
}

// RiskBucket is the share of plans landing in one risk tier.
type RiskBucket struct {
	RiskLevel string  `json:"risk_level"`
	Plans     int64   `json:"plans"`
	Share     float64 `json:"share"`
}

// FocusMetrics summarizes plans per campaign focus.
type FocusMetrics struct {
	CampaignFocus string  `json:"campaign_focus"`
	Plans         int64   `json:"plans"`
	AvgROAS       float64 `json:"avg_roas"`
	AvgBudget     float64 `json:"avg_budget"`
}

// PlanningSummary is the full report for a reporting window.
type PlanningSummary struct {
	Days        int            `json:"days"`
	TotalPlans  int64          `json:"total_plans"`
	DailyVolume []DailyVolume  `json:"daily_volume"`
	RiskMix     []RiskBucket   `json:"risk_mix"`
	ByFocus     []FocusMetrics `json:"by_focus"`
}

// GeneratePlanningReport queries ClickHouse for calculation events and
// assembles the aggregate report for the trailing window.
func GeneratePlanningReport(ctx context.Context, db *sql.DB, days int) (*PlanningSummary, error) {
	if days <= 0 {
		days = 7
	}
	summary := &PlanningSummary{Days: days}

	daily, err := getDailyVolume(ctx, db, days)
	if err != nil {
		return nil, fmt.Errorf("get daily volume: %w", err)
	}
	summary.DailyVolume = daily
	for _, d := range daily {
		summary.TotalPlans += d.Plans
	}

	risk, err := getRiskCounts(ctx, db, days)
	if err != nil {
		return nil, fmt.Errorf("get risk counts: %w", err)
	}
	summary.RiskMix = BuildRiskMix(risk)

	focus, err := getFocusMetrics(ctx, db, days)
	if err != nil {
		return nil, fmt.Errorf("get focus metrics: %w", err)
	}
	summary.ByFocus = focus

	return summary, nil
}

// BuildRiskMix converts raw per-tier counts into buckets with shares.
// Exposed for tests; the shares always sum to 1.0 when any plans exist.
func BuildRiskMix(counts map[string]int64) []RiskBucket {
	order := []string{"low", "medium", "high", "impossible"}
	var total int64
	for _, n := range counts {
		total += n
	}

	var mix []RiskBucket
	for _, level := range order {
		n, ok := counts[level]
		if !ok {
			continue
		}
		bucket := RiskBucket{RiskLevel: level, Plans: n}
		if total > 0 {
			bucket.Share = float64(n) / float64(total)
		}
		mix = append(mix, bucket)
	}
	return mix
}

func getDailyVolume(ctx context.Context, db *sql.DB, days int) ([]DailyVolume, error) {
	query := `SELECT toDate(timestamp) AS day,
               count() AS plans,
               avg(implied_roas) AS avg_roas,
               sum(total_budget) AS total_budget
        FROM plan_events
        WHERE timestamp >= now() - INTERVAL ? DAY
        GROUP BY day ORDER BY day`
	rows, err := db.QueryContext(ctx, query, days)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []DailyVolume
	for rows.Next() {
		var d DailyVolume
		if err := rows.Scan(&d.Date, &d.Plans, &d.AvgROAS, &d.TotalBudget); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func getRiskCounts(ctx context.Context, db *sql.DB, days int) (map[string]int64, error) {
	query := `SELECT risk_level, count() AS plans
        FROM plan_events
        WHERE timestamp >= now() - INTERVAL ? DAY
        GROUP BY risk_level`
	rows, err := db.QueryContext(ctx, query, days)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int64)
	for rows.Next() {
		var level string
		var plans int64
		if err := rows.Scan(&level, &plans); err != nil {
			return nil, err
		}
		counts[level] = plans
	}
	return counts, rows.Err()
}

func getFocusMetrics(ctx context.Context, db *sql.DB, days int) ([]FocusMetrics, error) {
	query := `SELECT campaign_focus,
               count() AS plans,
               avg(implied_roas) AS avg_roas,
               avg(total_budget) AS avg_budget
        FROM plan_events
        WHERE timestamp >= now() - INTERVAL ? DAY
        GROUP BY campaign_focus ORDER BY plans DESC`
	rows, err := db.QueryContext(ctx, query, days)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []FocusMetrics
	for rows.Next() {
		var f FocusMetrics
		if err := rows.Scan(&f.CampaignFocus, &f.Plans, &f.AvgROAS, &f.AvgBudget); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
