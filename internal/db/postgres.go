package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/XSAM/otelsql"
	_ "github.com/lib/pq" // postgres driver
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/openimc/planserve/internal/models"
)

// Postgres wraps a postgres DB connection and implements the plan store.
type Postgres struct {
	DB *sql.DB
}

// schemaSQL sets up the necessary tables if they don't exist. Plan inputs
// and results are stored as JSONB documents: plans are immutable once
// computed, so there is nothing relational to normalize.
const schemaSQL = `CREATE TABLE IF NOT EXISTS plans (
    id UUID PRIMARY KEY,
    created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    planning_mode TEXT NOT NULL,
    campaign_focus TEXT NOT NULL,
    industry TEXT,
    input JSONB NOT NULL,
    metrics JSONB NOT NULL,
    distribution JSONB,
    narrative JSONB
);

CREATE INDEX IF NOT EXISTS idx_plans_created_at ON plans (created_at DESC);
CREATE INDEX IF NOT EXISTS idx_plans_mode ON plans (planning_mode);
`

// InitPostgres connects to postgres with pooled connections, registers the
// otelsql wrapper for tracing, and ensures the schema exists.
func InitPostgres(dsn string, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (*Postgres, error) {
	driverName, err := otelsql.Register("postgres",
		otelsql.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.connection_string", dsn),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("register otelsql: %w", err)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	p := &Postgres{DB: db}
	if err := p.ensureSchema(); err != nil {
		return nil, err
	}

	zap.L().Info("Connected to Postgres with connection pooling",
		zap.Int("max_open_conns", maxOpenConns),
		zap.Int("max_idle_conns", maxIdleConns),
		zap.Duration("conn_max_lifetime", connMaxLifetime))
	return p, nil
}

// Close terminates the Postgres connection.
func (p *Postgres) Close() {
	if p != nil && p.DB != nil {
		if err := p.DB.Close(); err != nil {
			zap.L().Error("postgres close", zap.Error(err))
		}
	}
}

func (p *Postgres) ensureSchema() error {
	if _, err := p.DB.ExecContext(context.Background(), schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SavePlan persists a computed plan.
func (p *Postgres) SavePlan(ctx context.Context, plan *models.MarketingPlan) error {
	input, err := json.Marshal(plan.Input)
	if err != nil {
		return fmt.Errorf("marshal input: %w", err)
	}
	metrics, err := json.Marshal(plan.Metrics)
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}

	var distribution, narrative []byte
	if plan.Distribution != nil {
		if distribution, err = json.Marshal(plan.Distribution); err != nil {
			return fmt.Errorf("marshal distribution: %w", err)
		}
	}
	if plan.Narrative != nil {
		if narrative, err = json.Marshal(plan.Narrative); err != nil {
			return fmt.Errorf("marshal narrative: %w", err)
		}
	}

	const stmt = `INSERT INTO plans (id, created_at, planning_mode, campaign_focus, industry, input, metrics, distribution, narrative)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := p.DB.ExecContext(ctx, stmt,
		plan.ID, plan.CreatedAt, plan.Input.PlanningMode, plan.Input.CampaignFocus, plan.Input.Industry,
		input, metrics, nullableJSON(distribution), nullableJSON(narrative)); err != nil {
		return fmt.Errorf("insert plan: %w", err)
	}
	return nil
}

// GetPlan loads a single plan by id. Returns models.ErrNotFound when the
// id does not exist.
func (p *Postgres) GetPlan(ctx context.Context, id string) (*models.MarketingPlan, error) {
	const query = `SELECT id, created_at, input, metrics, distribution, narrative FROM plans WHERE id = $1`
	row := p.DB.QueryRowContext(ctx, query, id)
	plan, err := scanPlan(row)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return plan, nil
}

// LoadPlans returns the most recent plans, newest first.
func (p *Postgres) LoadPlans(ctx context.Context, limit int) ([]models.MarketingPlan, error) {
	if limit <= 0 {
		limit = 100
	}
	const query = `SELECT id, created_at, input, metrics, distribution, narrative FROM plans ORDER BY created_at DESC LIMIT $1`
	rows, err := p.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query plans: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			zap.L().Warn("rows close", zap.Error(err))
		}
	}()

	var plans []models.MarketingPlan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, *plan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return plans, nil
}

// DeletePlan removes a plan by id. Returns models.ErrNotFound when the id
// does not exist.
func (p *Postgres) DeletePlan(ctx context.Context, id string) error {
	res, err := p.DB.ExecContext(ctx, `DELETE FROM plans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanPlan.
type scanner interface {
	Scan(dest ...any) error
}

func scanPlan(s scanner) (*models.MarketingPlan, error) {
	var plan models.MarketingPlan
	var input, metrics []byte
	var distribution, narrative sql.NullString

	if err := s.Scan(&plan.ID, &plan.CreatedAt, &input, &metrics, &distribution, &narrative); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(input, &plan.Input); err != nil {
		return nil, fmt.Errorf("unmarshal input: %w", err)
	}
	if err := json.Unmarshal(metrics, &plan.Metrics); err != nil {
		return nil, fmt.Errorf("unmarshal metrics: %w", err)
	}
	if distribution.Valid {
		plan.Distribution = &models.BudgetDistribution{}
		if err := json.Unmarshal([]byte(distribution.String), plan.Distribution); err != nil {
			return nil, fmt.Errorf("unmarshal distribution: %w", err)
		}
	}
	if narrative.Valid {
		plan.Narrative = &models.PlanNarrative{}
		if err := json.Unmarshal([]byte(narrative.String), plan.Narrative); err != nil {
			return nil, fmt.Errorf("unmarshal narrative: %w", err)
		}
	}
	return &plan, nil
}

// nullableJSON converts empty JSON payloads to SQL NULL.
func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
