package db

import (
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/openimc/planserve/internal/models"
)

func newTestStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	rs, err := InitRedis(mr.Addr())
	require.NoError(t, err)
	t.Cleanup(rs.Close)
	return rs
}

func testPlan(id string) *models.MarketingPlan {
	return &models.MarketingPlan{
		ID:        id,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Input: models.IMCInput{
			ProductPrice:  200_000,
			TimelineWeeks: 8,
			Industry:      "fashion",
			PlanningMode:  models.ModeBudgetDriven,
			CampaignFocus: models.FocusConversion,
			Budget:        50_000_000,
		},
		Metrics: models.CalculatedMetrics{
			TotalBudget: 50_000_000,
			ImpliedROAS: 0.932,
			Feasibility: models.FeasibilityResult{IsFeasible: true, RiskLevel: models.RiskLow},
		},
	}
}

func TestCachePlanRoundTrip(t *testing.T) {
	rs := newTestStore(t)

	p := testPlan("11111111-1111-1111-1111-111111111111")
	require.NoError(t, rs.CachePlan(p))

	got, err := rs.GetCachedPlan(p.ID)
	require.NoError(t, err)
	require.Equal(t, p.ID, got.ID)
	require.Equal(t, p.Metrics.TotalBudget, got.Metrics.TotalBudget)
	require.Equal(t, p.Input.CampaignFocus, got.Input.CampaignFocus)
}

func TestGetCachedPlan_Miss(t *testing.T) {
	rs := newTestStore(t)

	_, err := rs.GetCachedPlan("missing")
	require.True(t, errors.Is(err, models.ErrNotFound))
}

func TestInvalidatePlan(t *testing.T) {
	rs := newTestStore(t)

	p := testPlan("22222222-2222-2222-2222-222222222222")
	require.NoError(t, rs.CachePlan(p))
	require.NoError(t, rs.InvalidatePlan(p.ID))

	_, err := rs.GetCachedPlan(p.ID)
	require.True(t, errors.Is(err, models.ErrNotFound))
}

func TestIncrementPlanCount(t *testing.T) {
	rs := newTestStore(t)

	n, err := rs.IncrementPlanCount("beauty")
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	n, err = rs.IncrementPlanCount("beauty")
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	// Empty industries fold into a shared bucket.
	n, err = rs.IncrementPlanCount("")
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	got, err := rs.GetPlanCount("beauty")
	require.NoError(t, err)
	require.Equal(t, int64(2), got)

	got, err = rs.GetPlanCount("fnb")
	require.NoError(t, err)
	require.Zero(t, got)
}
