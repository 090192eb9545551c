package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/openimc/planserve/internal/models"
)

// planCacheTTL bounds how long a computed plan is served from Redis before
// falling back to Postgres.
const planCacheTTL = 30 * time.Minute

// RedisStore wraps a redis client used as a read-through cache for plans
// and for cheap daily counters.
type RedisStore struct {
	Client *redis.Client
	Ctx    context.Context
}

// InitRedis initializes a Redis client and returns a RedisStore.
func InitRedis(addr string) (*RedisStore, error) {
	rs := &RedisStore{
		Client: redis.NewClient(&redis.Options{Addr: addr}),
		Ctx:    context.Background(),
	}

	// Add OpenTelemetry instrumentation to Redis client
	if err := redisotel.InstrumentTracing(rs.Client); err != nil {
		return nil, fmt.Errorf("failed to instrument redis tracing: %w", err)
	}

	if err := rs.Client.Ping(rs.Ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	zap.L().Info("Connected to Redis", zap.String("addr", addr))
	return rs, nil
}

// CachePlan stores a computed plan under its id with a TTL.
func (r *RedisStore) CachePlan(plan *models.MarketingPlan) error {
	payload, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	key := fmt.Sprintf("plan:%s", plan.ID)
	if err := r.Client.Set(r.Ctx, key, payload, planCacheTTL).Err(); err != nil {
		return fmt.Errorf("cache plan: %w", err)
	}
	return nil
}

// GetCachedPlan returns a cached plan, or models.ErrNotFound on a miss.
func (r *RedisStore) GetCachedPlan(id string) (*models.MarketingPlan, error) {
	key := fmt.Sprintf("plan:%s", id)
	payload, err := r.Client.Get(r.Ctx, key).Bytes()
	if err == redis.Nil {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cached plan: %w", err)
	}
	var plan models.MarketingPlan
	if err := json.Unmarshal(payload, &plan); err != nil {
		return nil, fmt.Errorf("unmarshal cached plan: %w", err)
	}
	return &plan, nil
}

// InvalidatePlan drops a plan from the cache, e.g. after deletion.
func (r *RedisStore) InvalidatePlan(id string) error {
	key := fmt.Sprintf("plan:%s", id)
	if err := r.Client.Del(r.Ctx, key).Err(); err != nil {
		return fmt.Errorf("invalidate plan: %w", err)
	}
	return nil
}

// IncrementPlanCount bumps the daily plan counter for an industry.
// A 48h TTL is applied on first set so stale days age out on their own.
func (r *RedisStore) IncrementPlanCount(industry string) (int64, error) {
	if industry == "" {
		industry = "unknown"
	}
	key := fmt.Sprintf("plans:%s:%s", industry, time.Now().Format("2006-01-02"))
	val, err := r.Client.Incr(r.Ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if val == 1 {
		r.Client.Expire(r.Ctx, key, 48*time.Hour)
	}
	return val, nil
}

// GetPlanCount returns today's plan counter for an industry.
func (r *RedisStore) GetPlanCount(industry string) (int64, error) {
	if industry == "" {
		industry = "unknown"
	}
	key := fmt.Sprintf("plans:%s:%s", industry, time.Now().Format("2006-01-02"))
	val, err := r.Client.Get(r.Ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return val, nil
}

// Close terminates the Redis connection.
func (r *RedisStore) Close() {
	if r != nil && r.Client != nil {
		if err := r.Client.Close(); err != nil {
			zap.L().Error("redis close", zap.Error(err))
		}
	}
}
