package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/openimc/planserve/internal/allocation"
	"github.com/openimc/planserve/internal/analytics"
	"github.com/openimc/planserve/internal/api"
	"github.com/openimc/planserve/internal/benchmarks"
	"github.com/openimc/planserve/internal/config"
	"github.com/openimc/planserve/internal/db"
	"github.com/openimc/planserve/internal/engine"
	"github.com/openimc/planserve/internal/middleware"
	"github.com/openimc/planserve/internal/narrative"
	"github.com/openimc/planserve/internal/observability"
	"github.com/openimc/planserve/internal/ratelimit"
)

func main() {
	cfg := config.Load()

	logger, err := observability.InitLoggerWithService(cfg.ServiceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	defer func() {
		if err := logger.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to sync logger: %v\n", err)
		}
	}()

	if err := run(logger, cfg); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
}

func run(logger *zap.Logger, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		shutdownTracing, err := observability.InitTracing(ctx, logger, cfg.ServiceName, cfg.TempoEndpoint, cfg.TracingSampleRate)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer shutdownTracing()
	}

	metricsRegistry := observability.NewPrometheusRegistry()

	// The calculation core has no external dependencies; storage layers
	// below all degrade gracefully when unreachable.
	table := benchmarks.Default()
	eng := engine.NewEngine(table, logger)
	alloc := allocation.NewAllocator(table, logger)

	var pg *db.Postgres
	if cfg.PostgresDSN != "" {
		p, err := db.InitPostgres(cfg.PostgresDSN, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetime, cfg.DBConnMaxIdleTime)
		if err != nil {
			logger.Warn("postgres unavailable, plans will not be persisted", zap.Error(err))
		} else {
			pg = p
			defer pg.Close()
		}
	}

	var redisStore *db.RedisStore
	if cfg.RedisAddr != "" {
		rs, err := db.InitRedis(cfg.RedisAddr)
		if err != nil {
			logger.Warn("redis unavailable, plan cache disabled", zap.Error(err))
		} else {
			redisStore = rs
			defer redisStore.Close()
		}
	}

	var analyticsSvc analytics.AnalyticsService
	if cfg.ClickHouseDSN != "" {
		ch, err := analytics.InitClickHouse(cfg.ClickHouseDSN, cfg.CHMaxOpenConns, metricsRegistry)
		if err != nil {
			logger.Warn("clickhouse unavailable, calculation log disabled", zap.Error(err))
		} else {
			analyticsSvc = ch
			defer ch.Close()
		}
	}

	var narrativeClient *narrative.Client
	if cfg.NarrativeEnabled {
		narrativeClient = narrative.NewClient(cfg.NarrativeURL, cfg.NarrativeTimeout, cfg.NarrativeCacheTTL, logger, metricsRegistry)
		narrativeClient.StartCacheCleanup(10 * time.Minute)
		logger.Info("narrative generation enabled",
			zap.String("url", cfg.NarrativeURL),
			zap.Duration("timeout", cfg.NarrativeTimeout),
			zap.Duration("cache_ttl", cfg.NarrativeCacheTTL))
	}

	limiter := ratelimit.NewClientLimiter(ratelimit.Config{
		Capacity:   cfg.RateLimitCapacity,
		RefillRate: cfg.RateLimitRefillRate,
		Enabled:    cfg.RateLimitEnabled,
	}, metricsRegistry)

	srvDeps := api.NewServer(logger, pg, redisStore, analyticsSvc, eng, alloc, narrativeClient, limiter, metricsRegistry, cfg)

	r := mux.NewRouter()
	r.Use(middleware.WithTraceLogger(logger))

	r.HandleFunc("/forecast", srvDeps.ForecastHandler).Methods("POST")
	r.HandleFunc("/distribution", srvDeps.DistributionHandler).Methods("POST")
	r.HandleFunc("/plan", srvDeps.PlanHandler).Methods("POST")
	r.HandleFunc("/health", srvDeps.HealthHandler).Methods("GET")
	r.HandleFunc("/report/planning", srvDeps.PlanningReportHandler).Methods("GET")

	crud := r.PathPrefix("/api").Subrouter()
	crud.HandleFunc("/plans", srvDeps.ListPlans).Methods("GET")
	crud.HandleFunc("/plans/{id}", srvDeps.GetPlan).Methods("GET")
	crud.HandleFunc("/plans/{id}", srvDeps.DeletePlan).Methods("DELETE")

	r.Handle("/metrics", promhttp.Handler())

	addr := ":" + cfg.Port

	var handler http.Handler = r
	if cfg.TracingEnabled {
		handler = otelhttp.NewHandler(r, "planserve")
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	logger.Info("Planning server running", zap.String("addr", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("listen: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}
