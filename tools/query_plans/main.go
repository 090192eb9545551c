// Command query_plans prints recent calculation events from ClickHouse as
// JSON, for spot-checking what the engine has been asked to plan.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/openimc/planserve/internal/analytics"
	"github.com/openimc/planserve/internal/config"
	"github.com/openimc/planserve/internal/observability"
)

func main() {
	logger, err := observability.InitLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	var dsn string
	var limit int
	flag.StringVar(&dsn, "dsn", "", "ClickHouse DSN")
	flag.IntVar(&limit, "limit", 20, "number of events to print")
	flag.Parse()

	if dsn == "" {
		cfg := config.Load()
		dsn = cfg.ClickHouseDSN
	}

	a, err := analytics.InitClickHouse(dsn, 10, observability.NewNoOpRegistry())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect clickhouse: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	events, err := a.RecentEvents(context.Background(), limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "query events: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(events); err != nil {
		fmt.Fprintf(os.Stderr, "encode events: %v\n", err)
		os.Exit(1)
	}
}
