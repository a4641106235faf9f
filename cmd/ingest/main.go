// Command ingest loads a historical pool event CSV into storage.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/shinobu1729/backtest-univ3/internal/config"
	"github.com/shinobu1729/backtest-univ3/internal/ingestion"
	"github.com/shinobu1729/backtest-univ3/internal/logger"
	"github.com/shinobu1729/backtest-univ3/internal/observability"
	"github.com/shinobu1729/backtest-univ3/internal/storage/migrations"
	"github.com/shinobu1729/backtest-univ3/internal/storage/postgres"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ingest: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "config.yaml", "path to YAML config")
		csvPath    = flag.String("csv", "", "events CSV (overrides config)")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logger.Initialize(cfg.LogLevel)
	log := logger.GetForComponent("ingest")

	path := cfg.Data.EventsCSV
	if *csvPath != "" {
		path = *csvPath
	}
	if path == "" {
		return fmt.Errorf("no events CSV: set data.events_csv or --csv")
	}
	if cfg.Storage.PostgresDSN == "" {
		return fmt.Errorf("no Postgres DSN: set storage.postgres_dsn or POSTGRES_DSN")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open events csv: %w", err)
	}
	defer f.Close()

	events, err := ingestion.ReadEvents(f, cfg.Pool.ID)
	if err != nil {
		return err
	}
	log.Info().Int("events", len(events)).Str("pool", cfg.Pool.ID).Msg("parsed events csv")

	if err := migrations.RunPostgresMigrations(ctx, cfg.Storage.PostgresDSN); err != nil {
		return err
	}
	pool, err := postgres.NewPool(ctx, cfg.Storage.PostgresDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	store := postgres.NewEventStore(pool)
	if err := store.InsertBulk(ctx, events); err != nil {
		return err
	}

	metrics := observability.DefaultMetrics()
	metrics.EventsIngested.Add(float64(len(events)))

	log.Info().Int("events", len(events)).Msg("ingestion complete")
	fmt.Printf("ingested %d events for pool %s\n", len(events), cfg.Pool.ID)
	return nil
}
