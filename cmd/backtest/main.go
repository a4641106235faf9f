// Command backtest replays a pool's historical events against a
// strategy and reports the outcome.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/shinobu1729/backtest-univ3/internal/backtest"
	"github.com/shinobu1729/backtest-univ3/internal/config"
	"github.com/shinobu1729/backtest-univ3/internal/domain"
	"github.com/shinobu1729/backtest-univ3/internal/ingestion"
	"github.com/shinobu1729/backtest-univ3/internal/logger"
	"github.com/shinobu1729/backtest-univ3/internal/observability"
	"github.com/shinobu1729/backtest-univ3/internal/reporting"
	chstore "github.com/shinobu1729/backtest-univ3/internal/storage/clickhouse"
	"github.com/shinobu1729/backtest-univ3/internal/storage/migrations"
	"github.com/shinobu1729/backtest-univ3/internal/storage/postgres"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "backtest: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "config.yaml", "path to YAML config")
		jsonOut    = flag.Bool("json", false, "print the run summary as JSON")
		csvOut     = flag.String("csv-out", "", "write the valuation history CSV to this path")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logger.Initialize(cfg.LogLevel)
	log := logger.GetForComponent("backtest")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events, err := loadEvents(ctx, cfg)
	if err != nil {
		return err
	}
	log.Info().Int("events", len(events)).Str("pool", cfg.Pool.ID).Msg("loaded events")

	runner, err := backtest.NewRunner(cfg.DomainStrategy(), cfg.DomainPool())
	if err != nil {
		return err
	}

	started := time.Now()
	run, results, err := runner.Run(ctx, events)
	if err != nil {
		return err
	}
	elapsed := time.Since(started)

	metrics := observability.DefaultMetrics()
	metrics.EventsProcessed.Add(float64(results.EventCount))
	metrics.EventsSkipped.Add(float64(results.SkippedCount))
	for _, entry := range results.RebalanceHistory {
		metrics.RebalancesTotal.WithLabelValues(string(entry.Tag)).Inc()
	}
	for _, anomaly := range results.Anomalies {
		metrics.AnomaliesTotal.WithLabelValues(string(anomaly.Kind)).Inc()
	}
	metrics.RunDuration.Observe(elapsed.Seconds())
	metrics.PortfolioValueY.Set(run.FinalValueY)

	if err := persist(ctx, cfg, run, results); err != nil {
		return err
	}
	log.Info().Str("run_id", run.RunID).Dur("elapsed", elapsed).Msg("run complete")

	report := reporting.NewReport(run, results)
	if *csvOut != "" {
		if err := writeValuationCSV(report, *csvOut); err != nil {
			return err
		}
	}
	if *jsonOut {
		return json.NewEncoder(os.Stdout).Encode(run)
	}
	fmt.Print(report.Markdown())
	return nil
}

func loadEvents(ctx context.Context, cfg *config.Config) ([]*domain.Event, error) {
	if cfg.Data.EventsCSV != "" {
		f, err := os.Open(cfg.Data.EventsCSV)
		if err != nil {
			return nil, fmt.Errorf("open events csv: %w", err)
		}
		defer f.Close()
		return ingestion.ReadEvents(f, cfg.Pool.ID)
	}
	if cfg.Storage.PostgresDSN == "" {
		return nil, fmt.Errorf("no event source: set data.events_csv or a Postgres DSN")
	}
	pool, err := postgres.NewPool(ctx, cfg.Storage.PostgresDSN)
	if err != nil {
		return nil, err
	}
	defer pool.Close()
	return postgres.NewEventStore(pool).GetByPool(ctx, cfg.Pool.ID)
}

// persist writes the run summary to Postgres and the valuation history
// to ClickHouse when DSNs are configured. Without DSNs the run is
// report-only.
func persist(ctx context.Context, cfg *config.Config, run *domain.BacktestRun, results *backtest.Results) error {
	if cfg.Storage.PostgresDSN != "" {
		if err := migrations.RunPostgresMigrations(ctx, cfg.Storage.PostgresDSN); err != nil {
			return err
		}
		pool, err := postgres.NewPool(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := postgres.NewRunStore(pool).Insert(ctx, run); err != nil {
			return fmt.Errorf("store run summary: %w", err)
		}
	}
	if cfg.Storage.ClickHouseDSN != "" {
		if err := migrations.RunClickHouseMigrations(ctx, cfg.Storage.ClickHouseDSN); err != nil {
			return err
		}
		conn, err := chstore.NewConn(ctx, cfg.Storage.ClickHouseDSN)
		if err != nil {
			return err
		}
		defer conn.Close()
		points := backtest.ValuationPoints(run.RunID, results)
		if err := chstore.NewValuationStore(conn).InsertBulk(ctx, points); err != nil {
			return fmt.Errorf("store valuation history: %w", err)
		}
	}
	return nil
}

func writeValuationCSV(report *reporting.Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv output: %w", err)
	}
	defer f.Close()
	return report.WriteValuationCSV(f)
}
