package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/shinobu1729/backtest-univ3/internal/domain"
	"github.com/shinobu1729/backtest-univ3/internal/idhash"
	"github.com/shinobu1729/backtest-univ3/internal/portfolio"
	"github.com/shinobu1729/backtest-univ3/internal/replay"
	"github.com/shinobu1729/backtest-univ3/internal/strategy"
)

// Runner wires a strategy configuration to a replay over a pool's events
// and summarizes the outcome as a BacktestRun.
type Runner struct {
	pool    domain.Pool
	strat   strategy.Strategy
	engine  *Engine
	anomaly *AnomalyLog
}

// NewRunner builds the strategy from its configuration and prepares an
// engine with a fresh portfolio.
func NewRunner(cfg domain.StrategyConfig, pool domain.Pool) (*Runner, error) {
	if err := pool.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pool: %w", err)
	}
	anomaly := NewAnomalyLog()
	strat, err := strategy.FromConfig(cfg, pool, anomaly)
	if err != nil {
		return nil, fmt.Errorf("build strategy: %w", err)
	}
	pf := portfolio.New("main")
	return &Runner{
		pool:    pool,
		strat:   strat,
		engine:  NewEngine(strat, pf, anomaly),
		anomaly: anomaly,
	}, nil
}

// Run replays the events and returns the run summary and full results.
func (r *Runner) Run(ctx context.Context, events []*domain.Event) (*domain.BacktestRun, *Results, error) {
	runner := replay.NewRunner(r.engine)
	if err := runner.Run(ctx, events); err != nil {
		return nil, nil, err
	}
	results := r.engine.Results()
	return r.summarize(results), results, nil
}

func (r *Runner) summarize(results *Results) *domain.BacktestRun {
	run := &domain.BacktestRun{
		Pool:           r.pool.ID,
		StrategyID:     r.strat.ID(),
		EventCount:     results.EventCount,
		SkippedCount:   results.SkippedCount,
		RebalanceCount: results.RebalanceCount(),
		AnomalyCount:   len(results.Anomalies),
		StartTimestamp: results.FirstTimestamp,
		EndTimestamp:   results.LastTimestamp,
		CreatedAt:      time.Now().UTC(),
	}
	if n := len(results.PortfolioHistory); n > 0 {
		last := results.PortfolioHistory[n-1]
		run.FinalValueX = last.TotalValueX
		run.FinalValueY = last.TotalValueY
	}
	run.RunID = idhash.ComputeRunID(run.Pool, run.StrategyID,
		run.StartTimestamp.UnixMilli(), run.EndTimestamp.UnixMilli(), run.EventCount)
	return run
}

// ValuationPoints converts a run's portfolio history into storable points.
func ValuationPoints(runID string, results *Results) []*domain.ValuationPoint {
	points := make([]*domain.ValuationPoint, 0, len(results.PortfolioHistory))
	for _, snap := range results.PortfolioHistory {
		points = append(points, &domain.ValuationPoint{
			RunID:       runID,
			EventIndex:  snap.EventIndex,
			Timestamp:   snap.Timestamp,
			Price:       snap.Price,
			TotalValueX: snap.TotalValueX,
			TotalValueY: snap.TotalValueY,
		})
	}
	return points
}
