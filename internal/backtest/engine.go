// Package backtest replays historical market events against a simulated
// portfolio and records the portfolio's trajectory.
package backtest

import (
	"context"
	"time"

	"github.com/shinobu1729/backtest-univ3/internal/domain"
	"github.com/shinobu1729/backtest-univ3/internal/portfolio"
	"github.com/shinobu1729/backtest-univ3/internal/replay"
	"github.com/shinobu1729/backtest-univ3/internal/strategy"
)

// Results holds the three parallel histories of a completed run plus
// counters describing what was processed.
type Results struct {
	PortfolioHistory []domain.PortfolioSnapshot
	RebalanceHistory []domain.RebalanceEntry
	PositionHistory  []domain.PositionSetSnapshot
	Anomalies        []domain.Anomaly

	EventCount   int
	SkippedCount int

	FirstTimestamp time.Time
	LastTimestamp  time.Time
}

// RebalanceCount returns how many events produced a portfolio action.
func (r *Results) RebalanceCount() int {
	return len(r.RebalanceHistory)
}

// Engine feeds replayed events to a strategy and snapshots the portfolio
// after every processed event. It is single threaded; a run over the same
// events with the same strategy reproduces results bit for bit.
type Engine struct {
	strat   strategy.Strategy
	pf      *portfolio.Portfolio
	anomaly *AnomalyLog
	results Results
}

// NewEngine creates an engine around a strategy, portfolio, and anomaly log.
func NewEngine(strat strategy.Strategy, pf *portfolio.Portfolio, anomaly *AnomalyLog) *Engine {
	if anomaly == nil {
		anomaly = NewAnomalyLog()
	}
	return &Engine{strat: strat, pf: pf, anomaly: anomaly}
}

// OnEvent processes one event. Events without a price are skipped and
// counted; everything else goes through the strategy and is snapshotted.
func (e *Engine) OnEvent(ctx context.Context, event *domain.Event) error {
	if event.Price == nil {
		e.results.SkippedCount++
		return nil
	}

	idx := e.results.EventCount
	e.results.EventCount++
	e.anomaly.setCursor(idx, event.Timestamp)

	if e.results.FirstTimestamp.IsZero() {
		e.results.FirstTimestamp = event.Timestamp
	}
	e.results.LastTimestamp = event.Timestamp

	tag, err := e.strat.Rebalance(ctx, event, e.pf)
	if err != nil {
		return err
	}
	if tag != domain.TagNone {
		e.results.RebalanceHistory = append(e.results.RebalanceHistory, domain.RebalanceEntry{
			EventIndex: idx,
			Timestamp:  event.Timestamp,
			Tag:        tag,
		})
	}

	e.results.PortfolioHistory = append(e.results.PortfolioHistory,
		*e.pf.Snapshot(idx, event.Timestamp, *event.Price))
	e.results.PositionHistory = append(e.results.PositionHistory,
		*e.pf.PositionSet(idx, event.Timestamp))
	return nil
}

// Results returns the accumulated histories. The anomaly entries are
// copied in so the caller gets a self-contained record.
func (e *Engine) Results() *Results {
	e.results.Anomalies = e.anomaly.Entries()
	return &e.results
}

// Portfolio exposes the simulated portfolio, mainly for inspection after
// a run.
func (e *Engine) Portfolio() *portfolio.Portfolio {
	return e.pf
}

var _ replay.ReplayEngine = (*Engine)(nil)
