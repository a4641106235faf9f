package domain

import "time"

// BacktestRun is the persisted record of one completed backtest.
// Corresponds to the backtest_runs table in PostgreSQL.
type BacktestRun struct {
	RunID          string // deterministic SHA256 id, see internal/idhash
	Pool           string
	StrategyID     string
	EventCount     int // processed events
	SkippedCount   int // null-price rows skipped
	RebalanceCount int // events with a non-empty action tag
	AnomalyCount   int
	StartTimestamp time.Time // first processed event
	EndTimestamp   time.Time // last processed event
	FinalValueX    float64
	FinalValueY    float64
	CreatedAt      time.Time
}

// ValuationPoint is one persisted row of a run's valuation history.
// Corresponds to the valuation_history table in ClickHouse.
type ValuationPoint struct {
	RunID       string
	EventIndex  int
	Timestamp   time.Time
	Price       float64
	TotalValueX float64
	TotalValueY float64
}
