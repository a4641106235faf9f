// Package storage defines the persistence interfaces shared by the
// in-memory, Postgres, and ClickHouse implementations.
package storage

import (
	"context"
	"time"

	"github.com/shinobu1729/backtest-univ3/internal/domain"
)

// MarketEventStore persists raw market events keyed by
// (pool, timestamp, log index).
type MarketEventStore interface {
	Insert(ctx context.Context, event *domain.Event) error
	InsertBulk(ctx context.Context, events []*domain.Event) error
	GetByPool(ctx context.Context, pool string) ([]*domain.Event, error)
	GetByTimeRange(ctx context.Context, pool string, start, end time.Time) ([]*domain.Event, error)
}

// RunStore persists backtest run summaries keyed by run ID.
type RunStore interface {
	Insert(ctx context.Context, run *domain.BacktestRun) error
	GetByID(ctx context.Context, runID string) (*domain.BacktestRun, error)
	GetByPool(ctx context.Context, pool string) ([]*domain.BacktestRun, error)
}

// ValuationStore persists per-event portfolio valuations for a run.
type ValuationStore interface {
	InsertBulk(ctx context.Context, points []*domain.ValuationPoint) error
	GetByRunID(ctx context.Context, runID string) ([]*domain.ValuationPoint, error)
}
