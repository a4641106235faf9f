package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/shinobu1729/backtest-univ3/internal/domain"
	"github.com/shinobu1729/backtest-univ3/internal/storage"
)

// RunStore persists run summaries in the backtest_runs table.
type RunStore struct {
	pool *Pool
}

// NewRunStore creates a run store over an existing pool.
func NewRunStore(pool *Pool) *RunStore {
	return &RunStore{pool: pool}
}

const selectRunColumns = `
	SELECT run_id, pool, strategy_id,
		event_count, skipped_count, rebalance_count, anomaly_count,
		start_ms, end_ms, final_value_x, final_value_y, created_at_ms
	FROM backtest_runs`

// Insert stores a run summary.
func (s *RunStore) Insert(ctx context.Context, run *domain.BacktestRun) error {
	if run.RunID == "" {
		return fmt.Errorf("%w: empty run id", storage.ErrInvalidInput)
	}
	_, err := s.pool.pool.Exec(ctx, `
		INSERT INTO backtest_runs (
			run_id, pool, strategy_id,
			event_count, skipped_count, rebalance_count, anomaly_count,
			start_ms, end_ms, final_value_x, final_value_y, created_at_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		run.RunID, run.Pool, run.StrategyID,
		run.EventCount, run.SkippedCount, run.RebalanceCount, run.AnomalyCount,
		run.StartTimestamp.UnixMilli(), run.EndTimestamp.UnixMilli(),
		run.FinalValueX, run.FinalValueY, run.CreatedAt.UnixMilli())
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: run %s", storage.ErrDuplicateKey, run.RunID)
		}
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// GetByID returns the run with the given ID.
func (s *RunStore) GetByID(ctx context.Context, runID string) (*domain.BacktestRun, error) {
	row := s.pool.pool.QueryRow(ctx, selectRunColumns+` WHERE run_id = $1`, runID)
	run, err := scanRun(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, fmt.Errorf("%w: run %s", storage.ErrNotFound, runID)
		}
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// GetByPool returns all runs over a pool, newest first.
func (s *RunStore) GetByPool(ctx context.Context, pool string) ([]*domain.BacktestRun, error) {
	rows, err := s.pool.pool.Query(ctx,
		selectRunColumns+` WHERE pool = $1 ORDER BY created_at_ms DESC, run_id`, pool)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []*domain.BacktestRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}

func scanRun(row pgx.Row) (*domain.BacktestRun, error) {
	var (
		run                       domain.BacktestRun
		startMs, endMs, createdMs int64
	)
	if err := row.Scan(
		&run.RunID, &run.Pool, &run.StrategyID,
		&run.EventCount, &run.SkippedCount, &run.RebalanceCount, &run.AnomalyCount,
		&startMs, &endMs, &run.FinalValueX, &run.FinalValueY, &createdMs,
	); err != nil {
		return nil, err
	}
	run.StartTimestamp = time.UnixMilli(startMs).UTC()
	run.EndTimestamp = time.UnixMilli(endMs).UTC()
	run.CreatedAt = time.UnixMilli(createdMs).UTC()
	return &run, nil
}

var _ storage.RunStore = (*RunStore)(nil)
