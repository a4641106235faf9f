package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/shinobu1729/backtest-univ3/internal/domain"
	"github.com/shinobu1729/backtest-univ3/internal/storage"
)

// ValuationStore persists per-event valuations in the valuation_history
// table.
type ValuationStore struct {
	conn *Conn
}

// NewValuationStore creates a valuation store over an existing connection.
func NewValuationStore(conn *Conn) *ValuationStore {
	return &ValuationStore{conn: conn}
}

// InsertBulk appends a batch of valuation points via a prepared batch.
func (s *ValuationStore) InsertBulk(ctx context.Context, points []*domain.ValuationPoint) error {
	for i, point := range points {
		if point.RunID == "" {
			return fmt.Errorf("%w: point %d has empty run id", storage.ErrInvalidInput, i)
		}
	}
	batch, err := s.conn.conn.PrepareBatch(ctx, `
		INSERT INTO valuation_history (
			run_id, event_index, timestamp_ms, price, total_value_x, total_value_y
		)`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}
	for _, point := range points {
		if err := batch.Append(
			point.RunID,
			int64(point.EventIndex),
			point.Timestamp.UnixMilli(),
			point.Price,
			point.TotalValueX,
			point.TotalValueY,
		); err != nil {
			return fmt.Errorf("append valuation point: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByRunID returns a run's valuation points ordered by event index.
func (s *ValuationStore) GetByRunID(ctx context.Context, runID string) ([]*domain.ValuationPoint, error) {
	rows, err := s.conn.conn.Query(ctx, `
		SELECT run_id, event_index, timestamp_ms, price, total_value_x, total_value_y
		FROM valuation_history
		WHERE run_id = ?
		ORDER BY event_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("query valuations: %w", err)
	}
	defer rows.Close()

	var out []*domain.ValuationPoint
	for rows.Next() {
		var (
			point       domain.ValuationPoint
			eventIndex  int64
			timestampMs int64
		)
		if err := rows.Scan(&point.RunID, &eventIndex, &timestampMs,
			&point.Price, &point.TotalValueX, &point.TotalValueY); err != nil {
			return nil, fmt.Errorf("scan valuation point: %w", err)
		}
		point.EventIndex = int(eventIndex)
		point.Timestamp = time.UnixMilli(timestampMs).UTC()
		out = append(out, &point)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate valuations: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: run %s", storage.ErrNotFound, runID)
	}
	return out, nil
}

var _ storage.ValuationStore = (*ValuationStore)(nil)
