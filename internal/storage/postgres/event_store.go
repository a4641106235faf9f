package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/shinobu1729/backtest-univ3/internal/domain"
	"github.com/shinobu1729/backtest-univ3/internal/storage"
)

// EventStore persists market events in the market_events table.
type EventStore struct {
	pool *Pool
}

// NewEventStore creates an event store over an existing pool.
func NewEventStore(pool *Pool) *EventStore {
	return &EventStore{pool: pool}
}

const insertEventSQL = `
	INSERT INTO market_events (
		pool, timestamp_ms, log_index, event_type,
		price, price_before, amount0, amount1,
		owner, tick, pool_liquidity, tick_lower, tick_upper, liquidity
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

const selectEventColumns = `
	SELECT pool, timestamp_ms, log_index, event_type,
		price, price_before, amount0, amount1,
		owner, tick, pool_liquidity, tick_lower, tick_upper, liquidity
	FROM market_events`

// Insert stores one event.
func (s *EventStore) Insert(ctx context.Context, event *domain.Event) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
	}
	_, err := s.pool.pool.Exec(ctx, insertEventSQL, eventArgs(event)...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: event %s at %d/%d", storage.ErrDuplicateKey,
				event.Pool, event.Timestamp.UnixMilli(), event.LogIndex)
		}
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// InsertBulk stores a batch of events in a single transaction.
func (s *EventStore) InsertBulk(ctx context.Context, events []*domain.Event) error {
	for i, event := range events {
		if err := event.Validate(); err != nil {
			return fmt.Errorf("%w: event %d: %v", storage.ErrInvalidInput, i, err)
		}
	}
	tx, err := s.pool.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, event := range events {
		if _, err := tx.Exec(ctx, insertEventSQL, eventArgs(event)...); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: event %s at %d/%d", storage.ErrDuplicateKey,
					event.Pool, event.Timestamp.UnixMilli(), event.LogIndex)
			}
			return fmt.Errorf("insert event: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// GetByPool returns all of a pool's events in replay order.
func (s *EventStore) GetByPool(ctx context.Context, pool string) ([]*domain.Event, error) {
	rows, err := s.pool.pool.Query(ctx,
		selectEventColumns+` WHERE pool = $1 ORDER BY timestamp_ms, log_index`, pool)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// GetByTimeRange returns a pool's events with start <= timestamp < end.
func (s *EventStore) GetByTimeRange(ctx context.Context, pool string, start, end time.Time) ([]*domain.Event, error) {
	rows, err := s.pool.pool.Query(ctx,
		selectEventColumns+` WHERE pool = $1 AND timestamp_ms >= $2 AND timestamp_ms < $3
		ORDER BY timestamp_ms, log_index`,
		pool, start.UnixMilli(), end.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func eventArgs(event *domain.Event) []any {
	var (
		owner                *string
		tick                 *int
		poolLiquidity        *float64
		tickLower, tickUpper *int
		liquidity            *float64
	)
	if event.Swap != nil {
		owner = &event.Swap.Owner
		tick = &event.Swap.Tick
		poolLiquidity = &event.Swap.PoolLiquidity
	}
	if event.Liquidity != nil {
		owner = &event.Liquidity.Owner
		tickLower = &event.Liquidity.TickLower
		tickUpper = &event.Liquidity.TickUpper
		liquidity = &event.Liquidity.Liquidity
	}
	return []any{
		event.Pool, event.Timestamp.UnixMilli(), event.LogIndex, string(event.Type),
		event.Price, event.PriceBefore, event.Amount0, event.Amount1,
		owner, tick, poolLiquidity, tickLower, tickUpper, liquidity,
	}
}

func scanEvents(rows pgx.Rows) ([]*domain.Event, error) {
	var out []*domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}

func scanEvent(rows pgx.Rows) (*domain.Event, error) {
	var (
		event                domain.Event
		timestampMs          int64
		eventType            string
		owner                *string
		tick                 *int
		poolLiquidity        *float64
		tickLower, tickUpper *int
		liquidity            *float64
	)
	if err := rows.Scan(
		&event.Pool, &timestampMs, &event.LogIndex, &eventType,
		&event.Price, &event.PriceBefore, &event.Amount0, &event.Amount1,
		&owner, &tick, &poolLiquidity, &tickLower, &tickUpper, &liquidity,
	); err != nil {
		return nil, fmt.Errorf("scan event: %w", err)
	}
	event.Timestamp = time.UnixMilli(timestampMs).UTC()
	event.Type = domain.EventType(eventType)
	switch event.Type {
	case domain.EventTypeSwap:
		payload := &domain.SwapPayload{}
		if owner != nil {
			payload.Owner = *owner
		}
		if tick != nil {
			payload.Tick = *tick
		}
		if poolLiquidity != nil {
			payload.PoolLiquidity = *poolLiquidity
		}
		event.Swap = payload
	case domain.EventTypeMint, domain.EventTypeBurn:
		payload := &domain.LiquidityPayload{}
		if owner != nil {
			payload.Owner = *owner
		}
		if tickLower != nil {
			payload.TickLower = *tickLower
		}
		if tickUpper != nil {
			payload.TickUpper = *tickUpper
		}
		if liquidity != nil {
			payload.Liquidity = *liquidity
		}
		event.Liquidity = payload
	}
	return &event, nil
}

var _ storage.MarketEventStore = (*EventStore)(nil)
