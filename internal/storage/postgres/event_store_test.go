package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shinobu1729/backtest-univ3/internal/domain"
	"github.com/shinobu1729/backtest-univ3/internal/storage"
)

func pgSwap(pool string, ts time.Time, logIndex int64) *domain.Event {
	price := 100.25
	before := 100.0
	return &domain.Event{
		Pool:        pool,
		Timestamp:   ts,
		LogIndex:    logIndex,
		Type:        domain.EventTypeSwap,
		Price:       &price,
		PriceBefore: &before,
		Amount0:     10,
		Amount1:     -1002.5,
		Swap:        &domain.SwapPayload{Owner: "0xaaa", Tick: 46054, PoolLiquidity: 1e9},
	}
}

func pgMint(pool string, ts time.Time, logIndex int64) *domain.Event {
	price := 100.25
	return &domain.Event{
		Pool:      pool,
		Timestamp: ts,
		LogIndex:  logIndex,
		Type:      domain.EventTypeMint,
		Price:     &price,
		Amount0:   1.5,
		Amount1:   150,
		Liquidity: &domain.LiquidityPayload{Owner: "0xbbb", TickLower: 45000, TickUpper: 47000, Liquidity: 500},
	}
}

func TestEventStoreRoundTrip(t *testing.T) {
	pool := setupTestDB(t)
	store := NewEventStore(pool)
	ctx := context.Background()
	t0 := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Insert(ctx, pgSwap("pool", t0, 0)))
	require.NoError(t, store.Insert(ctx, pgMint("pool", t0, 1)))

	events, err := store.GetByPool(ctx, "pool")
	require.NoError(t, err)
	require.Len(t, events, 2)

	swap := events[0]
	require.Equal(t, domain.EventTypeSwap, swap.Type)
	require.NotNil(t, swap.Price)
	require.Equal(t, 100.25, *swap.Price)
	require.NotNil(t, swap.PriceBefore)
	require.NotNil(t, swap.Swap)
	require.Equal(t, 46054, swap.Swap.Tick)
	require.Equal(t, "0xaaa", swap.Swap.Owner)
	require.True(t, swap.Timestamp.Equal(t0))

	mint := events[1]
	require.Equal(t, domain.EventTypeMint, mint.Type)
	require.NotNil(t, mint.Liquidity)
	require.Equal(t, 45000, mint.Liquidity.TickLower)
	require.Equal(t, 500.0, mint.Liquidity.Liquidity)
	require.Nil(t, mint.PriceBefore)
}

func TestEventStoreNullPrice(t *testing.T) {
	pool := setupTestDB(t)
	store := NewEventStore(pool)
	ctx := context.Background()
	t0 := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)

	event := pgSwap("pool", t0, 0)
	event.Price = nil
	event.PriceBefore = nil
	require.NoError(t, store.Insert(ctx, event))

	events, err := store.GetByPool(ctx, "pool")
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Nil(t, events[0].Price)
}

func TestEventStoreDuplicateKey(t *testing.T) {
	pool := setupTestDB(t)
	store := NewEventStore(pool)
	ctx := context.Background()
	t0 := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Insert(ctx, pgSwap("pool", t0, 0)))
	err := store.Insert(ctx, pgSwap("pool", t0, 0))
	require.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestEventStoreInsertBulkRollsBack(t *testing.T) {
	pool := setupTestDB(t)
	store := NewEventStore(pool)
	ctx := context.Background()
	t0 := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Insert(ctx, pgSwap("pool", t0, 5)))

	batch := []*domain.Event{
		pgSwap("pool", t0, 6),
		pgSwap("pool", t0, 5), // collides with the pre-existing row
	}
	err := store.InsertBulk(ctx, batch)
	require.ErrorIs(t, err, storage.ErrDuplicateKey)

	events, err := store.GetByPool(ctx, "pool")
	require.NoError(t, err)
	require.Len(t, events, 1, "failed bulk insert must roll back")
}

func TestEventStoreGetByTimeRange(t *testing.T) {
	pool := setupTestDB(t)
	store := NewEventStore(pool)
	ctx := context.Background()
	t0 := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)

	var batch []*domain.Event
	for i := 0; i < 5; i++ {
		batch = append(batch, pgSwap("pool", t0.Add(time.Duration(i)*time.Minute), 0))
	}
	require.NoError(t, store.InsertBulk(ctx, batch))

	events, err := store.GetByTimeRange(ctx, "pool", t0.Add(time.Minute), t0.Add(3*time.Minute))
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.True(t, events[0].Timestamp.Equal(t0.Add(time.Minute)))
}
