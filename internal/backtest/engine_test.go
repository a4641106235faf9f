package backtest

import (
	"context"
	"testing"
	"time"

	"github.com/shinobu1729/backtest-univ3/internal/domain"
	"github.com/shinobu1729/backtest-univ3/internal/portfolio"
	"github.com/shinobu1729/backtest-univ3/internal/strategy"
)

func swapEvent(ts time.Time, price float64) *domain.Event {
	return &domain.Event{
		Pool:      "pool",
		Timestamp: ts,
		Type:      domain.EventTypeSwap,
		Price:     &price,
		Amount0:   1,
		Amount1:   -price,
		Swap:      &domain.SwapPayload{Tick: 0, PoolLiquidity: 1e6},
	}
}

func nullPriceEvent(ts time.Time) *domain.Event {
	return &domain.Event{
		Pool:      "pool",
		Timestamp: ts,
		Type:      domain.EventTypeSwap,
		Swap:      &domain.SwapPayload{Tick: 0, PoolLiquidity: 1e6},
	}
}

func newHoldEngine(t *testing.T) *Engine {
	t.Helper()
	anomaly := NewAnomalyLog()
	strat := strategy.NewHold(strategy.HoldConfig{InitialX: 1, InitialY: 1}, anomaly)
	return NewEngine(strat, portfolio.New("main"), anomaly)
}

func TestEngineSkipsNullPrices(t *testing.T) {
	engine := newHoldEngine(t)
	ctx := context.Background()
	t0 := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)

	if err := engine.OnEvent(ctx, nullPriceEvent(t0)); err != nil {
		t.Fatal(err)
	}
	if err := engine.OnEvent(ctx, swapEvent(t0.Add(time.Second), 100)); err != nil {
		t.Fatal(err)
	}
	if err := engine.OnEvent(ctx, nullPriceEvent(t0.Add(2*time.Second))); err != nil {
		t.Fatal(err)
	}

	results := engine.Results()
	if results.EventCount != 1 || results.SkippedCount != 2 {
		t.Errorf("counts = (%d, %d), want (1, 2)", results.EventCount, results.SkippedCount)
	}
	if len(results.PortfolioHistory) != 1 {
		t.Errorf("history length %d, want 1", len(results.PortfolioHistory))
	}
	// skipped events leave no gap in the event indexes
	if results.PortfolioHistory[0].EventIndex != 0 {
		t.Errorf("first index %d, want 0", results.PortfolioHistory[0].EventIndex)
	}
}

func TestEngineRecordsParallelHistories(t *testing.T) {
	engine := newHoldEngine(t)
	ctx := context.Background()
	t0 := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if err := engine.OnEvent(ctx, swapEvent(t0.Add(time.Duration(i)*time.Minute), 100)); err != nil {
			t.Fatal(err)
		}
	}
	results := engine.Results()
	if len(results.PortfolioHistory) != 3 || len(results.PositionHistory) != 3 {
		t.Fatalf("history lengths: %d, %d", len(results.PortfolioHistory), len(results.PositionHistory))
	}
	for i := range results.PortfolioHistory {
		if results.PortfolioHistory[i].EventIndex != i {
			t.Errorf("portfolio history index %d at position %d", results.PortfolioHistory[i].EventIndex, i)
		}
		if results.PositionHistory[i].EventIndex != i {
			t.Errorf("position history index %d at position %d", results.PositionHistory[i].EventIndex, i)
		}
	}
	// Hold never acts, so the rebalance log stays empty
	if len(results.RebalanceHistory) != 0 {
		t.Errorf("rebalance history: %v", results.RebalanceHistory)
	}
	if !results.FirstTimestamp.Equal(t0) || !results.LastTimestamp.Equal(t0.Add(2*time.Minute)) {
		t.Errorf("window [%v, %v]", results.FirstTimestamp, results.LastTimestamp)
	}
}

func TestEngineRecordsRebalanceTags(t *testing.T) {
	anomaly := NewAnomalyLog()
	strat, err := strategy.NewPassiveRange(strategy.PassiveRangeConfig{LowerPrice: 90, UpperPrice: 110},
		domain.Pool{ID: "pool", Fee: 0}, anomaly)
	if err != nil {
		t.Fatal(err)
	}
	engine := NewEngine(strat, portfolio.New("main"), anomaly)
	ctx := context.Background()
	t0 := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)

	if err := engine.OnEvent(ctx, swapEvent(t0, 100)); err != nil {
		t.Fatal(err)
	}
	if err := engine.OnEvent(ctx, swapEvent(t0.Add(time.Minute), 100)); err != nil {
		t.Fatal(err)
	}
	results := engine.Results()
	if len(results.RebalanceHistory) != 1 {
		t.Fatalf("rebalance history: %v", results.RebalanceHistory)
	}
	entry := results.RebalanceHistory[0]
	if entry.Tag != domain.TagMint || entry.EventIndex != 0 {
		t.Errorf("entry = %+v, want mint at index 0", entry)
	}
	if results.RebalanceCount() != 1 {
		t.Errorf("RebalanceCount = %d", results.RebalanceCount())
	}
}

func TestAnomalyLogStampsCursor(t *testing.T) {
	log := NewAnomalyLog()
	t0 := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)

	log.RecordAnomaly(domain.AnomalyMissingPosition, "p", "before any event")
	log.setCursor(4, t0)
	log.RecordAnomaly(domain.AnomalyNumericAssertion, "q", "mid-run")

	entries := log.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries: %v", entries)
	}
	if entries[0].EventIndex != -1 {
		t.Errorf("pre-run anomaly index %d, want -1", entries[0].EventIndex)
	}
	if entries[1].EventIndex != 4 || !entries[1].Timestamp.Equal(t0) {
		t.Errorf("stamped entry: %+v", entries[1])
	}
}
