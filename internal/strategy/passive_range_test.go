package strategy

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/shinobu1729/backtest-univ3/internal/amm"
	"github.com/shinobu1729/backtest-univ3/internal/domain"
	"github.com/shinobu1729/backtest-univ3/internal/portfolio"
)

func TestNewPassiveRangeRejectsBadRange(t *testing.T) {
	_, err := NewPassiveRange(PassiveRangeConfig{LowerPrice: 110, UpperPrice: 90},
		domain.Pool{ID: "pool"}, nil)
	if err == nil {
		t.Fatal("inverted range accepted")
	}
}

func TestPassiveRangeMintsOnce(t *testing.T) {
	reporter := &testReporter{}
	s, err := NewPassiveRange(PassiveRangeConfig{LowerPrice: 90, UpperPrice: 110},
		domain.Pool{ID: "pool", Fee: 0}, reporter)
	if err != nil {
		t.Fatal(err)
	}
	pf := portfolio.New("main")
	ctx := context.Background()
	ts := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	price := 100.0

	tag, err := s.Rebalance(ctx, swapEvent(ts, price, 1, -99, 2000, amm.PriceToTick(price), "x"), pf)
	if err != nil {
		t.Fatalf("Rebalance: %v", err)
	}
	if tag != domain.TagMint {
		t.Errorf("first event tag = %q, want mint", tag)
	}
	if !pf.Has("main_vault") || !pf.Has("passive_range") {
		t.Fatalf("positions missing: %v", pf.Names())
	}

	// deposited capital was x=1/price, y=1; with zero fee and zero gas the
	// portfolio value must equal it exactly within rounding
	snap := pf.Snapshot(0, ts, price)
	wantY := (1 / price) * price + 1
	if math.Abs(snap.TotalValueY-wantY) > 1e-9 {
		t.Errorf("TotalValueY = %g, want %g", snap.TotalValueY, wantY)
	}
	if len(reporter.anomalies) != 0 {
		t.Errorf("unexpected anomalies: %v", reporter.kinds())
	}

	// second event must not mint again
	tag, err = s.Rebalance(ctx, swapEvent(ts.Add(time.Minute), price, 1, -99, 2000, amm.PriceToTick(price), "x"), pf)
	if err != nil {
		t.Fatal(err)
	}
	if tag != domain.TagNone {
		t.Errorf("second event tag = %q, want none", tag)
	}
}

func TestPassiveRangeAccruesFees(t *testing.T) {
	s, err := NewPassiveRange(PassiveRangeConfig{LowerPrice: 90, UpperPrice: 110},
		domain.Pool{ID: "pool", Fee: 0.003}, nil)
	if err != nil {
		t.Fatal(err)
	}
	pf := portfolio.New("main")
	ctx := context.Background()
	ts := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	tick := amm.PriceToTick(100)

	// first swap mints; its fee share accrues on the y input leg
	if _, err := s.Rebalance(ctx, swapEvent(ts, 100, -100, 9950, 1e6, tick, "x"), pf); err != nil {
		t.Fatal(err)
	}
	pos, _ := pf.Get("passive_range")
	cp := pos.(*portfolio.ConcentratedPosition)
	liquidity := cp.Liquidity()
	if liquidity <= 0 {
		t.Fatal("no liquidity minted")
	}
	share := liquidity / 1e6

	if _, err := s.Rebalance(ctx, swapEvent(ts.Add(time.Minute), 100, 100, -9950, 1e6, tick, "x"), pf); err != nil {
		t.Fatal(err)
	}
	fx, fy := cp.Fees()
	wantX := 0.003 * 100 * share
	wantY := 0.003 * 9950 * share
	if math.Abs(fx-wantX) > 1e-12 {
		t.Errorf("feesX = %g, want %g", fx, wantX)
	}
	if math.Abs(fy-wantY) > 1e-9 {
		t.Errorf("feesY = %g, want %g", fy, wantY)
	}

	// out-of-range swap accrues nothing further
	if _, err := s.Rebalance(ctx, swapEvent(ts.Add(2*time.Minute), 100, 100, -9950, 1e6, amm.PriceToTick(80), "x"), pf); err != nil {
		t.Fatal(err)
	}
	if fx2, _ := cp.Fees(); fx2 != fx {
		t.Errorf("out-of-range swap accrued fees: %g -> %g", fx, fx2)
	}
}
