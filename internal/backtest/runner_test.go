package backtest

import (
	"context"
	"testing"
	"time"

	"github.com/shinobu1729/backtest-univ3/internal/domain"
)

func passiveConfig() domain.StrategyConfig {
	lower, upper := 90.0, 110.0
	return domain.StrategyConfig{
		StrategyType: domain.StrategyTypePassiveRange,
		LowerPrice:   &lower,
		UpperPrice:   &upper,
	}
}

func TestRunnerProducesRunSummary(t *testing.T) {
	runner, err := NewRunner(passiveConfig(), domain.Pool{ID: "pool", Fee: 0.003})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	t0 := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	events := []*domain.Event{
		swapEvent(t0, 100),
		nullPriceEvent(t0.Add(time.Minute)),
		swapEvent(t0.Add(2*time.Minute), 101),
	}

	run, results, err := runner.Run(context.Background(), events)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if run.EventCount != 2 || run.SkippedCount != 1 {
		t.Errorf("counts (%d, %d), want (2, 1)", run.EventCount, run.SkippedCount)
	}
	if run.RebalanceCount != 1 {
		t.Errorf("RebalanceCount = %d, want 1 (the initial mint)", run.RebalanceCount)
	}
	if run.RunID == "" {
		t.Error("empty RunID")
	}
	if !run.StartTimestamp.Equal(t0) || !run.EndTimestamp.Equal(t0.Add(2*time.Minute)) {
		t.Errorf("window [%v, %v]", run.StartTimestamp, run.EndTimestamp)
	}
	if run.FinalValueY <= 0 {
		t.Errorf("FinalValueY = %g", run.FinalValueY)
	}
	if len(results.PortfolioHistory) != 2 {
		t.Errorf("history length %d", len(results.PortfolioHistory))
	}
}

func TestRunnerIsDeterministic(t *testing.T) {
	t0 := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	makeEvents := func() []*domain.Event {
		return []*domain.Event{
			swapEvent(t0, 100),
			swapEvent(t0.Add(time.Minute), 102),
			swapEvent(t0.Add(2*time.Minute), 98),
		}
	}

	var runIDs []string
	var finals []float64
	for i := 0; i < 2; i++ {
		runner, err := NewRunner(passiveConfig(), domain.Pool{ID: "pool", Fee: 0.003})
		if err != nil {
			t.Fatal(err)
		}
		run, _, err := runner.Run(context.Background(), makeEvents())
		if err != nil {
			t.Fatal(err)
		}
		runIDs = append(runIDs, run.RunID)
		finals = append(finals, run.FinalValueY)
	}
	if runIDs[0] != runIDs[1] {
		t.Errorf("run IDs differ: %s vs %s", runIDs[0], runIDs[1])
	}
	if finals[0] != finals[1] {
		t.Errorf("final values differ bit-for-bit: %g vs %g", finals[0], finals[1])
	}
}

func TestRunnerRejectsBadConfig(t *testing.T) {
	if _, err := NewRunner(domain.StrategyConfig{StrategyType: "NOPE"}, domain.Pool{ID: "pool"}); err == nil {
		t.Error("unknown strategy accepted")
	}
	if _, err := NewRunner(passiveConfig(), domain.Pool{}); err == nil {
		t.Error("invalid pool accepted")
	}
}

func TestValuationPoints(t *testing.T) {
	runner, err := NewRunner(passiveConfig(), domain.Pool{ID: "pool", Fee: 0})
	if err != nil {
		t.Fatal(err)
	}
	t0 := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	run, results, err := runner.Run(context.Background(), []*domain.Event{
		swapEvent(t0, 100),
		swapEvent(t0.Add(time.Minute), 101),
	})
	if err != nil {
		t.Fatal(err)
	}
	points := ValuationPoints(run.RunID, results)
	if len(points) != 2 {
		t.Fatalf("points: %d", len(points))
	}
	for i, point := range points {
		if point.RunID != run.RunID || point.EventIndex != i {
			t.Errorf("point %d: %+v", i, point)
		}
	}
	if points[1].TotalValueY != results.PortfolioHistory[1].TotalValueY {
		t.Errorf("point value mismatch")
	}
}
