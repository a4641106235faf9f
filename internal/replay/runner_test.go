package replay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shinobu1729/backtest-univ3/internal/domain"
)

// recordingEngine captures the order events arrive in.
type recordingEngine struct {
	seen    []int64
	failAt  int64
	failErr error
}

func (e *recordingEngine) OnEvent(_ context.Context, event *domain.Event) error {
	if e.failErr != nil && event.LogIndex == e.failAt {
		return e.failErr
	}
	e.seen = append(e.seen, event.LogIndex)
	return nil
}

func TestRunnerReplaysInOrder(t *testing.T) {
	t0 := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	events := []*domain.Event{
		testEvent(t0.Add(time.Minute), 0),
		testEvent(t0, 3),
		testEvent(t0, 1),
	}
	engine := &recordingEngine{}
	if err := NewRunner(engine).Run(context.Background(), events); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []int64{1, 3, 0}
	if len(engine.seen) != len(want) {
		t.Fatalf("saw %v", engine.seen)
	}
	for i := range want {
		if engine.seen[i] != want[i] {
			t.Fatalf("order %v, want %v", engine.seen, want)
		}
	}
}

func TestRunnerStopsOnEngineError(t *testing.T) {
	t0 := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	boom := errors.New("boom")
	events := []*domain.Event{
		testEvent(t0, 0),
		testEvent(t0, 1),
		testEvent(t0, 2),
	}
	engine := &recordingEngine{failAt: 1, failErr: boom}
	err := NewRunner(engine).Run(context.Background(), events)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
	if len(engine.seen) != 1 {
		t.Errorf("events after failure: %v", engine.seen)
	}
}

func TestRunnerHonorsCancellation(t *testing.T) {
	t0 := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewRunner(&recordingEngine{}).Run(ctx, []*domain.Event{testEvent(t0, 0)})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
