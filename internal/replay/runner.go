package replay

import (
	"context"
	"fmt"

	"github.com/shinobu1729/backtest-univ3/internal/domain"
	"github.com/shinobu1729/backtest-univ3/internal/storage"
)

// Runner replays a slice of events through an engine.
type Runner struct {
	engine ReplayEngine
}

// NewRunner creates a runner for the given engine.
func NewRunner(engine ReplayEngine) *Runner {
	return &Runner{engine: engine}
}

// Run sorts the events into replay order and feeds them to the engine.
// It stops at the first engine error or context cancellation.
func (r *Runner) Run(ctx context.Context, events []*domain.Event) error {
	SortEvents(events)
	for i, event := range events {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.engine.OnEvent(ctx, event); err != nil {
			return fmt.Errorf("replay event %d: %w", i, err)
		}
	}
	return nil
}

// RunFromStore loads a pool's events from the store and replays them.
func (r *Runner) RunFromStore(ctx context.Context, store storage.MarketEventStore, pool string) error {
	events, err := store.GetByPool(ctx, pool)
	if err != nil {
		return fmt.Errorf("load events for pool %s: %w", pool, err)
	}
	return r.Run(ctx, events)
}
