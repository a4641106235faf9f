// Package replay drives market events through a consumer in the
// deterministic (timestamp, log index) order they occurred on chain.
package replay

import (
	"context"

	"github.com/shinobu1729/backtest-univ3/internal/domain"
)

// ReplayEngine consumes events one at a time in replay order.
type ReplayEngine interface {
	// OnEvent processes a single event. Returning an error aborts the replay.
	OnEvent(ctx context.Context, event *domain.Event) error
}
