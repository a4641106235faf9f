package replay

import (
	"errors"
	"fmt"

	"github.com/shinobu1729/backtest-univ3/internal/domain"
)

// ErrInvalidOrdering is returned when events are not in replay order.
var ErrInvalidOrdering = errors.New("events out of replay order")

// VerifyOrdering checks that events are sorted by (timestamp, log index).
func VerifyOrdering(events []*domain.Event) error {
	for i := 1; i < len(events); i++ {
		if compareEvents(events[i-1], events[i]) > 0 {
			return fmt.Errorf("%w: index %d (%s, log %d) after index %d (%s, log %d)",
				ErrInvalidOrdering,
				i, events[i].Timestamp.Format("2006-01-02T15:04:05Z07:00"), events[i].LogIndex,
				i-1, events[i-1].Timestamp.Format("2006-01-02T15:04:05Z07:00"), events[i-1].LogIndex)
		}
	}
	return nil
}
