// Package lookup answers point-in-time queries over a run's recorded
// histories.
package lookup

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shinobu1729/backtest-univ3/internal/domain"
)

var (
	// ErrEmptyHistory is returned when there is nothing to query.
	ErrEmptyHistory = errors.New("empty history")
	// ErrBeforeHistory is returned when the queried instant precedes the
	// first snapshot.
	ErrBeforeHistory = errors.New("instant before history start")
)

// SnapshotAt returns the portfolio snapshot in effect at ts: the latest
// snapshot with timestamp <= ts. Snapshots must be in event order, which
// is how the engine records them.
func SnapshotAt(history []domain.PortfolioSnapshot, ts time.Time) (*domain.PortfolioSnapshot, error) {
	if len(history) == 0 {
		return nil, ErrEmptyHistory
	}
	// first index with timestamp > ts
	idx := sort.Search(len(history), func(i int) bool {
		return history[i].Timestamp.After(ts)
	})
	if idx == 0 {
		return nil, fmt.Errorf("%w: %s precedes %s", ErrBeforeHistory,
			ts.Format(time.RFC3339), history[0].Timestamp.Format(time.RFC3339))
	}
	snap := history[idx-1]
	return &snap, nil
}

// ValueAt returns the token1-denominated portfolio value at ts.
func ValueAt(history []domain.PortfolioSnapshot, ts time.Time) (float64, error) {
	snap, err := SnapshotAt(history, ts)
	if err != nil {
		return 0, err
	}
	return snap.TotalValueY, nil
}
