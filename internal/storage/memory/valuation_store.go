package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shinobu1729/backtest-univ3/internal/domain"
	"github.com/shinobu1729/backtest-univ3/internal/storage"
)

// ValuationStore is an in-memory ValuationStore.
type ValuationStore struct {
	mu     sync.RWMutex
	points map[string][]*domain.ValuationPoint
}

// NewValuationStore creates an empty valuation store.
func NewValuationStore() *ValuationStore {
	return &ValuationStore{points: make(map[string][]*domain.ValuationPoint)}
}

// InsertBulk appends a batch of valuation points.
func (s *ValuationStore) InsertBulk(_ context.Context, points []*domain.ValuationPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, point := range points {
		if point.RunID == "" {
			return fmt.Errorf("%w: point %d has empty run id", storage.ErrInvalidInput, i)
		}
	}
	for _, point := range points {
		cp := *point
		s.points[point.RunID] = append(s.points[point.RunID], &cp)
	}
	return nil
}

// GetByRunID returns a run's valuation points ordered by event index.
func (s *ValuationStore) GetByRunID(_ context.Context, runID string) ([]*domain.ValuationPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.points[runID]
	if !ok {
		return nil, fmt.Errorf("%w: run %s", storage.ErrNotFound, runID)
	}
	out := make([]*domain.ValuationPoint, 0, len(stored))
	for _, point := range stored {
		cp := *point
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventIndex < out[j].EventIndex })
	return out, nil
}

var _ storage.ValuationStore = (*ValuationStore)(nil)
