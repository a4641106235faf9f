package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shinobu1729/backtest-univ3/internal/domain"
	"github.com/shinobu1729/backtest-univ3/internal/storage"
)

// RunStore is an in-memory RunStore.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]*domain.BacktestRun
}

// NewRunStore creates an empty run store.
func NewRunStore() *RunStore {
	return &RunStore{runs: make(map[string]*domain.BacktestRun)}
}

// Insert stores a run summary. Run IDs are unique.
func (s *RunStore) Insert(_ context.Context, run *domain.BacktestRun) error {
	if run.RunID == "" {
		return fmt.Errorf("%w: empty run id", storage.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[run.RunID]; exists {
		return fmt.Errorf("%w: run %s", storage.ErrDuplicateKey, run.RunID)
	}
	cp := *run
	s.runs[run.RunID] = &cp
	return nil
}

// GetByID returns the run with the given ID.
func (s *RunStore) GetByID(_ context.Context, runID string) (*domain.BacktestRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[runID]
	if !ok {
		return nil, fmt.Errorf("%w: run %s", storage.ErrNotFound, runID)
	}
	cp := *run
	return &cp, nil
}

// GetByPool returns all runs over a pool, newest first.
func (s *RunStore) GetByPool(_ context.Context, pool string) ([]*domain.BacktestRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.BacktestRun
	for _, run := range s.runs {
		if run.Pool == pool {
			cp := *run
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].RunID < out[j].RunID
	})
	return out, nil
}

var _ storage.RunStore = (*RunStore)(nil)
