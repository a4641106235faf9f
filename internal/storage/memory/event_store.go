// Package memory provides in-memory store implementations used by tests
// and by runs that do not need persistence.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shinobu1729/backtest-univ3/internal/domain"
	"github.com/shinobu1729/backtest-univ3/internal/replay"
	"github.com/shinobu1729/backtest-univ3/internal/storage"
)

// EventStore is an in-memory MarketEventStore.
type EventStore struct {
	mu     sync.RWMutex
	events map[string]*domain.Event
}

// NewEventStore creates an empty event store.
func NewEventStore() *EventStore {
	return &EventStore{events: make(map[string]*domain.Event)}
}

func eventKey(event *domain.Event) string {
	return fmt.Sprintf("%s|%d|%d", event.Pool, event.Timestamp.UnixMilli(), event.LogIndex)
}

// Insert stores one event. Duplicate (pool, timestamp, log index) keys
// are rejected.
func (s *EventStore) Insert(_ context.Context, event *domain.Event) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := eventKey(event)
	if _, exists := s.events[key]; exists {
		return fmt.Errorf("%w: event %s", storage.ErrDuplicateKey, key)
	}
	cp := *event
	s.events[key] = &cp
	return nil
}

// InsertBulk stores events atomically: validation and duplicate checks
// for the whole batch run before anything is written.
func (s *EventStore) InsertBulk(_ context.Context, events []*domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(events))
	for i, event := range events {
		if err := event.Validate(); err != nil {
			return fmt.Errorf("%w: event %d: %v", storage.ErrInvalidInput, i, err)
		}
		key := eventKey(event)
		if _, exists := s.events[key]; exists {
			return fmt.Errorf("%w: event %s", storage.ErrDuplicateKey, key)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: event %s repeated in batch", storage.ErrDuplicateKey, key)
		}
		seen[key] = struct{}{}
	}
	for _, event := range events {
		cp := *event
		s.events[eventKey(event)] = &cp
	}
	return nil
}

// GetByPool returns all of a pool's events in replay order.
func (s *EventStore) GetByPool(_ context.Context, pool string) ([]*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Event
	for _, event := range s.events {
		if event.Pool == pool {
			cp := *event
			out = append(out, &cp)
		}
	}
	replay.SortEvents(out)
	return out, nil
}

// GetByTimeRange returns a pool's events with start <= timestamp < end,
// in replay order.
func (s *EventStore) GetByTimeRange(_ context.Context, pool string, start, end time.Time) ([]*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Event
	for _, event := range s.events {
		if event.Pool != pool {
			continue
		}
		if event.Timestamp.Before(start) || !event.Timestamp.Before(end) {
			continue
		}
		cp := *event
		out = append(out, &cp)
	}
	replay.SortEvents(out)
	return out, nil
}

var _ storage.MarketEventStore = (*EventStore)(nil)
