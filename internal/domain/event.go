// Package domain holds the core types shared across the backtest:
// market events, strategy configuration, snapshots, and run summaries.
package domain

import (
	"errors"
	"fmt"
	"time"
)

// EventType identifies the kind of on-chain pool event.
type EventType string

const (
	EventTypeSwap EventType = "SWAP"
	EventTypeMint EventType = "MINT"
	EventTypeBurn EventType = "BURN"
)

// SwapPayload carries the swap-specific fields of an event.
type SwapPayload struct {
	Owner         string
	Tick          int
	PoolLiquidity float64
}

// LiquidityPayload carries the mint/burn-specific fields of an event.
type LiquidityPayload struct {
	Owner     string
	TickLower int
	TickUpper int
	Liquidity float64
}

// Event is one historical pool event. Price is nil for rows whose price
// could not be derived; the engine skips those. Exactly one of Swap and
// Liquidity is set, matching Type.
type Event struct {
	Pool        string
	Timestamp   time.Time
	LogIndex    int64
	Type        EventType
	Price       *float64
	PriceBefore *float64
	Amount0     float64
	Amount1     float64
	Swap        *SwapPayload
	Liquidity   *LiquidityPayload
}

var (
	// ErrEventMissingPool is returned for events without a pool ID.
	ErrEventMissingPool = errors.New("event missing pool")
	// ErrEventMissingPayload is returned when the payload matching the
	// event type is absent.
	ErrEventMissingPayload = errors.New("event missing payload")
	// ErrEventPayloadClash is returned when both payload variants are set.
	ErrEventPayloadClash = errors.New("event has both swap and liquidity payloads")
)

// Validate checks structural consistency of the event.
func (e *Event) Validate() error {
	if e.Pool == "" {
		return ErrEventMissingPool
	}
	if e.Price != nil && *e.Price <= 0 {
		return fmt.Errorf("event price %g must be positive", *e.Price)
	}
	if e.Swap != nil && e.Liquidity != nil {
		return ErrEventPayloadClash
	}
	switch e.Type {
	case EventTypeSwap:
		if e.Swap == nil {
			return fmt.Errorf("%w: %s", ErrEventMissingPayload, e.Type)
		}
	case EventTypeMint, EventTypeBurn:
		if e.Liquidity == nil {
			return fmt.Errorf("%w: %s", ErrEventMissingPayload, e.Type)
		}
		if e.Liquidity.TickLower >= e.Liquidity.TickUpper {
			return fmt.Errorf("event tick range [%d, %d) is empty",
				e.Liquidity.TickLower, e.Liquidity.TickUpper)
		}
	default:
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	return nil
}
