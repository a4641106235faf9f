package portfolio

import (
	"fmt"
	"time"

	"github.com/shinobu1729/backtest-univ3/internal/domain"
)

// Portfolio is a named collection of positions keyed by unique name.
// Iteration follows insertion order so clearing passes are deterministic.
// The backtest driver owns it exclusively; only the active strategy
// mutates it, one rebalance call at a time.
type Portfolio struct {
	name   string
	order  []string
	byName map[string]Position
}

// New creates an empty portfolio.
func New(name string) *Portfolio {
	return &Portfolio{
		name:   name,
		byName: make(map[string]Position),
	}
}

// Name returns the portfolio name.
func (p *Portfolio) Name() string { return p.name }

// Len returns the number of positions.
func (p *Portfolio) Len() int { return len(p.byName) }

// Append adds a position. Names must be unique.
func (p *Portfolio) Append(pos Position) error {
	if _, exists := p.byName[pos.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateName, pos.Name())
	}
	p.byName[pos.Name()] = pos
	p.order = append(p.order, pos.Name())
	return nil
}

// Get returns the position with the given name.
func (p *Portfolio) Get(name string) (Position, error) {
	pos, ok := p.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingPosition, name)
	}
	return pos, nil
}

// Has reports whether a position with the given name exists.
func (p *Portfolio) Has(name string) bool {
	_, ok := p.byName[name]
	return ok
}

// Remove deletes the position with the given name.
func (p *Portfolio) Remove(name string) error {
	if _, ok := p.byName[name]; !ok {
		return fmt.Errorf("%w: %s", ErrMissingPosition, name)
	}
	delete(p.byName, name)
	for i, n := range p.order {
		if n == name {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	return nil
}

// Names returns a copy of the position names in insertion order. Callers
// iterate this snapshot while mutating the live portfolio, so clearing
// never mutates a map mid-iteration.
func (p *Portfolio) Names() []string {
	names := make([]string, len(p.order))
	copy(names, p.order)
	return names
}

// Positions returns the positions in insertion order.
func (p *Portfolio) Positions() []Position {
	out := make([]Position, 0, len(p.order))
	for _, name := range p.order {
		out = append(out, p.byName[name])
	}
	return out
}

// Snapshot values every position at price and returns the portfolio
// valuation for the history logs.
func (p *Portfolio) Snapshot(eventIndex int, ts time.Time, price float64) *domain.PortfolioSnapshot {
	snap := &domain.PortfolioSnapshot{
		EventIndex: eventIndex,
		Timestamp:  ts,
		Price:      price,
		Positions:  make([]domain.PositionValue, 0, len(p.order)),
	}
	for _, name := range p.order {
		pos := p.byName[name]
		x, y := pos.ToXY(price)
		valueX := x + y/price
		valueY := x*price + y
		snap.Positions = append(snap.Positions, domain.PositionValue{
			Name:   name,
			Kind:   pos.Kind(),
			ValueX: valueX,
			ValueY: valueY,
		})
		snap.TotalValueX += valueX
		snap.TotalValueY += valueY
	}
	return snap
}

// PositionSet captures the raw state of every position in insertion order.
func (p *Portfolio) PositionSet(eventIndex int, ts time.Time) *domain.PositionSetSnapshot {
	set := &domain.PositionSetSnapshot{
		EventIndex: eventIndex,
		Timestamp:  ts,
		Positions:  make([]domain.PositionSnapshot, 0, len(p.order)),
	}
	for _, name := range p.order {
		set.Positions = append(set.Positions, p.byName[name].Snapshot())
	}
	return set
}
