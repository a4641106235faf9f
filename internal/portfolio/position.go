// Package portfolio models the simulated holdings: cash positions,
// concentrated-liquidity positions, and the named collection that owns
// them for the duration of a replay.
package portfolio

import (
	"errors"
	"fmt"

	"github.com/shinobu1729/backtest-univ3/internal/domain"
)

// DustLiquidity is the threshold under which a concentrated position is
// economically dead and must be cleared from the portfolio.
const DustLiquidity = 10.0

// Position is implemented by both position variants.
type Position interface {
	// Name returns the unique position name within a portfolio.
	Name() string

	// Kind returns the position variant.
	Kind() domain.PositionKind

	// ToXY returns the position's holdings as token amounts at price.
	// For concentrated positions this includes uncollected fees.
	ToXY(price float64) (x, y float64)

	// Snapshot captures the raw position state for the history logs.
	Snapshot() domain.PositionSnapshot
}

// Lookup and lifecycle errors.
var (
	ErrDuplicateName   = errors.New("position name already in portfolio")
	ErrMissingPosition = errors.New("position not found")
	ErrNegativeAmount  = errors.New("amount must be non-negative")
)

// InsufficientBalanceError reports a cash withdrawal that would drive a
// balance negative. The caller tops up or clamps; balances never go below
// zero.
type InsufficientBalanceError struct {
	Position  string
	Asset     string // "x" or "y"
	Requested float64
	Available float64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("position %s: withdraw %g of %s exceeds balance %g",
		e.Position, e.Requested, e.Asset, e.Available)
}

// InsufficientLiquidityError reports a withdraw/burn requesting more
// liquidity than the position holds.
type InsufficientLiquidityError struct {
	Position  string
	Requested float64
	Available float64
}

func (e *InsufficientLiquidityError) Error() string {
	return fmt.Sprintf("position %s: requested liquidity %g exceeds available %g",
		e.Position, e.Requested, e.Available)
}
