package domain

import "time"

// ActionTag names the portfolio action a strategy performed for an event.
type ActionTag string

// Action tag constants. TagNone marks events with no portfolio action.
const (
	TagNone      ActionTag = ""
	TagMint      ActionTag = "mint"
	TagBurn      ActionTag = "burn"
	TagSwap      ActionTag = "swap"
	TagRebalance ActionTag = "rebalance"
)

// PositionKind discriminates position variants in snapshots.
type PositionKind string

// Position kind constants.
const (
	PositionKindCash         PositionKind = "cash"
	PositionKindConcentrated PositionKind = "concentrated"
)

// PositionValue is one position's valuation inside a portfolio snapshot.
// ValueX is the total denominated in token0, ValueY in token1.
type PositionValue struct {
	Name   string
	Kind   PositionKind
	ValueX float64
	ValueY float64
}

// PortfolioSnapshot is the portfolio valuation after one event.
type PortfolioSnapshot struct {
	EventIndex  int // index in processed-event order
	Timestamp   time.Time
	Price       float64
	TotalValueX float64
	TotalValueY float64
	Positions   []PositionValue
}

// RebalanceEntry records the action tag a strategy returned for one event.
type RebalanceEntry struct {
	EventIndex int
	Timestamp  time.Time
	Tag        ActionTag
}

// PositionSnapshot is the raw state of one position: balances for cash
// positions, range/liquidity/fee state for concentrated ones.
type PositionSnapshot struct {
	Name string
	Kind PositionKind

	// Cash fields
	X float64
	Y float64

	// Concentrated fields
	LowerPrice float64
	UpperPrice float64
	Liquidity  float64
	FeesX      float64
	FeesY      float64
	XHold      float64
	YHold      float64
}

// PositionSetSnapshot is a copy of the full position set after one event.
type PositionSetSnapshot struct {
	EventIndex int
	Timestamp  time.Time
	Positions  []PositionSnapshot
}
