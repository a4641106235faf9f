package portfolio

import (
	"fmt"
	"math"
	"time"

	"github.com/shinobu1729/backtest-univ3/internal/domain"
)

// CashPosition holds idle balances of the two assets. Swaps between them
// pay the proportional fee away (it is not credited anywhere), modeling
// real swap cost. Optional daily interest rates compound once per elapsed
// day, used by the Hold strategy only.
type CashPosition struct {
	name    string
	x       float64
	y       float64
	swapFee float64
	gasCost float64

	xInterest *float64
	yInterest *float64

	// prevGainDate is the UTC date interest was last applied; zero until
	// the first InterestGain call.
	prevGainDate time.Time

	// Reporting counters, not consumed by the math.
	totalFeesPaid  float64 // swap fees paid away, denominated in token1
	rebalanceCosts float64 // accumulated gas, denominated in token1
}

// NewCashPosition creates a cash position. Initial balances must be
// non-negative and the fee must be a valid fraction; violations are
// configuration errors and fatal.
func NewCashPosition(name string, swapFee, gasCost, x, y float64, xInterest, yInterest *float64) (*CashPosition, error) {
	if name == "" {
		return nil, fmt.Errorf("cash position needs a name")
	}
	if x < 0 || y < 0 {
		return nil, fmt.Errorf("cash position %s: %w: initial balances (%g, %g)", name, ErrNegativeAmount, x, y)
	}
	if swapFee < 0 || swapFee >= 1 {
		return nil, fmt.Errorf("cash position %s: swap fee %g out of [0, 1)", name, swapFee)
	}
	return &CashPosition{
		name:      name,
		x:         x,
		y:         y,
		swapFee:   swapFee,
		gasCost:   gasCost,
		xInterest: xInterest,
		yInterest: yInterest,
	}, nil
}

// Name returns the position name.
func (p *CashPosition) Name() string { return p.name }

// Kind returns domain.PositionKindCash.
func (p *CashPosition) Kind() domain.PositionKind { return domain.PositionKindCash }

// Balances returns the current token balances.
func (p *CashPosition) Balances() (x, y float64) { return p.x, p.y }

// SwapFee returns the proportional fee applied to swaps.
func (p *CashPosition) SwapFee() float64 { return p.swapFee }

// Deposit adds amounts to the balances.
func (p *CashPosition) Deposit(dx, dy float64) error {
	if dx < 0 || dy < 0 {
		return fmt.Errorf("position %s: %w: deposit (%g, %g)", p.name, ErrNegativeAmount, dx, dy)
	}
	p.x += dx
	p.y += dy
	return nil
}

// Withdraw removes amounts from the balances and returns them. Fails
// without mutating when either balance would go negative; callers top up
// first or clamp to Balances.
func (p *CashPosition) Withdraw(dx, dy float64) (float64, float64, error) {
	if dx < 0 || dy < 0 {
		return 0, 0, fmt.Errorf("position %s: %w: withdraw (%g, %g)", p.name, ErrNegativeAmount, dx, dy)
	}
	if dx > p.x {
		return 0, 0, &InsufficientBalanceError{Position: p.name, Asset: "x", Requested: dx, Available: p.x}
	}
	if dy > p.y {
		return 0, 0, &InsufficientBalanceError{Position: p.name, Asset: "y", Requested: dy, Available: p.y}
	}
	p.x -= dx
	p.y -= dy
	return dx, dy, nil
}

// SwapXtoY converts dx of token0 into dx*price*(1-fee) of token1.
// Returns the amount credited.
func (p *CashPosition) SwapXtoY(dx, price float64) (float64, error) {
	if dx < 0 {
		return 0, fmt.Errorf("position %s: %w: swap %g", p.name, ErrNegativeAmount, dx)
	}
	if dx > p.x {
		return 0, &InsufficientBalanceError{Position: p.name, Asset: "x", Requested: dx, Available: p.x}
	}
	got := dx * price * (1 - p.swapFee)
	p.x -= dx
	p.y += got
	p.totalFeesPaid += dx * price * p.swapFee
	p.rebalanceCosts += p.gasCost
	return got, nil
}

// SwapYtoX converts dy of token1 into dy*(1-fee)/price of token0.
// Returns the amount credited.
func (p *CashPosition) SwapYtoX(dy, price float64) (float64, error) {
	if dy < 0 {
		return 0, fmt.Errorf("position %s: %w: swap %g", p.name, ErrNegativeAmount, dy)
	}
	if dy > p.y {
		return 0, &InsufficientBalanceError{Position: p.name, Asset: "y", Requested: dy, Available: p.y}
	}
	got := dy * (1 - p.swapFee) / price
	p.y -= dy
	p.x += got
	p.totalFeesPaid += dy * p.swapFee
	p.rebalanceCosts += p.gasCost
	return got, nil
}

// InterestGain compounds the daily interest rates once per elapsed UTC
// day since the previous call. Idempotent per date: repeated calls for
// the same date apply nothing.
func (p *CashPosition) InterestGain(date time.Time) {
	day := date.UTC().Truncate(24 * time.Hour)
	if p.prevGainDate.IsZero() {
		p.prevGainDate = day
		return
	}
	days := int(day.Sub(p.prevGainDate).Hours() / 24)
	if days <= 0 {
		return
	}
	if p.xInterest != nil {
		p.x *= math.Pow(1+*p.xInterest, float64(days))
	}
	if p.yInterest != nil {
		p.y *= math.Pow(1+*p.yInterest, float64(days))
	}
	p.prevGainDate = day
}

// ToXY returns the raw balances; cash holdings are price-independent.
func (p *CashPosition) ToXY(_ float64) (x, y float64) { return p.x, p.y }

// CostsPaid returns the accumulated swap fees and gas, both in token1.
func (p *CashPosition) CostsPaid() (fees, gas float64) {
	return p.totalFeesPaid, p.rebalanceCosts
}

// Snapshot captures the balances.
func (p *CashPosition) Snapshot() domain.PositionSnapshot {
	return domain.PositionSnapshot{
		Name: p.name,
		Kind: domain.PositionKindCash,
		X:    p.x,
		Y:    p.y,
	}
}

var _ Position = (*CashPosition)(nil)
