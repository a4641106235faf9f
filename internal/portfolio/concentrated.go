package portfolio

import (
	"fmt"

	"github.com/shinobu1729/backtest-univ3/internal/amm"
	"github.com/shinobu1729/backtest-univ3/internal/domain"
)

// ConcentratedPosition is one minted interval [lowerPrice, upperPrice].
// It owns liquidity (the AMM "L" unit), uncollected fees, and the
// gross-deposit cost-basis counters. Liquidity never goes negative.
type ConcentratedPosition struct {
	name       string
	lowerPrice float64
	upperPrice float64
	lowerTick  int
	upperTick  int
	feeRate    float64
	gasCost    float64

	liquidity float64
	feesX     float64
	feesY     float64

	// Cost basis: gross amounts deposited, for reporting only.
	xHold float64
	yHold float64

	aligner *amm.Aligner
}

// NewConcentratedPosition creates a position over [lowerPrice, upperPrice].
// A malformed range is a configuration error and fatal.
func NewConcentratedPosition(name string, lowerPrice, upperPrice, feeRate, gasCost float64) (*ConcentratedPosition, error) {
	if name == "" {
		return nil, fmt.Errorf("concentrated position needs a name")
	}
	aligner, err := amm.NewAligner(lowerPrice, upperPrice)
	if err != nil {
		return nil, fmt.Errorf("concentrated position %s: %w", name, err)
	}
	return &ConcentratedPosition{
		name:       name,
		lowerPrice: lowerPrice,
		upperPrice: upperPrice,
		lowerTick:  amm.PriceToTick(lowerPrice),
		upperTick:  amm.PriceToTick(upperPrice),
		feeRate:    feeRate,
		gasCost:    gasCost,
		aligner:    aligner,
	}, nil
}

// Name returns the position name.
func (p *ConcentratedPosition) Name() string { return p.name }

// Kind returns domain.PositionKindConcentrated.
func (p *ConcentratedPosition) Kind() domain.PositionKind { return domain.PositionKindConcentrated }

// Aligner returns the range math for this position's bounds.
func (p *ConcentratedPosition) Aligner() *amm.Aligner { return p.aligner }

// Bounds returns the price range.
func (p *ConcentratedPosition) Bounds() (lower, upper float64) { return p.lowerPrice, p.upperPrice }

// Liquidity returns the current liquidity.
func (p *ConcentratedPosition) Liquidity() float64 { return p.liquidity }

// Fees returns the uncollected fees.
func (p *ConcentratedPosition) Fees() (feesX, feesY float64) { return p.feesX, p.feesY }

// Deposit converts amounts at price into liquidity, adds it, and grows
// the cost-basis counters by the gross amounts. Returns the liquidity
// added.
func (p *ConcentratedPosition) Deposit(x, y, price float64) float64 {
	dl := p.aligner.AmountsToLiquidity(x, y, price)
	p.liquidity += dl
	p.xHold += x
	p.yHold += y
	return dl
}

// AddLiquidity merges an externally attributed liquidity delta, as when
// mirroring a mint event that already states its own L. The amounts feed
// the cost basis only.
func (p *ConcentratedPosition) AddLiquidity(liquidity, x, y float64) {
	p.liquidity += liquidity
	p.xHold += x
	p.yHold += y
}

// Withdraw releases the proportional share of the virtual reserves for
// liquidityAmt and subtracts it. Fails without mutating when liquidityAmt
// exceeds current liquidity; the caller clamps and reports.
func (p *ConcentratedPosition) Withdraw(liquidityAmt, price float64) (x, y float64, err error) {
	if liquidityAmt < 0 {
		return 0, 0, fmt.Errorf("position %s: %w: withdraw liquidity %g", p.name, ErrNegativeAmount, liquidityAmt)
	}
	if liquidityAmt > p.liquidity {
		return 0, 0, &InsufficientLiquidityError{Position: p.name, Requested: liquidityAmt, Available: p.liquidity}
	}
	x, y = p.aligner.VirtualReserves(liquidityAmt, price)
	p.liquidity -= liquidityAmt
	return x, y, nil
}

// Burn is Withdraw with clamping: when liquidityAmt exceeds current
// liquidity the position is burned to zero and the shortfall returned for
// the caller's diagnostics. Liquidity is never left negative.
func (p *ConcentratedPosition) Burn(liquidityAmt, price float64) (x, y, shortfall float64) {
	if liquidityAmt > p.liquidity {
		shortfall = liquidityAmt - p.liquidity
		liquidityAmt = p.liquidity
	}
	x, y = p.aligner.VirtualReserves(liquidityAmt, price)
	p.liquidity -= liquidityAmt
	return x, y, shortfall
}

// WithdrawAll releases all liquidity plus the collected fees, zeroing the
// position. Used when closing a position for a re-mint.
func (p *ConcentratedPosition) WithdrawAll(price float64) (x, y float64) {
	x, y = p.aligner.VirtualReserves(p.liquidity, price)
	p.liquidity = 0
	fx, fy := p.CollectFees()
	return x + fx, y + fy
}

// CollectFees zeroes and returns the uncollected fees.
func (p *ConcentratedPosition) CollectFees() (feesX, feesY float64) {
	feesX, feesY = p.feesX, p.feesY
	p.feesX = 0
	p.feesY = 0
	return feesX, feesY
}

// ChargeFeesShare accrues this position's pro-rata share of a swap's fee.
// The fee applies to the positive (input) leg only and accrues only when
// the swap tick lies within [lowerTick, upperTick). The integer tick test
// avoids floating ambiguity exactly at the boundaries.
func (p *ConcentratedPosition) ChargeFeesShare(amount0, amount1, poolLiquidity float64, tick int) {
	if tick < p.lowerTick || tick >= p.upperTick {
		return
	}
	if poolLiquidity <= 0 {
		return
	}
	share := p.liquidity / poolLiquidity
	if amount0 > 0 {
		p.feesX += p.feeRate * amount0 * share
	}
	if amount1 > 0 {
		p.feesY += p.feeRate * amount1 * share
	}
}

// ToXY returns the virtual reserves at price plus uncollected fees.
func (p *ConcentratedPosition) ToXY(price float64) (x, y float64) {
	x, y = p.aligner.VirtualReserves(p.liquidity, price)
	return x + p.feesX, y + p.feesY
}

// Snapshot captures the range, liquidity, fee, and cost-basis state.
func (p *ConcentratedPosition) Snapshot() domain.PositionSnapshot {
	return domain.PositionSnapshot{
		Name:       p.name,
		Kind:       domain.PositionKindConcentrated,
		LowerPrice: p.lowerPrice,
		UpperPrice: p.upperPrice,
		Liquidity:  p.liquidity,
		FeesX:      p.feesX,
		FeesY:      p.feesY,
		XHold:      p.xHold,
		YHold:      p.yHold,
	}
}

var _ Position = (*ConcentratedPosition)(nil)
