package amm

import (
	"fmt"
	"math"
)

// ratioTolerance is the relative tolerance for the optimality check.
// Closed-form swap sizing is exact; the slack covers float64 rounding only.
const ratioTolerance = 1e-6

// InvalidRangeError reports a malformed price range at construction time.
type InvalidRangeError struct {
	LowerPrice float64
	UpperPrice float64
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid price range [%g, %g]: bounds must satisfy 0 < lower < upper",
		e.LowerPrice, e.UpperPrice)
}

// AlignmentError reports an amount pair that misses the optimal deposit
// ratio beyond tolerance. Reported as a warning by callers, never fatal.
type AlignmentError struct {
	Price      float64
	X, Y       float64
	LiquidityX float64
	LiquidityY float64
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("amounts (%g, %g) not optimal at price %g: liquidity from x %g, from y %g",
		e.X, e.Y, e.Price, e.LiquidityX, e.LiquidityY)
}

// Aligner is stateless math over a fixed [lowerPrice, upperPrice] range.
type Aligner struct {
	lowerPrice float64
	upperPrice float64
}

// NewAligner validates the range and returns an Aligner over it.
func NewAligner(lowerPrice, upperPrice float64) (*Aligner, error) {
	if math.IsNaN(lowerPrice) || math.IsNaN(upperPrice) ||
		lowerPrice <= 0 || upperPrice <= lowerPrice || math.IsInf(upperPrice, 1) {
		return nil, &InvalidRangeError{LowerPrice: lowerPrice, UpperPrice: upperPrice}
	}
	return &Aligner{lowerPrice: lowerPrice, upperPrice: upperPrice}, nil
}

// Bounds returns the price range.
func (a *Aligner) Bounds() (lower, upper float64) {
	return a.lowerPrice, a.upperPrice
}

// VirtualReserves converts liquidity at a price into token amounts.
// Below the range the value is all token0, above it all token1, inside
// a mix determined by the square-root price.
func (a *Aligner) VirtualReserves(liquidity, price float64) (x, y float64) {
	sa := math.Sqrt(a.lowerPrice)
	sb := math.Sqrt(a.upperPrice)
	sp := math.Sqrt(price)

	switch {
	case price <= a.lowerPrice:
		x = liquidity * (sb - sa) / (sa * sb)
	case price >= a.upperPrice:
		y = liquidity * (sb - sa)
	default:
		x = liquidity * (sb - sp) / (sp * sb)
		y = liquidity * (sp - sa)
	}
	return x, y
}

// AmountsToLiquidity converts token amounts at a price into liquidity.
// Inverse of VirtualReserves; inside the range the binding side (the
// smaller of the two implied liquidities) wins.
func (a *Aligner) AmountsToLiquidity(x, y, price float64) float64 {
	sa := math.Sqrt(a.lowerPrice)
	sb := math.Sqrt(a.upperPrice)
	sp := math.Sqrt(price)

	switch {
	case price <= a.lowerPrice:
		return x * sa * sb / (sb - sa)
	case price >= a.upperPrice:
		return y / (sb - sa)
	default:
		lx := x * sp * sb / (sb - sp)
		ly := y / (sp - sa)
		return math.Min(lx, ly)
	}
}

// targetRatio returns y/x of the virtual reserves at a price strictly
// inside the range.
func (a *Aligner) targetRatio(price float64) float64 {
	sa := math.Sqrt(a.lowerPrice)
	sb := math.Sqrt(a.upperPrice)
	sp := math.Sqrt(price)
	return (sp - sa) * sp * sb / (sb - sp)
}

// SwapToOptimal returns the amount of one asset to swap into the other so
// that, after the proportional fee haircut on the swapped leg, the pair
// matches the deposit ratio at price with zero leftover. At most one of
// (dx, dy) is positive. Outside the range the foreign asset is swapped
// entirely.
func (a *Aligner) SwapToOptimal(x, y, swapFee, price float64) (dx, dy float64) {
	switch {
	case price >= a.upperPrice:
		return x, 0
	case price <= a.lowerPrice:
		return 0, y
	}

	r := a.targetRatio(price)
	if r*x > y {
		dx = (r*x - y) / (price*(1-swapFee) + r)
	} else if r*x < y {
		dy = (y - r*x) / (1 + r*(1-swapFee)/price)
	}
	return dx, dy
}

// AmountsAfterOptimalSwap returns the pair that holding (x, y) becomes
// after executing the SwapToOptimal trade at price with the given fee.
func (a *Aligner) AmountsAfterOptimalSwap(x, y, swapFee, price float64) (xFinal, yFinal float64) {
	dx, dy := a.SwapToOptimal(x, y, swapFee, price)
	switch {
	case dx > 0:
		return x - dx, y + dx*price*(1-swapFee)
	case dy > 0:
		return x + dy*(1-swapFee)/price, y - dy
	default:
		return x, y
	}
}

// CheckOptimal validates that (x, y) matches the deposit ratio at price
// within tolerance. Returns an *AlignmentError describing the deviation,
// or nil. Assertion only; callers must not branch on it.
func (a *Aligner) CheckOptimal(price, x, y float64) error {
	sa := math.Sqrt(a.lowerPrice)
	sb := math.Sqrt(a.upperPrice)
	sp := math.Sqrt(price)

	switch {
	case price <= a.lowerPrice:
		// Below the range the allocation is all token0; stray y is a miss.
		lx := x * sa * sb / (sb - sa)
		if math.Abs(y) <= ratioTolerance*math.Max(1, math.Abs(lx)) {
			return nil
		}
		return &AlignmentError{Price: price, X: x, Y: y, LiquidityX: lx}
	case price >= a.upperPrice:
		ly := y / (sb - sa)
		if math.Abs(x) <= ratioTolerance*math.Max(1, math.Abs(ly)) {
			return nil
		}
		return &AlignmentError{Price: price, X: x, Y: y, LiquidityY: ly}
	default:
		lx := x * sp * sb / (sb - sp)
		ly := y / (sp - sa)
		scale := math.Max(1, math.Max(math.Abs(lx), math.Abs(ly)))
		if math.Abs(lx-ly) <= ratioTolerance*scale {
			return nil
		}
		return &AlignmentError{Price: price, X: x, Y: y, LiquidityX: lx, LiquidityY: ly}
	}
}
