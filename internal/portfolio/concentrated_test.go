package portfolio

import (
	"errors"
	"math"
	"testing"

	"github.com/shinobu1729/backtest-univ3/internal/amm"
)

func newConcentrated(t *testing.T, lower, upper float64) *ConcentratedPosition {
	t.Helper()
	p, err := NewConcentratedPosition("pos", lower, upper, 0.003, 0)
	if err != nil {
		t.Fatalf("NewConcentratedPosition: %v", err)
	}
	return p
}

func TestNewConcentratedPositionValidation(t *testing.T) {
	if _, err := NewConcentratedPosition("", 90, 110, 0, 0); err == nil {
		t.Error("empty name accepted")
	}
	_, err := NewConcentratedPosition("pos", 110, 90, 0, 0)
	var rangeErr *amm.InvalidRangeError
	if !errors.As(err, &rangeErr) {
		t.Errorf("inverted range err = %v, want InvalidRangeError", err)
	}
}

func TestConcentratedDepositWithdraw(t *testing.T) {
	p := newConcentrated(t, 90, 110)
	x, y := p.Aligner().VirtualReserves(1000, 100)

	dl := p.Deposit(x, y, 100)
	if math.Abs(dl-1000) > 1e-6 {
		t.Errorf("Deposit added %g liquidity, want 1000", dl)
	}
	if math.Abs(p.Liquidity()-1000) > 1e-6 {
		t.Errorf("Liquidity() = %g", p.Liquidity())
	}

	gx, gy, err := p.Withdraw(400, 100)
	if err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	wx, wy := p.Aligner().VirtualReserves(400, 100)
	if math.Abs(gx-wx) > 1e-9 || math.Abs(gy-wy) > 1e-9 {
		t.Errorf("Withdraw returned (%g, %g), want (%g, %g)", gx, gy, wx, wy)
	}
	if math.Abs(p.Liquidity()-600) > 1e-6 {
		t.Errorf("liquidity after withdraw: %g", p.Liquidity())
	}
}

func TestConcentratedWithdrawExcess(t *testing.T) {
	p := newConcentrated(t, 90, 110)
	p.AddLiquidity(100, 0, 0)

	_, _, err := p.Withdraw(150, 100)
	var insufficient *InsufficientLiquidityError
	if !errors.As(err, &insufficient) {
		t.Fatalf("err = %v, want InsufficientLiquidityError", err)
	}
	if p.Liquidity() != 100 {
		t.Errorf("failed withdraw mutated liquidity: %g", p.Liquidity())
	}
}

func TestConcentratedBurnClamps(t *testing.T) {
	p := newConcentrated(t, 90, 110)
	p.AddLiquidity(100, 0, 0)

	_, _, shortfall := p.Burn(150, 100)
	if shortfall != 50 {
		t.Errorf("shortfall = %g, want 50", shortfall)
	}
	if p.Liquidity() != 0 {
		t.Errorf("liquidity after clamped burn: %g, want 0", p.Liquidity())
	}

	// burn within bounds reports no shortfall
	p.AddLiquidity(100, 0, 0)
	_, _, shortfall = p.Burn(40, 100)
	if shortfall != 0 {
		t.Errorf("shortfall = %g, want 0", shortfall)
	}
	if p.Liquidity() != 60 {
		t.Errorf("liquidity = %g, want 60", p.Liquidity())
	}
}

func TestConcentratedWithdrawAllIncludesFees(t *testing.T) {
	p := newConcentrated(t, 90, 110)
	x, y := p.Aligner().VirtualReserves(1000, 100)
	p.Deposit(x, y, 100)
	p.ChargeFeesShare(50, 5000, 2000, amm.PriceToTick(100))

	fx, fy := p.Fees()
	if fx <= 0 || fy <= 0 {
		t.Fatalf("fees not accrued: (%g, %g)", fx, fy)
	}

	gx, gy := p.WithdrawAll(100)
	if math.Abs(gx-(x+fx)) > 1e-9 || math.Abs(gy-(y+fy)) > 1e-9 {
		t.Errorf("WithdrawAll = (%g, %g), want (%g, %g)", gx, gy, x+fx, y+fy)
	}
	if p.Liquidity() != 0 {
		t.Errorf("liquidity after WithdrawAll: %g", p.Liquidity())
	}
	if fx, fy := p.Fees(); fx != 0 || fy != 0 {
		t.Errorf("fees not zeroed: (%g, %g)", fx, fy)
	}
}

func TestChargeFeesShare(t *testing.T) {
	p := newConcentrated(t, 90, 110)
	p.AddLiquidity(500, 0, 0)
	inRange := amm.PriceToTick(100)

	p.ChargeFeesShare(100, -9950, 2000, inRange)
	fx, fy := p.Fees()
	wantX := 0.003 * 100 * 500 / 2000
	if math.Abs(fx-wantX) > 1e-12 {
		t.Errorf("feesX = %g, want %g", fx, wantX)
	}
	// the negative (output) leg earns nothing
	if fy != 0 {
		t.Errorf("feesY = %g, want 0", fy)
	}
}

func TestChargeFeesShareOutOfRange(t *testing.T) {
	p := newConcentrated(t, 90, 110)
	p.AddLiquidity(500, 0, 0)

	p.ChargeFeesShare(100, 100, 2000, amm.PriceToTick(80))
	p.ChargeFeesShare(100, 100, 2000, amm.PriceToTick(120))
	p.ChargeFeesShare(100, 100, 0, amm.PriceToTick(100)) // zero pool liquidity
	if fx, fy := p.Fees(); fx != 0 || fy != 0 {
		t.Errorf("out-of-range swaps accrued fees: (%g, %g)", fx, fy)
	}
}

func TestConcentratedToXYNeverNegative(t *testing.T) {
	p := newConcentrated(t, 90, 110)
	x, y := p.Aligner().VirtualReserves(1000, 100)
	p.Deposit(x, y, 100)

	for _, price := range []float64{50, 90, 100, 110, 500} {
		gx, gy := p.ToXY(price)
		if gx < 0 || gy < 0 {
			t.Errorf("ToXY(%g) = (%g, %g)", price, gx, gy)
		}
	}
}
