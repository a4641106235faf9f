package strategy

import (
	"fmt"
	"math"

	"github.com/shinobu1729/backtest-univ3/internal/domain"
	"github.com/shinobu1729/backtest-univ3/internal/portfolio"
)

// topUpEpsilon pads vault top-ups so a subsequent withdrawal of the exact
// event amount survives floating-point rounding.
const topUpEpsilon = 1e-6

// mintAligned swaps (x, y) held in the vault to the optimal ratio for the
// position's range at price, then moves the aligned pair out of the vault
// and deposits it. Alignment misses and rounding clamps are reported, not
// fatal.
func mintAligned(vault *portfolio.CashPosition, pos *portfolio.ConcentratedPosition, x, y, price float64, reporter Reporter) {
	aligner := pos.Aligner()

	dx, dy := aligner.SwapToOptimal(x, y, vault.SwapFee(), price)
	if dx > 0 {
		if _, err := vault.SwapXtoY(dx, price); err != nil {
			reporter.RecordAnomaly(domain.AnomalyInsufficientBalance, vault.Name(), err.Error())
		}
	}
	if dy > 0 {
		if _, err := vault.SwapYtoX(dy, price); err != nil {
			reporter.RecordAnomaly(domain.AnomalyInsufficientBalance, vault.Name(), err.Error())
		}
	}

	xUni, yUni := aligner.AmountsAfterOptimalSwap(x, y, vault.SwapFee(), price)
	if err := aligner.CheckOptimal(price, xUni, yUni); err != nil {
		reporter.RecordAnomaly(domain.AnomalyNumericAssertion, pos.Name(), err.Error())
	}

	// Rounding can leave the vault a hair short of the computed pair;
	// clamp to what is actually there and record the discrepancy.
	vx, vy := vault.Balances()
	xOut, yOut := xUni, yUni
	if xOut > vx || yOut > vy {
		reporter.RecordAnomaly(domain.AnomalyInsufficientBalance, vault.Name(),
			fmt.Sprintf("mint clamped: want (%g, %g), vault holds (%g, %g)", xOut, yOut, vx, vy))
		xOut = math.Min(xOut, vx)
		yOut = math.Min(yOut, vy)
	}
	if _, _, err := vault.Withdraw(xOut, yOut); err != nil {
		reporter.RecordAnomaly(domain.AnomalyInsufficientBalance, vault.Name(), err.Error())
		return
	}
	pos.Deposit(xOut, yOut, price)
}

// chargeFeesAll accrues a swap's fee share on every open concentrated
// position.
func chargeFeesAll(pf *portfolio.Portfolio, event *domain.Event) {
	for _, pos := range pf.Positions() {
		if cp, ok := pos.(*portfolio.ConcentratedPosition); ok {
			cp.ChargeFeesShare(event.Amount0, event.Amount1, event.Swap.PoolLiquidity, event.Swap.Tick)
		}
	}
}
