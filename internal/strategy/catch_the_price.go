package strategy

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shinobu1729/backtest-univ3/internal/amm"
	"github.com/shinobu1729/backtest-univ3/internal/domain"
	"github.com/shinobu1729/backtest-univ3/internal/portfolio"
)

// catchVaultName is the cash reservoir used for re-mint swaps.
const catchVaultName = "main_vault"

// DefaultMaxRemints caps how many times CatchThePrice chases the price.
const DefaultMaxRemints = 5

// CatchThePriceConfig parameterizes the price-chasing strategy.
type CatchThePriceConfig struct {
	Width         float64       // half-width of the band around the mint price
	SecondsToHold time.Duration // how long the price may stay outside the band
	GasCost       float64
	MaxRemints    int // 0 means DefaultMaxRemints
}

// CatchThePrice mints a band centered at the current price and re-mints
// at the new price whenever the price has stayed outside the band longer
// than the hold duration, up to a fixed number of re-mints. After the cap
// the position simply keeps accruing fees wherever the price drifted.
type CatchThePrice struct {
	cfg      CatchThePriceConfig
	feeRate  float64
	reporter Reporter

	initialized bool
	posNum      int // suffix of the current position name
	remints     int
	lastMint    float64   // price the current position was centered at
	lastInBand  time.Time // last time the price was inside the band
	createdAt   time.Time
}

// NewCatchThePrice creates the strategy. Width and hold duration must be
// positive; violations are fatal.
func NewCatchThePrice(cfg CatchThePriceConfig, pool domain.Pool, reporter Reporter) (*CatchThePrice, error) {
	if cfg.Width <= 0 {
		return nil, fmt.Errorf("catch the price: width %g must be positive", cfg.Width)
	}
	if cfg.SecondsToHold <= 0 {
		return nil, fmt.Errorf("catch the price: hold duration %s must be positive", cfg.SecondsToHold)
	}
	if cfg.MaxRemints == 0 {
		cfg.MaxRemints = DefaultMaxRemints
	}
	return &CatchThePrice{cfg: cfg, feeRate: pool.Fee, reporter: orNop(reporter)}, nil
}

// ID returns the strategy identifier including parameters.
func (s *CatchThePrice) ID() string {
	return fmt.Sprintf("%s_w%g_h%ds", domain.StrategyTypeCatchThePrice,
		s.cfg.Width, int(s.cfg.SecondsToHold.Seconds()))
}

// Rebalance ignores non-swap events. The first swap funds the vault and
// mints; later swaps accrue fees, refresh the in-band timer, and trigger
// a re-mint once the price has been out of the band long enough.
func (s *CatchThePrice) Rebalance(_ context.Context, event *domain.Event, pf *portfolio.Portfolio) (domain.ActionTag, error) {
	if event.Type != domain.EventTypeSwap {
		return domain.TagNone, nil
	}
	price := *event.Price
	ts := event.Timestamp

	if !s.initialized {
		vault, err := portfolio.NewCashPosition(catchVaultName, s.feeRate, s.cfg.GasCost, 0, 0, nil, nil)
		if err != nil {
			return domain.TagNone, err
		}
		if err := pf.Append(vault); err != nil {
			return domain.TagNone, err
		}
		if err := s.createPosition(pf, 1/price, 1, price, ts); err != nil {
			return domain.TagNone, err
		}
		s.initialized = true
		return domain.TagMint, nil
	}

	name := s.positionName()
	pos, err := pf.Get(name)
	if err != nil {
		s.reporter.RecordAnomaly(domain.AnomalyMissingPosition, name, err.Error())
		return domain.TagNone, nil
	}
	cp, ok := pos.(*portfolio.ConcentratedPosition)
	if !ok {
		return domain.TagNone, fmt.Errorf("position %s is not a concentrated position", name)
	}

	cp.ChargeFeesShare(event.Amount0, event.Amount1, event.Swap.PoolLiquidity, event.Swap.Tick)

	if math.Abs(price-s.lastMint) < s.cfg.Width {
		s.lastInBand = ts
		return domain.TagNone, nil
	}

	if ts.Sub(s.lastInBand) > s.cfg.SecondsToHold && s.remints < s.cfg.MaxRemints {
		s.remints++
		xOut, yOut := cp.WithdrawAll(price)
		if err := pf.Remove(name); err != nil {
			return domain.TagNone, err
		}
		if err := s.createPosition(pf, xOut, yOut, price, ts); err != nil {
			return domain.TagNone, err
		}
		return domain.TagRebalance, nil
	}

	return domain.TagNone, nil
}

// Remints returns how many re-mints have occurred.
func (s *CatchThePrice) Remints() int { return s.remints }

// createPosition routes (xIn, yIn) through the vault, swaps to the
// optimal ratio for a band centered at price, and mints it. Band bounds
// are clamped to the tick grid's price range.
func (s *CatchThePrice) createPosition(pf *portfolio.Portfolio, xIn, yIn, price float64, ts time.Time) error {
	s.posNum++

	pos, err := pf.Get(catchVaultName)
	if err != nil {
		s.reporter.RecordAnomaly(domain.AnomalyMissingPosition, catchVaultName, err.Error())
		return nil
	}
	vault, ok := pos.(*portfolio.CashPosition)
	if !ok {
		return fmt.Errorf("position %s is not a cash position", catchVaultName)
	}
	if err := vault.Deposit(xIn, yIn); err != nil {
		return err
	}

	lower := math.Max(amm.TickToPrice(amm.MinTick), price-s.cfg.Width)
	upper := math.Min(amm.TickToPrice(amm.MaxTick), price+s.cfg.Width)
	cp, err := portfolio.NewConcentratedPosition(s.positionName(), lower, upper, s.feeRate, s.cfg.GasCost)
	if err != nil {
		return err
	}
	if err := pf.Append(cp); err != nil {
		return err
	}

	mintAligned(vault, cp, xIn, yIn, price, s.reporter)

	s.lastMint = price
	s.lastInBand = ts
	s.createdAt = ts
	return nil
}

func (s *CatchThePrice) positionName() string {
	return fmt.Sprintf("UniV3_%d", s.posNum)
}

var _ Strategy = (*CatchThePrice)(nil)
