package strategy

import (
	"context"
	"fmt"

	"github.com/shinobu1729/backtest-univ3/internal/amm"
	"github.com/shinobu1729/backtest-univ3/internal/domain"
	"github.com/shinobu1729/backtest-univ3/internal/portfolio"
)

// Position names the PassiveRange strategy owns.
const (
	passiveVaultName    = "main_vault"
	passivePositionName = "passive_range"
)

// PassiveRangeConfig parameterizes the single-mint passive strategy.
type PassiveRangeConfig struct {
	LowerPrice float64
	UpperPrice float64
	GasCost    float64
}

// PassiveRange mints one fixed interval on the first event and then only
// accrues fee share on every swap. It never re-mints.
type PassiveRange struct {
	cfg      PassiveRangeConfig
	feeRate  float64 // pool fee tier, doubles as the vault swap fee
	reporter Reporter
}

// NewPassiveRange creates the strategy. The range is validated here; a
// malformed range is fatal.
func NewPassiveRange(cfg PassiveRangeConfig, pool domain.Pool, reporter Reporter) (*PassiveRange, error) {
	if _, err := amm.NewAligner(cfg.LowerPrice, cfg.UpperPrice); err != nil {
		return nil, err
	}
	return &PassiveRange{cfg: cfg, feeRate: pool.Fee, reporter: orNop(reporter)}, nil
}

// ID returns the strategy identifier including the range.
func (s *PassiveRange) ID() string {
	return fmt.Sprintf("%s_%g_%g", domain.StrategyTypePassiveRange, s.cfg.LowerPrice, s.cfg.UpperPrice)
}

// Rebalance mints once into an empty portfolio, then accrues fee share on
// swap events.
func (s *PassiveRange) Rebalance(_ context.Context, event *domain.Event, pf *portfolio.Portfolio) (domain.ActionTag, error) {
	tag := domain.TagNone
	price := *event.Price

	if pf.Len() == 0 {
		if err := s.createPosition(pf, price); err != nil {
			return domain.TagNone, err
		}
		tag = domain.TagMint
	}

	if event.Type == domain.EventTypeSwap && pf.Has(passivePositionName) {
		pos, err := pf.Get(passivePositionName)
		if err == nil {
			if cp, ok := pos.(*portfolio.ConcentratedPosition); ok {
				cp.ChargeFeesShare(event.Amount0, event.Amount1, event.Swap.PoolLiquidity, event.Swap.Tick)
			}
		}
	}

	return tag, nil
}

// createPosition funds a vault with x=1/price, y=1, swaps to the optimal
// ratio for the range, and mints the whole aligned pair.
func (s *PassiveRange) createPosition(pf *portfolio.Portfolio, price float64) error {
	x := 1 / price
	y := 1.0

	vault, err := portfolio.NewCashPosition(passiveVaultName, s.feeRate, s.cfg.GasCost, x, y, nil, nil)
	if err != nil {
		return err
	}
	pos, err := portfolio.NewConcentratedPosition(passivePositionName,
		s.cfg.LowerPrice, s.cfg.UpperPrice, s.feeRate, s.cfg.GasCost)
	if err != nil {
		return err
	}

	if err := pf.Append(vault); err != nil {
		return err
	}
	if err := pf.Append(pos); err != nil {
		return err
	}

	mintAligned(vault, pos, x, y, price, s.reporter)
	return nil
}

var _ Strategy = (*PassiveRange)(nil)
