package strategy

import (
	"context"
	"fmt"

	"github.com/shinobu1729/backtest-univ3/internal/amm"
	"github.com/shinobu1729/backtest-univ3/internal/domain"
	"github.com/shinobu1729/backtest-univ3/internal/portfolio"
)

// followerVaultName is the cash reservoir mirroring the tracked address.
const followerVaultName = "Vault"

// AddressFollowerConfig parameterizes the address-following strategy.
type AddressFollowerConfig struct {
	Address string // the address whose mints/burns/swaps are mirrored
	GasCost float64
}

// AddressFollower mirrors every mint, burn, and swap of one address
// against a local vault, merging concentrated positions by tick bounds
// and clearing dust after every event.
type AddressFollower struct {
	cfg      AddressFollowerConfig
	feeRate  float64
	reporter Reporter
}

// NewAddressFollower creates the strategy. An empty address is fatal.
func NewAddressFollower(cfg AddressFollowerConfig, pool domain.Pool, reporter Reporter) (*AddressFollower, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("address follower requires an address")
	}
	return &AddressFollower{cfg: cfg, feeRate: pool.Fee, reporter: orNop(reporter)}, nil
}

// ID returns the strategy identifier including the tracked address.
func (s *AddressFollower) ID() string {
	return fmt.Sprintf("%s_%s", domain.StrategyTypeAddressFollower, s.cfg.Address)
}

// Rebalance mirrors the event when its owner matches the tracked address,
// accrues fee share on every swap, then clears dust positions.
func (s *AddressFollower) Rebalance(_ context.Context, event *domain.Event, pf *portfolio.Portfolio) (domain.ActionTag, error) {
	tag := domain.TagNone

	switch event.Type {
	case domain.EventTypeMint:
		if event.Liquidity.Owner == s.cfg.Address {
			if err := s.performMint(pf, event); err != nil {
				return domain.TagNone, err
			}
			tag = domain.TagMint
		}
	case domain.EventTypeBurn:
		if event.Liquidity.Owner == s.cfg.Address {
			if err := s.performBurn(pf, event); err != nil {
				return domain.TagNone, err
			}
			tag = domain.TagBurn
		}
	case domain.EventTypeSwap:
		if event.Swap.Owner == s.cfg.Address {
			if err := s.performSwap(pf, event); err != nil {
				return domain.TagNone, err
			}
			tag = domain.TagSwap
		}
	}

	if event.Type == domain.EventTypeSwap {
		chargeFeesAll(pf, event)
	}

	s.performClearing(pf)
	return tag, nil
}

// vault returns the follower's cash reservoir, creating an empty one on
// first use. Every mirror operation tops it up before withdrawing.
func (s *AddressFollower) vault(pf *portfolio.Portfolio) (*portfolio.CashPosition, error) {
	if pos, err := pf.Get(followerVaultName); err == nil {
		if v, ok := pos.(*portfolio.CashPosition); ok {
			return v, nil
		}
		return nil, fmt.Errorf("position %s is not a cash position", followerVaultName)
	}
	v, err := portfolio.NewCashPosition(followerVaultName, s.feeRate, s.cfg.GasCost, 0, 0, nil, nil)
	if err != nil {
		return nil, err
	}
	if err := pf.Append(v); err != nil {
		return nil, err
	}
	return v, nil
}

// performMint pulls the event amounts from the vault (topping up the
// short side first) and creates or merges the position keyed by the tick
// bounds.
func (s *AddressFollower) performMint(pf *portfolio.Portfolio, event *domain.Event) error {
	liq := event.Liquidity
	vault, err := s.vault(pf)
	if err != nil {
		return err
	}

	vx, vy := vault.Balances()
	if vx < event.Amount0 {
		if err := vault.Deposit(event.Amount0-vx+topUpEpsilon, 0); err != nil {
			return err
		}
	}
	if vy < event.Amount1 {
		if err := vault.Deposit(0, event.Amount1-vy+topUpEpsilon); err != nil {
			return err
		}
	}
	if _, _, err := vault.Withdraw(event.Amount0, event.Amount1); err != nil {
		s.reporter.RecordAnomaly(domain.AnomalyInsufficientBalance, followerVaultName, err.Error())
		return nil
	}

	name := positionNameForBounds(liq.TickLower, liq.TickUpper)
	if pf.Has(name) {
		pos, err := pf.Get(name)
		if err != nil {
			return err
		}
		if cp, ok := pos.(*portfolio.ConcentratedPosition); ok {
			cp.AddLiquidity(liq.Liquidity, event.Amount0, event.Amount1)
		}
		return nil
	}

	cp, err := portfolio.NewConcentratedPosition(name,
		amm.TickToPrice(liq.TickLower), amm.TickToPrice(liq.TickUpper), s.feeRate, s.cfg.GasCost)
	if err != nil {
		return err
	}
	cp.AddLiquidity(liq.Liquidity, event.Amount0, event.Amount1)
	return pf.Append(cp)
}

// performBurn credits the released amounts to the vault and burns the
// attributed liquidity, clamped to what the position holds.
func (s *AddressFollower) performBurn(pf *portfolio.Portfolio, event *domain.Event) error {
	liq := event.Liquidity
	name := positionNameForBounds(liq.TickLower, liq.TickUpper)

	if !pf.Has(name) {
		s.reporter.RecordAnomaly(domain.AnomalyMissingPosition, name, "burn event for unknown position")
		return nil
	}
	pos, err := pf.Get(name)
	if err != nil {
		return err
	}
	cp, ok := pos.(*portfolio.ConcentratedPosition)
	if !ok {
		return fmt.Errorf("position %s is not a concentrated position", name)
	}

	vault, err := s.vault(pf)
	if err != nil {
		return err
	}
	if err := vault.Deposit(event.Amount0, event.Amount1); err != nil {
		return err
	}

	if liq.Liquidity <= 0 {
		s.reporter.RecordAnomaly(domain.AnomalyNumericAssertion, name,
			fmt.Sprintf("burn event with non-positive liquidity %g", liq.Liquidity))
		return nil
	}
	if _, _, shortfall := cp.Burn(liq.Liquidity, *event.Price); shortfall > 0 {
		s.reporter.RecordAnomaly(domain.AnomalyInsufficientBalance, name,
			fmt.Sprintf("burn clamped, shortfall %g", shortfall))
	}
	return nil
}

// performSwap mirrors the trade against the vault: withdraw the input
// leg, deposit the output leg, topping up the input side by the shortfall
// plus epsilon when needed.
func (s *AddressFollower) performSwap(pf *portfolio.Portfolio, event *domain.Event) error {
	vault, err := s.vault(pf)
	if err != nil {
		return err
	}
	vx, vy := vault.Balances()

	if event.Amount0 > 0 {
		if vx < event.Amount0 {
			if err := vault.Deposit(event.Amount0-vx+topUpEpsilon, 0); err != nil {
				return err
			}
		}
		if _, _, err := vault.Withdraw(event.Amount0, 0); err != nil {
			s.reporter.RecordAnomaly(domain.AnomalyInsufficientBalance, followerVaultName, err.Error())
			return nil
		}
		return vault.Deposit(0, -event.Amount1)
	}

	if vy < event.Amount1 {
		if err := vault.Deposit(0, event.Amount1-vy+topUpEpsilon); err != nil {
			return err
		}
	}
	if _, _, err := vault.Withdraw(0, event.Amount1); err != nil {
		s.reporter.RecordAnomaly(domain.AnomalyInsufficientBalance, followerVaultName, err.Error())
		return nil
	}
	return vault.Deposit(-event.Amount0, 0)
}

// performClearing removes concentrated positions whose liquidity fell
// under the dust threshold, iterating a name snapshot while mutating the
// live portfolio.
func (s *AddressFollower) performClearing(pf *portfolio.Portfolio) {
	for _, name := range pf.Names() {
		pos, err := pf.Get(name)
		if err != nil {
			continue
		}
		if cp, ok := pos.(*portfolio.ConcentratedPosition); ok && cp.Liquidity() < portfolio.DustLiquidity {
			_ = pf.Remove(name)
		}
	}
}

// positionNameForBounds encodes tick bounds into the position name so
// repeat mints at the same bounds merge.
func positionNameForBounds(tickLower, tickUpper int) string {
	return fmt.Sprintf("UniV3_%d_%d", tickLower, tickUpper)
}

var _ Strategy = (*AddressFollower)(nil)
