package strategy

import (
	"context"
	"errors"
	"time"

	"github.com/shinobu1729/backtest-univ3/internal/domain"
	"github.com/shinobu1729/backtest-univ3/internal/portfolio"
)

// holdVaultName is the cash reservoir the Hold strategy owns.
const holdVaultName = "Vault"

// HoldConfig parameterizes the buy-and-hold strategy.
type HoldConfig struct {
	InitialX  float64
	InitialY  float64
	XInterest *float64 // daily rate, nil for none
	YInterest *float64
}

// Hold is the passive buy-and-hold strategy: create the vault on the
// first event, accrue interest once per new date, never mint liquidity.
type Hold struct {
	cfg      HoldConfig
	reporter Reporter

	prevGainDate time.Time // zero until the vault exists
}

// NewHold creates the Hold strategy.
func NewHold(cfg HoldConfig, reporter Reporter) *Hold {
	return &Hold{cfg: cfg, reporter: orNop(reporter)}
}

// ID returns the strategy identifier.
func (s *Hold) ID() string { return domain.StrategyTypeHold }

// Rebalance creates the vault on the first event, then applies daily
// interest once per new date. Never returns an action tag.
func (s *Hold) Rebalance(_ context.Context, event *domain.Event, pf *portfolio.Portfolio) (domain.ActionTag, error) {
	day := event.Timestamp.UTC().Truncate(24 * time.Hour)

	if s.prevGainDate.IsZero() {
		vault, err := portfolio.NewCashPosition(holdVaultName, 0, 0,
			s.cfg.InitialX, s.cfg.InitialY, s.cfg.XInterest, s.cfg.YInterest)
		if err != nil {
			return domain.TagNone, err
		}
		// Anchor the interest clock at the first event's date.
		vault.InterestGain(event.Timestamp)
		if err := pf.Append(vault); err != nil {
			return domain.TagNone, err
		}
		s.prevGainDate = day
		return domain.TagNone, nil
	}

	if day.After(s.prevGainDate) {
		pos, err := pf.Get(holdVaultName)
		if err != nil {
			if errors.Is(err, portfolio.ErrMissingPosition) {
				s.reporter.RecordAnomaly(domain.AnomalyMissingPosition, holdVaultName, err.Error())
				return domain.TagNone, nil
			}
			return domain.TagNone, err
		}
		if vault, ok := pos.(*portfolio.CashPosition); ok {
			vault.InterestGain(event.Timestamp)
		}
		s.prevGainDate = day
	}

	return domain.TagNone, nil
}

var _ Strategy = (*Hold)(nil)
