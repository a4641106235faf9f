// Package strategy implements the liquidity-provision strategies driven
// by the replay loop: Hold, PassiveRange, AddressFollower, CatchThePrice.
package strategy

import (
	"context"

	"github.com/shinobu1729/backtest-univ3/internal/domain"
	"github.com/shinobu1729/backtest-univ3/internal/portfolio"
)

// Strategy reacts to market events with exclusive mutation rights over
// the portfolio for the duration of each call.
type Strategy interface {
	// Rebalance is called once per processed event, in timestamp order.
	// Returns the action tag for the event, or domain.TagNone.
	Rebalance(ctx context.Context, event *domain.Event, pf *portfolio.Portfolio) (domain.ActionTag, error)

	// ID returns the strategy identifier (includes parameters).
	ID() string
}

// Reporter receives recoverable replay anomalies. Strategies report and
// continue; a single bad record never halts a multi-year backtest.
type Reporter interface {
	RecordAnomaly(kind domain.AnomalyKind, position, detail string)
}

// nopReporter discards anomalies. Used when no reporter is supplied.
type nopReporter struct{}

func (nopReporter) RecordAnomaly(domain.AnomalyKind, string, string) {}

// orNop returns the supplied reporter, or a discarding one when nil.
func orNop(r Reporter) Reporter {
	if r == nil {
		return nopReporter{}
	}
	return r
}
