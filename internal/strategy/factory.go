package strategy

import (
	"errors"
	"fmt"
	"time"

	"github.com/shinobu1729/backtest-univ3/internal/domain"
)

var (
	// ErrUnknownStrategyType is returned for unrecognized strategy types.
	ErrUnknownStrategyType = errors.New("unknown strategy type")
	// ErrMissingRange is returned when a range strategy lacks price bounds.
	ErrMissingRange = errors.New("strategy config missing price range")
	// ErrMissingAddress is returned when the follower strategy lacks an address.
	ErrMissingAddress = errors.New("strategy config missing address")
	// ErrMissingWidth is returned when the chasing strategy lacks a band width.
	ErrMissingWidth = errors.New("strategy config missing width")
	// ErrMissingSecondsToHold is returned when the chasing strategy lacks a hold duration.
	ErrMissingSecondsToHold = errors.New("strategy config missing seconds to hold")
)

// FromConfig builds a strategy from its declarative configuration.
func FromConfig(cfg domain.StrategyConfig, pool domain.Pool, reporter Reporter) (Strategy, error) {
	switch cfg.StrategyType {
	case domain.StrategyTypeHold:
		return NewHold(HoldConfig{
			InitialX:  floatOrDefault(cfg.InitialX, 1),
			InitialY:  floatOrDefault(cfg.InitialY, 1),
			XInterest: cfg.XInterest,
			YInterest: cfg.YInterest,
		}, reporter), nil

	case domain.StrategyTypePassiveRange:
		if cfg.LowerPrice == nil || cfg.UpperPrice == nil {
			return nil, fmt.Errorf("%w: %s needs lower_price and upper_price", ErrMissingRange, cfg.StrategyType)
		}
		return NewPassiveRange(PassiveRangeConfig{
			LowerPrice: *cfg.LowerPrice,
			UpperPrice: *cfg.UpperPrice,
			GasCost:    cfg.GasCost,
		}, pool, reporter)

	case domain.StrategyTypeAddressFollower:
		if cfg.Address == nil || *cfg.Address == "" {
			return nil, fmt.Errorf("%w: %s needs address", ErrMissingAddress, cfg.StrategyType)
		}
		return NewAddressFollower(AddressFollowerConfig{
			Address: *cfg.Address,
			GasCost: cfg.GasCost,
		}, pool, reporter)

	case domain.StrategyTypeCatchThePrice:
		if cfg.Width == nil {
			return nil, fmt.Errorf("%w: %s needs width", ErrMissingWidth, cfg.StrategyType)
		}
		if cfg.SecondsToHold == nil {
			return nil, fmt.Errorf("%w: %s needs seconds_to_hold", ErrMissingSecondsToHold, cfg.StrategyType)
		}
		maxRemints := 0
		if cfg.MaxRemints != nil {
			maxRemints = *cfg.MaxRemints
		}
		return NewCatchThePrice(CatchThePriceConfig{
			Width:         *cfg.Width,
			SecondsToHold: time.Duration(*cfg.SecondsToHold) * time.Second,
			GasCost:       cfg.GasCost,
			MaxRemints:    maxRemints,
		}, pool, reporter)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategyType, cfg.StrategyType)
	}
}

func floatOrDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
