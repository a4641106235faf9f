package domain

// StrategyConfig holds strategy construction parameters. Optional
// parameters are pointers so a missing value is distinguishable from zero.
type StrategyConfig struct {
	StrategyType string // "HOLD" | "PASSIVE_RANGE" | "ADDRESS_FOLLOWER" | "CATCH_THE_PRICE"

	// PASSIVE_RANGE parameters
	LowerPrice *float64
	UpperPrice *float64

	// ADDRESS_FOLLOWER parameters
	Address *string

	// CATCH_THE_PRICE parameters
	Width         *float64
	SecondsToHold *int64
	MaxRemints    *int // defaults to 5 when nil

	// HOLD parameters
	InitialX  *float64 // vault balances at creation, default 1
	InitialY  *float64
	XInterest *float64 // daily interest rates, default 0
	YInterest *float64

	// Common parameters
	GasCost float64
}

// Strategy type constants.
const (
	StrategyTypeHold            = "HOLD"
	StrategyTypePassiveRange    = "PASSIVE_RANGE"
	StrategyTypeAddressFollower = "ADDRESS_FOLLOWER"
	StrategyTypeCatchThePrice   = "CATCH_THE_PRICE"
)
