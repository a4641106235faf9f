package domain

import "fmt"

// Pool describes the market whose events are replayed.
type Pool struct {
	ID           string
	Token0       string
	Token1       string
	Fee          float64 // swap fee fraction, e.g. 0.003
	DecimalsDiff int     // token0 decimals minus token1 decimals
}

// Validate checks the pool description.
func (p *Pool) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("pool missing id")
	}
	if p.Fee < 0 || p.Fee >= 1 {
		return fmt.Errorf("pool fee %g must be in [0, 1)", p.Fee)
	}
	return nil
}
