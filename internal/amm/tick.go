// Package amm implements concentrated-liquidity range math: tick/price
// conversion, virtual reserves, amount/liquidity conversion, and optimal
// pre-mint swap sizing under a proportional fee.
package amm

import "math"

// Tick bounds of the price grid.
const (
	MinTick = -887272
	MaxTick = 887272
)

// tickBase is the price ratio between adjacent ticks.
const tickBase = 1.0001

// TickToPrice converts a tick index to a price (token1 per token0).
func TickToPrice(tick int) float64 {
	return math.Pow(tickBase, float64(tick))
}

// PriceToTick converts a price to the nearest tick index.
// Inverse of TickToPrice for on-grid prices.
func PriceToTick(price float64) int {
	return int(math.Round(math.Log(price) / math.Log(tickBase)))
}
