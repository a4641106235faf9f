// Package metrics derives summary statistics from a completed run's
// histories.
package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/shinobu1729/backtest-univ3/internal/backtest"
	"github.com/shinobu1729/backtest-univ3/internal/domain"
	"github.com/shinobu1729/backtest-univ3/internal/lookup"
)

// RunStats summarizes a run. Values denominated in token1 unless noted.
type RunStats struct {
	EventCount   int
	SkippedCount int

	InitialValueY float64
	FinalValueY   float64
	TotalReturn   float64 // final/initial - 1; 0 when initial is 0

	MinValueY   float64
	MaxValueY   float64
	MeanValueY  float64
	MaxDrawdown float64 // largest peak-to-trough fraction, in [0, 1]

	PriceStart float64
	PriceEnd   float64
	PriceMin   float64
	PriceMax   float64

	UncollectedFeesX float64 // fees accrued but not collected at run end
	UncollectedFeesY float64

	TagCounts    map[domain.ActionTag]int
	AnomalyCount int
}

// Compute derives RunStats from engine results.
func Compute(results *backtest.Results) *RunStats {
	stats := &RunStats{
		EventCount:   results.EventCount,
		SkippedCount: results.SkippedCount,
		TagCounts:    make(map[domain.ActionTag]int),
		AnomalyCount: len(results.Anomalies),
	}
	for _, entry := range results.RebalanceHistory {
		stats.TagCounts[entry.Tag]++
	}

	history := results.PortfolioHistory
	if len(history) == 0 {
		return stats
	}

	stats.InitialValueY = history[0].TotalValueY
	stats.FinalValueY = history[len(history)-1].TotalValueY
	if stats.InitialValueY != 0 {
		stats.TotalReturn = stats.FinalValueY/stats.InitialValueY - 1
	}

	stats.PriceStart = history[0].Price
	stats.PriceEnd = history[len(history)-1].Price
	stats.PriceMin = history[0].Price
	stats.PriceMax = history[0].Price
	stats.MinValueY = history[0].TotalValueY
	stats.MaxValueY = history[0].TotalValueY

	var sum float64
	peak := history[0].TotalValueY
	for _, snap := range history {
		v := snap.TotalValueY
		sum += v
		stats.MinValueY = math.Min(stats.MinValueY, v)
		stats.MaxValueY = math.Max(stats.MaxValueY, v)
		stats.PriceMin = math.Min(stats.PriceMin, snap.Price)
		stats.PriceMax = math.Max(stats.PriceMax, snap.Price)
		if v > peak {
			peak = v
		}
		if peak > 0 {
			dd := (peak - v) / peak
			if dd > stats.MaxDrawdown {
				stats.MaxDrawdown = dd
			}
		}
	}
	stats.MeanValueY = sum / float64(len(history))

	if n := len(results.PositionHistory); n > 0 {
		last := results.PositionHistory[n-1]
		for _, pos := range last.Positions {
			stats.UncollectedFeesX += pos.FeesX
			stats.UncollectedFeesY += pos.FeesY
		}
	}
	return stats
}

// WindowedReturn returns the return over [start, end] using the latest
// snapshot at or before each instant.
func WindowedReturn(history []domain.PortfolioSnapshot, start, end time.Time) (float64, error) {
	startValue, err := lookup.ValueAt(history, start)
	if err != nil {
		return 0, err
	}
	endValue, err := lookup.ValueAt(history, end)
	if err != nil {
		return 0, err
	}
	if startValue == 0 {
		return 0, nil
	}
	return endValue/startValue - 1, nil
}

// Percentile returns the p-th percentile (0..100) of values by nearest
// rank. The input slice is not modified.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	rank := int(math.Ceil(p / 100 * float64(len(sorted))))
	return sorted[rank-1]
}
