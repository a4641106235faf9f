// Package reporting renders run results as markdown summaries and CSV
// exports.
package reporting

import (
	"github.com/shinobu1729/backtest-univ3/internal/backtest"
	"github.com/shinobu1729/backtest-univ3/internal/domain"
	"github.com/shinobu1729/backtest-univ3/internal/metrics"
)

// Report bundles everything the renderers need.
type Report struct {
	Run     *domain.BacktestRun
	Stats   *metrics.RunStats
	Results *backtest.Results
}

// NewReport assembles a report from a run summary and its results.
func NewReport(run *domain.BacktestRun, results *backtest.Results) *Report {
	return &Report{
		Run:     run,
		Stats:   metrics.Compute(results),
		Results: results,
	}
}
