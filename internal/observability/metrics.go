// Package observability exposes Prometheus metrics for ingestion and
// backtest runs.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "backtest_univ3"

// Metrics holds the instrument set for one process.
type Metrics struct {
	EventsIngested  prometheus.Counter
	EventsProcessed prometheus.Counter
	EventsSkipped   prometheus.Counter
	RebalancesTotal *prometheus.CounterVec
	AnomaliesTotal  *prometheus.CounterVec
	RunDuration     prometheus.Histogram
	PortfolioValueY prometheus.Gauge
}

// NewMetrics registers the instrument set on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EventsIngested: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_ingested_total",
			Help:      "Market events written to storage.",
		}),
		EventsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_processed_total",
			Help:      "Events replayed through a strategy.",
		}),
		EventsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_skipped_total",
			Help:      "Events skipped for missing price.",
		}),
		RebalancesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rebalances_total",
			Help:      "Portfolio actions by tag.",
		}, []string{"tag"}),
		AnomaliesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "anomalies_total",
			Help:      "Replay anomalies by kind.",
		}, []string{"kind"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a full backtest run.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		PortfolioValueY: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "portfolio_value_token1",
			Help:      "Latest portfolio value denominated in token1.",
		}),
	}
}

// DefaultMetrics registers on the default Prometheus registry.
func DefaultMetrics() *Metrics {
	return NewMetrics(prometheus.DefaultRegisterer)
}

// Handler serves the default registry over HTTP.
func Handler() http.Handler {
	return promhttp.Handler()
}
