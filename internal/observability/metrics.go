// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Request metrics
	GainsRequests   *prometheus.CounterVec // by outcome: ok, invalid_address, error
	GainsDuration   prometheus.Histogram
	HoldingsPerCall prometheus.Histogram
	TokensReported  prometheus.Counter

	// Price oracle metrics
	PriceSourceCalls *prometheus.CounterVec // by source and outcome
	PriceCacheHits   prometheus.Counter
	PriceCacheMisses prometheus.Counter
	PricesUnresolved prometheus.Counter
}

// NewMetrics creates a Metrics instance registered with reg. Pass
// prometheus.DefaultRegisterer in production; tests use a fresh
// registry to avoid duplicate registration.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "wallet_gains"
	}
	factory := promauto.With(reg)

	return &Metrics{
		GainsRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "gains_requests_total",
			Help:      "Total number of gains calculations by outcome",
		}, []string{"outcome"}),
		GainsDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "gains_duration_seconds",
			Help:      "Duration of gains calculations",
			Buckets:   prometheus.DefBuckets,
		}),
		HoldingsPerCall: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "holdings_per_call",
			Help:      "Number of holdings enumerated per gains calculation",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		}),
		TokensReported: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "tokens_reported_total",
			Help:      "Total number of gain results returned to callers",
		}),
		PriceSourceCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "price_source_calls_total",
			Help:      "Total number of price source calls by source and outcome",
		}, []string{"source", "outcome"}),
		PriceCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "price_cache_hits_total",
			Help:      "Total number of price cache hits",
		}),
		PriceCacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "price_cache_misses_total",
			Help:      "Total number of price cache misses",
		}),
		PricesUnresolved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "prices_unresolved_total",
			Help:      "Total number of mints no source could price",
		}),
	}
}

// Handler returns an HTTP handler exposing the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
