// Package metrics exposes the prometheus counters/gauges named in
// SPEC_FULL.md §11: deltas applied/rejected (by error code), crossed
// -book resolutions, best bid/ask gauges per instrument, and bar
// emissions by aggregation type. Grounded on the teacher's
// internal/monitoring/metrics.go, which registers a similar
// counter/gauge/histogram set against a package-level
// prometheus.Registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tradecore-io/tradecore/pkg/coreerrors"
)

// Registry bundles every metric this core publishes. Callers normally
// construct one Registry per process and share it across shards.
type Registry struct {
	DeltasApplied   *prometheus.CounterVec
	DeltasRejected  *prometheus.CounterVec
	CrossResolved   prometheus.Counter
	BarsEmitted     *prometheus.CounterVec
	BestBidGauge    *prometheus.GaugeVec
	BestAskGauge    *prometheus.GaugeVec
}

// NewRegistry constructs a Registry and registers every metric against
// reg.
func NewRegistry(reg prometheus.Registerer) *Registry {
	m := &Registry{
		DeltasApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tradecore",
			Subsystem: "book",
			Name:      "deltas_applied_total",
			Help:      "Count of OrderBookDeltas successfully applied, by action.",
		}, []string{"instrument", "action"}),
		DeltasRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tradecore",
			Subsystem: "book",
			Name:      "deltas_rejected_total",
			Help:      "Count of OrderBookDeltas rejected, by error code.",
		}, []string{"instrument", "code"}),
		CrossResolved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tradecore",
			Subsystem: "book",
			Name:      "crossed_book_resolutions_total",
			Help:      "Count of stale-side orders purged by crossed-book resolution.",
		}),
		BarsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tradecore",
			Subsystem: "bars",
			Name:      "emitted_total",
			Help:      "Count of Bars emitted by the aggregator, by aggregation kind.",
		}, []string{"instrument", "aggregation"}),
		BestBidGauge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "tradecore",
			Subsystem: "book",
			Name:      "best_bid",
			Help:      "Current best bid price (as a float64, AsFloat64 projection) per instrument.",
		}, []string{"instrument"}),
		BestAskGauge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "tradecore",
			Subsystem: "book",
			Name:      "best_ask",
			Help:      "Current best ask price (as a float64, AsFloat64 projection) per instrument.",
		}, []string{"instrument"}),
	}
	reg.MustRegister(m.DeltasApplied, m.DeltasRejected, m.CrossResolved, m.BarsEmitted, m.BestBidGauge, m.BestAskGauge)
	return m
}

// ObserveApplyError records a rejected delta by its CoreError code, or
// under "unknown" if err is not a *coreerrors.CoreError.
func (m *Registry) ObserveApplyError(instrument string, err error) {
	code := "unknown"
	if ce, ok := err.(*coreerrors.CoreError); ok {
		code = string(ce.Code)
	}
	m.DeltasRejected.WithLabelValues(instrument, code).Inc()
}
