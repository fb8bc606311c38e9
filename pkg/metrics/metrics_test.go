package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/tradecore-io/tradecore/pkg/coreerrors"
	"github.com/tradecore-io/tradecore/pkg/metrics"
)

func TestNewRegistry_RegistersAllMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewRegistry(reg)
	require.NotNil(t, m)

	// Label vectors only appear in Gather once a child exists.
	m.DeltasApplied.WithLabelValues("AAPL.XNAS", "ADD")
	m.DeltasRejected.WithLabelValues("AAPL.XNAS", "STALE_DELTA")
	m.BarsEmitted.WithLabelValues("AAPL.XNAS", "MINUTE")
	m.BestBidGauge.WithLabelValues("AAPL.XNAS")
	m.BestAskGauge.WithLabelValues("AAPL.XNAS")

	families, err := reg.Gather()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(families), 5)
}

func TestObserveApplyError_KnownCode(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewRegistry(reg)

	err := coreerrors.New(coreerrors.ErrUnknownOrderID, "unknown order id")
	m.ObserveApplyError("AAPL.XNAS", err)

	families, gatherErr := reg.Gather()
	require.NoError(t, gatherErr)
	require.True(t, hasCounterLabel(families, "tradecore_book_deltas_rejected_total", "code", string(coreerrors.ErrUnknownOrderID)))
}

func TestObserveApplyError_UnknownErrorType(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewRegistry(reg)

	m.ObserveApplyError("AAPL.XNAS", assertionError{})

	families, gatherErr := reg.Gather()
	require.NoError(t, gatherErr)
	require.True(t, hasCounterLabel(families, "tradecore_book_deltas_rejected_total", "code", "unknown"))
}

type assertionError struct{}

func (assertionError) Error() string { return "boom" }

func hasCounterLabel(families []*dto.MetricFamily, familyName, labelName, labelValue string) bool {
	for _, f := range families {
		if f.GetName() != familyName {
			continue
		}
		for _, metric := range f.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if lp.GetName() == labelName && lp.GetValue() == labelValue {
					return true
				}
			}
		}
	}
	return false
}
