package barspec_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tradecore-io/tradecore/pkg/barspec"
	"github.com/tradecore-io/tradecore/pkg/enums"
	"github.com/tradecore-io/tradecore/pkg/fixed"
	"github.com/tradecore-io/tradecore/pkg/identifiers"
	"github.com/tradecore-io/tradecore/pkg/marketdata"
)

func testBarType(t *testing.T, agg enums.BarAggregation, step uint64) marketdata.BarType {
	t.Helper()
	symbol, err := identifiers.NewSymbol("AAPL")
	require.NoError(t, err)
	venue, err := identifiers.NewVenue("XNAS")
	require.NoError(t, err)
	instrumentID, err := identifiers.NewInstrumentId(symbol, venue)
	require.NoError(t, err)
	spec, err := marketdata.NewBarSpecification(step, agg, enums.PriceTypeLast)
	require.NoError(t, err)
	return marketdata.NewBarType(instrumentID, spec, enums.BarSourceInternal)
}

func tick(t *testing.T, price string, size string, tsEvent uint64) barspec.Tick {
	t.Helper()
	p, err := fixed.ParsePrice(price)
	require.NoError(t, err)
	q, err := fixed.ParseQuantity(size)
	require.NoError(t, err)
	return barspec.Tick{Price: p, Size: q, TsEvent: tsEvent}
}

// scenario 8.2.5: TIME 1-MINUTE bar aggregation.
func TestAggregator_TimeBasedBar(t *testing.T) {
	const nsPerSecond = uint64(1_000_000_000)
	barType := testBarType(t, enums.BarAggregationMinute, 1)
	agg := barspec.NewAggregator(barType)

	ticks := []struct {
		ts    uint64
		price string
	}{
		{0 * nsPerSecond, "10"},
		{30 * nsPerSecond, "12"},
		{45 * nsPerSecond, "9"},
		{61 * nsPerSecond, "11"},
	}

	var closed marketdata.Bar
	var gotClose bool
	for _, tc := range ticks {
		bar, ok, err := agg.Update(tick(t, tc.price, "1", tc.ts), tc.ts)
		require.NoError(t, err)
		if ok {
			closed = bar
			gotClose = true
		}
	}

	require.True(t, gotClose)
	require.True(t, closed.Open().Equals(mustPrice(t, "10")))
	require.True(t, closed.High().Equals(mustPrice(t, "12")))
	require.True(t, closed.Low().Equals(mustPrice(t, "9")))
	require.True(t, closed.Close().Equals(mustPrice(t, "9")))
	require.Equal(t, 60*nsPerSecond, closed.TsEvent())
}

// The seeding tick that crosses a TIME boundary opens the next bar; its
// size must still be accumulated into that bar's volume rather than
// dropped.
func TestAggregator_TimeBasedBarSeedsVolumeAcrossBoundary(t *testing.T) {
	const nsPerSecond = uint64(1_000_000_000)
	barType := testBarType(t, enums.BarAggregationMinute, 1)
	agg := barspec.NewAggregator(barType)

	ticks := []struct {
		ts    uint64
		price string
		size  string
	}{
		{0 * nsPerSecond, "10", "1"},
		{30 * nsPerSecond, "12", "1"},
		{61 * nsPerSecond, "9", "2"},  // closes bar 1, seeds bar 2 with size 2
		{90 * nsPerSecond, "11", "3"}, // bar 2 accumulates size 3 more
		{121 * nsPerSecond, "8", "1"}, // closes bar 2
	}

	var closedBars []marketdata.Bar
	for _, tc := range ticks {
		bar, ok, err := agg.Update(tick(t, tc.price, tc.size, tc.ts), tc.ts)
		require.NoError(t, err)
		if ok {
			closedBars = append(closedBars, bar)
		}
	}

	require.Len(t, closedBars, 2)
	require.True(t, closedBars[1].Volume().Equals(mustQty(t, "5")),
		"bar 2's volume must include the seeding tick's size (2) plus the later tick's size (3)")
}

func TestAggregator_TickBasedBar(t *testing.T) {
	barType := testBarType(t, enums.BarAggregationTick, 3)
	agg := barspec.NewAggregator(barType)

	var closed marketdata.Bar
	var gotClose bool
	for i, price := range []string{"10", "11", "9"} {
		bar, ok, err := agg.Update(tick(t, price, "1", uint64(i)), uint64(i))
		require.NoError(t, err)
		if ok {
			closed = bar
			gotClose = true
		}
	}

	require.True(t, gotClose)
	require.True(t, closed.Open().Equals(mustPrice(t, "10")))
	require.True(t, closed.Close().Equals(mustPrice(t, "9")))
}

func mustPrice(t *testing.T, s string) fixed.Price {
	t.Helper()
	p, err := fixed.ParsePrice(s)
	require.NoError(t, err)
	return p
}

func mustQty(t *testing.T, s string) fixed.Quantity {
	t.Helper()
	q, err := fixed.ParseQuantity(s)
	require.NoError(t, err)
	return q
}
