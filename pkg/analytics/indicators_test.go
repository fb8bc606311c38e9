package analytics_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tradecore-io/tradecore/pkg/analytics"
	"github.com/tradecore-io/tradecore/pkg/enums"
	"github.com/tradecore-io/tradecore/pkg/fixed"
	"github.com/tradecore-io/tradecore/pkg/identifiers"
	"github.com/tradecore-io/tradecore/pkg/marketdata"
	"github.com/tradecore-io/tradecore/pkg/orderbook"
)

func testInstrument(t *testing.T) identifiers.InstrumentId {
	t.Helper()
	symbol, err := identifiers.NewSymbol("AAPL")
	require.NoError(t, err)
	venue, err := identifiers.NewVenue("XNAS")
	require.NoError(t, err)
	id, err := identifiers.NewInstrumentId(symbol, venue)
	require.NoError(t, err)
	return id
}

func barAt(t *testing.T, barType marketdata.BarType, o, h, l, c string, ts uint64) marketdata.Bar {
	t.Helper()
	open, err := fixed.ParsePrice(o)
	require.NoError(t, err)
	high, err := fixed.ParsePrice(h)
	require.NoError(t, err)
	low, err := fixed.ParsePrice(l)
	require.NoError(t, err)
	close, err := fixed.ParsePrice(c)
	require.NoError(t, err)
	vol, err := fixed.ParseQuantity("1")
	require.NoError(t, err)
	bar, err := marketdata.NewBar(barType, open, high, low, close, vol, ts, ts)
	require.NoError(t, err)
	return bar
}

func TestSMA(t *testing.T) {
	spec, err := marketdata.NewBarSpecification(1, enums.BarAggregationMinute, enums.PriceTypeLast)
	require.NoError(t, err)
	barType := marketdata.NewBarType(testInstrument(t), spec, enums.BarSourceInternal)

	bars := []marketdata.Bar{
		barAt(t, barType, "10", "10", "10", "10", 0),
		barAt(t, barType, "12", "12", "12", "12", 1),
		barAt(t, barType, "14", "14", "14", "14", 2),
	}

	sma, err := analytics.SMA(bars, 3)
	require.NoError(t, err)
	require.Len(t, sma, 3)
	require.InDelta(t, 12.0, sma[2], 1e-9)
}

func TestBookImbalance(t *testing.T) {
	book := orderbook.NewOrderBook(testInstrument(t), enums.BookTypeL2MBP)
	bidPrice, _ := fixed.ParsePrice("100")
	bidSize, _ := fixed.ParseQuantity("8")
	askPrice, _ := fixed.ParsePrice("101")
	askSize, _ := fixed.ParseQuantity("2")

	bidOrder, err := marketdata.NewBookOrder(1, enums.OrderSideBuy, bidPrice, bidSize)
	require.NoError(t, err)
	askOrder, err := marketdata.NewBookOrder(2, enums.OrderSideSell, askPrice, askSize)
	require.NoError(t, err)
	require.NoError(t, book.Add(bidOrder, 1, 1))
	require.NoError(t, book.Add(askOrder, 2, 2))

	imbalance, ok := analytics.BookImbalance(book, 5)
	require.True(t, ok)
	require.InDelta(t, 0.8, imbalance, 1e-9)
}
