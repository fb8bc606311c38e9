package snapshot_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tradecore-io/tradecore/pkg/enums"
	"github.com/tradecore-io/tradecore/pkg/fixed"
	"github.com/tradecore-io/tradecore/pkg/identifiers"
	"github.com/tradecore-io/tradecore/pkg/marketdata"
	"github.com/tradecore-io/tradecore/pkg/orderbook"
	"github.com/tradecore-io/tradecore/pkg/snapshot"
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

func TestCache_MemoizesWithinTTL(t *testing.T) {
	instrument := testInstrument(t)
	book := orderbook.NewOrderBook(instrument, enums.BookTypeL2MBP)
	price, err := fixed.ParsePrice("100")
	require.NoError(t, err)
	size, err := fixed.ParseQuantity("1")
	require.NoError(t, err)
	order, err := marketdata.NewBookOrder(1, enums.OrderSideBuy, price, size)
	require.NoError(t, err)
	require.NoError(t, book.Add(order, 1, 1))

	c := snapshot.NewCache(50 * time.Millisecond)
	first := c.Snapshot(book)

	order2, err := marketdata.NewBookOrder(2, enums.OrderSideBuy, price, size)
	require.NoError(t, err)
	require.NoError(t, book.Add(order2, 2, 2))

	memoized := c.Snapshot(book)
	require.Equal(t, first.Bids[0].OrderCnt, memoized.Bids[0].OrderCnt,
		"a snapshot taken within the TTL must not reflect the book mutation that happened after it was cached")

	c.Invalidate(instrument)
	fresh := c.Snapshot(book)
	require.Equal(t, 2, fresh.Bids[0].OrderCnt)
}
