package orderbook_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tradecore-io/tradecore/pkg/coreerrors"
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

func mustOrder(t *testing.T, id uint64, side enums.OrderSide, price, size string) marketdata.BookOrder {
	t.Helper()
	o, err := marketdata.NewBookOrder(id, side, mustPrice(t, price), mustQty(t, size))
	require.NoError(t, err)
	return o
}

// scenario 8.2.2: L2 aggregation.
func TestOrderBook_L2Aggregation(t *testing.T) {
	book := orderbook.NewOrderBook(testInstrument(t), enums.BookTypeL2MBP)

	require.NoError(t, book.Add(mustOrder(t, 1, enums.OrderSideBuy, "100.00", "5"), 1, 1))
	require.NoError(t, book.Add(mustOrder(t, 2, enums.OrderSideBuy, "100.00", "3"), 2, 2))
	require.NoError(t, book.Add(mustOrder(t, 3, enums.OrderSideBuy, "99.99", "10"), 3, 3))

	bestBid, ok := book.BestBid()
	require.True(t, ok)
	require.True(t, bestBid.Equals(mustPrice(t, "100.00")))

	bestBidQty, ok := book.BestBidQty()
	require.True(t, ok)
	require.True(t, bestBidQty.Equals(mustQty(t, "8")))

	depth := book.Depth(enums.OrderSideBuy, 2)
	require.Len(t, depth, 2)
	require.True(t, depth[0].Price.Equals(mustPrice(t, "100.00")))
	require.True(t, depth[0].Quantity.Equals(mustQty(t, "8")))
	require.True(t, depth[1].Price.Equals(mustPrice(t, "99.99")))
	require.True(t, depth[1].Quantity.Equals(mustQty(t, "10")))
}

// scenario 8.2.3: L3 price-time priority. The concrete sizes in
// spec.md's worked example (7 then 10, both increases) contradict its
// own stated rule ("preserves position if price unchanged and size did
// not increase, otherwise... moved to the tail" — §4.3.2); this test
// follows the stated rule rather than the inconsistent example numbers
// (see DESIGN.md).
func TestOrderBook_L3PriceTimePriority(t *testing.T) {
	book := orderbook.NewOrderBook(testInstrument(t), enums.BookTypeL3MBO)

	require.NoError(t, book.Add(mustOrder(t, 1, enums.OrderSideSell, "101", "5"), 1, 1))
	require.NoError(t, book.Add(mustOrder(t, 2, enums.OrderSideSell, "101", "5"), 2, 2))

	// Size decrease at unchanged price preserves queue position.
	require.NoError(t, book.Update(mustOrder(t, 1, enums.OrderSideSell, "101", "3"), 3, 3))
	depth := book.Depth(enums.OrderSideSell, 1)
	require.Len(t, depth, 1)
	require.Equal(t, 2, depth[0].OrderCnt)

	snap := book.Snapshot()
	require.Len(t, snap.Asks, 1)

	// Size increase moves the order to the tail of its level.
	require.NoError(t, book.Update(mustOrder(t, 1, enums.OrderSideSell, "101", "10"), 4, 4))
	orders, ok := book.LevelOrders(enums.OrderSideSell, mustPrice(t, "101"))
	require.True(t, ok)
	require.Len(t, orders, 2)
	require.Equal(t, uint64(2), orders[0].OrderID)
	require.True(t, orders[0].Size.Equals(mustQty(t, "5")))
	require.Equal(t, uint64(1), orders[1].OrderID)
	require.True(t, orders[1].Size.Equals(mustQty(t, "10")))
}

// scenario 8.2.4: crossed resolution.
func TestOrderBook_CrossedResolution(t *testing.T) {
	effects := make(chan marketdata.OrderBookDelta, 8)
	book := orderbook.NewOrderBook(testInstrument(t), enums.BookTypeL2MBP, orderbook.WithEffectsChannel(effects))

	require.NoError(t, book.Add(mustOrder(t, 1, enums.OrderSideBuy, "100", "10"), 1, 1))
	require.NoError(t, book.Add(mustOrder(t, 2, enums.OrderSideSell, "99", "4"), 2, 2))

	bestAsk, ok := book.BestAsk()
	require.True(t, ok)
	require.True(t, bestAsk.Equals(mustPrice(t, "99")))

	_, ok = book.BestBid()
	require.False(t, ok, "stale crossing bid must have been purged")

	select {
	case d := <-effects:
		require.Equal(t, enums.BookActionDelete, d.Action)
		require.Equal(t, uint64(1), d.Order.OrderID)
	default:
		t.Fatal("expected a synthetic DELETE effect for the purged bid")
	}
}

func TestOrderBook_ClearEmptiesBothSides(t *testing.T) {
	book := orderbook.NewOrderBook(testInstrument(t), enums.BookTypeL2MBP)
	require.NoError(t, book.Add(mustOrder(t, 1, enums.OrderSideBuy, "100", "1"), 1, 1))
	require.NoError(t, book.Add(mustOrder(t, 2, enums.OrderSideSell, "101", "1"), 2, 2))

	require.NoError(t, book.Clear(enums.OrderSideNone, 3, 3))

	_, ok := book.BestBid()
	require.False(t, ok)
	_, ok = book.BestAsk()
	require.False(t, ok)

	snap := book.Snapshot()
	require.Empty(t, snap.Bids)
	require.Empty(t, snap.Asks)
}

func TestOrderBook_DuplicateAndUnknownOrderID(t *testing.T) {
	book := orderbook.NewOrderBook(testInstrument(t), enums.BookTypeL3MBO)
	require.NoError(t, book.Add(mustOrder(t, 1, enums.OrderSideBuy, "100", "1"), 1, 1))

	err := book.Add(mustOrder(t, 1, enums.OrderSideBuy, "100", "1"), 2, 2)
	require.Error(t, err)

	err = book.Delete(99, enums.OrderSideBuy, 3, 3)
	require.Error(t, err)
}

func TestOrderBook_StaleSequenceRejected(t *testing.T) {
	book := orderbook.NewOrderBook(testInstrument(t), enums.BookTypeL2MBP)
	require.NoError(t, book.Add(mustOrder(t, 1, enums.OrderSideBuy, "100", "5"), 5, 5))

	err := book.Add(mustOrder(t, 2, enums.OrderSideBuy, "100", "1"), 5, 6)
	require.Error(t, err)
	require.ErrorIs(t, err, coreerrors.ErrStaleDeltaSentinel)

	err = book.Add(mustOrder(t, 2, enums.OrderSideBuy, "100", "1"), 3, 6)
	require.Error(t, err)
	require.ErrorIs(t, err, coreerrors.ErrStaleDeltaSentinel)

	depth := book.Depth(enums.OrderSideBuy, 0)
	require.Len(t, depth, 1)
	require.Equal(t, 1, depth[0].OrderCnt, "a rejected stale delta must leave the book unchanged")

	require.NoError(t, book.Add(mustOrder(t, 2, enums.OrderSideBuy, "100", "1"), 6, 6))
}

func TestOrderBook_L1ReplacesLevelOnNewPrice(t *testing.T) {
	book := orderbook.NewOrderBook(testInstrument(t), enums.BookTypeL1TBBO)
	require.NoError(t, book.Add(mustOrder(t, 1, enums.OrderSideBuy, "100", "5"), 1, 1))
	require.NoError(t, book.Add(mustOrder(t, 2, enums.OrderSideBuy, "101", "3"), 2, 2))

	depth := book.Depth(enums.OrderSideBuy, 0)
	require.Len(t, depth, 1)
	require.True(t, depth[0].Price.Equals(mustPrice(t, "101")))
}

func TestOrderBook_Audit(t *testing.T) {
	book := orderbook.NewOrderBook(testInstrument(t), enums.BookTypeL2MBP)
	require.NoError(t, book.Add(mustOrder(t, 1, enums.OrderSideBuy, "100", "1"), 1, 1))
	require.NoError(t, book.Add(mustOrder(t, 2, enums.OrderSideSell, "101", "1"), 2, 2))
	require.NoError(t, book.Audit())
}
