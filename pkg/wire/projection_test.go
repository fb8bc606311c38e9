package wire_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tradecore-io/tradecore/pkg/enums"
	"github.com/tradecore-io/tradecore/pkg/fixed"
	"github.com/tradecore-io/tradecore/pkg/identifiers"
	"github.com/tradecore-io/tradecore/pkg/marketdata"
	"github.com/tradecore-io/tradecore/pkg/orderbook"
	"github.com/tradecore-io/tradecore/pkg/wire"
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

func TestProjectQuoteTick(t *testing.T) {
	bid, err := fixed.ParsePrice("1.2345")
	require.NoError(t, err)
	ask, err := fixed.ParsePrice("1.2346")
	require.NoError(t, err)
	size, err := fixed.ParseQuantity("100")
	require.NoError(t, err)

	q, err := marketdata.NewQuoteTick(testInstrument(t), bid, ask, size, size, 1, 2)
	require.NoError(t, err)

	row := wire.ProjectQuoteTick(q)
	require.Equal(t, wire.SchemaVersion.String(), row.SchemaVersion)
	require.Equal(t, bid.Raw(), row.BidRaw)
	require.Equal(t, ask.Raw(), row.AskRaw)
	require.Equal(t, uint64(1), row.TsEvent)
	require.Equal(t, uint64(2), row.TsInit)
}

func TestExportAndDecodeSnapshot(t *testing.T) {
	book := orderbook.NewOrderBook(testInstrument(t), enums.BookTypeL2MBP)
	price, err := fixed.ParsePrice("100")
	require.NoError(t, err)
	size, err := fixed.ParseQuantity("5")
	require.NoError(t, err)
	order, err := marketdata.NewBookOrder(1, enums.OrderSideBuy, price, size)
	require.NoError(t, err)
	require.NoError(t, book.Add(order, 1, 1))

	export, err := wire.ExportSnapshot(book.Snapshot())
	require.NoError(t, err)
	require.Equal(t, wire.SchemaVersion.String(), export.SchemaVersion)
	require.NotEmpty(t, export.Compressed)

	decoded, err := wire.DecodeSnapshotExport(export)
	require.NoError(t, err)
	require.Equal(t, book.InstrumentID().Value(), decoded.InstrumentID.Value())
	require.Len(t, decoded.Bids, 1)
	require.True(t, decoded.Bids[0].Price.Equals(price))
}
