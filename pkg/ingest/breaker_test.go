package ingest_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tradecore-io/tradecore/pkg/enums"
	"github.com/tradecore-io/tradecore/pkg/fixed"
	"github.com/tradecore-io/tradecore/pkg/identifiers"
	"github.com/tradecore-io/tradecore/pkg/ingest"
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

func TestIngestor_ValidationFailureDoesNotTripBreaker(t *testing.T) {
	instrument := testInstrument(t)
	book := orderbook.NewOrderBook(instrument, enums.BookTypeL3MBO)
	ingestor := ingest.NewIngestor(book, instrument, ingest.DefaultBreakerConfig(), nil)

	price, err := fixed.ParsePrice("100")
	require.NoError(t, err)
	size, err := fixed.ParseQuantity("1")
	require.NoError(t, err)
	order, err := marketdata.NewBookOrder(1, enums.OrderSideBuy, price, size)
	require.NoError(t, err)

	deleteDelta, err := marketdata.NewOrderBookDelta(instrument, enums.BookActionDelete, order, true, 1, 1, 1)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		err := ingestor.Apply(deleteDelta)
		require.Error(t, err, "deleting an unknown order id should keep failing, not open the breaker")
	}

	addDelta, err := marketdata.NewOrderBookDelta(instrument, enums.BookActionAdd, order, true, 2, 2, 2)
	require.NoError(t, err)
	require.NoError(t, ingestor.Apply(addDelta))
}

func TestDefaultBreakerConfig(t *testing.T) {
	cfg := ingest.DefaultBreakerConfig()
	require.Equal(t, uint32(3), cfg.ConsecutiveFailures)
	require.Equal(t, 5*time.Second, cfg.OpenTimeout)
}
