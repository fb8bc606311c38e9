package shard_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tradecore-io/tradecore/pkg/identifiers"
	"github.com/tradecore-io/tradecore/pkg/shard"
)

func testInstrument(t *testing.T, symbol string) identifiers.InstrumentId {
	t.Helper()
	sym, err := identifiers.NewSymbol(symbol)
	require.NoError(t, err)
	venue, err := identifiers.NewVenue("XNAS")
	require.NoError(t, err)
	id, err := identifiers.NewInstrumentId(sym, venue)
	require.NoError(t, err)
	return id
}

func TestPool_PreservesPerInstrumentOrder(t *testing.T) {
	pool, err := shard.NewPool(4, nil)
	require.NoError(t, err)
	defer pool.Release()

	instrument := testInstrument(t, "AAPL")
	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		i := i
		pool.Submit(context.Background(), instrument, func() {
			defer wg.Done()
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for shard jobs to drain")
	}

	require.Len(t, order, 50)
	for i, v := range order {
		require.Equal(t, i, v)
	}
}

func TestShardKey_Deterministic(t *testing.T) {
	instrument := testInstrument(t, "AAPL")
	require.Equal(t, shard.ShardKey(instrument, 8), shard.ShardKey(instrument, 8))
}
