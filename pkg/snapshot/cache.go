// Package snapshot memoizes OrderBook.Snapshot() results for a short
// TTL (Depth() results are not cached), per SPEC_FULL.md §11: bursty
// consumer polling (many
// strategies reading the same book in the same tick) should not each
// force a fresh copy of every level. The identifier interner and
// currency registry are never put behind this cache — §5 requires
// those append-only, never-evicted.
//
// Grounded on the teacher's use of github.com/patrickmn/go-cache for
// short-lived response memoization (services/*/cache.go, now removed
// with the rest of the HTTP layer, but the library and its
// New(ttl, cleanupInterval) call shape are carried forward here).
package snapshot

import (
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/tradecore-io/tradecore/pkg/identifiers"
	"github.com/tradecore-io/tradecore/pkg/orderbook"
)

// Cache memoizes Snapshot() calls keyed by instrument.
type Cache struct {
	ttl   time.Duration
	store *cache.Cache
}

// NewCache constructs a Cache whose entries expire after ttl.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl, store: cache.New(ttl, 2*ttl)}
}

// Snapshot returns book's snapshot, serving a memoized copy if one was
// taken within the cache's TTL.
func (c *Cache) Snapshot(book *orderbook.OrderBook) orderbook.Snapshot {
	key := book.InstrumentID().Value()
	if v, ok := c.store.Get(key); ok {
		return v.(orderbook.Snapshot)
	}
	snap := book.Snapshot()
	c.store.Set(key, snap, c.ttl)
	return snap
}

// Invalidate drops any memoized snapshot for instrumentID, used after
// a CLEAR + replay so a stale pre-rebuild snapshot is never served.
func (c *Cache) Invalidate(instrumentID identifiers.InstrumentId) {
	c.store.Delete(instrumentID.Value())
}
