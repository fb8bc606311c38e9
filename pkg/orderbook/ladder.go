package orderbook

import (
	"sort"

	"github.com/tradecore-io/tradecore/pkg/enums"
	"github.com/tradecore-io/tradecore/pkg/fixed"
	"github.com/tradecore-io/tradecore/pkg/marketdata"
)

// priceKey maps a Price to an int64 sort key such that ascending key
// order is always best-to-worst for the ladder's side: asks sort
// ascending by raw price (lowest ask is best), bids sort ascending by
// the *negated* raw price (highest bid negates to the smallest key).
// This lets both ladders share one sorted-slice implementation instead
// of two mirror-image ones, per spec.md §3.5's side-reversed BookPrice.
func priceKey(side enums.OrderSide, price fixed.Price) int64 {
	if side == enums.OrderSideBuy {
		return -price.Raw()
	}
	return price.Raw()
}

// Ladder is one side (bid or ask) of an OrderBook: a sorted set of
// price Levels plus an index from order id to the level it rests at,
// per spec.md §3.5. Grounded on the teacher's
// internal/core/matching/order_book.go Bids/Asks heaps, generalized
// from a container/heap (which reorders on every pop, incompatible
// with §4.3.2's "preserve position" update rule) to a sorted slice
// that can be mutated in place.
type Ladder struct {
	side       enums.OrderSide
	levels     map[int64]*Level
	keys       []int64 // sorted ascending; keys[0] is always best
	orderIndex map[uint64]int64
}

func newLadder(side enums.OrderSide) *Ladder {
	return &Ladder{
		side:       side,
		levels:     make(map[int64]*Level),
		keys:       make([]int64, 0, 16),
		orderIndex: make(map[uint64]int64),
	}
}

func (l *Ladder) Side() enums.OrderSide { return l.side }

// IsEmpty reports whether the ladder has no resting orders.
func (l *Ladder) IsEmpty() bool { return len(l.keys) == 0 }

// Best returns the ladder's best (inside-market) level, if any.
func (l *Ladder) Best() (*Level, bool) {
	if len(l.keys) == 0 {
		return nil, false
	}
	return l.levels[l.keys[0]], true
}

// Depth returns up to n levels from best to worst. n<=0 returns every
// level.
func (l *Ladder) Depth(n int) []*Level {
	count := len(l.keys)
	if n > 0 && n < count {
		count = n
	}
	out := make([]*Level, count)
	for i := 0; i < count; i++ {
		out[i] = l.levels[l.keys[i]]
	}
	return out
}

// insertKey inserts key into the sorted keys slice if absent.
func (l *Ladder) insertKey(key int64) {
	i := sort.Search(len(l.keys), func(i int) bool { return l.keys[i] >= key })
	if i < len(l.keys) && l.keys[i] == key {
		return
	}
	l.keys = append(l.keys, 0)
	copy(l.keys[i+1:], l.keys[i:])
	l.keys[i] = key
}

func (l *Ladder) removeKey(key int64) {
	i := sort.Search(len(l.keys), func(i int) bool { return l.keys[i] >= key })
	if i >= len(l.keys) || l.keys[i] != key {
		return
	}
	l.keys = append(l.keys[:i], l.keys[i+1:]...)
}

// levelFor returns (creating if necessary) the level at price.
func (l *Ladder) levelFor(price fixed.Price) *Level {
	key := priceKey(l.side, price)
	lvl, ok := l.levels[key]
	if !ok {
		lvl = newLevel(price)
		l.levels[key] = lvl
		l.insertKey(key)
	}
	return lvl
}

// dropIfEmpty removes price's level from the ladder once it has no
// resting orders.
func (l *Ladder) dropIfEmpty(price fixed.Price) {
	key := priceKey(l.side, price)
	lvl, ok := l.levels[key]
	if !ok || !lvl.isEmpty() {
		return
	}
	delete(l.levels, key)
	l.removeKey(key)
}

// add inserts order at the tail of its price level.
func (l *Ladder) add(order marketdata.BookOrder) {
	lvl := l.levelFor(order.Price)
	lvl.append(order)
	l.orderIndex[order.OrderID] = priceKey(l.side, order.Price)
}

// findOrder reports the level currently holding orderID, if any.
func (l *Ladder) findOrder(orderID uint64) (*Level, bool) {
	key, ok := l.orderIndex[orderID]
	if !ok {
		return nil, false
	}
	lvl, ok := l.levels[key]
	return lvl, ok
}

// update applies order (same OrderID, new Price/Size) to the ladder.
// moveToTail forces removal-then-reinsertion at the new price even
// when the price is unchanged, per spec.md §4.3.2's L3 "any size
// increase, or any price change, is equivalent to delete+add (order
// loses time priority and moves to the tail)" rule; when false, the
// order is updated in place, preserving its queue position.
func (l *Ladder) update(order marketdata.BookOrder, moveToTail bool) bool {
	oldLvl, ok := l.findOrder(order.OrderID)
	if !ok {
		return false
	}
	oldPrice := oldLvl.Price()
	newKey := priceKey(l.side, order.Price)
	oldKey := priceKey(l.side, oldPrice)

	if !moveToTail && newKey == oldKey {
		oldLvl.replaceInPlace(order)
		return true
	}

	oldLvl.remove(order.OrderID)
	l.dropIfEmpty(oldPrice)
	newLvl := l.levelFor(order.Price)
	newLvl.append(order)
	l.orderIndex[order.OrderID] = newKey
	return true
}

// delete removes orderID from wherever it rests, reporting the removed
// order.
func (l *Ladder) delete(orderID uint64) (marketdata.BookOrder, bool) {
	lvl, ok := l.findOrder(orderID)
	if !ok {
		return marketdata.BookOrder{}, false
	}
	price := lvl.Price()
	removed, ok := lvl.remove(orderID)
	if !ok {
		return marketdata.BookOrder{}, false
	}
	delete(l.orderIndex, orderID)
	l.dropIfEmpty(price)
	return removed, true
}

// clear empties the ladder entirely, returning every removed order in
// best-to-worst, then FIFO, order.
func (l *Ladder) clear() []marketdata.BookOrder {
	var removed []marketdata.BookOrder
	for _, key := range l.keys {
		removed = append(removed, l.levels[key].orders...)
	}
	l.levels = make(map[int64]*Level)
	l.keys = l.keys[:0]
	l.orderIndex = make(map[uint64]int64)
	return removed
}

// popBestOrder removes and returns the single highest-priority order
// at the ladder's best level (FIFO head), used by crossed-book
// resolution (spec.md §4.3.3).
func (l *Ladder) popBestOrder() (marketdata.BookOrder, bool) {
	best, ok := l.Best()
	if !ok || best.isEmpty() {
		return marketdata.BookOrder{}, false
	}
	order := best.orders[0]
	removed, ok := l.delete(order.OrderID)
	return removed, ok
}
