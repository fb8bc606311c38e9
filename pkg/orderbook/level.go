// Package orderbook implements the limit order book engine of
// spec.md §3.5/§4.3: Level, Ladder, and OrderBook, maintaining bid/ask
// ladders under a stream of BookDeltas with L1/L2/L3 semantics.
//
// The heap-and-map shape is grounded on the teacher's
// internal/core/matching/order_book.go OrderBook/OrderHeap, but a heap
// is the wrong structure here: spec.md §4.3.2's L3 "price-time
// priority" rule needs FIFO *within* a price level while still
// supporting "preserve position" in-place updates, which a
// container/heap reorders on every Push/Pop. A Level instead keeps its
// orders in a plain slice in arrival order, and the Ladder keeps levels
// in a sorted slice of price keys — the same two-map-plus-slice shape
// the teacher uses for order/price-level bookkeeping
// (ob.orders / ob.ordersByPrice in order_book.go), generalized to a
// fixed-precision Price key instead of float64.
package orderbook

import (
	"github.com/tradecore-io/tradecore/pkg/fixed"
	"github.com/tradecore-io/tradecore/pkg/marketdata"
)

// Level holds every resting order at one price on one side, per
// spec.md §3.5.
type Level struct {
	price  fixed.Price
	orders []marketdata.BookOrder
}

func newLevel(price fixed.Price) *Level {
	return &Level{price: price, orders: make([]marketdata.BookOrder, 0, 4)}
}

// Price returns the level's price.
func (l *Level) Price() fixed.Price { return l.price }

// Orders returns the level's orders in FIFO arrival order. The
// returned slice is a defensive copy; mutating it does not affect the
// level.
func (l *Level) Orders() []marketdata.BookOrder {
	out := make([]marketdata.BookOrder, len(l.orders))
	copy(out, l.orders)
	return out
}

// Len returns the number of orders resting at this level.
func (l *Level) Len() int { return len(l.orders) }

// AggregateQuantity sums the size of every order at this level, per
// spec.md §3.5 ("Aggregate volume is the sum of order sizes").
func (l *Level) AggregateQuantity() fixed.Quantity {
	total := fixed.Quantity{}
	for _, o := range l.orders {
		// Addition of in-range quantities that were already accepted
		// onto this level cannot overflow the representable range.
		total, _ = total.Add(o.Size)
	}
	return total
}

// indexOf returns the slice index of orderID, or -1.
func (l *Level) indexOf(orderID uint64) int {
	for i, o := range l.orders {
		if o.OrderID == orderID {
			return i
		}
	}
	return -1
}

// append adds an order to the tail, per spec.md §4.3.4 ("orders are
// kept in FIFO insertion order").
func (l *Level) append(order marketdata.BookOrder) {
	l.orders = append(l.orders, order)
}

// replaceInPlace overwrites the order at orderID without changing its
// position, used for L1/L2 updates and for L3 "preserve position"
// updates.
func (l *Level) replaceInPlace(order marketdata.BookOrder) bool {
	i := l.indexOf(order.OrderID)
	if i < 0 {
		return false
	}
	l.orders[i] = order
	return true
}

// remove deletes orderID from the level, reporting the removed order
// and whether it was found.
func (l *Level) remove(orderID uint64) (marketdata.BookOrder, bool) {
	i := l.indexOf(orderID)
	if i < 0 {
		return marketdata.BookOrder{}, false
	}
	removed := l.orders[i]
	l.orders = append(l.orders[:i], l.orders[i+1:]...)
	return removed, true
}

// isEmpty reports whether the level has no resting orders; empty
// levels are removed from their ladder per spec.md §3.5.
func (l *Level) isEmpty() bool { return len(l.orders) == 0 }
