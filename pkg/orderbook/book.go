package orderbook

import (
	"sync"

	"go.uber.org/zap"

	"github.com/tradecore-io/tradecore/pkg/coreerrors"
	"github.com/tradecore-io/tradecore/pkg/enums"
	"github.com/tradecore-io/tradecore/pkg/fixed"
	"github.com/tradecore-io/tradecore/pkg/identifiers"
	"github.com/tradecore-io/tradecore/pkg/marketdata"
)

// effectsBufferSize bounds the synthetic-delta side-effect channel. A
// full buffer drops the new delta rather than blocking the engine
// thread, per spec.md §5 ("no suspension points inside the
// book engine").
const effectsBufferSize = 256

// OrderBook is the per-instrument limit order book engine of spec.md
// §3.5/§4.3, maintaining independent bid and ask Ladders under a
// stream of OrderBookDeltas. One OrderBook is owned by exactly one
// goroutine at a time (spec.md §5's single-writer-per-instrument
// rule); this type itself is not safe for concurrent mutation from
// multiple goroutines, only for a single writer racing with readers of
// its published snapshots via mu.
//
// Grounded on the teacher's internal/core/matching/order_book.go
// OrderBook, generalized from a single float64-priced heap pair to the
// Ladder abstraction needed for L1/L2/L3 semantics and crossed-book
// resolution.
type OrderBook struct {
	mu sync.RWMutex

	instrumentID identifiers.InstrumentId
	bookType     enums.BookType
	bids         *Ladder
	asks         *Ladder

	lastUpdateID uint64
	tsLast       uint64
	poisoned     bool
	poisonReason error

	effects chan marketdata.OrderBookDelta
	log     *zap.Logger
}

// Option configures an OrderBook at construction.
type Option func(*OrderBook)

// WithLogger attaches a *zap.Logger; the default is a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(b *OrderBook) { b.log = log }
}

// WithEffectsChannel attaches the channel synthetic DELETE deltas from
// crossed-book resolution (spec.md §4.3.3) are published to. Sends are
// non-blocking: if the channel is unread and full, the delta is
// dropped and logged, since the book engine itself must never block.
func WithEffectsChannel(ch chan marketdata.OrderBookDelta) Option {
	return func(b *OrderBook) { b.effects = ch }
}

// NewOrderBook constructs an empty order book for instrumentID at
// bookType.
func NewOrderBook(instrumentID identifiers.InstrumentId, bookType enums.BookType, opts ...Option) *OrderBook {
	b := &OrderBook{
		instrumentID: instrumentID,
		bookType:     bookType,
		bids:         newLadder(enums.OrderSideBuy),
		asks:         newLadder(enums.OrderSideSell),
		effects:      make(chan marketdata.OrderBookDelta, effectsBufferSize),
		log:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// InstrumentID returns the book's instrument.
func (b *OrderBook) InstrumentID() identifiers.InstrumentId { return b.instrumentID }

// BookType returns the book's depth semantics.
func (b *OrderBook) BookType() enums.BookType { return b.bookType }

// IsPoisoned reports whether the book has failed an invariant and must
// be rebuilt from a fresh snapshot, per spec.md §4.3.6.
func (b *OrderBook) IsPoisoned() (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.poisoned, b.poisonReason
}

func (b *OrderBook) ladder(side enums.OrderSide) *Ladder {
	if side == enums.OrderSideBuy {
		return b.bids
	}
	return b.asks
}

func (b *OrderBook) opposite(side enums.OrderSide) *Ladder {
	if side == enums.OrderSideBuy {
		return b.asks
	}
	return b.bids
}

func (b *OrderBook) poison(cause error) error {
	b.poisoned = true
	b.poisonReason = cause
	b.log.Error("order book poisoned", zap.String("instrument", b.instrumentID.String()), zap.Error(cause))
	return coreerrors.Wrap(coreerrors.ErrBookPoisoned, "order book invariant violated, rebuild required", cause)
}

func (b *OrderBook) checkAlive() error {
	if b.poisoned {
		return coreerrors.Wrap(coreerrors.ErrBookPoisoned, "order book is poisoned, rebuild required", b.poisonReason)
	}
	return nil
}

// checkSequence rejects a delta whose sequence does not move the
// book's last_update_id strictly forward, per spec.md §4.3.6: a
// sequence not greater than the last applied one indicates a gap or
// reorder and must be rejected with ErrStaleDelta, book unchanged.
func (b *OrderBook) checkSequence(sequence uint64) error {
	if sequence <= b.lastUpdateID {
		return coreerrors.Newf(coreerrors.ErrStaleDelta,
			"sequence %d not greater than last applied sequence %d", sequence, b.lastUpdateID)
	}
	return nil
}

// publishEffect emits a synthetic delta on the effects channel without
// blocking.
func (b *OrderBook) publishEffect(d marketdata.OrderBookDelta) {
	select {
	case b.effects <- d:
	default:
		b.log.Warn("dropped synthetic book delta, effects channel full",
			zap.String("instrument", b.instrumentID.String()))
	}
}

// Add inserts order onto its side, per spec.md §4.3.2.
func (b *OrderBook) Add(order marketdata.BookOrder, sequence, tsEvent uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAlive(); err != nil {
		return err
	}
	if err := b.checkSequence(sequence); err != nil {
		return err
	}
	if _, exists := b.ladder(order.Side).findOrder(order.OrderID); exists {
		return coreerrors.Newf(coreerrors.ErrDuplicateOrderID, "order id %d already resting", order.OrderID)
	}

	l := b.ladder(order.Side)
	if b.bookType == enums.BookTypeL1TBBO {
		if best, ok := l.Best(); ok && !best.Price().Equals(order.Price) {
			l.clear()
		}
	}
	l.add(order)
	b.advance(sequence, tsEvent)

	if b.bookType != enums.BookTypeL1TBBO {
		b.resolveCrossedBook(order.Side, sequence, tsEvent)
	}
	return nil
}

// Update mutates a resting order's price/size in place, per spec.md
// §4.3.2. For L3_MBO books, a price change or a size increase resets
// the order's queue priority (moved to the tail); a size decrease at
// an unchanged price preserves its position. L1_TBBO/L2_MBP books have
// no order-level priority to preserve: an unchanged price updates in
// place, and a changed price moves the order to its new level.
func (b *OrderBook) Update(order marketdata.BookOrder, sequence, tsEvent uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAlive(); err != nil {
		return err
	}
	if err := b.checkSequence(sequence); err != nil {
		return err
	}

	l := b.ladder(order.Side)
	existingLvl, exists := l.findOrder(order.OrderID)
	if !exists {
		return coreerrors.Newf(coreerrors.ErrUnknownOrderID, "order id %d not resting", order.OrderID)
	}

	moveToTail := false
	if b.bookType == enums.BookTypeL3MBO {
		priceChanged := !existingLvl.Price().Equals(order.Price)
		var sizeIncreased bool
		if idx := existingLvl.indexOf(order.OrderID); idx >= 0 {
			sizeIncreased = order.Size.Compare(existingLvl.orders[idx].Size) > 0
		}
		moveToTail = priceChanged || sizeIncreased
	}

	l.update(order, moveToTail)
	b.advance(sequence, tsEvent)

	if b.bookType != enums.BookTypeL1TBBO {
		b.resolveCrossedBook(order.Side, sequence, tsEvent)
	}
	return nil
}

// Delete removes a resting order, per spec.md §4.3.2.
func (b *OrderBook) Delete(orderID uint64, side enums.OrderSide, sequence, tsEvent uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAlive(); err != nil {
		return err
	}
	if err := b.checkSequence(sequence); err != nil {
		return err
	}
	if _, ok := b.ladder(side).delete(orderID); !ok {
		return coreerrors.Newf(coreerrors.ErrUnknownOrderID, "order id %d not resting", orderID)
	}
	b.advance(sequence, tsEvent)
	return nil
}

// Clear empties one side (or both, if side is OrderSideNone), per
// spec.md §4.3.2.
func (b *OrderBook) Clear(side enums.OrderSide, sequence, tsEvent uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAlive(); err != nil {
		return err
	}
	if err := b.checkSequence(sequence); err != nil {
		return err
	}
	switch side {
	case enums.OrderSideBuy:
		b.bids.clear()
	case enums.OrderSideSell:
		b.asks.clear()
	default:
		b.bids.clear()
		b.asks.clear()
	}
	b.advance(sequence, tsEvent)
	return nil
}

// Apply dispatches a delta to Add/Update/Delete/Clear, per spec.md
// §4.3.2's description of delta application.
func (b *OrderBook) Apply(d marketdata.OrderBookDelta) error {
	switch d.Action {
	case enums.BookActionAdd:
		return b.Add(d.Order, d.Sequence, d.TsEvent)
	case enums.BookActionUpdate:
		return b.Update(d.Order, d.Sequence, d.TsEvent)
	case enums.BookActionDelete:
		return b.Delete(d.Order.OrderID, d.Order.Side, d.Sequence, d.TsEvent)
	case enums.BookActionClear:
		side := enums.OrderSideNone
		if d.HasOrder {
			side = d.Order.Side
		}
		return b.Clear(side, d.Sequence, d.TsEvent)
	default:
		return coreerrors.Newf(coreerrors.ErrValidation, "unknown book action %s", d.Action)
	}
}

// advance bumps the book's sequence/timestamp watermarks. Callers must
// have already rejected stale sequences via checkSequence before
// mutating the book, so sequence is always strictly greater than
// lastUpdateID here.
func (b *OrderBook) advance(sequence, tsEvent uint64) {
	b.lastUpdateID = sequence
	if tsEvent > b.tsLast {
		b.tsLast = tsEvent
	}
}

// resolveCrossedBook implements spec.md §4.3.3: once newerSide's best
// price is known to have just changed, repeatedly purge the opposite
// (stale) side's crossing orders, best level first and FIFO within a
// level, until the book is no longer crossed. Each purged order is
// re-emitted as a synthetic DELETE delta on the effects channel.
func (b *OrderBook) resolveCrossedBook(newerSide enums.OrderSide, sequence, tsEvent uint64) {
	stale := b.opposite(newerSide)

	for {
		if !crossed(b.bids, b.asks) {
			return
		}

		order, ok := stale.popBestOrder()
		if !ok {
			return
		}
		delta, err := marketdata.NewOrderBookDelta(b.instrumentID, enums.BookActionDelete, order, true, sequence, tsEvent, tsEvent)
		if err != nil {
			b.log.Error("failed to construct synthetic crossed-book delete", zap.Error(err))
			continue
		}
		b.log.Info("crossed book resolved, purged stale order",
			zap.String("instrument", b.instrumentID.String()),
			zap.Uint64("order_id", order.OrderID),
			zap.String("side", stale.Side().String()))
		b.publishEffect(delta)
	}
}

// crossed reports whether bestBid >= bestAsk.
func crossed(bids, asks *Ladder) bool {
	bestBid, ok := bids.Best()
	if !ok {
		return false
	}
	bestAsk, ok := asks.Best()
	if !ok {
		return false
	}
	return bestBid.Price().Compare(bestAsk.Price()) >= 0
}

// BestBid returns the best (highest) resting bid price.
func (b *OrderBook) BestBid() (fixed.Price, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	lvl, ok := b.bids.Best()
	if !ok {
		return fixed.Price{}, false
	}
	return lvl.Price(), true
}

// BestAsk returns the best (lowest) resting ask price.
func (b *OrderBook) BestAsk() (fixed.Price, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	lvl, ok := b.asks.Best()
	if !ok {
		return fixed.Price{}, false
	}
	return lvl.Price(), true
}

// BestBidQty returns the aggregate resting size at the best bid.
func (b *OrderBook) BestBidQty() (fixed.Quantity, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	lvl, ok := b.bids.Best()
	if !ok {
		return fixed.Quantity{}, false
	}
	return lvl.AggregateQuantity(), true
}

// BestAskQty returns the aggregate resting size at the best ask.
func (b *OrderBook) BestAskQty() (fixed.Quantity, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	lvl, ok := b.asks.Best()
	if !ok {
		return fixed.Quantity{}, false
	}
	return lvl.AggregateQuantity(), true
}

// LevelOrders returns the FIFO order of resting orders at price on
// side, exposed for L3_MBO consumers that need individual order
// priority rather than just the aggregate depth (spec.md §3.5's
// "ordered by insertion" detail; §6.1 only names the aggregate
// consumer API, but an L3 feed is meaningless without per-order
// visibility).
func (b *OrderBook) LevelOrders(side enums.OrderSide, price fixed.Price) ([]marketdata.BookOrder, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	key := priceKey(side, price)
	lvl, ok := b.ladder(side).levels[key]
	if !ok {
		return nil, false
	}
	return lvl.Orders(), true
}

// Spread returns bestAsk-bestBid; it is zero or negative when the book
// is crossed (possible for an L1_TBBO book, spec.md §4.3.3).
func (b *OrderBook) Spread() (fixed.Price, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	bidLvl, ok := b.bids.Best()
	if !ok {
		return fixed.Price{}, false
	}
	askLvl, ok := b.asks.Best()
	if !ok {
		return fixed.Price{}, false
	}
	spread, err := askLvl.Price().Sub(bidLvl.Price())
	if err != nil {
		return fixed.Price{}, false
	}
	return spread, true
}

// Midpoint returns (bestBid+bestAsk)/2.
func (b *OrderBook) Midpoint() (fixed.Price, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	bidLvl, ok := b.bids.Best()
	if !ok {
		return fixed.Price{}, false
	}
	askLvl, ok := b.asks.Best()
	if !ok {
		return fixed.Price{}, false
	}
	return fixed.Midpoint(bidLvl.Price(), askLvl.Price()), true
}

// DepthLevel is one row of a Depth()/Snapshot() projection.
type DepthLevel struct {
	Price    fixed.Price
	Quantity fixed.Quantity
	OrderCnt int
}

// Depth returns up to n levels of one side, best first. n<=0 returns
// every level.
func (b *OrderBook) Depth(side enums.OrderSide, n int) []DepthLevel {
	b.mu.RLock()
	defer b.mu.RUnlock()
	levels := b.ladder(side).Depth(n)
	out := make([]DepthLevel, len(levels))
	for i, lvl := range levels {
		out[i] = DepthLevel{Price: lvl.Price(), Quantity: lvl.AggregateQuantity(), OrderCnt: lvl.Len()}
	}
	return out
}

// Snapshot is a full point-in-time projection of both sides, per
// spec.md §4.3.1.
type Snapshot struct {
	InstrumentID identifiers.InstrumentId
	BookType     enums.BookType
	Bids         []DepthLevel
	Asks         []DepthLevel
	LastUpdateID uint64
	TsLast       uint64
}

// Snapshot captures the full current book state.
func (b *OrderBook) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	bidLevels := b.bids.Depth(0)
	askLevels := b.asks.Depth(0)
	bids := make([]DepthLevel, len(bidLevels))
	for i, lvl := range bidLevels {
		bids[i] = DepthLevel{Price: lvl.Price(), Quantity: lvl.AggregateQuantity(), OrderCnt: lvl.Len()}
	}
	asks := make([]DepthLevel, len(askLevels))
	for i, lvl := range askLevels {
		asks[i] = DepthLevel{Price: lvl.Price(), Quantity: lvl.AggregateQuantity(), OrderCnt: lvl.Len()}
	}
	return Snapshot{
		InstrumentID: b.instrumentID,
		BookType:     b.bookType,
		Bids:         bids,
		Asks:         asks,
		LastUpdateID: b.lastUpdateID,
		TsLast:       b.tsLast,
	}
}

// FillLevel is one simulated partial (or full) fill against resting
// liquidity, returned by SimulateFills.
type FillLevel struct {
	Price    fixed.Price
	Quantity fixed.Quantity
}

// SimulateFills walks the opposite side of the book from best to
// worst, per spec.md §4.3.1, accumulating fills for a hypothetical
// order of side/size without mutating the book.
func (b *OrderBook) SimulateFills(side enums.OrderSide, size fixed.Quantity) []FillLevel {
	b.mu.RLock()
	defer b.mu.RUnlock()

	target := b.opposite(side)
	remaining := size
	var fills []FillLevel
	for _, lvl := range target.Depth(0) {
		if remaining.IsZero() {
			break
		}
		avail := lvl.AggregateQuantity()
		take := avail
		if take.Compare(remaining) > 0 {
			take = remaining
		}
		fills = append(fills, FillLevel{Price: lvl.Price(), Quantity: take})
		remaining, _ = remaining.Sub(take)
	}
	return fills
}
