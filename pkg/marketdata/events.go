// Package marketdata implements the market-data event value types of
// spec.md §3.4: QuoteTick, TradeTick, Bar (with BarType and
// BarSpecification), BookOrder, and OrderBookDelta. Every type here is
// an immutable value type constructed through a validating function —
// there is no mutation after construction, matching spec.md §3.4
// ("All event structs are value types; once constructed they are
// immutable") and grounded on the teacher's Candle/Trade value structs
// (internal/marketdata/candle.go, internal/core/matching/types.go)
// generalized to carry fixed-precision fields and nanosecond
// timestamps instead of float64/time.Time.
package marketdata

import (
	"strconv"

	"github.com/tradecore-io/tradecore/pkg/coreerrors"
	"github.com/tradecore-io/tradecore/pkg/enums"
	"github.com/tradecore-io/tradecore/pkg/fixed"
	"github.com/tradecore-io/tradecore/pkg/identifiers"
)

// QuoteTick is a top-of-book bid/ask snapshot, per spec.md §3.4.
type QuoteTick struct {
	instrumentID identifiers.InstrumentId
	bid          fixed.Price
	ask          fixed.Price
	bidSize      fixed.Quantity
	askSize      fixed.Quantity
	tsEvent      uint64
	tsInit       uint64
}

// NewQuoteTick validates bid <= ask and ts_init >= ts_event before
// constructing the tick, per spec.md §3.4.
func NewQuoteTick(
	instrumentID identifiers.InstrumentId,
	bid, ask fixed.Price,
	bidSize, askSize fixed.Quantity,
	tsEvent, tsInit uint64,
) (QuoteTick, error) {
	if bid.GreaterThan(ask) {
		return QuoteTick{}, coreerrors.Newf(coreerrors.ErrValidation, "quote bid %s > ask %s", bid, ask)
	}
	if tsInit < tsEvent {
		return QuoteTick{}, coreerrors.Newf(coreerrors.ErrValidation, "ts_init %d < ts_event %d", tsInit, tsEvent)
	}
	return QuoteTick{
		instrumentID: instrumentID,
		bid:          bid,
		ask:          ask,
		bidSize:      bidSize,
		askSize:      askSize,
		tsEvent:      tsEvent,
		tsInit:       tsInit,
	}, nil
}

func (q QuoteTick) InstrumentID() identifiers.InstrumentId { return q.instrumentID }
func (q QuoteTick) Bid() fixed.Price                       { return q.bid }
func (q QuoteTick) Ask() fixed.Price                        { return q.ask }
func (q QuoteTick) BidSize() fixed.Quantity                 { return q.bidSize }
func (q QuoteTick) AskSize() fixed.Quantity                 { return q.askSize }
func (q QuoteTick) TsEvent() uint64                         { return q.tsEvent }
func (q QuoteTick) TsInit() uint64                          { return q.tsInit }

// Midpoint returns (bid+ask)/2 at the higher of the two precisions.
func (q QuoteTick) Midpoint() fixed.Price { return fixed.Midpoint(q.bid, q.ask) }

// Spread returns ask-bid. The subtraction of two in-range prices that
// already satisfy bid<=ask cannot overflow, so the error is discarded.
func (q QuoteTick) Spread() fixed.Price {
	spread, _ := q.ask.Sub(q.bid)
	return spread
}

// TradeTick is an executed trade print, per spec.md §3.4.
type TradeTick struct {
	instrumentID identifiers.InstrumentId
	price        fixed.Price
	size         fixed.Quantity
	aggressor    enums.AggressorSide
	tradeID      identifiers.TradeId
	tsEvent      uint64
	tsInit       uint64
}

// NewTradeTick constructs a TradeTick.
func NewTradeTick(
	instrumentID identifiers.InstrumentId,
	price fixed.Price,
	size fixed.Quantity,
	aggressor enums.AggressorSide,
	tradeID identifiers.TradeId,
	tsEvent, tsInit uint64,
) (TradeTick, error) {
	if tsInit < tsEvent {
		return TradeTick{}, coreerrors.Newf(coreerrors.ErrValidation, "ts_init %d < ts_event %d", tsInit, tsEvent)
	}
	return TradeTick{
		instrumentID: instrumentID,
		price:        price,
		size:         size,
		aggressor:    aggressor,
		tradeID:      tradeID,
		tsEvent:      tsEvent,
		tsInit:       tsInit,
	}, nil
}

func (t TradeTick) InstrumentID() identifiers.InstrumentId { return t.instrumentID }
func (t TradeTick) Price() fixed.Price                     { return t.price }
func (t TradeTick) Size() fixed.Quantity                    { return t.size }
func (t TradeTick) AggressorSide() enums.AggressorSide      { return t.aggressor }
func (t TradeTick) TradeID() identifiers.TradeId            { return t.tradeID }
func (t TradeTick) TsEvent() uint64                         { return t.tsEvent }
func (t TradeTick) TsInit() uint64                           { return t.tsInit }

// BarSpecification describes the step/aggregation/price-type triple
// that, combined with an InstrumentId, forms a BarType, per spec.md
// §3.4.
type BarSpecification struct {
	Step        uint64
	Aggregation enums.BarAggregation
	PriceType   enums.PriceType
}

// NewBarSpecification validates step > 0.
func NewBarSpecification(step uint64, aggregation enums.BarAggregation, priceType enums.PriceType) (BarSpecification, error) {
	if step == 0 {
		return BarSpecification{}, coreerrors.New(coreerrors.ErrValidation, "bar specification step must be > 0")
	}
	return BarSpecification{Step: step, Aggregation: aggregation, PriceType: priceType}, nil
}

func (s BarSpecification) String() string {
	return strconv.FormatUint(s.Step, 10) + "-" + s.Aggregation.String() + "-" + s.PriceType.String()
}

// BarType is an InstrumentId tagged with a BarSpecification and a
// BarSource, per spec.md §3.4.
type BarType struct {
	InstrumentID identifiers.InstrumentId
	Spec         BarSpecification
	Source       enums.BarSource
}

// NewBarType constructs a BarType.
func NewBarType(instrumentID identifiers.InstrumentId, spec BarSpecification, source enums.BarSource) BarType {
	return BarType{InstrumentID: instrumentID, Spec: spec, Source: source}
}

func (bt BarType) String() string {
	return bt.InstrumentID.String() + "-" + bt.Spec.String() + "-" + bt.Source.String()
}

// Bar is an OHLCV candle, per spec.md §3.4.
type Bar struct {
	barType BarType
	open    fixed.Price
	high    fixed.Price
	low     fixed.Price
	close   fixed.Price
	volume  fixed.Quantity
	tsEvent uint64
	tsInit  uint64
}

// NewBar validates low <= open,close <= high, per spec.md §3.4/§8.1.
func NewBar(
	barType BarType,
	open, high, low, close fixed.Price,
	volume fixed.Quantity,
	tsEvent, tsInit uint64,
) (Bar, error) {
	if low.GreaterThan(open) || open.GreaterThan(high) {
		return Bar{}, coreerrors.Newf(coreerrors.ErrValidation, "bar invariant violated: low=%s open=%s high=%s", low, open, high)
	}
	if low.GreaterThan(close) || close.GreaterThan(high) {
		return Bar{}, coreerrors.Newf(coreerrors.ErrValidation, "bar invariant violated: low=%s close=%s high=%s", low, close, high)
	}
	return Bar{
		barType: barType,
		open:    open,
		high:    high,
		low:     low,
		close:   close,
		volume:  volume,
		tsEvent: tsEvent,
		tsInit:  tsInit,
	}, nil
}

func (b Bar) BarType() BarType      { return b.barType }
func (b Bar) Open() fixed.Price     { return b.open }
func (b Bar) High() fixed.Price     { return b.high }
func (b Bar) Low() fixed.Price      { return b.low }
func (b Bar) Close() fixed.Price    { return b.close }
func (b Bar) Volume() fixed.Quantity { return b.volume }
func (b Bar) TsEvent() uint64       { return b.tsEvent }
func (b Bar) TsInit() uint64        { return b.tsInit }

// BookOrder is a single resting order as seen by the book engine, per
// spec.md §3.4.
type BookOrder struct {
	OrderID uint64
	Side    enums.OrderSide
	Price   fixed.Price
	Size    fixed.Quantity
}

// NewBookOrder validates side is BUY or SELL.
func NewBookOrder(orderID uint64, side enums.OrderSide, price fixed.Price, size fixed.Quantity) (BookOrder, error) {
	if side != enums.OrderSideBuy && side != enums.OrderSideSell {
		return BookOrder{}, coreerrors.Newf(coreerrors.ErrValidation, "book order side must be BUY or SELL, got %s", side)
	}
	return BookOrder{OrderID: orderID, Side: side, Price: price, Size: size}, nil
}

// OrderBookDelta is a single book mutation instruction, per spec.md
// §3.4/§3.5.
type OrderBookDelta struct {
	InstrumentID identifiers.InstrumentId
	Action       enums.BookAction
	Order        BookOrder
	HasOrder     bool
	Sequence     uint64
	TsEvent      uint64
	TsInit       uint64
}

// NewOrderBookDelta constructs a delta. order/hasOrder may be the zero
// value/false only for CLEAR, per spec.md §3.4 ("order (optional for
// CLEAR)").
func NewOrderBookDelta(
	instrumentID identifiers.InstrumentId,
	action enums.BookAction,
	order BookOrder,
	hasOrder bool,
	sequence uint64,
	tsEvent, tsInit uint64,
) (OrderBookDelta, error) {
	if !hasOrder && action != enums.BookActionClear {
		return OrderBookDelta{}, coreerrors.Newf(coreerrors.ErrValidation, "delta action %s requires an order", action)
	}
	return OrderBookDelta{
		InstrumentID: instrumentID,
		Action:       action,
		Order:        order,
		HasOrder:     hasOrder,
		Sequence:     sequence,
		TsEvent:      tsEvent,
		TsInit:       tsInit,
	}, nil
}

// Inverse computes the delta that undoes d against the state it was
// applied to, per spec.md §8.1 ("applying a delta and immediately
// applying its inverse returns the book to its prior snapshot"). prior
// is the BookOrder this delta's order previously held (its price/size
// before an UPDATE, or its full state before a DELETE); it is unused
// for ADD and ignored (along with the ok=false result) for CLEAR, which
// has no single-delta inverse.
func (d OrderBookDelta) Inverse(prior BookOrder) (OrderBookDelta, bool) {
	switch d.Action {
	case enums.BookActionAdd:
		inv, err := NewOrderBookDelta(d.InstrumentID, enums.BookActionDelete, d.Order, true, d.Sequence, d.TsEvent, d.TsInit)
		if err != nil {
			return OrderBookDelta{}, false
		}
		return inv, true
	case enums.BookActionDelete:
		inv, err := NewOrderBookDelta(d.InstrumentID, enums.BookActionAdd, prior, true, d.Sequence, d.TsEvent, d.TsInit)
		if err != nil {
			return OrderBookDelta{}, false
		}
		return inv, true
	case enums.BookActionUpdate:
		inv, err := NewOrderBookDelta(d.InstrumentID, enums.BookActionUpdate, prior, true, d.Sequence, d.TsEvent, d.TsInit)
		if err != nil {
			return OrderBookDelta{}, false
		}
		return inv, true
	default:
		return OrderBookDelta{}, false
	}
}
