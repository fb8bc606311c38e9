// Package barspec implements the stateful bar aggregator of spec.md
// §4.4: one Aggregator per BarType consumes ticks (via Update) and
// emits closed Bars once their TIME/TICK/VOLUME/VALUE boundary is
// reached.
//
// Grounded on the teacher's
// internal/trading/market_data/timeframe/aggregator.go, which keeps
// one in-progress candle per timeframe behind a mutex and flushes it
// on a boundary tick; generalized here from timeframe-only closing to
// the four BarAggregation kinds spec.md §4.4 requires, and from
// float64 OHLCV to fixed-precision Price/Quantity.
package barspec

import (
	"sync"

	"github.com/tradecore-io/tradecore/pkg/coreerrors"
	"github.com/tradecore-io/tradecore/pkg/enums"
	"github.com/tradecore-io/tradecore/pkg/fixed"
	"github.com/tradecore-io/tradecore/pkg/marketdata"
)

// Tick is the minimal per-event input an Aggregator consumes: a price,
// a size, and the event's ts_event, abstracting over QuoteTick/
// TradeTick so the aggregator does not need to know which price_type
// produced it (the caller selects price/size per BarSpecification's
// PriceType before calling Update).
type Tick struct {
	Price   fixed.Price
	Size    fixed.Quantity
	TsEvent uint64
}

// Aggregator accumulates ticks into Bars for a single BarType, per
// spec.md §4.4. Not safe for concurrent Update calls from multiple
// goroutines without external synchronization beyond the internal
// mutex guarding its in-progress candle state.
type Aggregator struct {
	mu sync.Mutex

	barType  marketdata.BarType
	step     uint64
	agg      enums.BarAggregation
	nextStep uint64 // running TICK/VOLUME/VALUE counter boundary

	open       fixed.Price
	high       fixed.Price
	low        fixed.Price
	closePrice fixed.Price
	volume     fixed.Quantity
	counter    uint64 // ticks seen / volume accumulated / value accumulated so far this bar
	tsEvent    uint64
	started    bool

	closeNs uint64 // TIME aggregation: the boundary the bar closes at
}

// NewAggregator constructs an Aggregator for barType. barType.Source
// must be BarSourceInternal, per spec.md §9 ("Aggregators must never
// emit EXTERNAL bars").
func NewAggregator(barType marketdata.BarType) *Aggregator {
	return &Aggregator{
		barType: barType,
		step:    barType.Spec.Step,
		agg:     barType.Spec.Aggregation,
	}
}

// BarType returns the aggregator's bar type.
func (a *Aggregator) BarType() marketdata.BarType { return a.barType }

func timeStepNanos(agg enums.BarAggregation) uint64 {
	const nsPerSecond = uint64(1_000_000_000)
	switch agg {
	case enums.BarAggregationSecond:
		return nsPerSecond
	case enums.BarAggregationMinute:
		return 60 * nsPerSecond
	case enums.BarAggregationHour:
		return 3600 * nsPerSecond
	case enums.BarAggregationDay:
		return 86400 * nsPerSecond
	default:
		return 0
	}
}

func (a *Aggregator) openNewBar(tick Tick) {
	a.open = tick.Price
	a.high = tick.Price
	a.low = tick.Price
	a.closePrice = tick.Price
	a.volume = fixed.Quantity{}
	a.counter = 0
	a.started = true
	if a.agg.IsTimeBased() {
		stepNs := timeStepNanos(a.agg) * a.step
		if stepNs == 0 {
			stepNs = timeStepNanos(a.agg)
		}
		boundary := (tick.TsEvent/stepNs + 1) * stepNs
		a.closeNs = boundary
	}
}

func (a *Aggregator) accumulate(tick Tick) {
	if tick.Price.GreaterThan(a.high) {
		a.high = tick.Price
	}
	if a.low.GreaterThan(tick.Price) {
		a.low = tick.Price
	}
	a.closePrice = tick.Price
	a.volume, _ = a.volume.Add(tick.Size)
	a.tsEvent = tick.TsEvent
}

// closedBar materializes the in-progress candle as a Bar with
// ts_event = closeNs for time-based aggregation, or the last tick's
// ts_event otherwise, per spec.md §4.4.
func (a *Aggregator) closedBar(tsInit uint64) (marketdata.Bar, error) {
	tsEvent := a.tsEvent
	if a.agg.IsTimeBased() {
		tsEvent = a.closeNs
	}
	return marketdata.NewBar(a.barType, a.open, a.high, a.low, a.closePrice, a.volume, tsEvent, tsInit)
}

// Update feeds one tick into the aggregator. tsInit is the emit
// wall-clock time stamped onto any Bar this call closes, per spec.md
// §4.4 ("ts_init = the emit wall-clock time"). It returns the closed
// Bar and true if this tick closed a bar, and starts the next bar
// (seeding it with this tick when the close was a TIME boundary
// crossing, since that tick belongs to the new bar, not the one it
// closed).
func (a *Aggregator) Update(tick Tick, tsInit uint64) (marketdata.Bar, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.started {
		a.openNewBar(tick)
	}

	if a.agg.IsTimeBased() {
		if tick.TsEvent >= a.closeNs {
			bar, err := a.closedBar(tsInit)
			a.openNewBar(tick)
			a.accumulate(tick)
			return bar, err == nil, err
		}
		a.accumulate(tick)
		return marketdata.Bar{}, false, nil
	}

	// TICK/VOLUME/VALUE: accumulate first, then check whether this tick
	// crossed the step boundary.
	a.accumulate(tick)
	switch a.agg {
	case enums.BarAggregationTick:
		a.counter++
	case enums.BarAggregationVolume:
		a.counter = a.volume.Raw()
	case enums.BarAggregationValue:
		amt, err := tick.Price.MulQuantity(tick.Size)
		// RawAmount.Raw() is signed; price and size are both
		// non-negative for a resting order so the product cannot be
		// negative here, but guard against wrapping the uint64 counter
		// if that invariant is ever violated upstream.
		if err == nil && amt.Raw() >= 0 {
			// Accumulate value at precision-9 raw scale; overflow here
			// would mean a single bar's traded value exceeded the
			// representable range, which the engine treats the same as
			// any other aggregation overflow (spec.md §4.3.6): the bar
			// is abandoned rather than silently truncated.
			sum := a.counter + uint64(amt.Raw())
			if sum < a.counter {
				a.started = false
				return marketdata.Bar{}, false, coreerrors.New(coreerrors.ErrOverflow, "bar value accumulation overflow")
			}
			a.counter = sum
		}
	}

	if a.counter < a.step*stepUnit(a.agg) {
		return marketdata.Bar{}, false, nil
	}

	bar, err := a.closedBar(tsInit)
	a.started = false
	return bar, err == nil, err
}

// stepUnit scales the configured step for aggregations whose counter
// is measured in raw fixed-point units (VOLUME/VALUE) rather than a
// plain tick count.
func stepUnit(agg enums.BarAggregation) uint64 {
	switch agg {
	case enums.BarAggregationVolume, enums.BarAggregationValue:
		return uint64(fixed.FixedScale)
	default:
		return 1
	}
}
