// Package analytics is the read-only strategy-facing view over closed
// Bars and live book depth, per SPEC_FULL.md §11/§12.4. It never feeds
// back into the book engine: every function here consumes already
// -closed Bars or an already-published Snapshot/Depth read.
//
// Grounded on the teacher's
// internal/trading/market_data/timeframe/indicators.go (SMA/EMA/RSI
// wrapping go-talib over a closed-candle slice), generalized from
// float64 OHLCV slices to this core's fixed.Price-backed Bar, plus
// gonum/stat for summary statistics go-talib doesn't provide.
package analytics

import (
	"github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/stat"

	"github.com/tradecore-io/tradecore/pkg/coreerrors"
	"github.com/tradecore-io/tradecore/pkg/enums"
	"github.com/tradecore-io/tradecore/pkg/marketdata"
	"github.com/tradecore-io/tradecore/pkg/orderbook"
)

// closes projects a Bar slice down to its AsFloat64 close prices, the
// explicit analytics escape hatch spec.md §9 calls for ("Resist using
// native floats for storage; they are only an I/O and analytics
// convenience").
func closes(bars []marketdata.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close().AsFloat64()
	}
	return out
}

func highs(bars []marketdata.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.High().AsFloat64()
	}
	return out
}

func lows(bars []marketdata.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Low().AsFloat64()
	}
	return out
}

// SMA computes a simple moving average over bars' closes at period.
func SMA(bars []marketdata.Bar, period int) ([]float64, error) {
	if len(bars) < period {
		return nil, coreerrors.Newf(coreerrors.ErrValidation, "need at least %d bars, got %d", period, len(bars))
	}
	return talib.Sma(closes(bars), period), nil
}

// EMA computes an exponential moving average over bars' closes at
// period.
func EMA(bars []marketdata.Bar, period int) ([]float64, error) {
	if len(bars) < period {
		return nil, coreerrors.Newf(coreerrors.ErrValidation, "need at least %d bars, got %d", period, len(bars))
	}
	return talib.Ema(closes(bars), period), nil
}

// RSI computes the relative strength index over bars' closes at
// period.
func RSI(bars []marketdata.Bar, period int) ([]float64, error) {
	if len(bars) < period+1 {
		return nil, coreerrors.Newf(coreerrors.ErrValidation, "need at least %d bars, got %d", period+1, len(bars))
	}
	return talib.Rsi(closes(bars), period), nil
}

// ATR computes the average true range over bars at period.
func ATR(bars []marketdata.Bar, period int) ([]float64, error) {
	if len(bars) < period+1 {
		return nil, coreerrors.Newf(coreerrors.ErrValidation, "need at least %d bars, got %d", period+1, len(bars))
	}
	return talib.Atr(highs(bars), lows(bars), closes(bars), period), nil
}

// RealizedVolatility returns the sample standard deviation of
// bar-over-bar close simple returns ((c[i]-c[i-1])/c[i-1], skipping a
// zero previous close), using gonum/stat rather than
// go-talib, which has no realized-volatility function.
func RealizedVolatility(bars []marketdata.Bar) (float64, error) {
	if len(bars) < 2 {
		return 0, coreerrors.New(coreerrors.ErrValidation, "need at least 2 bars")
	}
	c := closes(bars)
	returns := make([]float64, 0, len(c)-1)
	for i := 1; i < len(c); i++ {
		if c[i-1] == 0 {
			continue
		}
		returns = append(returns, (c[i]-c[i-1])/c[i-1])
	}
	if len(returns) < 2 {
		return 0, coreerrors.New(coreerrors.ErrValidation, "insufficient non-degenerate returns")
	}
	return stat.StdDev(returns, nil), nil
}

// BookImbalance is SPEC_FULL.md §12.4's depth-weighted microstructure
// signal: the ratio of aggregate bid depth to aggregate bid+ask depth
// over the top levels levels of book. A value above 0.5 indicates more
// resting buy interest than sell interest at the top of book; exactly
// 0.5 is balanced. Returns false only if both sides together hold no
// quantity; with one side empty the result is 0 or 1.
func BookImbalance(book *orderbook.OrderBook, levels int) (float64, bool) {
	bidDepth := book.Depth(enums.OrderSideBuy, levels)
	askDepth := book.Depth(enums.OrderSideSell, levels)
	if len(bidDepth) == 0 && len(askDepth) == 0 {
		return 0, false
	}

	var bidQty, askQty float64
	for _, l := range bidDepth {
		bidQty += l.Quantity.AsFloat64()
	}
	for _, l := range askDepth {
		askQty += l.Quantity.AsFloat64()
	}
	total := bidQty + askQty
	if total == 0 {
		return 0, false
	}
	return bidQty / total, true
}
