// Package wire implements the flat columnar projections of spec.md
// §6.1: stable-column, stable-type structs suitable for persistence,
// tagged with a semver schema version so a column layout change is a
// detectable breaking revision rather than a silent format drift.
//
// Grounded on the teacher's internal/storage DTO structs (now removed
// with the rest of the persistence layer) for the flat-struct shape,
// and on the pack's use of github.com/Masterminds/semver/v3 for schema
// versioning.
package wire

import (
	"github.com/Masterminds/semver/v3"

	"github.com/tradecore-io/tradecore/pkg/marketdata"
)

// SchemaVersion is the current wire schema version for every
// projection in this package. A major bump means a column was
// removed, renamed, or retyped; adding a column bumps minor.
var SchemaVersion = semver.MustParse("1.0.0")

// QuoteTickRow is QuoteTick's flat projection, per spec.md §6.1.
type QuoteTickRow struct {
	SchemaVersion string
	InstrumentID  string
	BidRaw        int64
	AskRaw        int64
	BidPrec       uint8
	AskPrec       uint8
	BidSizeRaw    uint64
	AskSizeRaw    uint64
	BszPrec       uint8
	AszPrec       uint8
	TsEvent       uint64
	TsInit        uint64
}

// ProjectQuoteTick flattens q into its wire row.
func ProjectQuoteTick(q marketdata.QuoteTick) QuoteTickRow {
	return QuoteTickRow{
		SchemaVersion: SchemaVersion.String(),
		InstrumentID:  q.InstrumentID().Value(),
		BidRaw:        q.Bid().Raw(),
		AskRaw:        q.Ask().Raw(),
		BidPrec:       q.Bid().Precision(),
		AskPrec:       q.Ask().Precision(),
		BidSizeRaw:    q.BidSize().Raw(),
		AskSizeRaw:    q.AskSize().Raw(),
		BszPrec:       q.BidSize().Precision(),
		AszPrec:       q.AskSize().Precision(),
		TsEvent:       q.TsEvent(),
		TsInit:        q.TsInit(),
	}
}

// TradeTickRow is TradeTick's flat projection.
type TradeTickRow struct {
	SchemaVersion string
	InstrumentID  string
	PriceRaw      int64
	PricePrec     uint8
	SizeRaw       uint64
	SizePrec      uint8
	Aggressor     string
	TradeID       string
	TsEvent       uint64
	TsInit        uint64
}

// ProjectTradeTick flattens t into its wire row.
func ProjectTradeTick(t marketdata.TradeTick) TradeTickRow {
	return TradeTickRow{
		SchemaVersion: SchemaVersion.String(),
		InstrumentID:  t.InstrumentID().Value(),
		PriceRaw:      t.Price().Raw(),
		PricePrec:     t.Price().Precision(),
		SizeRaw:       t.Size().Raw(),
		SizePrec:      t.Size().Precision(),
		Aggressor:     t.AggressorSide().String(),
		TradeID:       t.TradeID().Value(),
		TsEvent:       t.TsEvent(),
		TsInit:        t.TsInit(),
	}
}

// BarRow is Bar's flat projection.
type BarRow struct {
	SchemaVersion string
	BarType       string
	OpenRaw       int64
	HighRaw       int64
	LowRaw        int64
	CloseRaw      int64
	VolumeRaw     uint64
	TsEvent       uint64
	TsInit        uint64
}

// ProjectBar flattens b into its wire row.
func ProjectBar(b marketdata.Bar) BarRow {
	return BarRow{
		SchemaVersion: SchemaVersion.String(),
		BarType:       b.BarType().String(),
		OpenRaw:       b.Open().Raw(),
		HighRaw:       b.High().Raw(),
		LowRaw:        b.Low().Raw(),
		CloseRaw:      b.Close().Raw(),
		VolumeRaw:     b.Volume().Raw(),
		TsEvent:       b.TsEvent(),
		TsInit:        b.TsInit(),
	}
}

// OrderBookDeltaRow is OrderBookDelta's flat projection.
type OrderBookDeltaRow struct {
	SchemaVersion string
	InstrumentID  string
	Action        string
	OrderID       uint64
	Side          string
	PriceRaw      int64
	PricePrec     uint8
	SizeRaw       uint64
	SizePrec      uint8
	HasOrder      bool
	Sequence      uint64
	TsEvent       uint64
	TsInit        uint64
}

// ProjectOrderBookDelta flattens d into its wire row.
func ProjectOrderBookDelta(d marketdata.OrderBookDelta) OrderBookDeltaRow {
	return OrderBookDeltaRow{
		SchemaVersion: SchemaVersion.String(),
		InstrumentID:  d.InstrumentID.Value(),
		Action:        d.Action.String(),
		OrderID:       d.Order.OrderID,
		Side:          d.Order.Side.String(),
		PriceRaw:      d.Order.Price.Raw(),
		PricePrec:     d.Order.Price.Precision(),
		SizeRaw:       d.Order.Size.Raw(),
		SizePrec:      d.Order.Size.Precision(),
		HasOrder:      d.HasOrder,
		Sequence:      d.Sequence,
		TsEvent:       d.TsEvent,
		TsInit:        d.TsInit,
	}
}
