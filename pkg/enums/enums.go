// Package enums implements the wire-stable enumerations of spec.md
// §3.4/§4.3/§6.3: every enum has a stable string representation and a
// stable, non-negative integer discriminant, with 0 reserved for
// NONE/UNSPECIFIED where applicable. String-to-enum conversion is
// case-sensitive and exact; an unrecognized string fails with
// coreerrors.ErrUnknownEnumValue, grounded on the teacher's
// pkg/types/parsers.go ParseOrderSide/ParseOrderType pattern (string
// switch plus a Must variant) generalized across every enum this core
// needs rather than only order side/type.
package enums

import "github.com/tradecore-io/tradecore/pkg/coreerrors"

// OrderSide is the side of a book order, per spec.md §3.4.
type OrderSide uint8

const (
	OrderSideNone OrderSide = iota
	OrderSideBuy
	OrderSideSell
)

func (s OrderSide) String() string {
	switch s {
	case OrderSideBuy:
		return "BUY"
	case OrderSideSell:
		return "SELL"
	default:
		return "NONE"
	}
}

// Opposite returns the other side; OrderSideNone maps to itself.
func (s OrderSide) Opposite() OrderSide {
	switch s {
	case OrderSideBuy:
		return OrderSideSell
	case OrderSideSell:
		return OrderSideBuy
	default:
		return OrderSideNone
	}
}

// OrderSideFromString performs the case-sensitive conversion required
// by spec.md §6.3.
func OrderSideFromString(s string) (OrderSide, error) {
	switch s {
	case "NONE":
		return OrderSideNone, nil
	case "BUY":
		return OrderSideBuy, nil
	case "SELL":
		return OrderSideSell, nil
	default:
		return OrderSideNone, coreerrors.Newf(coreerrors.ErrUnknownEnumValue, "unknown order side %q", s)
	}
}

// AggressorSide identifies which side crossed the spread to execute a
// trade, per spec.md §3.4.
type AggressorSide uint8

const (
	AggressorSideNone AggressorSide = iota
	AggressorSideBuyer
	AggressorSideSeller
)

func (a AggressorSide) String() string {
	switch a {
	case AggressorSideBuyer:
		return "BUYER"
	case AggressorSideSeller:
		return "SELLER"
	default:
		return "NONE"
	}
}

// AggressorSideFromString performs the case-sensitive conversion.
func AggressorSideFromString(s string) (AggressorSide, error) {
	switch s {
	case "NONE":
		return AggressorSideNone, nil
	case "BUYER":
		return AggressorSideBuyer, nil
	case "SELLER":
		return AggressorSideSeller, nil
	default:
		return AggressorSideNone, coreerrors.Newf(coreerrors.ErrUnknownEnumValue, "unknown aggressor side %q", s)
	}
}

// BookAction is the action an OrderBookDelta applies, per spec.md §3.4.
type BookAction uint8

const (
	BookActionNone BookAction = iota
	BookActionAdd
	BookActionUpdate
	BookActionDelete
	BookActionClear
)

func (a BookAction) String() string {
	switch a {
	case BookActionAdd:
		return "ADD"
	case BookActionUpdate:
		return "UPDATE"
	case BookActionDelete:
		return "DELETE"
	case BookActionClear:
		return "CLEAR"
	default:
		return "NONE"
	}
}

// BookActionFromString performs the case-sensitive conversion.
func BookActionFromString(s string) (BookAction, error) {
	switch s {
	case "NONE":
		return BookActionNone, nil
	case "ADD":
		return BookActionAdd, nil
	case "UPDATE":
		return BookActionUpdate, nil
	case "DELETE":
		return BookActionDelete, nil
	case "CLEAR":
		return BookActionClear, nil
	default:
		return BookActionNone, coreerrors.Newf(coreerrors.ErrUnknownEnumValue, "unknown book action %q", s)
	}
}

// BookType is the order book's depth semantics, per spec.md §3.5/§4.3.2.
type BookType uint8

const (
	BookTypeNone BookType = iota
	BookTypeL1TBBO
	BookTypeL2MBP
	BookTypeL3MBO
)

func (t BookType) String() string {
	switch t {
	case BookTypeL1TBBO:
		return "L1_TBBO"
	case BookTypeL2MBP:
		return "L2_MBP"
	case BookTypeL3MBO:
		return "L3_MBO"
	default:
		return "NONE"
	}
}

// BookTypeFromString performs the case-sensitive conversion.
func BookTypeFromString(s string) (BookType, error) {
	switch s {
	case "NONE":
		return BookTypeNone, nil
	case "L1_TBBO":
		return BookTypeL1TBBO, nil
	case "L2_MBP":
		return BookTypeL2MBP, nil
	case "L3_MBO":
		return BookTypeL3MBO, nil
	default:
		return BookTypeNone, coreerrors.Newf(coreerrors.ErrUnknownEnumValue, "unknown book type %q", s)
	}
}

// BarAggregation is the BarSpecification's step-counting dimension, per
// spec.md §3.4.
type BarAggregation uint8

const (
	BarAggregationNone BarAggregation = iota
	BarAggregationTick
	BarAggregationVolume
	BarAggregationValue
	BarAggregationSecond
	BarAggregationMinute
	BarAggregationHour
	BarAggregationDay
)

func (a BarAggregation) String() string {
	switch a {
	case BarAggregationTick:
		return "TICK"
	case BarAggregationVolume:
		return "VOLUME"
	case BarAggregationValue:
		return "VALUE"
	case BarAggregationSecond:
		return "SECOND"
	case BarAggregationMinute:
		return "MINUTE"
	case BarAggregationHour:
		return "HOUR"
	case BarAggregationDay:
		return "DAY"
	default:
		return "NONE"
	}
}

// IsTimeBased reports whether the aggregation closes bars on a wall
// -clock boundary rather than a tick/volume/value counter.
func (a BarAggregation) IsTimeBased() bool {
	switch a {
	case BarAggregationSecond, BarAggregationMinute, BarAggregationHour, BarAggregationDay:
		return true
	default:
		return false
	}
}

// BarAggregationFromString performs the case-sensitive conversion.
func BarAggregationFromString(s string) (BarAggregation, error) {
	switch s {
	case "NONE":
		return BarAggregationNone, nil
	case "TICK":
		return BarAggregationTick, nil
	case "VOLUME":
		return BarAggregationVolume, nil
	case "VALUE":
		return BarAggregationValue, nil
	case "SECOND":
		return BarAggregationSecond, nil
	case "MINUTE":
		return BarAggregationMinute, nil
	case "HOUR":
		return BarAggregationHour, nil
	case "DAY":
		return BarAggregationDay, nil
	default:
		return BarAggregationNone, coreerrors.Newf(coreerrors.ErrUnknownEnumValue, "unknown bar aggregation %q", s)
	}
}

// PriceType selects which tick price a Bar is built from, per spec.md
// §3.4.
type PriceType uint8

const (
	PriceTypeNone PriceType = iota
	PriceTypeBid
	PriceTypeAsk
	PriceTypeMid
	PriceTypeLast
)

func (p PriceType) String() string {
	switch p {
	case PriceTypeBid:
		return "BID"
	case PriceTypeAsk:
		return "ASK"
	case PriceTypeMid:
		return "MID"
	case PriceTypeLast:
		return "LAST"
	default:
		return "NONE"
	}
}

// PriceTypeFromString performs the case-sensitive conversion.
func PriceTypeFromString(s string) (PriceType, error) {
	switch s {
	case "NONE":
		return PriceTypeNone, nil
	case "BID":
		return PriceTypeBid, nil
	case "ASK":
		return PriceTypeAsk, nil
	case "MID":
		return PriceTypeMid, nil
	case "LAST":
		return PriceTypeLast, nil
	default:
		return PriceTypeNone, coreerrors.Newf(coreerrors.ErrUnknownEnumValue, "unknown price type %q", s)
	}
}

// BarSource distinguishes bars synthesized internally from bars
// received from a venue, per spec.md §3.4/§9 ("Bar source flag").
type BarSource uint8

const (
	BarSourceNone BarSource = iota
	BarSourceInternal
	BarSourceExternal
)

func (s BarSource) String() string {
	switch s {
	case BarSourceInternal:
		return "INTERNAL"
	case BarSourceExternal:
		return "EXTERNAL"
	default:
		return "NONE"
	}
}

// BarSourceFromString performs the case-sensitive conversion.
func BarSourceFromString(s string) (BarSource, error) {
	switch s {
	case "NONE":
		return BarSourceNone, nil
	case "INTERNAL":
		return BarSourceInternal, nil
	case "EXTERNAL":
		return BarSourceExternal, nil
	default:
		return BarSourceNone, coreerrors.Newf(coreerrors.ErrUnknownEnumValue, "unknown bar source %q", s)
	}
}
