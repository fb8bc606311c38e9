// Package identifiers implements the interned, immutable identifier
// types of spec.md §3.3: TraderId, Symbol, Venue, InstrumentId,
// ClientOrderId, VenueOrderId, PositionId, StrategyId, AccountId, and
// TradeId. Construction validates and then interns the backing string
// so that repeated construction of the same value is O(1) and
// equality/hash can be done on the interned string directly, per
// spec.md §4.2.
//
// The interner itself is grounded on the teacher's pervasive
// sync.RWMutex-guarded state (internal/core/matching/order_book.go,
// internal/trading/market_data/timeframe/aggregator.go): a package
// -wide map protected by a RWMutex, append-only for the lifetime of the
// process per spec.md §5.
package identifiers

import (
	"strings"
	"sync"

	"github.com/tradecore-io/tradecore/pkg/coreerrors"
)

const maxIDLength = 36

// interner is a process-wide, append-only string pool. A single
// interner is shared by every identifier type since collisions across
// types are harmless (a Symbol "AAPL" and a StrategyId "AAPL" intern to
// the same backing string but remain distinct Go types).
type interner struct {
	mu     sync.RWMutex
	values map[string]string
}

func newInterner() *interner {
	return &interner{values: make(map[string]string)}
}

// intern returns the canonical backing string for s, inserting it on
// first use. Subsequent calls with an equal string return the same
// backing value, making later comparisons a cheap string compare
// against identically-allocated data (Go does not expose pointer
// identity for strings, so comparison still costs a content compare,
// but no further allocation is needed).
func (in *interner) intern(s string) string {
	in.mu.RLock()
	if v, ok := in.values[s]; ok {
		in.mu.RUnlock()
		return v
	}
	in.mu.RUnlock()

	in.mu.Lock()
	defer in.mu.Unlock()
	if v, ok := in.values[s]; ok {
		return v
	}
	in.values[s] = s
	return s
}

var shared = newInterner()

func validateNonEmpty(kind, s string) error {
	if s == "" {
		return coreerrors.Newf(coreerrors.ErrValidation, "%s must not be empty", kind)
	}
	if strings.ContainsAny(s, " \t\n\r") {
		return coreerrors.Newf(coreerrors.ErrValidation, "%s %q must not contain whitespace", kind, s)
	}
	if len(s) > maxIDLength {
		return coreerrors.Newf(coreerrors.ErrValidation, "%s %q exceeds maximum length %d", kind, s, maxIDLength)
	}
	return nil
}

// simpleID is the common backing representation for every identifier
// type below except InstrumentId, which additionally decomposes into a
// Symbol and a Venue.
type simpleID struct {
	value string
}

func newSimpleID(kind, s string) (simpleID, error) {
	if err := validateNonEmpty(kind, s); err != nil {
		return simpleID{}, err
	}
	return simpleID{value: shared.intern(s)}, nil
}

func (id simpleID) Value() string  { return id.value }
func (id simpleID) String() string { return id.value }
func (id simpleID) IsZero() bool   { return id.value == "" }

// TraderId identifies a trader/user account that owns strategies and
// positions.
type TraderId struct{ simpleID }

// NewTraderId validates and interns s.
func NewTraderId(s string) (TraderId, error) {
	id, err := newSimpleID("TraderId", s)
	return TraderId{id}, err
}

// Equals compares two TraderIds by their interned value.
func (id TraderId) Equals(o TraderId) bool { return id.value == o.value }

// Symbol is the venue-local instrument ticker, e.g. "AAPL" or "BTC-USD".
type Symbol struct{ simpleID }

// NewSymbol validates and interns s. A Symbol must not itself contain a
// '.' since InstrumentId uses '.' to separate Symbol from Venue.
func NewSymbol(s string) (Symbol, error) {
	if strings.Contains(s, ".") {
		return Symbol{}, coreerrors.Newf(coreerrors.ErrValidation, "symbol %q must not contain '.'", s)
	}
	id, err := newSimpleID("Symbol", s)
	return Symbol{id}, err
}

// Equals compares two Symbols by their interned value.
func (id Symbol) Equals(o Symbol) bool { return id.value == o.value }

// Venue identifies a trading venue, e.g. "NASDAQ" or "BINANCE".
type Venue struct{ simpleID }

// NewVenue validates and interns s.
func NewVenue(s string) (Venue, error) {
	if strings.Contains(s, ".") {
		return Venue{}, coreerrors.Newf(coreerrors.ErrValidation, "venue %q must not contain '.'", s)
	}
	id, err := newSimpleID("Venue", s)
	return Venue{id}, err
}

// Equals compares two Venues by their interned value.
func (id Venue) Equals(o Venue) bool { return id.value == o.value }

// ClientOrderId identifies an order as assigned by the client/strategy.
type ClientOrderId struct{ simpleID }

// NewClientOrderId validates and interns s.
func NewClientOrderId(s string) (ClientOrderId, error) {
	id, err := newSimpleID("ClientOrderId", s)
	return ClientOrderId{id}, err
}

// Equals compares two ClientOrderIds by their interned value.
func (id ClientOrderId) Equals(o ClientOrderId) bool { return id.value == o.value }

// VenueOrderId identifies an order as assigned by the venue.
type VenueOrderId struct{ simpleID }

// NewVenueOrderId validates and interns s.
func NewVenueOrderId(s string) (VenueOrderId, error) {
	id, err := newSimpleID("VenueOrderId", s)
	return VenueOrderId{id}, err
}

// Equals compares two VenueOrderIds by their interned value.
func (id VenueOrderId) Equals(o VenueOrderId) bool { return id.value == o.value }

// PositionId identifies an open position.
type PositionId struct{ simpleID }

// NewPositionId validates and interns s.
func NewPositionId(s string) (PositionId, error) {
	id, err := newSimpleID("PositionId", s)
	return PositionId{id}, err
}

// Equals compares two PositionIds by their interned value.
func (id PositionId) Equals(o PositionId) bool { return id.value == o.value }

// StrategyId identifies a running strategy instance.
type StrategyId struct{ simpleID }

// NewStrategyId validates and interns s.
func NewStrategyId(s string) (StrategyId, error) {
	id, err := newSimpleID("StrategyId", s)
	return StrategyId{id}, err
}

// Equals compares two StrategyIds by their interned value.
func (id StrategyId) Equals(o StrategyId) bool { return id.value == o.value }

// AccountId identifies a trading account.
type AccountId struct{ simpleID }

// NewAccountId validates and interns s.
func NewAccountId(s string) (AccountId, error) {
	id, err := newSimpleID("AccountId", s)
	return AccountId{id}, err
}

// Equals compares two AccountIds by their interned value.
func (id AccountId) Equals(o AccountId) bool { return id.value == o.value }

// TradeId identifies an executed trade (a fill).
type TradeId struct{ simpleID }

// NewTradeId validates and interns s.
func NewTradeId(s string) (TradeId, error) {
	id, err := newSimpleID("TradeId", s)
	return TradeId{id}, err
}

// Equals compares two TradeIds by their interned value.
func (id TradeId) Equals(o TradeId) bool { return id.value == o.value }

// InstrumentId is Symbol + Venue joined by exactly one '.', per
// spec.md §3.3/§4.2.
type InstrumentId struct {
	symbol Symbol
	venue  Venue
	value  string
}

// NewInstrumentId constructs an InstrumentId from its parts.
func NewInstrumentId(symbol Symbol, venue Venue) (InstrumentId, error) {
	if symbol.IsZero() {
		return InstrumentId{}, coreerrors.New(coreerrors.ErrValidation, "instrument id requires a non-zero symbol")
	}
	if venue.IsZero() {
		return InstrumentId{}, coreerrors.New(coreerrors.ErrValidation, "instrument id requires a non-zero venue")
	}
	value := shared.intern(symbol.Value() + "." + venue.Value())
	return InstrumentId{symbol: symbol, venue: venue, value: value}, nil
}

// ParseInstrumentId parses "SYMBOL.VENUE", rejecting any input without
// exactly one '.', per spec.md §3.3.
func ParseInstrumentId(s string) (InstrumentId, error) {
	if err := validateNonEmpty("InstrumentId", s); err != nil {
		return InstrumentId{}, err
	}
	parts := strings.Split(s, ".")
	if len(parts) != 2 {
		return InstrumentId{}, coreerrors.Newf(coreerrors.ErrValidation,
			"instrument id %q must contain exactly one '.'", s)
	}
	symbol, err := NewSymbol(parts[0])
	if err != nil {
		return InstrumentId{}, err
	}
	venue, err := NewVenue(parts[1])
	if err != nil {
		return InstrumentId{}, err
	}
	return NewInstrumentId(symbol, venue)
}

// Symbol returns the instrument's venue-local symbol.
func (i InstrumentId) Symbol() Symbol { return i.symbol }

// Venue returns the instrument's venue.
func (i InstrumentId) Venue() Venue { return i.venue }

// Value returns the canonical "SYMBOL.VENUE" string.
func (i InstrumentId) Value() string { return i.value }

func (i InstrumentId) String() string { return i.value }

// IsZero reports whether i is the unconstructed zero value.
func (i InstrumentId) IsZero() bool { return i.value == "" }

// Equals compares instrument ids by their interned value.
func (i InstrumentId) Equals(o InstrumentId) bool { return i.value == o.value }
