// Package currency implements Currency as described in spec.md §3.2: an
// interned-by-code value type carrying its ISO 4217 numeric code,
// display name, decimal precision, and FIAT/CRYPTO kind. Currencies are
// registered once in a process-wide registry, mirroring the teacher's
// process-wide config/manager singletons (internal/config/manager.go)
// guarded by sync.RWMutex rather than sync.Once, since new currencies
// can be registered at any time (adapters discovering new crypto
// assets) unlike config which loads once at startup.
package currency

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tradecore-io/tradecore/pkg/coreerrors"
)

// Kind distinguishes fiat legal tender from crypto assets, per spec.md
// §3.2.
type Kind uint8

const (
	// KindUnspecified is the zero value, reserved per spec.md §6.3.
	KindUnspecified Kind = iota
	KindFiat
	KindCrypto
)

func (k Kind) String() string {
	switch k {
	case KindFiat:
		return "FIAT"
	case KindCrypto:
		return "CRYPTO"
	default:
		return "UNSPECIFIED"
	}
}

// KindFromString performs the wire-stable, case-sensitive conversion
// required by spec.md §6.3.
func KindFromString(s string) (Kind, error) {
	switch s {
	case "FIAT":
		return KindFiat, nil
	case "CRYPTO":
		return KindCrypto, nil
	default:
		return KindUnspecified, coreerrors.Newf(coreerrors.ErrUnknownEnumValue, "unknown currency kind %q", s)
	}
}

// Currency is an immutable value type. Two Currencies compare equal iff
// their Code values match, per spec.md §3.2 ("equality is by code").
type Currency struct {
	code        string
	precision   uint8
	numericCode uint16
	name        string
	kind        Kind
}

// Code returns the currency's short code, e.g. "USD" or "BTC".
func (c Currency) Code() string { return c.code }

// Precision returns the number of decimal places Money values in this
// currency are declared at.
func (c Currency) Precision() uint8 { return c.precision }

// NumericCode returns the ISO 4217 numeric code (0 for currencies that
// don't have one, e.g. most crypto assets).
func (c Currency) NumericCode() uint16 { return c.numericCode }

// Name returns the display name, e.g. "United States Dollar".
func (c Currency) Name() string { return c.name }

// Kind returns FIAT or CRYPTO.
func (c Currency) Kind() Kind { return c.kind }

// Equals compares currencies by code only, per spec.md §3.2.
func (c Currency) Equals(other Currency) bool { return c.code == other.code }

// IsZero reports whether c is the unconstructed zero value.
func (c Currency) IsZero() bool { return c.code == "" }

func (c Currency) String() string { return c.code }

const maxPrecision = 9

var (
	registryMu sync.RWMutex
	registry   = map[string]Currency{}
)

// New validates and registers a new Currency. Registering a code a
// second time with identical fields is a no-op; registering the same
// code with different fields returns ErrValidation, matching the
// append-only, never-invalidated registry spec.md §5 requires.
func New(code string, precision uint8, numericCode uint16, name string, kind Kind) (Currency, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Currency{}, coreerrors.New(coreerrors.ErrValidation, "currency code must not be empty")
	}
	if strings.ContainsAny(code, " \t\n\r") {
		return Currency{}, coreerrors.Newf(coreerrors.ErrValidation, "currency code %q must not contain whitespace", code)
	}
	if precision > maxPrecision {
		return Currency{}, coreerrors.Newf(coreerrors.ErrOutOfRange, "currency precision %d exceeds maximum of %d", precision, maxPrecision)
	}

	c := Currency{
		code:        code,
		precision:   precision,
		numericCode: numericCode,
		name:        name,
		kind:        kind,
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if existing, ok := registry[code]; ok {
		if existing != c {
			return Currency{}, coreerrors.Newf(coreerrors.ErrValidation, "currency %q already registered with different attributes", code)
		}
		return existing, nil
	}
	registry[code] = c
	return c, nil
}

// Get looks up a previously registered currency by code.
func Get(code string) (Currency, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	c, ok := registry[code]
	return c, ok
}

// MustGet is like Get but panics if the code is unregistered; intended
// for package-level var initialization of well-known currencies (see
// Major below), never for adapter-supplied input.
func MustGet(code string) Currency {
	c, ok := Get(code)
	if !ok {
		panic(fmt.Sprintf("currency: %q not registered", code))
	}
	return c
}

// registerMajor is a helper for the well-known currencies in Major,
// panicking on error since those arguments are repository constants.
func registerMajor(code string, precision uint8, numericCode uint16, name string, kind Kind) Currency {
	c, err := New(code, precision, numericCode, name, kind)
	if err != nil {
		panic(err)
	}
	return c
}

// Major holds a handful of commonly traded currencies pre-registered at
// package init, analogous to the teacher's AssetType constant table
// (internal/trading/types/asset.go). Adapters are free to register
// additional currencies (e.g. long-tail crypto assets) via New.
var Major = struct {
	USD, EUR, GBP, JPY Currency
	BTC, ETH, USDT     Currency
}{
	USD:  registerMajor("USD", 2, 840, "United States Dollar", KindFiat),
	EUR:  registerMajor("EUR", 2, 978, "Euro", KindFiat),
	GBP:  registerMajor("GBP", 2, 826, "Pound Sterling", KindFiat),
	JPY:  registerMajor("JPY", 0, 392, "Japanese Yen", KindFiat),
	BTC:  registerMajor("BTC", 8, 0, "Bitcoin", KindCrypto),
	ETH:  registerMajor("ETH", 8, 0, "Ethereum", KindCrypto),
	USDT: registerMajor("USDT", 6, 0, "Tether", KindCrypto),
}
