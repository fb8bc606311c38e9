// Package fixed implements the fixed-precision numeric primitives of
// spec.md §3.1/§4.1: Price, Quantity, and Money, all backed by a scaled
// int64/uint64 at a shared scalar of 10^9 (FixedScale). Construction
// from a decimal string or a float plus explicit precision is exact:
// the string path follows §4.1's described algorithm directly, and the
// float path uses github.com/shopspring/decimal's banker's rounding
// (RoundBank) to implement the required round-half-to-even rule,
// grounded on the same library's use in the pack's polymarket-mm and
// gocryptotrader repos for decimal-safe money handling.
package fixed

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tradecore-io/tradecore/pkg/coreerrors"
	"github.com/tradecore-io/tradecore/pkg/currency"
)

// FixedScaleExponent is the number of decimal places every raw scaled
// integer is stored at, per spec.md §3.1.
const FixedScaleExponent = 9

// FixedScale is 10^FixedScaleExponent.
const FixedScale int64 = 1_000_000_000

// MaxPrecision is the highest declarable precision field value.
const MaxPrecision uint8 = 9

// Pre-scale absolute value limits from spec.md §3.1's table, i.e. the
// largest magnitude representable before multiplying by FixedScale.
const (
	maxPricePreScale    int64  = 9_223_372_036
	maxQuantityPreScale uint64 = 18_446_744_073
	maxMoneyPreScale    int64  = 9_223_372_036
)

var (
	maxPriceRaw    = maxPricePreScale * FixedScale
	maxQuantityRaw = maxQuantityPreScale * uint64(FixedScale)
	maxMoneyRaw    = maxMoneyPreScale * FixedScale
)

// fractionalDigits returns the number of fractional digits in a decimal
// literal after stripping trailing zeros, matching spec.md §4.1's
// "declared precision must match the fractional digit count after
// stripping trailing zeros up to 9".
func fractionalDigits(s string) int {
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return 0
	}
	frac := strings.TrimRight(s[dot+1:], "0")
	return len(frac)
}

// ---------------------------------------------------------------------
// Price
// ---------------------------------------------------------------------

// Price is a signed fixed-precision decimal, per spec.md §3.1.
type Price struct {
	raw       int64
	precision uint8
}

// ParsePrice parses a canonical decimal string into a Price. Precision
// is inferred from the number of significant fractional digits.
func ParsePrice(s string) (Price, error) {
	raw, precision, err := parseSigned(s, maxPriceRaw)
	if err != nil {
		return Price{}, err
	}
	return Price{raw: raw, precision: precision}, nil
}

// NewPriceFromRaw wraps a pre-scaled raw integer with an explicit
// precision, e.g. to rewrap the result of Price.MulQuantity.
func NewPriceFromRaw(raw int64, precision uint8) (Price, error) {
	if precision > MaxPrecision {
		return Price{}, coreerrors.Newf(coreerrors.ErrOutOfRange, "precision %d exceeds maximum %d", precision, MaxPrecision)
	}
	if raw > maxPriceRaw || raw < -maxPriceRaw {
		return Price{}, coreerrors.Newf(coreerrors.ErrOutOfRange, "price raw %d exceeds representable range", raw)
	}
	return Price{raw: raw, precision: precision}, nil
}

// NewPriceFromFloat constructs a Price from a float64, rounding
// half-to-even at the given precision.
func NewPriceFromFloat(f float64, precision uint8) (Price, error) {
	raw, err := roundToRaw(f, precision, maxPriceRaw)
	if err != nil {
		return Price{}, err
	}
	return Price{raw: raw, precision: precision}, nil
}

// Raw returns the underlying scaled integer (scale 10^9).
func (p Price) Raw() int64 { return p.raw }

// Precision returns the declared number of significant decimal places.
func (p Price) Precision() uint8 { return p.precision }

// IsZero reports whether the price's raw value is zero.
func (p Price) IsZero() bool { return p.raw == 0 }

// AsFloat64 is the explicit analytics projection called out in
// spec.md §4.1; callers must come back through a constructor rather
// than doing arithmetic on the result.
func (p Price) AsFloat64() float64 {
	return float64(p.raw) / float64(FixedScale)
}

// String renders the price at its declared precision.
func (p Price) String() string {
	return formatRaw(p.raw, p.precision)
}

// Equals compares two prices by raw scaled integer. Since every Price
// shares the single FixedScale regardless of its declared precision
// metadata, no rescaling step is needed to compare them — see
// DESIGN.md's note on the §4.1 "rescale by precision" language.
func (p Price) Equals(other Price) bool { return p.raw == other.raw }

// Compare returns -1, 0, or 1 as p is less than, equal to, or greater
// than other.
func (p Price) Compare(other Price) int {
	switch {
	case p.raw < other.raw:
		return -1
	case p.raw > other.raw:
		return 1
	default:
		return 0
	}
}

func (p Price) LessThan(other Price) bool    { return p.raw < other.raw }
func (p Price) GreaterThan(other Price) bool { return p.raw > other.raw }

// Add returns p+other at precision max(p.precision, other.precision),
// per spec.md §4.1.
func (p Price) Add(other Price) (Price, error) {
	sum := p.raw + other.raw
	if overflowsAdd(p.raw, other.raw, sum) || sum > maxPriceRaw || sum < -maxPriceRaw {
		return Price{}, coreerrors.New(coreerrors.ErrOverflow, "price addition overflow")
	}
	return Price{raw: sum, precision: maxU8(p.precision, other.precision)}, nil
}

// Sub returns p-other at precision max(p.precision, other.precision).
func (p Price) Sub(other Price) (Price, error) {
	diff := p.raw - other.raw
	if overflowsSub(p.raw, other.raw, diff) || diff > maxPriceRaw || diff < -maxPriceRaw {
		return Price{}, coreerrors.New(coreerrors.ErrOverflow, "price subtraction overflow")
	}
	return Price{raw: diff, precision: maxU8(p.precision, other.precision)}, nil
}

// RawAmount is an unwrapped scaled-integer product awaiting a currency,
// per spec.md §4.1 ("otherwise → a scaled integer with precision 9 and
// a requirement to re-wrap").
type RawAmount struct {
	raw int64
}

// Raw returns the underlying precision-9 scaled integer.
func (r RawAmount) Raw() int64 { return r.raw }

// WithCurrency wraps the raw amount into a Money value.
func (r RawAmount) WithCurrency(cur currency.Currency) (Money, error) {
	return NewMoneyFromRaw(r.raw, cur)
}

// MulQuantity multiplies a Price by a Quantity. Without a currency the
// result is an unwrapped RawAmount at precision 9; call WithCurrency to
// produce a Money value, or use MulQuantityMoney directly.
func (p Price) MulQuantity(q Quantity) (RawAmount, error) {
	raw, err := mulRawScaled(p.raw, int64(q.raw))
	if err != nil {
		return RawAmount{}, err
	}
	return RawAmount{raw: raw}, nil
}

// MulQuantityMoney is Price.MulQuantity immediately wrapped in Money
// for the supplied currency.
func (p Price) MulQuantityMoney(q Quantity, cur currency.Currency) (Money, error) {
	amt, err := p.MulQuantity(q)
	if err != nil {
		return Money{}, err
	}
	return amt.WithCurrency(cur)
}

// ---------------------------------------------------------------------
// Quantity
// ---------------------------------------------------------------------

// Quantity is an unsigned fixed-precision decimal, per spec.md §3.1.
type Quantity struct {
	raw       uint64
	precision uint8
}

// ParseQuantity parses a canonical non-negative decimal string into a
// Quantity.
func ParseQuantity(s string) (Quantity, error) {
	raw, precision, err := parseUnsigned(s, maxQuantityRaw)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{raw: raw, precision: precision}, nil
}

// NewQuantityFromRaw wraps a pre-scaled raw integer with an explicit
// precision.
func NewQuantityFromRaw(raw uint64, precision uint8) (Quantity, error) {
	if precision > MaxPrecision {
		return Quantity{}, coreerrors.Newf(coreerrors.ErrOutOfRange, "precision %d exceeds maximum %d", precision, MaxPrecision)
	}
	if raw > maxQuantityRaw {
		return Quantity{}, coreerrors.Newf(coreerrors.ErrOutOfRange, "quantity raw %d exceeds representable range", raw)
	}
	return Quantity{raw: raw, precision: precision}, nil
}

// NewQuantityFromFloat constructs a Quantity from a float64, rounding
// half-to-even at the given precision.
func NewQuantityFromFloat(f float64, precision uint8) (Quantity, error) {
	if f < 0 {
		return Quantity{}, coreerrors.New(coreerrors.ErrOutOfRange, "quantity must not be negative")
	}
	raw, err := roundToRawUnsigned(f, precision, maxQuantityRaw)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{raw: raw, precision: precision}, nil
}

// Raw returns the underlying scaled integer (scale 10^9).
func (q Quantity) Raw() uint64 { return q.raw }

// Precision returns the declared number of significant decimal places.
func (q Quantity) Precision() uint8 { return q.precision }

// IsZero reports whether the quantity's raw value is zero.
func (q Quantity) IsZero() bool { return q.raw == 0 }

// AsFloat64 is the explicit analytics projection.
func (q Quantity) AsFloat64() float64 {
	return float64(q.raw) / float64(FixedScale)
}

func (q Quantity) String() string {
	return formatRawUnsigned(q.raw, q.precision)
}

// Equals compares two quantities by raw scaled integer.
func (q Quantity) Equals(other Quantity) bool { return q.raw == other.raw }

// Compare returns -1, 0, or 1.
func (q Quantity) Compare(other Quantity) int {
	switch {
	case q.raw < other.raw:
		return -1
	case q.raw > other.raw:
		return 1
	default:
		return 0
	}
}

// Add returns q+other at precision max(q.precision, other.precision).
func (q Quantity) Add(other Quantity) (Quantity, error) {
	sum := q.raw + other.raw
	if sum < q.raw || sum > maxQuantityRaw {
		return Quantity{}, coreerrors.New(coreerrors.ErrOverflow, "quantity addition overflow")
	}
	return Quantity{raw: sum, precision: maxU8(q.precision, other.precision)}, nil
}

// Sub returns q-other. Underflowing below zero is reported as
// ErrOutOfRange since Quantity is unsigned.
func (q Quantity) Sub(other Quantity) (Quantity, error) {
	if other.raw > q.raw {
		return Quantity{}, coreerrors.New(coreerrors.ErrOutOfRange, "quantity subtraction would be negative")
	}
	return Quantity{raw: q.raw - other.raw, precision: maxU8(q.precision, other.precision)}, nil
}

// ---------------------------------------------------------------------
// Money
// ---------------------------------------------------------------------

// Money is a signed fixed-precision decimal tagged with a Currency, per
// spec.md §3.1/§3.2.
type Money struct {
	raw int64
	cur currency.Currency
}

// ParseMoney parses a canonical decimal string denominated in cur. The
// string's fractional digit count must not exceed cur's precision.
func ParseMoney(s string, cur currency.Currency) (Money, error) {
	raw, precision, err := parseSigned(s, maxMoneyRaw)
	if err != nil {
		return Money{}, err
	}
	if precision > cur.Precision() {
		return Money{}, coreerrors.Newf(coreerrors.ErrPrecisionMismatch,
			"value has %d fractional digits, exceeds %s precision %d", precision, cur.Code(), cur.Precision())
	}
	return Money{raw: raw, cur: cur}, nil
}

// NewMoneyFromRaw wraps a precision-9 scaled integer in a currency.
func NewMoneyFromRaw(raw int64, cur currency.Currency) (Money, error) {
	if cur.IsZero() {
		return Money{}, coreerrors.New(coreerrors.ErrValidation, "money requires a currency")
	}
	if raw > maxMoneyRaw || raw < -maxMoneyRaw {
		return Money{}, coreerrors.Newf(coreerrors.ErrOutOfRange, "money raw %d exceeds representable range", raw)
	}
	return Money{raw: raw, cur: cur}, nil
}

// Raw returns the underlying scaled integer (scale 10^9). Round-trip
// property from spec.md §8.1: NewMoneyFromRaw(m.Raw(), m.Currency()).Raw()
// == m.Raw().
func (m Money) Raw() int64 { return m.raw }

// Currency returns the money's currency.
func (m Money) Currency() currency.Currency { return m.cur }

// AsFloat64 is the explicit analytics projection.
func (m Money) AsFloat64() float64 {
	return float64(m.raw) / float64(FixedScale)
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", formatRaw(m.raw, m.cur.Precision()), m.cur.Code())
}

// Equals compares raw and currency.
func (m Money) Equals(other Money) bool {
	return m.raw == other.raw && m.cur.Equals(other.cur)
}

// Add requires identical currencies, per spec.md §4.1, failing
// ErrCurrencyMismatch otherwise.
func (m Money) Add(other Money) (Money, error) {
	if !m.cur.Equals(other.cur) {
		return Money{}, coreerrors.Newf(coreerrors.ErrCurrencyMismatch, "%s != %s", m.cur.Code(), other.cur.Code())
	}
	sum := m.raw + other.raw
	if overflowsAdd(m.raw, other.raw, sum) || sum > maxMoneyRaw || sum < -maxMoneyRaw {
		return Money{}, coreerrors.New(coreerrors.ErrOverflow, "money addition overflow")
	}
	return Money{raw: sum, cur: m.cur}, nil
}

// Sub requires identical currencies.
func (m Money) Sub(other Money) (Money, error) {
	if !m.cur.Equals(other.cur) {
		return Money{}, coreerrors.Newf(coreerrors.ErrCurrencyMismatch, "%s != %s", m.cur.Code(), other.cur.Code())
	}
	diff := m.raw - other.raw
	if overflowsSub(m.raw, other.raw, diff) || diff > maxMoneyRaw || diff < -maxMoneyRaw {
		return Money{}, coreerrors.New(coreerrors.ErrOverflow, "money subtraction overflow")
	}
	return Money{raw: diff, cur: m.cur}, nil
}

// ---------------------------------------------------------------------
// Midpoint helper shared by the order book (spec.md §4.3.1, §8.2
// scenario 6: "midpoint precision").
// ---------------------------------------------------------------------

// Midpoint returns (a+b)/2 at precision max(a.precision, b.precision),
// per spec.md's glossary and §8.2 scenario 6. Division by two is exact
// whenever the raw sum is even, which always holds when both prices
// have at most 8 fractional digits; an odd raw sum is truncated toward
// zero.
func Midpoint(a, b Price) Price {
	// The sum is taken in big.Int: two in-range raw values can exceed
	// int64 when added, although their midpoint is always in range.
	sum := new(big.Int).Add(big.NewInt(a.raw), big.NewInt(b.raw))
	sum.Quo(sum, big.NewInt(2))
	return Price{raw: sum.Int64(), precision: maxU8(a.precision, b.precision)}
}

// ---------------------------------------------------------------------
// internals
// ---------------------------------------------------------------------

func maxU8(a, b uint8) uint8 {
	if a > b {
		return a
	}
	return b
}

func overflowsAdd(a, b, sum int64) bool {
	return (b > 0 && sum < a) || (b < 0 && sum > a)
}

func overflowsSub(a, b, diff int64) bool {
	return (b < 0 && diff < a) || (b > 0 && diff > a)
}

// mulRawScaled multiplies two raw integers both scaled by FixedScale,
// producing a result scaled by FixedScale (i.e. it divides out one
// factor of FixedScale), using decimal.Decimal to avoid int64
// intermediate overflow on the unscaled product.
func mulRawScaled(a int64, b int64) (int64, error) {
	da := decimal.New(a, -FixedScaleExponent)
	db := decimal.New(b, -FixedScaleExponent)
	product := da.Mul(db)
	scaled := product.Shift(FixedScaleExponent)
	bi := scaled.Round(0).BigInt()
	if !bi.IsInt64() {
		return 0, coreerrors.New(coreerrors.ErrOverflow, "multiplication overflow")
	}
	return bi.Int64(), nil
}

func roundToRaw(f float64, precision uint8, maxAbsRaw int64) (int64, error) {
	if precision > MaxPrecision {
		return 0, coreerrors.Newf(coreerrors.ErrOutOfRange, "precision %d exceeds maximum %d", precision, MaxPrecision)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, coreerrors.New(coreerrors.ErrValidation, "value is not finite")
	}
	d := decimal.NewFromFloat(f).RoundBank(int32(precision))
	scaled := d.Shift(FixedScaleExponent)
	bi := scaled.Round(0).BigInt()
	if !bi.IsInt64() {
		return 0, coreerrors.New(coreerrors.ErrOutOfRange, "value exceeds representable range")
	}
	raw := bi.Int64()
	if raw > maxAbsRaw || raw < -maxAbsRaw {
		return 0, coreerrors.New(coreerrors.ErrOutOfRange, "value exceeds representable range")
	}
	return raw, nil
}

func roundToRawUnsigned(f float64, precision uint8, maxAbsRaw uint64) (uint64, error) {
	if precision > MaxPrecision {
		return 0, coreerrors.Newf(coreerrors.ErrOutOfRange, "precision %d exceeds maximum %d", precision, MaxPrecision)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, coreerrors.New(coreerrors.ErrValidation, "value is not finite")
	}
	d := decimal.NewFromFloat(f).RoundBank(int32(precision))
	scaled := d.Shift(FixedScaleExponent)
	bi := scaled.Round(0).BigInt()
	if bi.Sign() < 0 || !bi.IsUint64() {
		return 0, coreerrors.New(coreerrors.ErrOutOfRange, "value exceeds representable range")
	}
	raw := bi.Uint64()
	if raw > maxAbsRaw {
		return 0, coreerrors.New(coreerrors.ErrOutOfRange, "value exceeds representable range")
	}
	return raw, nil
}

func parseSigned(s string, maxAbsRaw int64) (int64, uint8, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, coreerrors.New(coreerrors.ErrValidation, "empty decimal string")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, 0, coreerrors.Wrap(coreerrors.ErrValidation, "invalid decimal string", err)
	}
	precision := fractionalDigits(trimSign(s))
	if precision > int(MaxPrecision) {
		return 0, 0, coreerrors.Newf(coreerrors.ErrOutOfRange, "%d fractional digits exceeds maximum %d", precision, MaxPrecision)
	}
	scaled := d.Shift(FixedScaleExponent)
	bi := scaled.Round(0).BigInt()
	if !bi.IsInt64() {
		return 0, 0, coreerrors.Newf(coreerrors.ErrOutOfRange, "%q exceeds representable range", s)
	}
	raw := bi.Int64()
	if raw > maxAbsRaw || raw < -maxAbsRaw {
		return 0, 0, coreerrors.Newf(coreerrors.ErrOutOfRange, "%q exceeds representable range", s)
	}
	return raw, uint8(precision), nil
}

func parseUnsigned(s string, maxAbsRaw uint64) (uint64, uint8, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, coreerrors.New(coreerrors.ErrValidation, "empty decimal string")
	}
	if strings.HasPrefix(s, "-") {
		return 0, 0, coreerrors.New(coreerrors.ErrOutOfRange, "quantity must not be negative")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, 0, coreerrors.Wrap(coreerrors.ErrValidation, "invalid decimal string", err)
	}
	precision := fractionalDigits(s)
	if precision > int(MaxPrecision) {
		return 0, 0, coreerrors.Newf(coreerrors.ErrOutOfRange, "%d fractional digits exceeds maximum %d", precision, MaxPrecision)
	}
	scaled := d.Shift(FixedScaleExponent)
	bi := scaled.Round(0).BigInt()
	if bi.Sign() < 0 || !bi.IsUint64() {
		return 0, 0, coreerrors.Newf(coreerrors.ErrOutOfRange, "%q exceeds representable range", s)
	}
	raw := bi.Uint64()
	if raw > maxAbsRaw {
		return 0, 0, coreerrors.Newf(coreerrors.ErrOutOfRange, "%q exceeds representable range", s)
	}
	return raw, uint8(precision), nil
}

func trimSign(s string) string {
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		return s[1:]
	}
	return s
}

func formatRaw(raw int64, precision uint8) string {
	neg := raw < 0
	u := raw
	if neg {
		u = -u
	}
	s := formatRawUnsigned(uint64(u), precision)
	if neg {
		return "-" + s
	}
	return s
}

func formatRawUnsigned(raw uint64, precision uint8) string {
	bi := new(big.Int).SetUint64(raw)
	d := decimal.NewFromBigInt(bi, -FixedScaleExponent)
	return d.StringFixed(int32(precision))
}
