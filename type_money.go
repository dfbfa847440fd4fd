package papertrade

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// USD is the only currency the simulator deals in.
const USD = "USD"

// Money represents a monetary value, kept exact until a boundary rounds it.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

func M[T float32 | float64 | int | int32 | int64 | decimal.Decimal](value T) Money {
	return Money{value: newDecimal(value), cur: USD}
}

// currency returns the money's currency information.
func (m Money) currency() money.Currency {
	// the Money constructor guarantees a never-nil currency
	cur := m.cur
	if cur == "" {
		cur = USD
	}
	return *money.New(0, cur).Currency()
}

// String returns the money formatted with its currency symbol, e.g. "$4,010.00".
func (m Money) String() string {
	cur := m.currency()
	dec := m.value.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.Round(0).IntPart())
}

func (m Money) IsZero() bool                 { return m.value.IsZero() }
func (m Money) IsPositive() bool             { return m.value.IsPositive() }
func (m Money) IsNegative() bool             { return m.value.IsNegative() }
func (m Money) Equal(n Money) bool           { return m.value.Equal(n.value) }
func (m Money) LessThan(n Money) bool        { return m.value.LessThan(n.value) }
func (m Money) GreaterThan(n Money) bool     { return m.value.GreaterThan(n.value) }
func (m Money) Neg() Money                   { return Money{value: m.value.Neg(), cur: m.cur} }
func (m Money) Add(n Money) Money            { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }
func (m Money) Sub(n Money) Money            { return Money{value: m.value.Sub(n.value), cur: cur(m, n)} }
func (m Money) Mul(q Quantity) Money         { return Money{value: m.value.Mul(q.value), cur: m.cur} }
func (m Money) DivPrice(price Money) Quantity { return Quantity{value: m.value.Div(price.value)} }

// cur makes the "" currency totally weak.
func cur(a, b Money) string {
	if a.cur == "" {
		return b.cur
	}
	if b.cur == "" {
		return a.cur
	}
	if a.cur != b.cur {
		panic("currency mismatch " + a.cur + "!=" + b.cur)
	}
	return a.cur
}

// Round returns the value rounded half away from zero to the currency's
// fraction (2 decimals for USD), as a float. This is the only place exactness
// is given up, at the caller-facing boundary.
func (m Money) Round() float64 {
	f, _ := m.value.Round(int32(m.currency().Fraction)).Float64()
	return f
}

// AsFloat returns the unrounded value as a float. For display and encoding only.
func (m Money) AsFloat() float64 { return m.value.InexactFloat64() }

// Decimal returns the exact underlying value.
func (m Money) Decimal() decimal.Decimal { return m.value }
