package revgraph

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money represents a monetary value.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

// M returns an amount of money in currency cur.
func M(value decimal.Decimal, cur string) Money { return Money{value: value, cur: cur} }

// currency returns the money's currency
func (m Money) currency() money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, m.cur).Currency()
}

// String returns the string representation of the money value, rounded to
// the currency's minor unit.
func (m Money) String() string {
	cur := m.currency()
	dec := m.value.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(dec.IntPart())
}

// SignedString returns the string representation of the money value with a sign.
// 0 is represented as a "-"
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

func (m Money) Currency() string       { return m.cur }
func (m Money) Value() decimal.Decimal { return m.value }
func (m Money) IsZero() bool           { return m.value.IsZero() }
func (m Money) Equal(n Money) bool     { return m.value.Equal(n.value) && m.cur == n.cur }

func (m Money) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("currency", m.cur)
	w.Append("amount", m.value.Round(int32(m.currency().Fraction)))
	return w.MarshalJSON()
}

// Percent is a percentage.
type Percent struct{ value decimal.Decimal }

// P returns a percentage.
func P(value decimal.Decimal) Percent { return Percent{value} }

func (p Percent) Value() decimal.Decimal { return p.value }

func (p Percent) String() string { return p.value.StringFixed(2) + "%" }

func (p Percent) SignedString() string {
	res := p.value.StringFixed(2)
	if res == "0.00" || res == "-0.00" {
		return "-"
	}
	if p.value.IsPositive() {
		res = "+" + res
	}
	return res + "%"
}
