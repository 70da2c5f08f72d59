package revgraph

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/etnz/revgraph/date"
	"github.com/shopspring/decimal"
)

// FeeMode selects the base a percentage return is measured against.
type FeeMode int

const (
	// IncludeFees measures returns against the whole committed capital.
	IncludeFees FeeMode = iota
	// ExcludeFees strips taxes and fees from the committed capital first.
	ExcludeFees
)

// ParseFeeMode parses "include" or "exclude".
func ParseFeeMode(s string) (FeeMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "include", "included":
		return IncludeFees, nil
	case "exclude", "excluded":
		return ExcludeFees, nil
	default:
		return IncludeFees, fmt.Errorf("unknown fee mode %q want include or exclude", s)
	}
}

func (m FeeMode) String() string {
	if m == ExcludeFees {
		return "exclude"
	}
	return "include"
}

// Basis is the amount a percentage return applies to, as of a given day.
type Basis struct {
	Capital  *Curve
	TaxFee   *Curve
	Mode     FeeMode
	Currency string // account currency, values are rounded to its minor unit
}

// At returns the base on day on.
func (b Basis) At(on date.Date) decimal.Decimal {
	base := b.Capital.ValueAt(on)
	if b.Mode == ExcludeFees && b.TaxFee != nil {
		base = base.Sub(b.TaxFee.ValueAt(on))
	}
	return base
}

// Value returns the absolute value of a percentage return p on day on,
// rounded to the minor unit of the account currency.
func (b Basis) Value(on date.Date, p decimal.Decimal) decimal.Decimal {
	return applyPercent(b.At(on), p).Round(minorUnit(b.Currency))
}

// minorUnit returns the number of decimal places of currency cur, 2 when
// the currency is unknown.
func minorUnit(cur string) int32 {
	if c := money.GetCurrency(cur); c != nil {
		return int32(c.Fraction)
	}
	return 2
}

var hundred = decimal.NewFromInt(100)

// applyPercent returns base×(100+p)/100.
func applyPercent(base, p decimal.Decimal) decimal.Decimal {
	return base.Mul(hundred.Add(p)).Div(hundred)
}

// percentOf returns the percentage return of value against base, it fails
// when base is not positive.
func percentOf(value, base decimal.Decimal) (decimal.Decimal, error) {
	if !base.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: base %s", ErrDegenerateBase, base)
	}
	return value.Sub(base).Mul(hundred).Div(base), nil
}
