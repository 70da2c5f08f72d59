package revgraph

import (
	"testing"
	"time"

	"github.com/etnz/revgraph/date"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// day returns the n-th of March 2024. The 1st is a Friday.
func day(n int) date.Date { return date.New(2024, time.March, n) }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// assertDecimal checks got equals want, rounded to the cent.
func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	if !dec(want).Equal(got.Round(2)) {
		assert.Fail(t, "decimals differ", "want %s got %s %v", want, got, msgAndArgs)
	}
}

func deposit(on date.Date, amount string) CashFlowEvent {
	return CashFlowEvent{Date: on, Kind: Deposit, Gross: dec(amount)}
}

func sample(on date.Date, percent string) PercentPoint {
	return PercentPoint{Date: on, Percent: dec(percent)}
}

// capitalOf builds the capital curve and its basis from deposits.
func capitalOf(events ...CashFlowEvent) (*Curve, Basis) {
	net, taxFee := Aggregate(events)
	capital := BuildCurve(net)
	return capital, Basis{Capital: capital, TaxFee: BuildCurve(taxFee)}
}

// values extracts date and value pairs for compact comparisons.
func values[P CurvePoint | RevenuePoint](points []P) []string {
	var out []string
	for _, p := range points {
		switch p := any(p).(type) {
		case CurvePoint:
			out = append(out, p.Date.String()+"="+p.Value.Round(2).String())
		case RevenuePoint:
			out = append(out, p.Date.String()+"="+p.Value.Round(2).String())
		}
	}
	return out
}
