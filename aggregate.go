package revgraph

import (
	"github.com/etnz/revgraph/date"
	"github.com/shopspring/decimal"
)

// DeltaMap accumulates amounts per day.
type DeltaMap map[date.Date]decimal.Decimal

// Add adds v to the amount of day on.
func (m DeltaMap) Add(on date.Date, v decimal.Decimal) { m[on] = m[on].Add(v) }

// Total returns the sum of all deltas.
func (m DeltaMap) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range m {
		total = total.Add(v)
	}
	return total
}

// Aggregate groups events by day into their net capital change and their tax
// and fee drag.
//
// Events of an unknown kind are dropped.
func Aggregate(events []CashFlowEvent) (net, taxFee DeltaMap) {
	net, taxFee = make(DeltaMap), make(DeltaMap)
	for _, e := range events {
		if !e.Kind.Valid() {
			continue
		}
		net.Add(e.Date, e.NetDelta())
		taxFee.Add(e.Date, e.TaxAndFee())
	}
	return net, taxFee
}
