package revgraph

import (
	"github.com/etnz/revgraph/date"
	"github.com/shopspring/decimal"
)

// RevenuePoint is a point of the absolute value curve.
type RevenuePoint struct {
	Date     date.Date
	Value    decimal.Decimal
	Adjusted bool // the value carries a manual or revaluation correction
}

func (p RevenuePoint) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("x", p.Date.UnixMilli())
	w.Append("y", p.Value.InexactFloat64())
	w.Optional("adjusted", p.Adjusted)
	return w.MarshalJSON()
}

// Reconcile converts the percentage samples into absolute values against
// basis, then injects the capital boundaries with InjectBoundaries.
//
// Values are rounded to the minor unit of the account currency, so that an
// absolute value turned into a percentage and back is unchanged.
func Reconcile(points []AdjustedPoint, capital *Curve, basis Basis) []RevenuePoint {
	revenue := make([]RevenuePoint, 0, len(points))
	for _, p := range points {
		revenue = append(revenue, RevenuePoint{
			Date:     p.Date,
			Value:    basis.Value(p.Date, p.Percent),
			Adjusted: p.Adjusted,
		})
	}
	return InjectBoundaries(revenue, capital)
}

// InjectBoundaries inserts a point at each capital change so that the curve
// draws a vertical step there instead of a slope.
//
// For each pair of consecutive capital points (tᵢ,yᵢ), (tᵢ₊₁,yᵢ₊₁), the
// first revenue point at tᵢ is preceded by a point at the same date worth
// value(tᵢ) − (yᵢ − yᵢ₊₁). The inserted point shares the Adjusted flag of
// the point it precedes.
func InjectBoundaries(revenue []RevenuePoint, capital *Curve) []RevenuePoint {
	steps := make(map[date.Date]decimal.Decimal, capital.Len())
	cps := capital.Points()
	for i := 0; i+1 < len(cps); i++ {
		steps[cps[i].Date] = cps[i].Value.Sub(cps[i+1].Value)
	}

	injected := make([]RevenuePoint, 0, len(revenue)+len(steps))
	for _, p := range revenue {
		if step, ok := steps[p.Date]; ok {
			injected = append(injected, RevenuePoint{Date: p.Date, Value: p.Value.Sub(step), Adjusted: p.Adjusted})
			delete(steps, p.Date)
		}
		injected = append(injected, p)
	}
	return injected
}

// SliceRevenue returns the points within r, bounds included.
func SliceRevenue(points []RevenuePoint, r date.Range) []RevenuePoint {
	var slice []RevenuePoint
	for _, p := range points {
		if r.Contains(p.Date) {
			slice = append(slice, p)
		}
	}
	return slice
}
