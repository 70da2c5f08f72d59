package revgraph

import (
	"maps"
	"slices"

	"github.com/etnz/revgraph/date"
	"github.com/shopspring/decimal"
)

// CurvePoint is a point of a cumulative curve.
type CurvePoint struct {
	Date  date.Date
	Value decimal.Decimal
}

func (p CurvePoint) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("x", p.Date.UnixMilli())
	w.Append("y", p.Value.InexactFloat64())
	return w.MarshalJSON()
}

// Curve is a right-continuous step function: the cumulative value as of each
// day where it changed.
type Curve struct {
	h date.History[decimal.Decimal]
}

// BuildCurve returns the running total of the deltas in chronological order.
func BuildCurve(deltas DeltaMap) *Curve {
	c := new(Curve)
	running := decimal.Zero
	for _, on := range slices.SortedFunc(maps.Keys(deltas), date.Date.Compare) {
		running = running.Add(deltas[on])
		c.h.Append(on, running)
	}
	return c
}

// ValueAt returns the value of the latest point on or before day on, or zero
// if there is none.
func (c *Curve) ValueAt(on date.Date) decimal.Decimal {
	v, ok := c.h.ValueAsOf(on)
	if !ok {
		return decimal.Zero
	}
	return v
}

// Len returns the number of points.
func (c *Curve) Len() int { return c.h.Len() }

// Total returns the value of the last point.
func (c *Curve) Total() decimal.Decimal {
	_, v := c.h.Latest()
	return v
}

// Points returns all points in chronological order.
func (c *Curve) Points() []CurvePoint {
	points := make([]CurvePoint, 0, c.h.Len())
	for on, v := range c.h.Values() {
		points = append(points, CurvePoint{on, v})
	}
	return points
}

// Slice returns the points within r, framed by a point at each bound so that
// the slice spans the whole range. When r is a single day both bounds
// collapse into one point.
func (c *Curve) Slice(r date.Range) []CurvePoint {
	points := []CurvePoint{{r.From, c.ValueAt(r.From)}}
	for on, v := range c.h.Between(r) {
		points = append(points, CurvePoint{on, v})
	}
	if r.To != r.From {
		points = append(points, CurvePoint{r.To, c.ValueAt(r.To)})
	}
	return points
}
