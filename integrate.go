package revgraph

import (
	"fmt"
	"slices"
	"sort"

	"github.com/etnz/revgraph/date"
	"github.com/shopspring/decimal"
)

// AdjustedPoint is a sample of the percentage series after corrections.
type AdjustedPoint struct {
	PercentPoint
	Adjusted bool // first sample a correction applied to
}

// Integrate applies adjustments to a copy of the snapshot and returns the
// corrected samples, restricted to window if not nil.
//
// An adjustment moves the absolute value of every sample on or after its
// date by its amount, the percentage is derived again against the base of
// each sample. Because markets close over the weekend, a sample on the
// days following the last trading day of the week carries the Friday
// correction too.
//
// The snapshot is never modified, calling Integrate twice with the same
// arguments gives the same result.
func Integrate(snapshot []PercentPoint, adjustments []Adjustment, basis Basis, window *date.Range) ([]AdjustedPoint, []Warning) {
	var ws warnings

	lo, hi := 0, len(snapshot)
	if window != nil {
		lo = firstOnOrAfter(snapshot, window.From)
		hi = firstOnOrAfter(snapshot, window.To.Add(1))
	}
	points := make([]AdjustedPoint, hi-lo)
	for i := range points {
		points[i].PercentPoint = snapshot[lo+i]
	}

	// bases are computed once per sample.
	bases := make(map[date.Date]baseAt, len(points))

	for _, adj := range sortedAdjustments(adjustments) {
		start := firstOnOrAfter(snapshot, adj.Date)
		if start == len(snapshot) {
			ws.add(MissingAdjustmentTarget, adj.Date, adj.Source, fmt.Errorf("no sample on or after %s", adj.Date))
			continue
		}
		// the flag goes to the first sample of the whole series the
		// adjustment applies to, only if the window shows it.
		flag := start >= lo
		for i := max(start, lo); i < hi; i++ {
			p := &points[i-lo]
			b, ok := bases[p.Date]
			if !ok {
				b = newBaseAt(basis, p.Date)
				bases[p.Date] = b
				// reported once per sample, whatever the number of adjustments.
				if b.err != nil {
					ws.add(DegenerateBase, p.Date, adj.Source, b.err)
				}
			}
			if b.err != nil {
				continue
			}
			actual := applyPercent(b.value, p.Percent).Add(adj.Amount)
			newPercent, err := percentOf(actual, b.value)
			if err != nil {
				continue
			}
			p.Percent = newPercent
			if flag {
				p.Adjusted = true
				flag = false
			}
		}
	}
	return points, ws
}

type baseAt struct {
	value decimal.Decimal
	err   error
}

func newBaseAt(basis Basis, on date.Date) baseAt {
	v := basis.At(on)
	if !v.IsPositive() {
		return baseAt{v, fmt.Errorf("%w: base %s", ErrDegenerateBase, v)}
	}
	return baseAt{value: v}
}

// firstOnOrAfter returns the index of the first sample on or after day on.
func firstOnOrAfter(points []PercentPoint, on date.Date) int {
	return sort.Search(len(points), func(i int) bool { return !points[i].Date.Before(on) })
}

// sortedAdjustments returns a chronological copy of adjustments.
func sortedAdjustments(adjustments []Adjustment) []Adjustment {
	sorted := slices.Clone(adjustments)
	slices.SortStableFunc(sorted, func(a, b Adjustment) int { return a.Date.Compare(b.Date) })
	return sorted
}
