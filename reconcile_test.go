package revgraph

import (
	"testing"

	"github.com/etnz/revgraph/date"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInjectBoundaries(t *testing.T) {
	capital, _ := capitalOf(deposit(day(1), "100"), deposit(day(2), "50"), deposit(day(3), "30"))
	require.Equal(t, []string{"2024-03-01=100", "2024-03-02=150", "2024-03-03=180"}, values(capital.Points()))

	revenue := []RevenuePoint{{Date: day(2), Value: dec("400"), Adjusted: true}}
	got := InjectBoundaries(revenue, capital)

	require.Len(t, got, 2)
	assert.Equal(t, day(2), got[0].Date)
	assertDecimal(t, "430", got[0].Value)
	assert.True(t, got[0].Adjusted, "shares the flag of the point it precedes")
	assert.Equal(t, revenue[0], got[1])
}

func TestInjectBoundaries_OncePerDate(t *testing.T) {
	capital, _ := capitalOf(deposit(day(1), "100"), deposit(day(2), "50"))
	revenue := []RevenuePoint{
		{Date: day(1), Value: dec("100")},
		{Date: day(1), Value: dec("101")},
		{Date: day(2), Value: dec("160")},
	}
	got := InjectBoundaries(revenue, capital)
	// the last capital point has no successor, nothing is injected on day 2.
	assert.Equal(t, []string{"2024-03-01=150", "2024-03-01=100", "2024-03-01=101", "2024-03-02=160"}, values(got))
}

func TestReconcile_Scenario(t *testing.T) {
	capital, basis := capitalOf(deposit(day(1), "100"), deposit(day(2), "50"))
	points, _ := Integrate([]PercentPoint{sample(day(1), "0"), sample(day(2), "50")}, nil, basis, nil)

	revenue := Reconcile(points, capital, basis)

	assert.Equal(t, []string{"2024-03-01=150", "2024-03-01=100", "2024-03-02=225"}, values(revenue))
	assert.Equal(t, []string{"2024-03-02=225"}, values(SliceRevenue(revenue, date.NewRange(day(2), day(2)))))
}

func TestReconcile_ExcludeFees(t *testing.T) {
	capital, basis := capitalOf(CashFlowEvent{Date: day(1), Kind: Deposit, Gross: dec("100"), Fee: dec("10")})
	basis.Mode = ExcludeFees
	points, _ := Integrate([]PercentPoint{sample(day(1), "10")}, nil, basis, nil)

	revenue := Reconcile(points, capital, basis)
	require.Len(t, revenue, 1)
	assertDecimal(t, "110", revenue[0].Value, "10% of the capital net of fees")
}

func TestRevenuePoint_MarshalJSON(t *testing.T) {
	b, err := json.Marshal([]RevenuePoint{
		{Date: day(1), Value: dec("225.5")},
		{Date: day(2), Value: dec("175"), Adjusted: true},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"x":1709251200000,"y":225.5},{"x":1709337600000,"y":175,"adjusted":true}]`, string(b))
}

func TestReconcile_RoundTrip(t *testing.T) {
	// bases of 3, 7 and 7.5 make the percentages non terminating decimals.
	capital, basis := capitalOf(deposit(day(1), "3"), deposit(day(2), "4"), deposit(day(4), "0.5"))
	basis.Currency = "CHF"
	want := map[date.Date]string{day(1): "100", day(2): "10", day(3): "7.01", day(4): "0.07"}

	var snapshot []PercentPoint
	for _, on := range []date.Date{day(1), day(2), day(3), day(4)} {
		p, err := percentOf(dec(want[on]), basis.At(on))
		require.NoError(t, err)
		snapshot = append(snapshot, PercentPoint{Date: on, Percent: p})
	}
	points, ws := Integrate(snapshot, nil, basis, nil)
	require.Empty(t, ws)

	// on each date, the sample comes after the injected boundary.
	got := make(map[date.Date]string)
	for _, p := range Reconcile(points, capital, basis) {
		got[p.Date] = p.Value.String()
	}
	assert.Equal(t, want, got)
}

func TestReconcile_RoundsToMinorUnit(t *testing.T) {
	capital, basis := capitalOf(deposit(day(1), "3"))
	points := []AdjustedPoint{{PercentPoint: sample(day(1), "33.3")}}

	for cur, want := range map[string]string{"JPY": "4", "USD": "4", "BHD": "3.999", "": "4"} {
		basis.Currency = cur
		revenue := Reconcile(points, capital, basis)
		require.Len(t, revenue, 1)
		assert.Equal(t, want, revenue[0].Value.String(), cur)
	}
}
