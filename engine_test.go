package revgraph

import (
	"testing"

	"github.com/etnz/revgraph/date"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scenario is a two day account: 100 deposited on the 1st, 50 more on the
// 2nd, with a return of 50% on the 2nd.
func scenario() Inputs {
	return Inputs{
		Events:  []CashFlowEvent{deposit(day(1), "100"), deposit(day(2), "50")},
		Percent: []PercentPoint{sample(day(2), "50"), sample(day(1), "0")},
	}
}

func TestNew_NoData(t *testing.T) {
	_, err := New(Inputs{}, Config{Currency: "CHF"})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestEngine_Scenario(t *testing.T) {
	e, err := New(scenario(), Config{Currency: "CHF"})
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-03-01=100", "2024-03-02=150"}, values(e.Capital().Points()))
	assert.Equal(t, day(2), e.Config().Latest, "defaults to the last sample")
	assert.Equal(t, date.NewRange(day(1), day(2)), e.Extent())

	revenue, ws := e.Revenue()
	assert.Empty(t, ws)
	assert.Equal(t, []string{"2024-03-01=150", "2024-03-01=100", "2024-03-02=225"}, values(revenue))
}

func TestEngine_SingleDayWindow(t *testing.T) {
	e, err := New(scenario(), Config{Currency: "CHF"})
	require.NoError(t, err)

	v := e.Window(date.NewRange(day(2), day(2)))

	assert.Equal(t, []string{"2024-03-02=150", "2024-03-02=150"}, values(v.Capital))
	assert.Equal(t, []string{"2024-03-02=225"}, values(v.Revenue))
	assert.Empty(t, v.Warnings)
}

func TestEngine_ManualAdjustment(t *testing.T) {
	in := scenario()
	in.Adjustments = []ManualAdjustment{{Date: day(2), Amount: dec("-50")}}
	e, err := New(in, Config{Currency: "CHF"})
	require.NoError(t, err)

	v := e.Window(date.NewRange(day(2), day(2)))
	require.Len(t, v.Revenue, 1)
	assertDecimal(t, "175", v.Revenue[0].Value)
	assert.True(t, v.Revenue[0].Adjusted)

	// the full curve agrees with the window.
	revenue, _ := e.Revenue()
	last := revenue[len(revenue)-1]
	assertDecimal(t, "175", last.Value)
	assert.True(t, last.Adjusted)
}

func TestEngine_WindowIsRepeatable(t *testing.T) {
	in := scenario()
	in.Adjustments = []ManualAdjustment{{Date: day(2), Amount: dec("-50")}}
	e, err := New(in, Config{Currency: "CHF"})
	require.NoError(t, err)

	r := date.NewRange(day(1), day(2))
	first := e.Window(r)
	e.Window(date.NewRange(day(2), day(2)))
	assert.Equal(t, first, e.Window(r))
}

func TestEngine_ReversedWindow(t *testing.T) {
	e, err := New(scenario(), Config{Currency: "CHF"})
	require.NoError(t, err)

	v := e.Window(date.Range{From: day(2), To: day(1)})
	assert.Equal(t, date.NewRange(day(1), day(2)), v.Range)
	assert.NotEmpty(t, v.Revenue)
}

func TestEngine_WindowRecovers(t *testing.T) {
	// an engine without curves panics while reconciling.
	e := &Engine{snapshot: []PercentPoint{sample(day(1), "10")}}
	r := date.NewRange(day(1), day(2))

	var v View
	require.NotPanics(t, func() { v = e.Window(r) })
	assert.Equal(t, r, v.Range)
	assert.Empty(t, v.Capital)
	assert.Empty(t, v.Revenue)
	require.Len(t, v.Warnings, 1)
	assert.Equal(t, MalformedRecord, v.Warnings[0].Kind)
	assert.Contains(t, v.Warnings[0].Error(), "window query failed")
}

func TestEngine_WithTrades(t *testing.T) {
	in := scenario()
	in.Trades = []TradeEvent{trade(Buy, day(1), "1", "10", "CHF")}
	in.Prices = map[string]PriceHistory{"AAPL.US": {Currency: "CHF", Closes: closes(day(2), "16")}}
	e, err := New(in, Config{Currency: "CHF"})
	require.NoError(t, err)

	assertDecimal(t, "160", e.Capital().Total(), "the trade cost is committed")

	s := e.Summary()
	assertDecimal(t, "6", s.StockRevenue.Value())
	assert.Equal(t, "CHF", s.StockRevenue.Currency())
	// 160 committed, 50% return, plus 6 of stock revenue on the last sample.
	assertDecimal(t, "246", s.TotalRevenue.Value())
}

func TestEngine_Summary(t *testing.T) {
	e, err := New(scenario(), Config{Currency: "CHF"})
	require.NoError(t, err)

	s := e.Summary()
	assert.Equal(t, day(2), s.On)
	assertDecimal(t, "150", s.TotalCommitted.Value())
	assertDecimal(t, "225", s.TotalRevenue.Value())
	assertDecimal(t, "50", s.TotalReturn.Value())
	assert.True(t, s.StockRevenue.IsZero())
}

func TestEngine_CapitalOnly(t *testing.T) {
	e, err := New(Inputs{Events: []CashFlowEvent{deposit(day(1), "100")}}, Config{Currency: "CHF"})
	require.NoError(t, err)

	v := e.Window(date.NewRange(day(1), day(3)))
	assert.Equal(t, []string{"2024-03-01=100", "2024-03-01=100", "2024-03-03=100"}, values(v.Capital))
	assert.Empty(t, v.Revenue)

	s := e.Summary()
	assertDecimal(t, "100", s.TotalRevenue.Value())
}

func TestView_MarshalJSON(t *testing.T) {
	e, err := New(scenario(), Config{Currency: "CHF"})
	require.NoError(t, err)

	v := e.Window(date.NewRange(day(2), day(2)))
	v.ID = "abc"
	b, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "abc",
		"from": "2024-03-02",
		"to": "2024-03-02",
		"capital": [{"x":1709337600000,"y":150},{"x":1709337600000,"y":150}],
		"revenue": [{"x":1709337600000,"y":225}]
	}`, string(b))

	b, err = json.Marshal(View{Range: date.NewRange(day(5), day(5)), Warnings: []Warning{{Kind: DegenerateBase, Subject: "manual", Err: ErrDegenerateBase}}})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"from": "2024-03-05",
		"to": "2024-03-05",
		"capital": [],
		"revenue": [],
		"warnings": ["degenerate base: manual: committed capital is zero or negative"]
	}`, string(b))
}
