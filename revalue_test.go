package revgraph

import (
	"testing"

	"github.com/etnz/revgraph/date"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closes(pairs ...any) date.History[decimal.Decimal] {
	var h date.History[decimal.Decimal]
	for i := 0; i+1 < len(pairs); i += 2 {
		h.Append(pairs[i].(date.Date), dec(pairs[i+1].(string)))
	}
	return h
}

func trade(kind Kind, on date.Date, qty, price, cur string) TradeEvent {
	return TradeEvent{Kind: kind, Symbol: "AAPL.US", Date: on, Quantity: dec(qty), UnitPrice: dec(price), Currency: cur}
}

// byDate sums adjustments per day.
func byDate(adjustments []Adjustment) map[date.Date]string {
	sums := make(DeltaMap)
	for _, a := range adjustments {
		sums.Add(a.Date, a.Amount)
	}
	out := make(map[date.Date]string)
	for on, v := range sums {
		out[on] = v.Round(2).String()
	}
	return out
}

func TestRevalue_BuySellCancel(t *testing.T) {
	rv := Revaluer{
		Currency: "USD",
		Prices:   map[string]PriceHistory{"AAPL.US": {Currency: "USD", Closes: closes(day(1), "11", day(2), "12", day(4), "13")}},
		Latest:   day(4),
	}
	net, taxFee := make(DeltaMap), make(DeltaMap)
	res := rv.Revalue([]TradeEvent{trade(Buy, day(1), "2", "10", "USD"), trade(Sell, day(1), "2", "10", "USD")}, net, taxFee)

	require.Empty(t, res.Warnings)
	assertDecimal(t, "0", net[day(1)], "the sell proceeds cancel the buy cost")
	for on, sum := range byDate(res.Adjustments) {
		assert.Equal(t, "0", sum, on.String())
	}
	assert.Len(t, res.Adjustments, 6)
	assertDecimal(t, "12", res.StockRevenue)
}

func TestRevalue_CurrencyConversion(t *testing.T) {
	rates := NewRates(ExchangeRate{Currency: "USD", ToAccount: dec("0.9"), ToForeign: dec("1.1")})
	prices := map[string]PriceHistory{"AAPL.US": {Currency: "USD", Closes: closes(day(2), "11")}}

	t.Run("trade in quote currency", func(t *testing.T) {
		net, taxFee := make(DeltaMap), make(DeltaMap)
		tr := trade(Buy, day(1), "2", "10", "USD")
		tr.Fee = dec("1")
		res := Revaluer{Currency: "CHF", Rates: rates, Prices: prices}.Revalue([]TradeEvent{tr}, net, taxFee)

		require.Empty(t, res.Warnings)
		assertDecimal(t, "18.9", net[day(1)])
		assertDecimal(t, "0.9", taxFee[day(1)])
		assert.Equal(t, map[date.Date]string{day(2): "1.8"}, byDate(res.Adjustments))
	})

	t.Run("trade in account currency", func(t *testing.T) {
		net, taxFee := make(DeltaMap), make(DeltaMap)
		tr := trade(Buy, day(1), "2", "10", "CHF")
		p := map[string]PriceHistory{"AAPL.US": {Currency: "USD", Closes: closes(day(2), "12")}}
		res := Revaluer{Currency: "CHF", Rates: rates, Prices: p}.Revalue([]TradeEvent{tr}, net, taxFee)

		require.Empty(t, res.Warnings)
		assertDecimal(t, "20", net[day(1)])
		// paid 10 CHF is 11 USD, the close of 12 USD is worth 1 USD more per share.
		assert.Equal(t, map[date.Date]string{day(2): "1.8"}, byDate(res.Adjustments))
	})
}

func TestRevalue_MissingRate(t *testing.T) {
	net, taxFee := make(DeltaMap), make(DeltaMap)
	res := Revaluer{Currency: "CHF"}.Revalue([]TradeEvent{trade(Buy, day(1), "2", "10", "USD")}, net, taxFee)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, MalformedRecord, res.Warnings[0].Kind)
	assert.ErrorIs(t, res.Warnings[0], ErrMissingRate)
	assert.Empty(t, net, "the trade is skipped")
	assert.Empty(t, res.Adjustments)
}

func TestRevalue_InvalidTrade(t *testing.T) {
	net, taxFee := make(DeltaMap), make(DeltaMap)
	res := Revaluer{Currency: "USD"}.Revalue([]TradeEvent{
		trade(Buy, day(1), "0", "10", "USD"),
		trade(Deposit, day(1), "1", "10", "USD"),
		{Kind: Buy, Date: day(1), Quantity: dec("1"), UnitPrice: dec("1")},
	}, net, taxFee)

	require.Len(t, res.Warnings, 3)
	for _, w := range res.Warnings {
		assert.Equal(t, MalformedRecord, w.Kind)
	}
	assert.Empty(t, net)
}

func TestRevalue_LatestMarketPriceFallback(t *testing.T) {
	net, taxFee := make(DeltaMap), make(DeltaMap)
	rv := Revaluer{
		Currency: "USD",
		Prices:   map[string]PriceHistory{"AAPL.US": {LatestMarketPrice: dec("12")}},
		Latest:   day(5),
	}
	res := rv.Revalue([]TradeEvent{trade(Buy, day(1), "2", "10", "USD")}, net, taxFee)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, MissingPriceData, res.Warnings[0].Kind)
	assert.Equal(t, map[date.Date]string{day(5): "4"}, byDate(res.Adjustments))
	assertDecimal(t, "20", net[day(1)])
}

func TestRevalue_NoPriceAtAll(t *testing.T) {
	net, taxFee := make(DeltaMap), make(DeltaMap)
	res := Revaluer{Currency: "USD"}.Revalue([]TradeEvent{trade(Buy, day(1), "2", "10", "USD")}, net, taxFee)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, MissingPriceData, res.Warnings[0].Kind)
	assert.ErrorIs(t, res.Warnings[0], ErrMissingPrice)
	assert.Empty(t, res.Adjustments)
	assertDecimal(t, "20", net[day(1)], "the cost is still committed")
}

func TestRevalue_ClampToLatest(t *testing.T) {
	net, taxFee := make(DeltaMap), make(DeltaMap)
	rv := Revaluer{
		Currency: "USD",
		Prices:   map[string]PriceHistory{"AAPL.US": {Closes: closes(day(1), "10", day(2), "11", day(6), "15", day(7), "16")}},
		Latest:   day(4),
	}
	res := rv.Revalue([]TradeEvent{trade(Buy, day(1), "1", "10", "USD")}, net, taxFee)

	require.Empty(t, res.Warnings)
	for _, a := range res.Adjustments {
		assert.False(t, a.Date.After(day(4)), a.Date.String())
	}
	assert.Equal(t, map[date.Date]string{day(1): "0", day(2): "1", day(4): "5"}, byDate(res.Adjustments))
}
