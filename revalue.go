package revgraph

import (
	"fmt"

	"github.com/etnz/revgraph/date"
	"github.com/shopspring/decimal"
)

// Rates holds the exchange rates of every foreign currency, keyed by
// currency code.
type Rates map[string]ExchangeRate

// NewRates indexes rates by currency.
func NewRates(rates ...ExchangeRate) Rates {
	r := make(Rates, len(rates))
	for _, rate := range rates {
		r[rate.Currency] = rate
	}
	return r
}

// ToAccount returns the factor converting cur into the account currency.
func (r Rates) ToAccount(cur, account string) (decimal.Decimal, error) {
	if cur == "" || cur == account {
		return decimal.NewFromInt(1), nil
	}
	rate, ok := r[cur]
	if !ok || !rate.ToAccount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s to %s", ErrMissingRate, cur, account)
	}
	return rate.ToAccount, nil
}

// ToForeign returns the factor converting the account currency into cur.
func (r Rates) ToForeign(cur, account string) (decimal.Decimal, error) {
	if cur == "" || cur == account {
		return decimal.NewFromInt(1), nil
	}
	rate, ok := r[cur]
	if !ok || !rate.ToForeign.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s to %s", ErrMissingRate, account, cur)
	}
	return rate.ToForeign, nil
}

// Adjustment is an absolute correction of the account value effective from
// Date onward.
type Adjustment struct {
	Date   date.Date
	Amount decimal.Decimal
	Source string // "manual" or the symbol of a revalued trade
}

// Revaluation is the outcome of revaluing trades.
type Revaluation struct {
	// Adjustments are the mark-to-market deltas, signed for their
	// contribution to the percentage series.
	Adjustments []Adjustment
	// StockRevenue is the sum of the raw mark-to-market deltas.
	StockRevenue decimal.Decimal
	Warnings     []Warning
}

// Revaluer converts trades into the account currency and revalues them
// against their market history.
type Revaluer struct {
	Currency string // account currency
	Rates    Rates
	Prices   map[string]PriceHistory // by symbol
	// Latest is the date of the latest data of the account; the last
	// mark-to-market delta of every trade is moved to that date.
	Latest date.Date
}

// Revalue adds the cost (or proceeds) of each trade to net, its fee and tax
// to taxFee, and returns the daily mark-to-market deltas of each trade.
//
// Trades that cannot be converted are skipped with a MalformedRecord warning.
func (rv Revaluer) Revalue(trades []TradeEvent, net, taxFee DeltaMap) Revaluation {
	var res Revaluation
	var ws warnings
	res.StockRevenue = decimal.Zero
	for _, t := range trades {
		if err := validateTrade(t); err != nil {
			ws.add(MalformedRecord, t.Date, t.Symbol, err)
			continue
		}
		tradeToAccount, err := rv.Rates.ToAccount(t.Currency, rv.Currency)
		if err != nil {
			ws.add(MalformedRecord, t.Date, t.Symbol, err)
			continue
		}

		cost := t.UnitPrice.Mul(t.Quantity).Mul(tradeToAccount)
		fees := t.Fee.Abs().Add(t.Tax.Abs()).Mul(tradeToAccount)
		net.Add(t.Date, t.Kind.Sign().Mul(cost).Add(fees))
		taxFee.Add(t.Date, fees)

		deltas, err := rv.markToMarket(t, tradeToAccount, &ws)
		if err != nil {
			ws.add(MalformedRecord, t.Date, t.Symbol, err)
			continue
		}
		for _, d := range deltas {
			res.StockRevenue = res.StockRevenue.Add(d.Amount)
			// A sell closes the position: its deltas cancel the ones of the buy.
			d.Amount = t.Kind.Sign().Mul(d.Amount)
			res.Adjustments = append(res.Adjustments, d)
		}
	}
	res.Warnings = ws
	return res
}

func validateTrade(t TradeEvent) error {
	switch {
	case t.Kind != Buy && t.Kind != Sell:
		return fmt.Errorf("trade kind %s is neither buy nor sell", t.Kind)
	case t.Symbol == "":
		return fmt.Errorf("trade without symbol")
	case t.Date.IsZero():
		return fmt.Errorf("trade without date")
	case !t.Quantity.IsPositive():
		return fmt.Errorf("invalid quantity %s", t.Quantity)
	case t.UnitPrice.IsNegative():
		return fmt.Errorf("invalid unit price %s", t.UnitPrice)
	}
	return nil
}

// markToMarket returns the raw day over day change of the market value of
// trade t, in the account currency.
func (rv Revaluer) markToMarket(t TradeEvent, tradeToAccount decimal.Decimal, ws *warnings) ([]Adjustment, error) {
	history := rv.Prices[t.Symbol]
	quote := history.Currency
	if quote == "" {
		quote = t.Currency
	}
	quoteToAccount, err := rv.Rates.ToAccount(quote, rv.Currency)
	if err != nil {
		return nil, err
	}
	// The trade price expressed in the currency the market quotes in.
	paid := t.UnitPrice
	if quote != t.Currency {
		toForeign, err := rv.Rates.ToForeign(quote, rv.Currency)
		if err != nil {
			return nil, err
		}
		paid = t.UnitPrice.Mul(tradeToAccount).Mul(toForeign)
	}
	factor := t.Quantity.Mul(quoteToAccount)

	var deltas []Adjustment
	previous := paid
	lastClose, _ := history.Closes.Latest()
	for on, close := range history.Closes.Between(date.NewRange(t.Date, maxDate(t.Date, lastClose))) {
		deltas = append(deltas, Adjustment{
			Date:   on,
			Amount: close.Sub(previous).Mul(factor),
			Source: t.Symbol,
		})
		previous = close
	}

	if len(deltas) == 0 {
		if !history.LatestMarketPrice.IsPositive() {
			ws.add(MissingPriceData, t.Date, t.Symbol, ErrMissingPrice)
			return nil, nil
		}
		ws.add(MissingPriceData, t.Date, t.Symbol, fmt.Errorf("no close since %s, using latest market price %s", t.Date, history.LatestMarketPrice))
		on := rv.Latest
		if on.IsZero() || on.Before(t.Date) {
			on = t.Date
		}
		return []Adjustment{{
			Date:   on,
			Amount: history.LatestMarketPrice.Sub(paid).Mul(factor),
			Source: t.Symbol,
		}}, nil
	}

	if !rv.Latest.IsZero() && !rv.Latest.Before(t.Date) {
		// Line the final delta up with the last sample of the account, and
		// never leave a delta beyond it.
		for i := range deltas {
			if deltas[i].Date.After(rv.Latest) {
				deltas[i].Date = rv.Latest
			}
		}
		deltas[len(deltas)-1].Date = rv.Latest
	}
	return deltas, nil
}

func maxDate(a, b date.Date) date.Date {
	if b.After(a) {
		return b
	}
	return a
}
