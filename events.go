package revgraph

import (
	"github.com/etnz/revgraph/date"
	"github.com/shopspring/decimal"
)

// CashFlowEvent is one row of the account's transaction table.
//
// Gross, Fee and Tax are magnitudes: the sign of the gross amount comes from
// the Kind, fees and taxes always increase the committed capital.
type CashFlowEvent struct {
	Date  date.Date
	Kind  Kind
	Gross decimal.Decimal
	Fee   decimal.Decimal
	Tax   decimal.Decimal
}

// NetDelta returns the change in committed capital caused by this event.
func (e CashFlowEvent) NetDelta() decimal.Decimal {
	return e.Kind.Sign().Mul(e.Gross.Abs()).Add(e.TaxAndFee())
}

// TaxAndFee returns the cost drag of this event.
func (e CashFlowEvent) TaxAndFee() decimal.Decimal { return e.Fee.Abs().Add(e.Tax.Abs()) }

// TradeEvent is a trade on a security held outside of the account's
// performance series. Its price is in Currency.
type TradeEvent struct {
	Kind      Kind // Buy or Sell
	Symbol    string
	Date      date.Date
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Fee       decimal.Decimal
	Tax       decimal.Decimal
	Currency  string
}

// ManualAdjustment is an absolute correction of the account value, effective
// from Date onward.
type ManualAdjustment struct {
	Date   date.Date
	Amount decimal.Decimal
}

// ExchangeRate holds two independent conversion factors for a currency.
//
// ToAccount converts an amount in Currency into the account currency.
// ToForeign converts an account currency amount into Currency; it is only
// used to express a trade price in the currency its market quotes in.
type ExchangeRate struct {
	Currency  string
	ToAccount decimal.Decimal
	ToForeign decimal.Decimal
}

// PercentPoint is one sample of the account's percentage-return series.
type PercentPoint struct {
	Date    date.Date
	Percent decimal.Decimal
}

// PriceHistory is the daily close of a security, as returned by a price
// collaborator.
type PriceHistory struct {
	Currency          string
	Closes            date.History[decimal.Decimal]
	LatestMarketPrice decimal.Decimal // zero if unknown
}
