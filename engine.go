package revgraph

import (
	"fmt"
	"slices"

	"github.com/etnz/revgraph/date"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Config holds the settings of an Engine.
type Config struct {
	Currency string  // account currency, e.g. "CHF"
	FeeMode  FeeMode // base of the percentage conversion
	// Latest is the date of the latest data of the account. It defaults to
	// the last sample of the percentage series.
	Latest date.Date
}

// Inputs is the snapshot of everything the collaborators provided.
type Inputs struct {
	Events      []CashFlowEvent
	Trades      []TradeEvent
	Rates       Rates
	Adjustments []ManualAdjustment
	Percent     []PercentPoint
	Prices      map[string]PriceHistory // by trade symbol
}

// Engine holds the curves built from a snapshot of inputs.
//
// An Engine is immutable once built, it is safe to query it concurrently.
type Engine struct {
	cfg          Config
	capital      *Curve
	taxFee       *Curve
	basis        Basis
	snapshot     []PercentPoint // chronological, never modified
	adjustments  []Adjustment   // manual and revaluation
	stockRevenue decimal.Decimal
	warnings     []Warning // raised while building
}

// New builds the curves from in.
//
// It fails with ErrNoData only if in has no event, no trade and no sample;
// any other problem is reported as a warning and the offending record is
// left out.
func New(in Inputs, cfg Config) (*Engine, error) {
	if len(in.Events) == 0 && len(in.Trades) == 0 && len(in.Percent) == 0 {
		return nil, ErrNoData
	}

	e := &Engine{cfg: cfg}
	e.snapshot = slices.Clone(in.Percent)
	slices.SortStableFunc(e.snapshot, func(a, b PercentPoint) int { return a.Date.Compare(b.Date) })
	if e.cfg.Latest.IsZero() && len(e.snapshot) > 0 {
		e.cfg.Latest = e.snapshot[len(e.snapshot)-1].Date
	}

	net, taxFee := Aggregate(in.Events)
	rev := Revaluer{
		Currency: cfg.Currency,
		Rates:    in.Rates,
		Prices:   in.Prices,
		Latest:   e.cfg.Latest,
	}.Revalue(in.Trades, net, taxFee)
	e.warnings = append(e.warnings, rev.Warnings...)
	e.stockRevenue = rev.StockRevenue

	e.capital = BuildCurve(net)
	e.taxFee = BuildCurve(taxFee)
	e.basis = Basis{Capital: e.capital, TaxFee: e.taxFee, Mode: cfg.FeeMode, Currency: cfg.Currency}

	for _, m := range in.Adjustments {
		e.adjustments = append(e.adjustments, Adjustment{Date: m.Date, Amount: m.Amount, Source: "manual"})
	}
	e.adjustments = append(e.adjustments, rev.Adjustments...)

	log.Debug().
		Int("events", len(in.Events)).
		Int("trades", len(in.Trades)).
		Int("samples", len(e.snapshot)).
		Int("capitalPoints", e.capital.Len()).
		Int("adjustments", len(e.adjustments)).
		Msg("engine built")
	return e, nil
}

// Capital returns the committed capital curve.
func (e *Engine) Capital() *Curve { return e.capital }

// TaxFee returns the cumulative tax and fee curve.
func (e *Engine) TaxFee() *Curve { return e.taxFee }

// Warnings returns the warnings raised while building the engine.
func (e *Engine) Warnings() []Warning { return slices.Clone(e.warnings) }

// Config returns the engine configuration, with defaults resolved.
func (e *Engine) Config() Config { return e.cfg }

// Extent returns the smallest range covering every capital point and every sample.
func (e *Engine) Extent() date.Range {
	var days []date.Date
	if e.capital.Len() > 0 {
		first, _ := e.capital.h.Earliest()
		last, _ := e.capital.h.Latest()
		days = append(days, first, last)
	}
	if n := len(e.snapshot); n > 0 {
		days = append(days, e.snapshot[0].Date, e.snapshot[n-1].Date)
	}
	if len(days) == 0 {
		return date.Range{}
	}
	return date.NewRange(slices.MinFunc(days, date.Date.Compare), slices.MaxFunc(days, date.Date.Compare))
}

// View is the answer to a window query.
type View struct {
	ID       string // set by Session
	Range    date.Range
	Capital  []CurvePoint
	Revenue  []RevenuePoint
	Warnings []Warning
}

// MarshalJSON encodes the view the way charts consume it: points as x (epoch
// milliseconds) and y, warnings as messages.
func (v View) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("id", v.ID)
	w.Append("from", v.Range.From)
	w.Append("to", v.Range.To)
	w.Append("capital", nonNil(v.Capital))
	w.Append("revenue", nonNil(v.Revenue))
	var messages []string
	for _, warn := range v.Warnings {
		messages = append(messages, warn.Error())
	}
	w.Optional("warnings", messages)
	return w.MarshalJSON()
}

// nonNil encodes empty series as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Window returns the capital and revenue curves within r.
//
// Corrections are integrated again from the snapshot, scoped to r. Window
// never fails: in the worst case the view is empty and carries warnings.
func (e *Engine) Window(r date.Range) (v View) {
	r = date.NewRange(r.From, r.To)
	v.Range = r
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Stringer("window", r).Msg("window query failed")
			v = View{Range: r, Warnings: []Warning{{Kind: MalformedRecord, Subject: "window", Err: fmt.Errorf("window query failed: %v", rec)}}}
		}
	}()

	points, ws := Integrate(e.snapshot, e.adjustments, e.basis, &r)
	revenue := Reconcile(points, e.capital, e.basis)

	v.Capital = e.capital.Slice(r)
	v.Revenue = SliceRevenue(revenue, r)
	v.Warnings = ws
	return v
}

// Revenue returns the whole revenue curve.
func (e *Engine) Revenue() ([]RevenuePoint, []Warning) {
	points, ws := Integrate(e.snapshot, e.adjustments, e.basis, nil)
	return Reconcile(points, e.capital, e.basis), ws
}

// Summary holds the headline figures of the account.
type Summary struct {
	Currency       string
	On             date.Date
	TotalCommitted Money
	TotalRevenue   Money
	TotalReturn    Percent // revenue against committed capital
	StockRevenue   Money   // sum of the mark-to-market deltas of trades
}

// Summary returns the headline figures as of the latest sample.
func (e *Engine) Summary() Summary {
	cur := e.cfg.Currency
	s := Summary{
		Currency:     cur,
		On:           e.cfg.Latest,
		StockRevenue: M(e.stockRevenue, cur),
	}
	committed := e.capital.Total()
	s.TotalCommitted = M(committed, cur)

	revenue, _ := e.Revenue()
	if len(revenue) == 0 {
		s.TotalRevenue = M(committed, cur)
		return s
	}
	last := revenue[len(revenue)-1]
	s.TotalRevenue = M(last.Value, cur)
	if committed.IsPositive() {
		s.TotalReturn = P(last.Value.Div(committed).Sub(decimal.NewFromInt(1)).Mul(hundred))
	}
	if !last.Date.IsZero() {
		s.On = last.Date
	}
	return s
}
