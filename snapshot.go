package revgraph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/etnz/revgraph/date"
	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Snapshot is the decoded content of a snapshot file: everything the
// collaborators had fetched about an account.
//
// It implements CashFlowSource, PercentSource and PriceSource so that an
// engine can be built offline.
type Snapshot struct {
	Currency    string
	FeeMode     string
	Events      []CashFlowEvent
	Trades      []TradeEvent
	Rates       Rates
	Adjustments []ManualAdjustment
	Percent     []PercentPoint
	Prices      map[string]PriceHistory
	Warnings    []Warning // malformed records skipped while decoding
}

// The raw rows of a snapshot file. Amounts are strings to keep them exact.
type (
	rawSnapshot struct {
		Currency     string              `json:"currency"`
		FeeMode      string              `json:"feeMode"`
		Transactions []rawTransaction    `json:"transactions"`
		Trades       []rawTrade          `json:"trades"`
		Rates        []rawRate           `json:"rates"`
		Adjustments  []rawAdjustment     `json:"adjustments"`
		Performance  []rawPercent        `json:"performance"`
		Prices       map[string]rawPrice `json:"prices"`
	}
	rawTransaction struct {
		Date   string `json:"date" validate:"required"`
		Type   string `json:"type" validate:"required"`
		Amount string `json:"amount" validate:"required,numeric"`
		Fee    string `json:"fee" validate:"omitempty,numeric"`
		Tax    string `json:"tax" validate:"omitempty,numeric"`
	}
	rawTrade struct {
		Type     string `json:"type" validate:"required"`
		Symbol   string `json:"symbol" validate:"required"`
		Date     string `json:"date" validate:"required"`
		Quantity string `json:"quantity" validate:"required,numeric"`
		Price    string `json:"price" validate:"required,numeric"`
		Fee      string `json:"fee" validate:"omitempty,numeric"`
		Tax      string `json:"tax" validate:"omitempty,numeric"`
		Currency string `json:"currency" validate:"omitempty,len=3"`
	}
	rawRate struct {
		Currency  string `json:"currency" validate:"required,len=3"`
		ToAccount string `json:"toAccount" validate:"required,numeric"`
		ToForeign string `json:"toForeign" validate:"required,numeric"`
	}
	rawAdjustment struct {
		Date   string `json:"date" validate:"required"`
		Amount string `json:"amount" validate:"required,numeric"`
	}
	// rawPercent is a point of the performance chart: x is the epoch in
	// milliseconds, y the percentage.
	rawPercent struct {
		X *int64   `json:"x" validate:"required"`
		Y *float64 `json:"y" validate:"required"`
	}
	rawPrice struct {
		Currency string     `json:"currency,omitempty"`
		Latest   string     `json:"latest,omitempty" validate:"omitempty,numeric"`
		Closes   []rawClose `json:"closes"`
	}
	rawClose struct {
		Date  string  `json:"date" validate:"required"`
		Close *string `json:"close"` // null closes are skipped
	}
)

var validate = validator.New()

// OpenSnapshot decodes the snapshot file at path.
func OpenSnapshot(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := DecodeSnapshot(f)
	if err != nil {
		return nil, fmt.Errorf("cannot decode snapshot %q: %w", path, err)
	}
	return s, nil
}

// DecodeSnapshot decodes a snapshot in JSON.
//
// Records that fail to parse are skipped and reported in Warnings;
// transactions of any other type than the four known kinds are dropped.
func DecodeSnapshot(r io.Reader) (*Snapshot, error) {
	var raw rawSnapshot
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}
	s := &Snapshot{
		Currency: raw.Currency,
		FeeMode:  raw.FeeMode,
		Rates:    make(Rates),
		Prices:   make(map[string]PriceHistory),
	}
	var ws warnings

	for i, row := range raw.Transactions {
		e, err := row.parse()
		if errors.Is(err, ErrUnknownKind) {
			log.Debug().Int("row", i).Str("type", row.Type).Msg("transaction type ignored")
			continue
		}
		if err != nil {
			ws.add(MalformedRecord, date.Date{}, fmt.Sprintf("transaction #%d", i), err)
			continue
		}
		s.Events = append(s.Events, e)
	}
	for i, row := range raw.Trades {
		t, err := row.parse()
		if err != nil {
			ws.add(MalformedRecord, date.Date{}, fmt.Sprintf("trade #%d", i), err)
			continue
		}
		s.Trades = append(s.Trades, t)
	}
	for i, row := range raw.Rates {
		rate, err := row.parse()
		if err != nil {
			ws.add(MalformedRecord, date.Date{}, fmt.Sprintf("rate #%d", i), err)
			continue
		}
		s.Rates[rate.Currency] = rate
	}
	for i, row := range raw.Adjustments {
		a, err := row.parse()
		if err != nil {
			ws.add(MalformedRecord, date.Date{}, fmt.Sprintf("adjustment #%d", i), err)
			continue
		}
		s.Adjustments = append(s.Adjustments, a)
	}
	for i, row := range raw.Performance {
		if err := validate.Struct(row); err != nil {
			ws.add(MalformedRecord, date.Date{}, fmt.Sprintf("performance #%d", i), err)
			continue
		}
		s.Percent = append(s.Percent, PercentPoint{Date: date.FromUnixMilli(*row.X), Percent: decimal.NewFromFloat(*row.Y)})
	}
	for symbol, row := range raw.Prices {
		h, err := row.parse(symbol, &ws)
		if err != nil {
			ws.add(MalformedRecord, date.Date{}, symbol, err)
			continue
		}
		s.Prices[symbol] = h
	}
	s.Warnings = ws
	return s, nil
}

func (row rawTransaction) parse() (CashFlowEvent, error) {
	kind, err := ParseKind(row.Type)
	if err != nil {
		return CashFlowEvent{}, err
	}
	if err := validate.Struct(row); err != nil {
		return CashFlowEvent{}, err
	}
	on, err := date.Parse(row.Date)
	if err != nil {
		return CashFlowEvent{}, err
	}
	return CashFlowEvent{
		Date:  on,
		Kind:  kind,
		Gross: decimal.RequireFromString(row.Amount),
		Fee:   optionalDecimal(row.Fee),
		Tax:   optionalDecimal(row.Tax),
	}, nil
}

func (row rawTrade) parse() (TradeEvent, error) {
	if err := validate.Struct(row); err != nil {
		return TradeEvent{}, err
	}
	kind, err := ParseKind(row.Type)
	if err != nil {
		return TradeEvent{}, err
	}
	on, err := date.Parse(row.Date)
	if err != nil {
		return TradeEvent{}, err
	}
	return TradeEvent{
		Kind:      kind,
		Symbol:    row.Symbol,
		Date:      on,
		Quantity:  decimal.RequireFromString(row.Quantity),
		UnitPrice: decimal.RequireFromString(row.Price),
		Fee:       optionalDecimal(row.Fee),
		Tax:       optionalDecimal(row.Tax),
		Currency:  row.Currency,
	}, nil
}

func (row rawRate) parse() (ExchangeRate, error) {
	if err := validate.Struct(row); err != nil {
		return ExchangeRate{}, err
	}
	return ExchangeRate{
		Currency:  row.Currency,
		ToAccount: decimal.RequireFromString(row.ToAccount),
		ToForeign: decimal.RequireFromString(row.ToForeign),
	}, nil
}

func (row rawAdjustment) parse() (ManualAdjustment, error) {
	if err := validate.Struct(row); err != nil {
		return ManualAdjustment{}, err
	}
	on, err := date.Parse(row.Date)
	if err != nil {
		return ManualAdjustment{}, err
	}
	return ManualAdjustment{Date: on, Amount: decimal.RequireFromString(row.Amount)}, nil
}

func (row rawPrice) parse(symbol string, ws *warnings) (PriceHistory, error) {
	if err := validate.Struct(row); err != nil {
		return PriceHistory{}, err
	}
	h := PriceHistory{Currency: row.Currency, LatestMarketPrice: optionalDecimal(row.Latest)}
	for i, c := range row.Closes {
		if c.Close == nil {
			continue
		}
		on, err := date.Parse(c.Date)
		if err == nil {
			err = validate.Var(*c.Close, "numeric")
		}
		if err != nil {
			ws.add(MalformedRecord, date.Date{}, fmt.Sprintf("%s close #%d", symbol, i), err)
			continue
		}
		h.Closes.Append(on, decimal.RequireFromString(*c.Close))
	}
	return h, nil
}

// optionalDecimal parses an already validated, possibly empty, amount.
func optionalDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	return decimal.RequireFromString(s)
}

// CashFlowEvents implements CashFlowSource.
func (s *Snapshot) CashFlowEvents(context.Context) ([]CashFlowEvent, error) { return s.Events, nil }

// PercentSeries implements PercentSource.
func (s *Snapshot) PercentSeries(context.Context) ([]PercentPoint, error) { return s.Percent, nil }

// PriceHistory implements PriceSource with the prices recorded in the snapshot.
func (s *Snapshot) PriceHistory(_ context.Context, symbol string, from date.Date) (PriceHistory, error) {
	h, ok := s.Prices[symbol]
	if !ok {
		return PriceHistory{}, fmt.Errorf("%w: no price recorded for %s", ErrMissingPrice, symbol)
	}
	var since PriceHistory
	since.Currency, since.LatestMarketPrice = h.Currency, h.LatestMarketPrice
	for on, v := range h.Closes.Values() {
		if !on.Before(from) {
			since.Closes.Append(on, v)
		}
	}
	return since, nil
}

// Sources returns the sources to collect inputs from, prices are read from
// prices if not nil, from the snapshot otherwise.
func (s *Snapshot) Sources(prices PriceSource) Sources {
	if prices == nil {
		prices = s
	}
	return Sources{
		CashFlows:   s,
		Percent:     s,
		Prices:      prices,
		Trades:      s.Trades,
		Rates:       s.Rates,
		Adjustments: s.Adjustments,
	}
}

// WritePrices copies the snapshot read from r to w, with its price section
// replaced by prices. Other sections are copied as is.
func WritePrices(r io.Reader, w io.Writer, prices map[string]PriceHistory) error {
	var sections map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&sections); err != nil {
		return err
	}
	if sections == nil {
		sections = make(map[string]json.RawMessage)
	}
	raw := make(map[string]rawPrice, len(prices))
	for symbol, h := range prices {
		p := rawPrice{Currency: h.Currency, Closes: []rawClose{}}
		if !h.LatestMarketPrice.IsZero() {
			p.Latest = h.LatestMarketPrice.String()
		}
		for on, v := range h.Closes.Values() {
			close := v.String()
			p.Closes = append(p.Closes, rawClose{Date: on.String(), Close: &close})
		}
		raw[symbol] = p
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	sections["prices"] = encoded

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sections)
}
