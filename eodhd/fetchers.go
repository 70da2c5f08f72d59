package eodhd

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/revgraph/date"
	"github.com/shopspring/decimal"
)

// This file contains functions to access the EODHD API.

// fetchCloses returns the daily closes of an EODHD ticker since from.
// The EODHD ticker format is typically "SYMBOL.EXCHANGECODE".
func (c *Client) fetchCloses(ctx context.Context, ticker string, from, to date.Date) (date.History[decimal.Decimal], error) {
	// https://eodhd.com/api/eod/NVD.F?api_token=demo&fmt=json
	// [
	//
	//	{
	//		"date": "2024-02-13",
	//		"open": 675.066,
	//		"high": 684.219,
	//		"low": 648.659,
	//		"close": 668.445,
	//		"adjusted_close": 67.705,
	//		"volume": 0
	//	  },
	//
	// bounds are included in the response.
	addr := fmt.Sprintf("%s/eod/%s?fmt=json&api_token=%s&from=%s&to=%s",
		c.baseURL, url.PathEscape(ticker), url.QueryEscape(c.apiKey), from, to)
	type Info struct {
		Date  date.Date        `json:"date"`
		Close *decimal.Decimal `json:"close"` // null on days without trading
	}

	var closes date.History[decimal.Decimal]
	content := make([]Info, 0)
	if err := jwget(ctx, c.http, addr, &content); err != nil {
		return closes, err
	}
	for _, info := range content {
		if info.Close == nil || info.Date.IsZero() {
			continue
		}
		closes.Append(info.Date, *info.Close)
	}
	return closes, nil
}

// fetchLatest returns the latest market price of an EODHD ticker.
func (c *Client) fetchLatest(ctx context.Context, ticker string) (decimal.Decimal, error) {
	// https://eodhd.com/api/real-time/AAPL.US?api_token=demo&fmt=json
	// {"code":"AAPL.US","timestamp":1710532800,"gmtoffset":0,"open":171.17,
	//  "high":172.62,"low":170.285,"close":172.62,"volume":121752699,
	//  "previousClose":173,"change":-0.38,"change_p":-0.2197}
	addr := fmt.Sprintf("%s/real-time/%s?fmt=json&api_token=%s",
		c.baseURL, url.PathEscape(ticker), url.QueryEscape(c.apiKey))

	var jobj any
	if err := jwget(ctx, c.http, addr, &jobj); err != nil {
		return decimal.Zero, err
	}
	path := "$.close"
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return decimal.Zero, fmt.Errorf("error parsing %q: %q %w", ticker, path, err)
	}
	switch v := jval.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		// the API answers "NA" when there is no price
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return decimal.Zero, fmt.Errorf("cannot read latest price of %q: %q", ticker, v)
		}
		return decimal.NewFromFloat(f), nil
	default:
		return decimal.Zero, fmt.Errorf("cannot read latest price of %q: %v", ticker, jval)
	}
}

// exchangeCurrencies maps the exchange suffix of a ticker to the currency
// the exchange quotes in.
var exchangeCurrencies = map[string]string{
	"US":    "USD",
	"SW":    "CHF",
	"VX":    "CHF",
	"XETRA": "EUR",
	"F":     "EUR",
	"PA":    "EUR",
	"AS":    "EUR",
	"MI":    "EUR",
	"MC":    "EUR",
	"TO":    "CAD",
}

// quoteCurrency returns the currency a ticker is quoted in, or "" when the
// exchange is unknown.
func quoteCurrency(ticker string) string {
	i := strings.LastIndexByte(ticker, '.')
	if i < 0 {
		return exchangeCurrencies["US"]
	}
	return exchangeCurrencies[strings.ToUpper(ticker[i+1:])]
}
