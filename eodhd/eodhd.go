// Package eodhd fetches market prices from EOD Historical Data.
package eodhd

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/etnz/revgraph"
	"github.com/etnz/revgraph/date"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the root of the EODHD API.
const DefaultBaseURL = "https://eodhd.com/api"

// Client is a price source backed by the EODHD API.
//
// Histories are kept in memory for the life of the client, and responses on
// disk for the day if a cache directory is set.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	memory  *cache.Cache
	today   func() date.Date
}

var _ revgraph.PriceSource = (*Client)(nil)

// Option configures a Client.
type Option func(*options)

type options struct {
	baseURL  string
	base     http.RoundTripper
	cacheDir string
	rps      rate.Limit
	today    func() date.Date
}

// WithBaseURL sets the API root, mostly for tests.
func WithBaseURL(u string) Option { return func(o *options) { o.baseURL = strings.TrimRight(u, "/") } }

// WithTransport sets the transport requests are sent through.
func WithTransport(rt http.RoundTripper) Option { return func(o *options) { o.base = rt } }

// WithCacheDir caches successful responses in dir, for the day.
func WithCacheDir(dir string) Option { return func(o *options) { o.cacheDir = dir } }

// WithRateLimit sets the maximum number of requests per second.
func WithRateLimit(rps float64) Option { return func(o *options) { o.rps = rate.Limit(rps) } }

func withToday(today func() date.Date) Option { return func(o *options) { o.today = today } }

// New returns a client authenticated with apiKey.
func New(apiKey string, opts ...Option) *Client {
	o := options{
		baseURL: DefaultBaseURL,
		base:    http.DefaultTransport,
		rps:     5,
		today:   date.Today,
	}
	for _, opt := range opts {
		opt(&o)
	}

	var rt http.RoundTripper = &throttle{base: o.base, limiter: rate.NewLimiter(o.rps, 1)}
	if o.cacheDir != "" {
		rt = &diskCache{base: rt, dir: o.cacheDir, today: o.today}
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: o.baseURL,
		http:    &http.Client{Transport: rt, Timeout: 30 * time.Second},
		memory:  cache.New(time.Hour, 2*time.Hour),
		today:   o.today,
	}
}

// ticker returns the EODHD ticker of a symbol; symbols without exchange
// suffix are US listings.
func ticker(symbol string) string {
	if strings.Contains(symbol, ".") {
		return symbol
	}
	return symbol + ".US"
}

// PriceHistory returns the daily closes of symbol since from, and its latest
// market price.
//
// Failing to get the latest price is not an error, it is only needed when
// there is no close at all.
func (c *Client) PriceHistory(ctx context.Context, symbol string, from date.Date) (revgraph.PriceHistory, error) {
	key := fmt.Sprintf("%s@%s", symbol, from)
	if h, found := c.memory.Get(key); found {
		return h.(revgraph.PriceHistory), nil
	}

	t := ticker(symbol)
	closes, err := c.fetchCloses(ctx, t, from, c.today())
	if err != nil {
		return revgraph.PriceHistory{}, fmt.Errorf("cannot fetch closes of %s: %w", symbol, err)
	}
	h := revgraph.PriceHistory{Currency: quoteCurrency(t), Closes: closes}

	if latest, err := c.fetchLatest(ctx, t); err != nil {
		log.Debug().Err(err).Str("symbol", symbol).Msg("no latest market price")
	} else {
		h.LatestMarketPrice = latest
	}

	log.Debug().Str("symbol", symbol).Stringer("from", from).Int("closes", closes.Len()).Msg("price history fetched")
	c.memory.SetDefault(key, h)
	return h, nil
}
