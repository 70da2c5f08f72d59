package revgraph

import (
	"context"
	"fmt"
	"sync"

	"github.com/etnz/revgraph/date"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// CashFlowSource lists the account's cash-flow events, already filtered to
// the known kinds.
type CashFlowSource interface {
	CashFlowEvents(ctx context.Context) ([]CashFlowEvent, error)
}

// PercentSource returns the account's percentage-return series.
type PercentSource interface {
	PercentSeries(ctx context.Context) ([]PercentPoint, error)
}

// PriceSource returns the daily close history of a symbol since a date.
type PriceSource interface {
	PriceHistory(ctx context.Context, symbol string, from date.Date) (PriceHistory, error)
}

// Sources groups the collaborators the inputs are collected from.
type Sources struct {
	CashFlows   CashFlowSource
	Percent     PercentSource
	Prices      PriceSource // optional, required to revalue trades
	Trades      []TradeEvent
	Rates       Rates
	Adjustments []ManualAdjustment
}

// maxConcurrentFetches bounds the number of collaborator calls in flight.
const maxConcurrentFetches = 4

// Collect fetches everything the engine needs, concurrently, and returns
// once every fetch completed.
//
// A missing price history is not fatal, the trade is then revalued against
// its latest market price if any; failing to list cash flows or the
// percentage series is.
func Collect(ctx context.Context, src Sources) (Inputs, []Warning, error) {
	in := Inputs{
		Trades:      src.Trades,
		Rates:       src.Rates,
		Adjustments: src.Adjustments,
		Prices:      make(map[string]PriceHistory),
	}
	var (
		mu sync.Mutex // guards in.Prices and ws
		ws warnings
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)

	if src.CashFlows != nil {
		g.Go(func() error {
			events, err := src.CashFlows.CashFlowEvents(ctx)
			if err != nil {
				return fmt.Errorf("cannot list cash flows: %w", err)
			}
			in.Events = events
			return nil
		})
	}
	if src.Percent != nil {
		g.Go(func() error {
			points, err := src.Percent.PercentSeries(ctx)
			if err != nil {
				return fmt.Errorf("cannot read percentage series: %w", err)
			}
			in.Percent = points
			return nil
		})
	}
	if src.Prices != nil {
		for symbol, from := range firstTrades(src.Trades) {
			g.Go(func() error {
				history, err := src.Prices.PriceHistory(ctx, symbol, from)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					ws.add(MissingPriceData, from, symbol, err)
					return nil
				}
				in.Prices[symbol] = history
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return Inputs{}, nil, err
	}
	log.Debug().Int("events", len(in.Events)).Int("samples", len(in.Percent)).Int("histories", len(in.Prices)).Msg("inputs collected")
	return in, ws, nil
}

// firstTrades returns the date of the first trade of each symbol.
func firstTrades(trades []TradeEvent) map[string]date.Date {
	first := make(map[string]date.Date)
	for _, t := range trades {
		if t.Symbol == "" {
			continue
		}
		if on, ok := first[t.Symbol]; !ok || t.Date.Before(on) {
			first[t.Symbol] = t.Date
		}
	}
	return first
}
