package renderer

import (
	"bytes"
	"maps"
	"slices"
	"strconv"

	"github.com/etnz/revgraph"
	md "github.com/nao1215/markdown"
)

// RenderPrices renders one row per recorded price history, sorted by symbol.
func RenderPrices(prices map[string]revgraph.PriceHistory) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Market Prices")

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Symbol", "Currency", "Closes", "Last Close", "Latest"},
		Rows:   [][]string{},
	}
	for _, symbol := range slices.Sorted(maps.Keys(prices)) {
		h := prices[symbol]
		last := "-"
		if h.Closes.Len() > 0 {
			_, v := h.Closes.Latest()
			last = v.String()
		}
		latest := "-"
		if !h.LatestMarketPrice.IsZero() {
			latest = h.LatestMarketPrice.String()
		}
		table.Rows = append(table.Rows, []string{symbol, h.Currency, strconv.Itoa(h.Closes.Len()), last, latest})
	}
	doc.Table(table)

	return doc.String()
}
