package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/revgraph"
	"github.com/etnz/revgraph/date"
	"github.com/etnz/revgraph/renderer"
	json "github.com/goccy/go-json"
	"github.com/google/subcommands"
)

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	json bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the headline figures of the account" }
func (*summaryCmd) Usage() string {
	return `evr summary [-json]

  Displays the total committed capital, the latest account value, the return
  against committed capital, and the revenue of the revalued trades.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "Print the summary as JSON.")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, warnings, err := openEngine(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	s := e.Summary()
	_, ws := e.Revenue()
	warnings = append(warnings, ws...)

	if c.json {
		out := struct {
			Currency       string         `json:"currency"`
			On             date.Date      `json:"on"`
			TotalCommitted revgraph.Money `json:"totalCommitted"`
			TotalRevenue   revgraph.Money `json:"totalRevenue"`
			TotalReturn    string         `json:"totalReturn"`
			StockRevenue   revgraph.Money `json:"stockRevenue"`
		}{s.Currency, s.On, s.TotalCommitted, s.TotalRevenue, s.TotalReturn.Value().StringFixed(2), s.StockRevenue}
		if err := json.NewEncoder(os.Stdout).Encode(out); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding summary: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.RenderSummary(s, warnings))
	return subcommands.ExitSuccess
}
