package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/revgraph"
	"github.com/etnz/revgraph/renderer"
	"github.com/google/subcommands"
)

// fetchCmd implements the "fetch" command.
type fetchCmd struct{}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "fetches market prices of the traded securities from EODHD" }
func (*fetchCmd) Usage() string {
	return `evr fetch

  Fetches the daily closes of every traded security since its first trade,
  and records them in the snapshot file so that later commands can run
  offline.

  Requires the EODHD_API_KEY environment variable to be set or passed as a flag.
`
}

func (c *fetchCmd) SetFlags(f *flag.FlagSet) {}

func (c *fetchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if *offline {
		fmt.Fprintf(os.Stderr, "Error: cannot fetch while -offline\n")
		return subcommands.ExitUsageError
	}
	prices := priceSource()
	if prices == nil {
		fmt.Fprintf(os.Stderr, "Error: EODHD API key is not set. Use -eodhd-api-key flag or %s environment variable\n", EnvEodhdApiKey)
		return subcommands.ExitFailure
	}

	path := snapshotPath()
	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading snapshot %q: %v\n", path, err)
		return subcommands.ExitFailure
	}
	s, err := revgraph.DecodeSnapshot(bytes.NewReader(content))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding snapshot %q: %v\n", path, err)
		return subcommands.ExitFailure
	}

	in, warnings, err := revgraph.Collect(ctx, revgraph.Sources{Prices: prices, Trades: s.Trades})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not fetch from eodhd.com: %v\n", err)
		return subcommands.ExitFailure
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", w)
	}
	// Keep the recorded histories the fetch could not refresh.
	for symbol, h := range s.Prices {
		if _, ok := in.Prices[symbol]; !ok {
			in.Prices[symbol] = h
		}
	}

	var b bytes.Buffer
	if err := revgraph.WritePrices(bytes.NewReader(content), &b, in.Prices); err != nil {
		fmt.Fprintf(os.Stderr, "Error updating snapshot: %v\n", err)
		return subcommands.ExitFailure
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b.Bytes(), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing snapshot: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := os.Rename(tmp, path); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing snapshot: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.RenderPrices(in.Prices))
	fmt.Fprintf(os.Stderr, "✅ Successfully fetched from eodhd.com and updated %s.\n", path)
	return subcommands.ExitSuccess
}
