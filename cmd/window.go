package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/revgraph/date"
	"github.com/etnz/revgraph/renderer"
	json "github.com/goccy/go-json"
	"github.com/google/subcommands"
)

// windowCmd holds the flags for the 'window' subcommand.
type windowCmd struct {
	from, to string
	json     bool
}

func (*windowCmd) Name() string     { return "window" }
func (*windowCmd) Synopsis() string { return "display the capital and revenue curves within a window" }
func (*windowCmd) Usage() string {
	return `evr window [-from <date>] [-to <date>] [-json]

  Displays the committed capital and the account value between two dates,
  bounds included. Both default to the extent of the account data.

  Dates are ISO (2024-03-01), day first (01.03.24) or relative (-2w).
`
}

func (c *windowCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "First day of the window.")
	f.StringVar(&c.to, "to", "", "Last day of the window.")
	f.BoolVar(&c.json, "json", false, "Print the view as JSON, points as {x: epoch ms, y: value}.")
}

func (c *windowCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, warnings, err := openEngine(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	r, err := parseWindow(c.from, c.to, e.Extent())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing window: %v\n", err)
		return subcommands.ExitUsageError
	}

	v := e.Window(r)
	v.Warnings = append(warnings, v.Warnings...)
	if c.json {
		if err := json.NewEncoder(os.Stdout).Encode(v); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding view: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.RenderWindow(v, e.Config().Currency))
	return subcommands.ExitSuccess
}

// parseWindow parses the window bounds, empty bounds default to extent's.
func parseWindow(from, to string, extent date.Range) (date.Range, error) {
	r := extent
	var err error
	if from != "" {
		if r.From, err = date.Parse(from); err != nil {
			return r, err
		}
	}
	if to != "" {
		if r.To, err = date.Parse(to); err != nil {
			return r, err
		}
	}
	return date.NewRange(r.From, r.To), nil
}
