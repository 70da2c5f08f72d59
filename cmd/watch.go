package cmd

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/etnz/revgraph"
	"github.com/etnz/revgraph/date"
	json "github.com/goccy/go-json"
	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"
)

// watchCmd holds the flags for the 'watch' subcommand.
type watchCmd struct {
	debounce time.Duration
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "answer window queries read from stdin" }
func (*watchCmd) Usage() string {
	return `evr watch [-debounce <duration>]

  Reads one window per line on stdin, as "<from> <to>" or "<from>..<to>",
  and prints a JSON view for each, one per line.

  Windows received in a quick burst are coalesced: only the last one is
  answered. A window equal to the previous answer is ignored.
`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	f.DurationVar(&c.debounce, "debounce", 150*time.Millisecond, "Quiet time before answering a window.")
}

func (c *watchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	e, warnings, err := openEngine(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", w)
	}

	windows := make(chan date.Range)
	go readWindows(ctx, os.Stdin, windows)

	enc := json.NewEncoder(os.Stdout)
	err = revgraph.NewSession(e).Watch(ctx, windows, c.debounce, func(v revgraph.View) {
		if err := enc.Encode(v); err != nil {
			log.Error().Err(err).Msg("cannot encode view")
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// readWindows sends the windows read from r, one per line, until EOF.
// Invalid lines are reported and skipped.
func readWindows(ctx context.Context, r io.Reader, windows chan<- date.Range) {
	defer close(windows)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		w, err := parseWindowLine(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing window %q: %v\n", line, err)
			continue
		}
		select {
		case windows <- w:
		case <-ctx.Done():
			return
		}
	}
	if err := scanner.Err(); err != nil {
		log.Error().Err(err).Msg("cannot read windows")
	}
}

// parseWindowLine parses "<from> <to>" or "<from>..<to>".
func parseWindowLine(line string) (date.Range, error) {
	fields := strings.Fields(strings.Replace(line, "..", " ", 1))
	if len(fields) != 2 {
		return date.Range{}, fmt.Errorf("want two dates, got %d", len(fields))
	}
	from, err := date.Parse(fields[0])
	if err != nil {
		return date.Range{}, err
	}
	to, err := date.Parse(fields[1])
	if err != nil {
		return date.Range{}, err
	}
	return date.NewRange(from, to), nil
}
