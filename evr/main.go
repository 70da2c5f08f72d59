package main

import (
	"context"
	"flag"
	"os"
	"path"
	"time"

	"github.com/etnz/revgraph/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var verbose = flag.Bool("v", false, "Log diagnostics to stderr.")

// completion describes the command line for shell completion.
func completion() *complete.Command {
	window := complete.Predictor(predict.Something)
	return &complete.Command{
		Sub: map[string]*complete.Command{
			"window":  {Flags: map[string]complete.Predictor{"from": window, "to": window, "json": predict.Nothing}},
			"summary": {Flags: map[string]complete.Predictor{"json": predict.Nothing}},
			"watch":   {Flags: map[string]complete.Predictor{"debounce": predict.Set{"100ms", "150ms", "500ms", "1s"}}},
			"fetch":   {},
			"topic":   {Flags: map[string]complete.Predictor{"list": predict.Nothing}, Args: predict.Set{"readme", "snapshot", "curves", "window", "*"}},
		},
		Flags: map[string]complete.Predictor{
			"input":         predict.Files("*.json"),
			"currency":      predict.Set{"CHF", "EUR", "USD", "GBP"},
			"fee-mode":      predict.Set{"include", "exclude"},
			"eodhd-api-key": predict.Something,
			"offline":       predict.Nothing,
			"markdown":      predict.Nothing,
			"v":             predict.Nothing,
		},
	}
}

func main() {
	// exits when invoked by the shell for completion.
	completion().Complete(path.Base(os.Args[0]))

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	cmd.LoadEnv()
	os.Exit(int(commander.Execute(context.Background())))
}
