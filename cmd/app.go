// Package cmd implements the CLI application that draws expense and revenue curves.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/revgraph"
	"github.com/etnz/revgraph/eodhd"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	EnvInput       = "EVR_INPUT"
	EnvCurrency    = "EVR_CURRENCY"
	EnvFeeMode     = "EVR_FEE_MODE"
	EnvEodhdApiKey = "EODHD_API_KEY"
	EnvCacheDir    = "EVR_CACHE_DIR"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&windowCmd{}, "curves")
	c.Register(&summaryCmd{}, "curves")
	c.Register(&watchCmd{}, "curves")

	c.Register(&fetchCmd{}, "market data")

	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	inputFile    = flag.String("input", "snapshot.json", "Path to the account snapshot file. Overrides "+EnvInput+".")
	currency     = flag.String("currency", "", "Account currency. Defaults to the snapshot's, then "+EnvCurrency+".")
	feeMode      = flag.String("fee-mode", "", "Base of the percentage returns: include or exclude taxes and fees. Defaults to the snapshot's, then "+EnvFeeMode+".")
	eodhdApiFlag = flag.String("eodhd-api-key", "", "EODHD API key used to fetch market prices. Overrides "+EnvEodhdApiKey+". Without a key, prices are read from the snapshot.")
	offline      = flag.Bool("offline", false, "Never fetch market prices, use the ones in the snapshot.")
	rawMarkdown  = flag.Bool("markdown", false, "Print raw markdown instead of rendering it for the terminal.")
)

// LoadEnv loads a .env file from the working directory, if any. Variables
// already set in the environment win.
func LoadEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("cannot load .env file")
	}
}

// flagOrEnv returns the flag value if set, the environment variable otherwise.
func flagOrEnv(flagValue, env string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(env)
}

// snapshotPath returns the path of the account snapshot.
func snapshotPath() string {
	if isFlagSet("input") {
		return *inputFile
	}
	if p := os.Getenv(EnvInput); p != "" {
		return p
	}
	return *inputFile
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// eodhdApiKey retrieves the EODHD API key from the command-line flag or the environment variable.
func eodhdApiKey() string { return flagOrEnv(*eodhdApiFlag, EnvEodhdApiKey) }

// priceSource returns the EODHD client when a key is available, nil otherwise.
func priceSource() revgraph.PriceSource {
	key := eodhdApiKey()
	if *offline || key == "" {
		return nil
	}
	opts := []eodhd.Option{}
	if dir := os.Getenv(EnvCacheDir); dir != "" {
		opts = append(opts, eodhd.WithCacheDir(dir))
	} else {
		opts = append(opts, eodhd.WithCacheDir(os.TempDir()))
	}
	return eodhd.New(key, opts...)
}

// engineConfig resolves the engine settings from the flags, the snapshot and the environment.
func engineConfig(s *revgraph.Snapshot) (revgraph.Config, error) {
	cfg := revgraph.Config{Currency: *currency}
	if cfg.Currency == "" {
		cfg.Currency = s.Currency
	}
	if cfg.Currency == "" {
		cfg.Currency = os.Getenv(EnvCurrency)
	}
	if cfg.Currency == "" {
		return cfg, fmt.Errorf("account currency is unknown, use -currency or %s", EnvCurrency)
	}

	mode := *feeMode
	if mode == "" {
		mode = s.FeeMode
	}
	if mode == "" {
		mode = os.Getenv(EnvFeeMode)
	}
	m, err := revgraph.ParseFeeMode(mode)
	if err != nil {
		return cfg, err
	}
	cfg.FeeMode = m
	return cfg, nil
}

// openEngine decodes the snapshot, collects the inputs and builds the engine.
// The warnings raised while collecting are returned along with the engine's.
func openEngine(ctx context.Context) (*revgraph.Engine, []revgraph.Warning, error) {
	s, err := revgraph.OpenSnapshot(snapshotPath())
	if err != nil {
		return nil, nil, err
	}
	cfg, err := engineConfig(s)
	if err != nil {
		return nil, nil, err
	}
	in, ws, err := revgraph.Collect(ctx, s.Sources(priceSource()))
	if err != nil {
		return nil, nil, err
	}
	e, err := revgraph.New(in, cfg)
	if err != nil {
		return nil, nil, err
	}
	warnings := append(s.Warnings, ws...)
	warnings = append(warnings, e.Warnings()...)
	return e, warnings, nil
}

// printMarkdown renders md for the terminal, or prints it raw.
func printMarkdown(md string) {
	if *rawMarkdown {
		fmt.Print(md)
		return
	}
	out, err := glamour.Render(md, "auto")
	if err != nil {
		log.Debug().Err(err).Msg("cannot render markdown")
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
