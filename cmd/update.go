package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/papertrade/papertrade/quote"
)

type updateCmd struct{}

func (*updateCmd) Name() string     { return "update" }
func (*updateCmd) Synopsis() string { return "refetch the cached price series of a company" }
func (*updateCmd) Usage() string {
	return `ptc update <ticker>...

  Forces a refetch of each ticker's daily series from AlphaVantage and
  rewrites its cache file in the data directory.
`
}

func (c *updateCmd) SetFlags(f *flag.FlagSet) {}

func (c *updateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: expected at least one ticker.")
		return subcommands.ExitUsageError
	}
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	cache, ok := priceSource(cfg).(*quote.Cache)
	if !ok {
		fmt.Fprintln(os.Stderr, "Error: price source does not support updates.")
		return subcommands.ExitFailure
	}
	for _, ticker := range f.Args() {
		series, err := cache.Refresh(ticker)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Updated %s: %d days\n", ticker, series.Len())
	}
	return subcommands.ExitSuccess
}
