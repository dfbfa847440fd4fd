package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/google/subcommands"

	"github.com/papertrade/papertrade"
)

type investCmd struct {
	on         string
	commission float64
}

func (*investCmd) Name() string     { return "invest" }
func (*investCmd) Synopsis() string { return "invest a lump sum equally over the tracked companies" }
func (*investCmd) Usage() string {
	return `ptc invest <portfolio> <amount> -on <date> [-commission <fee>]

  Splits the amount equally over every tracked company and buys each slice
  on the given date. The commission applies to each purchase.
`
}

func (c *investCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.on, "on", "", "Purchase date (YYYY-MM-DD).")
	f.Float64Var(&c.commission, "commission", 0, "Commission per purchase.")
}

func (c *investCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Error: expected a portfolio name and an amount.")
		return subcommands.ExitUsageError
	}
	if c.on == "" {
		fmt.Fprintln(os.Stderr, "Error: -on is required.")
		return subcommands.ExitUsageError
	}
	amount, err := strconv.ParseFloat(f.Arg(1), 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing amount: %v\n", err)
		return subcommands.ExitUsageError
	}

	r, cfg, err := loadRegistry()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	id := f.Arg(0)
	p, err := r.Get(id)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	before := len(p.Lots())
	investErr := r.InvestEqually(id, amount, c.on, c.commission)
	// journal the purchases that actually committed, even when the batch
	// failed halfway: the engine does not roll back and neither do we
	if err := journalLotsAfter(cfg, p, id, before); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if investErr != nil {
		fmt.Fprintln(os.Stderr, investErr)
		fmt.Fprintf(os.Stderr, "%d purchases before the failure are kept.\n", len(p.Lots())-before)
		return subcommands.ExitFailure
	}
	fmt.Printf("Invested %.2f over %d companies in %q\n", amount, len(p.Tickers()), id)
	return subcommands.ExitSuccess
}

type investWeightedCmd struct {
	on         string
	weights    string
	commission float64
}

func (*investWeightedCmd) Name() string { return "invest-weighted" }
func (*investWeightedCmd) Synopsis() string {
	return "invest a lump sum split by percentage weights"
}
func (*investWeightedCmd) Usage() string {
	return `ptc invest-weighted <portfolio> <amount> -on <date> -weights <ticker=pct;...> [-commission <fee>]

  Splits the amount by percentage and buys each slice on the given date.
  Weights must be positive, sum to 100 and cover every tracked company;
  otherwise the whole order is rejected before any purchase.

Usage Examples:
$ ptc invest-weighted mygamble 1000 -on 2019-01-02 -weights "AAPL=60;MSFT=40"
`
}

func (c *investWeightedCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.on, "on", "", "Purchase date (YYYY-MM-DD).")
	f.StringVar(&c.weights, "weights", "", "Percentage split, e.g. \"AAPL=60;MSFT=40\".")
	f.Float64Var(&c.commission, "commission", 0, "Commission per purchase.")
}

func (c *investWeightedCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Error: expected a portfolio name and an amount.")
		return subcommands.ExitUsageError
	}
	if c.on == "" || c.weights == "" {
		fmt.Fprintln(os.Stderr, "Error: -on and -weights are required.")
		return subcommands.ExitUsageError
	}
	amount, err := strconv.ParseFloat(f.Arg(1), 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing amount: %v\n", err)
		return subcommands.ExitUsageError
	}
	weights, err := papertrade.ParseWeights(c.weights)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	r, cfg, err := loadRegistry()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	id := f.Arg(0)
	p, err := r.Get(id)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	before := len(p.Lots())
	investErr := r.InvestWeighted(id, amount, c.on, weights, c.commission)
	if err := journalLotsAfter(cfg, p, id, before); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if investErr != nil {
		fmt.Fprintln(os.Stderr, investErr)
		fmt.Fprintf(os.Stderr, "%d purchases before the failure are kept.\n", len(p.Lots())-before)
		return subcommands.ExitFailure
	}
	fmt.Printf("Invested %.2f over %d companies in %q\n", amount, len(weights), id)
	return subcommands.ExitSuccess
}
