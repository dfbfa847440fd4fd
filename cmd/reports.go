package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type costBasisCmd struct {
	on string
}

func (*costBasisCmd) Name() string     { return "cost-basis" }
func (*costBasisCmd) Synopsis() string { return "report how much a portfolio cost to build" }
func (*costBasisCmd) Usage() string {
	return `ptc cost-basis <portfolio> [-on <date>]

  Sums the cost basis (purchase amounts plus commissions) of the lots
  bought on or before the given date. Defaults to all lots.
`
}

func (c *costBasisCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.on, "on", "", "Only count lots bought on or before this date (YYYY-MM-DD).")
}

func (c *costBasisCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expected exactly one portfolio name.")
		return subcommands.ExitUsageError
	}
	r, _, err := loadRegistry()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	var total float64
	if c.on == "" {
		total, err = r.CostBasis(f.Arg(0))
	} else {
		total, err = r.CostBasisAsOf(f.Arg(0), c.on)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%.2f\n", total)
	return subcommands.ExitSuccess
}

type valueCmd struct {
	on string
}

func (*valueCmd) Name() string     { return "value" }
func (*valueCmd) Synopsis() string { return "report what a portfolio is worth on a date" }
func (*valueCmd) Usage() string {
	return `ptc value <portfolio> [-on <date>]

  Prices every share held as of the given date at that day's low price.
  Defaults to today. Fails when the market has no data for the date.
`
}

func (c *valueCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.on, "on", "", "Valuation date (YYYY-MM-DD), defaults to today.")
}

func (c *valueCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expected exactly one portfolio name.")
		return subcommands.ExitUsageError
	}
	r, _, err := loadRegistry()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	var total float64
	if c.on == "" {
		total, err = r.Value(f.Arg(0))
	} else {
		total, err = r.ValueAsOf(f.Arg(0), c.on)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%.2f\n", total)
	return subcommands.ExitSuccess
}
