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

type buyCmd struct {
	on         string
	commission float64
}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "buy shares of a company for a dollar amount" }
func (*buyCmd) Usage() string {
	return `ptc buy <portfolio> <ticker> <amount> -on <date> [-commission <fee>]

  Converts the whole dollar amount to shares at the low price of the given
  day. The order is rejected when the market has no data for that day or
  when the share count would reach the day's traded volume.

Usage Examples:
$ ptc buy mygamble GOOG 4000 -on 2016-02-29 -commission 10
`
}

func (c *buyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.on, "on", "", "Purchase date (YYYY-MM-DD).")
	f.Float64Var(&c.commission, "commission", 0, "Commission added to the cost basis.")
}

func (c *buyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 3 {
		fmt.Fprintln(os.Stderr, "Error: expected a portfolio, a ticker and an amount.")
		return subcommands.ExitUsageError
	}
	if c.on == "" {
		fmt.Fprintln(os.Stderr, "Error: -on is required.")
		return subcommands.ExitUsageError
	}
	amount, err := strconv.ParseFloat(f.Arg(2), 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing amount: %v\n", err)
		return subcommands.ExitUsageError
	}
	op := papertrade.BuyOp{
		Cmd:        papertrade.CmdBuy,
		Portfolio:  f.Arg(0),
		Ticker:     f.Arg(1),
		Amount:     amount,
		Date:       c.on,
		Commission: c.commission,
	}
	if status := apply(op); status != subcommands.ExitSuccess {
		return status
	}
	fmt.Printf("Bought %s for %.2f on %s in %q\n", op.Ticker, op.Amount, op.Date, op.Portfolio)
	return subcommands.ExitSuccess
}
