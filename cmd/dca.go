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

type dcaCmd struct {
	from       string
	to         string
	period     int
	weights    string
	commission float64
}

func (*dcaCmd) Name() string     { return "dca" }
func (*dcaCmd) Synopsis() string { return "apply a dollar-cost-averaging strategy" }
func (*dcaCmd) Usage() string {
	return `ptc dca <portfolio> <amount> -from <date> -to <date> -period <days> -weights <ticker=pct;...> [-commission <fee>]

  Invests the weighted amount repeatedly: for each company, starting at the
  from date, buy whenever the market has data for the current day, then
  jump period days ahead; slide forward a day at a time over market
  holidays. No purchase ever happens on or after the to date.

Usage Examples:
$ ptc dca mygamble 100 -from 2019-01-01 -to 2019-12-31 -period 10 -weights "AAPL=60;MSFT=40" -commission 2
`
}

func (c *dcaCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "First date of the schedule (YYYY-MM-DD).")
	f.StringVar(&c.to, "to", "", "End of the schedule, exclusive (YYYY-MM-DD).")
	f.IntVar(&c.period, "period", 0, "Days between two purchases of the same company.")
	f.StringVar(&c.weights, "weights", "", "Percentage split, e.g. \"AAPL=60;MSFT=40\".")
	f.Float64Var(&c.commission, "commission", 0, "Commission per purchase.")
}

func (c *dcaCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Error: expected a portfolio name and an amount.")
		return subcommands.ExitUsageError
	}
	if c.from == "" || c.to == "" || c.period == 0 || c.weights == "" {
		fmt.Fprintln(os.Stderr, "Error: -from, -to, -period and -weights are required.")
		return subcommands.ExitUsageError
	}
	amount, err := strconv.ParseFloat(f.Arg(1), 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing amount: %v\n", err)
		return subcommands.ExitUsageError
	}
	op := papertrade.DCAOp{
		Cmd:        papertrade.CmdDCA,
		Portfolio:  f.Arg(0),
		Start:      c.from,
		End:        c.to,
		Amount:     amount,
		Period:     c.period,
		Weights:    c.weights,
		Commission: c.commission,
	}
	r, cfg, err := loadRegistry()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	p, err := r.Get(op.Portfolio)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	before := len(p.Lots())
	if applyErr := op.Apply(r); applyErr != nil {
		// keep the purchases that committed before the failure; the whole
		// descriptor is journaled only on a complete run
		if err := journalLotsAfter(cfg, p, op.Portfolio, before); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		fmt.Fprintln(os.Stderr, applyErr)
		fmt.Fprintf(os.Stderr, "%d purchases before the failure are kept.\n", len(p.Lots())-before)
		return subcommands.ExitFailure
	}
	if err := appendOperation(cfg, op); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Applied dollar-cost averaging to %q: %.2f every %d days from %s to %s\n",
		op.Portfolio, op.Amount, op.Period, op.Start, op.End)
	return subcommands.ExitSuccess
}
