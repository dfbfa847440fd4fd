package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/papertrade/papertrade"
)

type trackCmd struct{}

func (*trackCmd) Name() string     { return "track" }
func (*trackCmd) Synopsis() string { return "track a company in a portfolio" }
func (*trackCmd) Usage() string {
	return `ptc track <portfolio> <ticker>...

  Adds one or more companies to a portfolio without buying anything.
  Tracked companies take part in equal-split lump-sum investments.
`
}

func (c *trackCmd) SetFlags(f *flag.FlagSet) {}

func (c *trackCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Error: expected a portfolio name and at least one ticker.")
		return subcommands.ExitUsageError
	}
	id := f.Arg(0)
	for _, ticker := range f.Args()[1:] {
		if status := apply(papertrade.TrackOp{Cmd: papertrade.CmdTrack, Portfolio: id, Ticker: ticker}); status != subcommands.ExitSuccess {
			return status
		}
		fmt.Printf("Tracking %s in %q\n", ticker, id)
	}
	return subcommands.ExitSuccess
}
