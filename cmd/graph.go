package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/papertrade/papertrade"
)

type graphCmd struct {
	stdout bool
}

func (*graphCmd) Name() string     { return "graph" }
func (*graphCmd) Synopsis() string { return "export the portfolio's value over time as CSV" }
func (*graphCmd) Usage() string {
	return `ptc graph <portfolio> [-stdout]

  Samples the portfolio's value from the first purchase to today in roughly
  ten steps and writes date,value rows to the temp folder, or to stdout
  with -stdout. Days without market data carry the last known value
  forward.
`
}

func (c *graphCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.stdout, "stdout", false, "Write the rows to stdout instead of the temp folder.")
}

func (c *graphCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expected exactly one portfolio name.")
		return subcommands.ExitUsageError
	}
	r, cfg, err := loadRegistry()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	store := papertrade.NewStore(cfg.StoreDir)
	if c.stdout {
		if err := store.ExportGraph(r, f.Arg(0), os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	if err := store.SaveGraph(r, f.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Wrote %s\n", store.GraphFile())
	return subcommands.ExitSuccess
}
