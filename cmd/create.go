package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/papertrade/papertrade"
)

type createCmd struct{}

func (*createCmd) Name() string     { return "create" }
func (*createCmd) Synopsis() string { return "create a new empty portfolio" }
func (*createCmd) Usage() string {
	return `ptc create <portfolio>

  Creates a new empty portfolio under the given alphanumeric name.
`
}

func (c *createCmd) SetFlags(f *flag.FlagSet) {}

func (c *createCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expected exactly one portfolio name.")
		return subcommands.ExitUsageError
	}
	id := f.Arg(0)
	if status := apply(papertrade.CreateOp{Cmd: papertrade.CmdCreate, Portfolio: id}); status != subcommands.ExitSuccess {
		return status
	}
	fmt.Printf("Created portfolio %q\n", id)
	return subcommands.ExitSuccess
}
