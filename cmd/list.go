package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
)

type listCmd struct{}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list portfolios and their tracked companies" }
func (*listCmd) Usage() string {
	return `ptc list

  Lists every portfolio in the journal with its tracked companies.
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {}

func (c *listCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	r, _, err := loadRegistry()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	ids := r.IDs()
	if len(ids) == 0 {
		fmt.Println("No portfolios yet. Start with: ptc create <name>")
		return subcommands.ExitSuccess
	}
	for _, id := range ids {
		p, err := r.Get(id)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		fmt.Printf("%s: %d lots", id, len(p.Lots()))
		if tickers := p.Tickers(); len(tickers) > 0 {
			fmt.Printf(" (%s)", strings.Join(tickers, ", "))
		}
		fmt.Println()
	}
	return subcommands.ExitSuccess
}
