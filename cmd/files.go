package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/papertrade/papertrade"
)

// The save/retrieve commands exchange portfolios and strategies with flat
// CSV files under the store directory, independently of the journal.

type saveCmd struct{}

func (*saveCmd) Name() string     { return "save" }
func (*saveCmd) Synopsis() string { return "write a portfolio to a CSV file" }
func (*saveCmd) Usage() string {
	return `ptc save <portfolio>

  Writes the portfolio's lots as one CSV file under the portfolio folder,
  named after the portfolio.
`
}

func (c *saveCmd) SetFlags(f *flag.FlagSet) {}

func (c *saveCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	if err := store.SavePortfolio(r, f.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Saved portfolio %q\n", f.Arg(0))
	return subcommands.ExitSuccess
}

type retrieveCmd struct{}

func (*retrieveCmd) Name() string     { return "retrieve" }
func (*retrieveCmd) Synopsis() string { return "rebuild a portfolio from its CSV file" }
func (*retrieveCmd) Usage() string {
	return `ptc retrieve <portfolio>

  Reads the portfolio's CSV file and replays every lot as a fresh purchase
  at the recorded date. The portfolio must not already exist.
`
}

func (c *retrieveCmd) SetFlags(f *flag.FlagSet) {}

func (c *retrieveCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expected exactly one portfolio name.")
		return subcommands.ExitUsageError
	}
	r, cfg, err := loadRegistry()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	id := f.Arg(0)
	store := papertrade.NewStore(cfg.StoreDir)
	if err := store.RetrievePortfolio(r, id); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	// journal the rebuilt lots so the next invocation sees them
	if err := appendOperation(cfg, papertrade.CreateOp{Cmd: papertrade.CmdCreate, Portfolio: id}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	p, err := r.Get(id)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	for _, lot := range p.Lots() {
		op := papertrade.BuyOp{
			Cmd:        papertrade.CmdBuy,
			Portfolio:  id,
			Ticker:     lot.Ticker,
			Amount:     lot.Amount().AsFloat(),
			Date:       lot.Date.String(),
			Commission: lot.Commission.AsFloat(),
		}
		if err := appendOperation(cfg, op); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
	}
	fmt.Printf("Retrieved portfolio %q with %d lots\n", id, len(p.Lots()))
	return subcommands.ExitSuccess
}

type saveStrategyCmd struct {
	name string
}

func (*saveStrategyCmd) Name() string     { return "save-strategy" }
func (*saveStrategyCmd) Synopsis() string { return "write a portfolio's strategy to a CSV file" }
func (*saveStrategyCmd) Usage() string {
	return `ptc save-strategy <portfolio> [-name <file_name>]

  Writes the portfolio's dollar-cost-averaging descriptor under the
  strategy folder. Defaults to the portfolio's own name.
`
}

func (c *saveStrategyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Strategy file name, defaults to the portfolio name.")
}

func (c *saveStrategyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expected exactly one portfolio name.")
		return subcommands.ExitUsageError
	}
	r, cfg, err := loadRegistry()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	id := f.Arg(0)
	name := c.name
	if name == "" {
		name = id
	}
	store := papertrade.NewStore(cfg.StoreDir)
	if err := store.SaveStrategy(r, id, name); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Saved strategy of %q as %q\n", id, name)
	return subcommands.ExitSuccess
}

type retrieveStrategyCmd struct {
	name string
}

func (*retrieveStrategyCmd) Name() string { return "retrieve-strategy" }
func (*retrieveStrategyCmd) Synopsis() string {
	return "replay a saved strategy onto a portfolio"
}
func (*retrieveStrategyCmd) Usage() string {
	return `ptc retrieve-strategy <portfolio> [-name <file_name>]

  Reads a strategy file and re-executes the whole schedule against the
  portfolio. Defaults to the file named after the portfolio.
`
}

func (c *retrieveStrategyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Strategy file name, defaults to the portfolio name.")
}

func (c *retrieveStrategyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expected exactly one portfolio name.")
		return subcommands.ExitUsageError
	}
	r, cfg, err := loadRegistry()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	id := f.Arg(0)
	name := c.name
	if name == "" {
		name = id
	}
	store := papertrade.NewStore(cfg.StoreDir)
	if err := store.RetrieveStrategy(r, name, id); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	p, err := r.Get(id)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	dca, ok := p.Strategy()
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: portfolio %q has no strategy after replay.\n", id)
		return subcommands.ExitFailure
	}
	op := papertrade.DCAOp{
		Cmd:        papertrade.CmdDCA,
		Portfolio:  id,
		Start:      dca.Start.String(),
		End:        dca.End.String(),
		Amount:     dca.Amount,
		Period:     dca.Period,
		Weights:    dca.Weights.String(),
		Commission: dca.Commission,
	}
	if err := appendOperation(cfg, op); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Replayed strategy %q onto %q\n", name, id)
	return subcommands.ExitSuccess
}
