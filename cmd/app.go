// Package cmd implements the CLI application driving the simulator.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/papertrade/papertrade"
	"github.com/papertrade/papertrade/quote"
)

// Register registers every subcommand on the commander.
func Register(c *subcommands.Commander) {
	c.Register(&createCmd{}, "portfolios")
	c.Register(&trackCmd{}, "portfolios")
	c.Register(&buyCmd{}, "portfolios")
	c.Register(&listCmd{}, "portfolios")

	c.Register(&costBasisCmd{}, "reports")
	c.Register(&valueCmd{}, "reports")
	c.Register(&graphCmd{}, "reports")

	c.Register(&investCmd{}, "strategies")
	c.Register(&investWeightedCmd{}, "strategies")
	c.Register(&dcaCmd{}, "strategies")
	c.Register(&saveStrategyCmd{}, "strategies")
	c.Register(&retrieveStrategyCmd{}, "strategies")

	c.Register(&saveCmd{}, "files")
	c.Register(&retrieveCmd{}, "files")

	c.Register(&updateCmd{}, "quotes")

	c.Register(&topicCmd{}, "documentation")
}

// Names lists every subcommand name, for shell completion.
func Names() []string {
	return []string{
		"create", "track", "buy", "list",
		"cost-basis", "value", "graph",
		"invest", "invest-weighted", "dca", "save-strategy", "retrieve-strategy",
		"save", "retrieve",
		"update",
		"topic",
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "ptc.yaml", "Path to the configuration file")
var verbose = flag.Bool("v", false, "Enable debug logging")

// Setup configures logging. The main package calls it once after flag parsing.
func Setup() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// Config holds the application settings read from the YAML configuration
// file. Every field has a working default, so the file is optional.
type Config struct {
	// DataDir holds one price CSV per ticker.
	DataDir string `yaml:"data_dir"`
	// StoreDir is the root of the portfolio, strategy and temp folders.
	StoreDir string `yaml:"store_dir"`
	// Journal is the JSONL file recording every operation.
	Journal string `yaml:"journal"`
	// APIKeys are AlphaVantage keys, rotated on rate limiting.
	APIKeys []string `yaml:"api_keys"`
}

func loadConfig() (*Config, error) {
	cfg := &Config{
		DataDir:  ".data",
		StoreDir: ".",
		Journal:  "journal.jsonl",
	}
	content, err := os.ReadFile(*configFile)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug().Str("file", *configFile).Msg("no configuration file, using defaults")
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read configuration %q: %w", *configFile, err)
	}
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse configuration %q: %w", *configFile, err)
	}
	return cfg, nil
}

// offlineSource stands in for the remote fetcher when no API key is
// configured: cached tickers still work, anything else is unavailable.
type offlineSource struct{}

func (offlineSource) Series(ticker string) (*papertrade.Series, error) {
	return nil, fmt.Errorf("no API key configured, cannot fetch %q: %w", ticker, papertrade.ErrUnavailable)
}

func priceSource(cfg *Config) papertrade.PriceSource {
	if key := os.Getenv("ALPHAVANTAGE_API_KEY"); key != "" {
		cfg.APIKeys = append(cfg.APIKeys, key)
	}
	av, err := quote.NewAlphaVantage(cfg.APIKeys...)
	if err != nil {
		log.Warn().Msg("no API key configured, only already cached tickers are available")
		return quote.NewCache(cfg.DataDir, offlineSource{})
	}
	return quote.NewCache(cfg.DataDir, av)
}

// loadRegistry rebuilds the registry by replaying the journal.
func loadRegistry() (*papertrade.Registry, *Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	r := papertrade.NewRegistry(priceSource(cfg))

	f, err := os.Open(cfg.Journal)
	if errors.Is(err, fs.ErrNotExist) {
		return r, cfg, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read journal %q: %w", cfg.Journal, err)
	}
	defer f.Close()
	ops, err := papertrade.DecodeJournal(f)
	if err != nil {
		return nil, nil, fmt.Errorf("journal %q is corrupt: %w", cfg.Journal, err)
	}
	if err := papertrade.Replay(r, ops); err != nil {
		return nil, nil, fmt.Errorf("cannot replay journal %q: %w", cfg.Journal, err)
	}
	return r, cfg, nil
}

// appendOperation records one applied operation at the end of the journal.
func appendOperation(cfg *Config, op papertrade.Operation) error {
	f, err := os.OpenFile(cfg.Journal, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("cannot open journal %q: %w", cfg.Journal, err)
	}
	defer f.Close()
	return papertrade.EncodeOperation(f, op)
}

// journalLotsAfter journals the lots a portfolio gained beyond the first n,
// one buy entry per lot. Batch commands call it whether the batch finished
// or failed halfway, so every committed purchase survives to the next
// invocation.
func journalLotsAfter(cfg *Config, p *papertrade.Portfolio, id string, n int) error {
	for _, lot := range p.Lots()[n:] {
		op := papertrade.BuyOp{
			Cmd:        papertrade.CmdBuy,
			Portfolio:  id,
			Ticker:     lot.Ticker,
			Amount:     lot.Amount().AsFloat(),
			Date:       lot.Date.String(),
			Commission: lot.Commission.AsFloat(),
		}
		if err := appendOperation(cfg, op); err != nil {
			return err
		}
	}
	return nil
}

// apply runs an operation against a freshly replayed registry and journals
// it on success. Most mutating subcommands reduce to this.
func apply(op papertrade.Operation) subcommands.ExitStatus {
	r, cfg, err := loadRegistry()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := op.Apply(r); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := appendOperation(cfg, op); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
