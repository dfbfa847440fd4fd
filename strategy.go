package papertrade

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/papertrade/papertrade/date"
)

// Weight assigns a percentage of an investment amount to a ticker.
type Weight struct {
	Ticker  string
	Percent float64
}

// Weights is an ordered list of per-ticker percentages. Order is preserved
// through encoding so purchases replay in a stable order.
type Weights []Weight

// weightPrecision is the tolerance when checking that percentages sum to 100.
const weightPrecision = 1e-6

// Sum returns the total percentage.
func (w Weights) Sum() float64 {
	var sum float64
	for _, e := range w {
		sum += e.Percent
	}
	return sum
}

// Get returns the percentage assigned to a ticker.
func (w Weights) Get(ticker string) (float64, bool) {
	for _, e := range w {
		if e.Ticker == ticker {
			return e.Percent, true
		}
	}
	return 0, false
}

// Validate checks that every ticker appears once, every percentage is
// positive, and the total is 100.
func (w Weights) Validate() error {
	if len(w) == 0 {
		return fmt.Errorf("no weights given: %w", ErrValidation)
	}
	seen := make(map[string]bool, len(w))
	for _, e := range w {
		if err := ValidateTicker(e.Ticker); err != nil {
			return err
		}
		if seen[e.Ticker] {
			return fmt.Errorf("ticker %q is weighted twice: %w", e.Ticker, ErrValidation)
		}
		seen[e.Ticker] = true
		if e.Percent <= 0 {
			return fmt.Errorf("weight of %q must be positive, got %v: %w", e.Ticker, e.Percent, ErrValidation)
		}
	}
	if sum := w.Sum(); sum < 100-weightPrecision || sum > 100+weightPrecision {
		return fmt.Errorf("weights sum to %v, want 100: %w", sum, ErrValidation)
	}
	return nil
}

// covers checks that the weights cover exactly the given tracked set.
func (w Weights) covers(tickers []string) error {
	if len(w) != len(tickers) {
		return fmt.Errorf("got %d weights for %d tracked tickers: %w", len(w), len(tickers), ErrValidation)
	}
	for _, ticker := range tickers {
		if _, ok := w.Get(ticker); !ok {
			return fmt.Errorf("no weight for tracked ticker %q: %w", ticker, ErrValidation)
		}
	}
	return nil
}

// String encodes the weights as a semicolon-separated key-value list,
// e.g. "GOOG=60;AAPL=40".
func (w Weights) String() string {
	parts := make([]string, 0, len(w))
	for _, e := range w {
		parts = append(parts, e.Ticker+"="+strconv.FormatFloat(e.Percent, 'f', -1, 64))
	}
	return strings.Join(parts, ";")
}

// ParseWeights decodes a semicolon-separated key-value list of weights.
func ParseWeights(str string) (Weights, error) {
	str = strings.TrimSpace(str)
	if str == "" {
		return nil, fmt.Errorf("no weights given: %w", ErrValidation)
	}
	var w Weights
	for _, part := range strings.Split(str, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		ticker, percent, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("invalid weight %q, want ticker=percent: %w", part, ErrValidation)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(percent), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid weight %q: %s: %w", part, err, ErrValidation)
		}
		w = append(w, Weight{Ticker: strings.TrimSpace(ticker), Percent: v})
	}
	return w, nil
}

// DollarCostAverage describes a recurring investment: every period days
// between start and end, split amount across the weighted tickers.
type DollarCostAverage struct {
	Start      date.Date
	End        date.Date
	Amount     float64 // per-cycle amount, split by weights
	Period     int     // days between two purchases of the same ticker
	Weights    Weights
	Commission float64 // per trade
}

// Validate checks the descriptor before it is applied.
func (dca *DollarCostAverage) Validate() error {
	if err := dca.Weights.Validate(); err != nil {
		return err
	}
	if dca.Start.After(dca.End) {
		return fmt.Errorf("start date %s is after end date %s: %w", dca.Start, dca.End, ErrValidation)
	}
	if dca.Amount <= 0 {
		return fmt.Errorf("amount must be positive, got %v: %w", dca.Amount, ErrValidation)
	}
	if dca.Period < 1 {
		return fmt.Errorf("period must be at least one day, got %d: %w", dca.Period, ErrValidation)
	}
	return nil
}

// InvestEqually divides a total amount evenly across all tracked tickers and
// issues one buy per ticker on the given date, each with the given
// commission.
//
// A data failure on a ticker leaves the purchases already made committed.
func (r *Registry) InvestEqually(id string, amount float64, on string, commission float64) error {
	p, err := r.Get(id)
	if err != nil {
		return err
	}
	tickers := p.Tickers()
	if len(tickers) == 0 {
		return fmt.Errorf("portfolio %q tracks no tickers: %w", id, ErrValidation)
	}
	if amount <= 0 {
		return fmt.Errorf("amount must be positive, got %v: %w", amount, ErrValidation)
	}
	investment := amount / float64(len(tickers))
	for _, ticker := range tickers {
		if _, err := r.Buy(id, ticker, investment, on, commission); err != nil {
			return err
		}
	}
	return nil
}

// InvestWeighted invests weight percent of the amount in each tracked
// ticker. The weights must cover exactly the tracked set and sum to 100;
// anything else is rejected before the first purchase.
//
// As with InvestEqually, a mid-batch data failure does not roll back the
// earlier purchases.
func (r *Registry) InvestWeighted(id string, amount float64, on string, weights Weights, commission float64) error {
	p, err := r.Get(id)
	if err != nil {
		return err
	}
	if amount <= 0 {
		return fmt.Errorf("amount must be positive, got %v: %w", amount, ErrValidation)
	}
	if err := weights.Validate(); err != nil {
		return err
	}
	if err := weights.covers(p.Tickers()); err != nil {
		return err
	}
	for _, e := range weights {
		if _, err := r.Buy(id, e.Ticker, e.Percent/100*amount, on, commission); err != nil {
			return err
		}
	}
	return nil
}

// ApplyDollarCostAveraging validates and stores the descriptor on the
// portfolio (replacing any prior one), then replays the schedule.
//
// Each weighted ticker runs its own cursor: starting at the start date, scan
// forward one day at a time while the cursor is before the end date; on the
// first day the price source has data, buy amount*weight/100 and jump the
// cursor period days ahead, otherwise advance a single day and retry. Missing
// trading days therefore shift a purchase forward instead of aborting the
// strategy, and different tickers may purchase on different actual dates
// within the same nominal cycle. No purchase ever happens on or after the
// end date.
func (r *Registry) ApplyDollarCostAveraging(id string, dca DollarCostAverage) error {
	p, err := r.Get(id)
	if err != nil {
		return err
	}
	if err := dca.Validate(); err != nil {
		return err
	}
	p.setStrategy(&dca)

	for _, e := range dca.Weights {
		series, err := r.quotes.Series(e.Ticker)
		if err != nil {
			return err
		}
		investment := dca.Amount * e.Percent / 100
		for day := dca.Start; day.Before(dca.End); {
			if !series.Has(day) {
				day = day.Add(1)
				continue
			}
			if _, err := r.Buy(id, e.Ticker, investment, day.String(), dca.Commission); err != nil {
				return err
			}
			day = day.Add(dca.Period)
		}
	}
	return nil
}
