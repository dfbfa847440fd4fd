package papertrade

import (
	"fmt"
	"slices"

	"github.com/papertrade/papertrade/date"
)

// Portfolio is an ordered collection of lots plus the set of tickers it
// tracks. A ticker can be tracked with zero lots, but every lot's ticker is
// always tracked. At most one dollar-cost-averaging descriptor is attached at
// a time; the flag remembers that one ever was.
type Portfolio struct {
	tickers []string // tracked tickers, insertion order
	lots    []Lot    // insertion order
	dca     *DollarCostAverage
	dcaSet  bool
}

// NewPortfolio returns a new empty portfolio.
func NewPortfolio() *Portfolio { return &Portfolio{} }

// Tracks reports whether the ticker is tracked.
func (p *Portfolio) Tracks(ticker string) bool { return slices.Contains(p.tickers, ticker) }

// Track adds a ticker to the tracked set without buying anything.
func (p *Portfolio) Track(ticker string) error {
	if p.Tracks(ticker) {
		return fmt.Errorf("ticker %q is already tracked: %w", ticker, ErrValidation)
	}
	p.tickers = append(p.tickers, ticker)
	return nil
}

// Tickers returns a copy of the tracked tickers, in insertion order.
func (p *Portfolio) Tickers() []string { return slices.Clone(p.tickers) }

// Lots returns a copy of the lot sequence, in insertion order.
func (p *Portfolio) Lots() []Lot { return slices.Clone(p.lots) }

// add appends a lot, tracking its ticker if needed.
func (p *Portfolio) add(l Lot) {
	if !p.Tracks(l.Ticker) {
		p.tickers = append(p.tickers, l.Ticker)
	}
	p.lots = append(p.lots, l)
}

// CostBasis returns the sum of all lots' cost basis, exact.
func (p *Portfolio) CostBasis() Money {
	var total Money
	for _, l := range p.lots {
		total = total.Add(l.CostBasis)
	}
	return total
}

// CostBasisAsOf returns the sum of cost basis over lots purchased on or
// before 'day'. Lots purchased after it contribute zero.
func (p *Portfolio) CostBasisAsOf(day date.Date) Money {
	var total Money
	for _, l := range p.lots {
		total = total.Add(l.CostBasisAsOf(day))
	}
	return total
}

// FirstPurchase returns the earliest purchase date across all lots, or false
// when the portfolio holds no lots.
func (p *Portfolio) FirstPurchase() (date.Date, bool) {
	if len(p.lots) == 0 {
		return date.Date{}, false
	}
	first := p.lots[0].Date
	for _, l := range p.lots[1:] {
		if l.Date.Before(first) {
			first = l.Date
		}
	}
	return first, true
}

// Strategy returns the attached dollar-cost-averaging descriptor, if any.
func (p *Portfolio) Strategy() (*DollarCostAverage, bool) { return p.dca, p.dca != nil }

// DollarCostAveraged reports whether a DCA strategy has ever been attached.
func (p *Portfolio) DollarCostAveraged() bool { return p.dcaSet }

// setStrategy attaches a descriptor, replacing any prior one.
func (p *Portfolio) setStrategy(dca *DollarCostAverage) {
	p.dca = dca
	p.dcaSet = true
}
