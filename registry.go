package papertrade

import (
	"fmt"
	"regexp"

	"github.com/papertrade/papertrade/date"
)

// idRegex checks the portfolio ID format: alphanumeric, no special characters.
var idRegex = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// ValidateID checks that a portfolio identifier has the expected format.
func ValidateID(id string) error {
	if !idRegex.MatchString(id) {
		return fmt.Errorf("invalid portfolio ID %q, want alphanumeric: %w", id, ErrValidation)
	}
	return nil
}

// ValuationPolicy selects how the valuation of a sampled series reacts to a
// day with no resolvable price.
type ValuationPolicy int

const (
	// Strict propagates the missing price as an error.
	Strict ValuationPolicy = iota
	// ForwardFill carries the previously computed value forward instead of
	// failing. Used by the graph export.
	ForwardFill
)

// Registry is the root aggregate: it maps unique portfolio IDs to portfolios
// and drives every operation on them, resolving prices through the injected
// PriceSource.
//
// The registry is not safe for concurrent use; callers serialize access.
type Registry struct {
	portfolios map[string]*Portfolio
	quotes     PriceSource
}

// NewRegistry returns an empty registry backed by the given price source.
func NewRegistry(quotes PriceSource) *Registry {
	return &Registry{
		portfolios: make(map[string]*Portfolio),
		quotes:     quotes,
	}
}

// Quotes returns the price source the registry resolves prices through.
func (r *Registry) Quotes() PriceSource { return r.quotes }

// Has reports whether a portfolio with that ID exists.
func (r *Registry) Has(id string) bool {
	_, ok := r.portfolios[id]
	return ok
}

// IDs returns the registered portfolio IDs, in no particular order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.portfolios))
	for id := range r.portfolios {
		ids = append(ids, id)
	}
	return ids
}

// Create registers a new empty portfolio under a unique alphanumeric ID.
func (r *Registry) Create(id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	if r.Has(id) {
		return fmt.Errorf("portfolio %q already exists: %w", id, ErrValidation)
	}
	r.portfolios[id] = NewPortfolio()
	return nil
}

// Get returns the portfolio with that ID.
func (r *Registry) Get(id string) (*Portfolio, error) {
	p, ok := r.portfolios[id]
	if !ok {
		return nil, fmt.Errorf("portfolio %q does not exist: %w", id, ErrNotFound)
	}
	return p, nil
}

// Track adds a ticker to a portfolio's tracked set without buying anything.
func (r *Registry) Track(id, ticker string) error {
	p, err := r.Get(id)
	if err != nil {
		return err
	}
	if err := ValidateTicker(ticker); err != nil {
		return err
	}
	return p.Track(ticker)
}

// Buy purchases amount worth of a ticker's shares on the given date.
//
// The date string is validated before any price lookup: it must be a real
// calendar day in canonical YYYY-MM-DD form. The purchase resolves the low
// price of exactly that day, computes shares = amount / low, and rejects the
// lot when the computed shares reach the day's traded volume. The ticker is
// tracked automatically if it was not yet.
func (r *Registry) Buy(id, ticker string, amount float64, on string, commission float64) (Lot, error) {
	p, err := r.Get(id)
	if err != nil {
		return Lot{}, err
	}
	day, err := date.Parse(on)
	if err != nil {
		return Lot{}, fmt.Errorf("%s: %w", err, ErrValidation)
	}
	if amount <= 0 {
		return Lot{}, fmt.Errorf("amount must be positive, got %v: %w", amount, ErrValidation)
	}
	if commission < 0 {
		return Lot{}, fmt.Errorf("commission cannot be negative, got %v: %w", commission, ErrValidation)
	}
	if err := ValidateTicker(ticker); err != nil {
		return Lot{}, err
	}
	series, err := r.quotes.Series(ticker)
	if err != nil {
		return Lot{}, err
	}
	lot, err := newLot(series, day, M(amount), M(commission))
	if err != nil {
		return Lot{}, err
	}
	p.add(lot)
	return lot, nil
}

// CostBasis returns the total cost basis of a portfolio, rounded to 2
// decimals at this boundary.
func (r *Registry) CostBasis(id string) (float64, error) {
	p, err := r.Get(id)
	if err != nil {
		return 0, err
	}
	return p.CostBasis().Round(), nil
}

// CostBasisAsOf returns the total cost basis of the lots purchased on or
// before the given date, rounded to 2 decimals.
func (r *Registry) CostBasisAsOf(id, on string) (float64, error) {
	p, err := r.Get(id)
	if err != nil {
		return 0, err
	}
	day, err := date.Parse(on)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", err, ErrValidation)
	}
	return p.CostBasisAsOf(day).Round(), nil
}

// Value returns the market value of a portfolio as of today, rounded to 2
// decimals.
func (r *Registry) Value(id string) (float64, error) {
	return r.ValueAsOf(id, date.Today().String())
}

// ValueAsOf returns the market value of a portfolio on the given date,
// rounded to 2 decimals: the sum over all lots of shares times that day's low
// price. The policy is strict: a lot whose ticker has no price on that exact
// day fails the whole valuation.
func (r *Registry) ValueAsOf(id, on string) (float64, error) {
	p, err := r.Get(id)
	if err != nil {
		return 0, err
	}
	day, err := date.Parse(on)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", err, ErrValidation)
	}
	v, err := r.valueOn(p, day)
	if err != nil {
		return 0, err
	}
	return v.Round(), nil
}

// valueOn computes the exact market value of a portfolio on a day.
func (r *Registry) valueOn(p *Portfolio, day date.Date) (Money, error) {
	var total Money
	series := make(map[string]*Series)
	for _, lot := range p.Lots() {
		s, ok := series[lot.Ticker]
		if !ok {
			var err error
			s, err = r.quotes.Series(lot.Ticker)
			if err != nil {
				return Money{}, err
			}
			series[lot.Ticker] = s
		}
		low, err := s.Low(day)
		if err != nil {
			return Money{}, err
		}
		total = total.Add(low.Mul(lot.Shares))
	}
	return total, nil
}

// ValueSeries samples the portfolio value every 'step' days over [from, to).
//
// With the Strict policy a day with no resolvable price fails the whole
// series. With ForwardFill it carries the previously computed value forward,
// starting at zero.
func (r *Registry) ValueSeries(id string, from, to date.Date, step int, policy ValuationPolicy) (*date.History[float64], error) {
	p, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if step < 1 {
		return nil, fmt.Errorf("step must be at least one day, got %d: %w", step, ErrValidation)
	}
	values := &date.History[float64]{}
	var previous Money
	for day := from; day.Before(to); day = day.Add(step) {
		v, err := r.valueOn(p, day)
		if err != nil {
			if policy == Strict {
				return nil, err
			}
			v = previous // no resolvable price: carry the last value forward
		}
		previous = v
		values.Append(day, v.Round())
	}
	return values, nil
}
