package papertrade

import (
	"fmt"

	"github.com/papertrade/papertrade/date"
)

// Lot is a single purchase of shares of a ticker on a date, used for cost
// basis and valuation. Created once at purchase time, immutable thereafter,
// owned exclusively by its portfolio.
type Lot struct {
	Ticker     string
	Date       date.Date
	Shares     Quantity
	CostBasis  Money // invested amount + commission
	Commission Money
}

// newLot executes the purchase algorithm against a price series:
// shares = amount / that day's low, cost basis = amount + commission.
// The requested date must have an exact record in the series, and the
// computed shares must stay below the day's traded volume.
func newLot(s *Series, day date.Date, amount, commission Money) (Lot, error) {
	c, ok := s.On(day)
	if !ok {
		return Lot{}, fmt.Errorf("no price for %s on %s: %w", s.Ticker(), day, ErrUnavailable)
	}
	shares := amount.DivPrice(M(c.Low))
	if shares.GreaterThanOrEqual(Q(c.Volume)) {
		return Lot{}, fmt.Errorf("buying %s shares of %s on %s exceeds the day's volume %v: %w",
			shares, s.Ticker(), day, c.Volume, ErrUnavailable)
	}
	return Lot{
		Ticker:     s.Ticker(),
		Date:       day,
		Shares:     shares,
		CostBasis:  amount.Add(commission),
		Commission: commission,
	}, nil
}

// CostBasisAsOf returns the lot's cost basis if it was purchased on or before
// 'day', and zero otherwise.
func (l Lot) CostBasisAsOf(day date.Date) Money {
	if l.Date.After(day) {
		return Money{}
	}
	return l.CostBasis
}

// Amount returns the pre-commission invested amount.
func (l Lot) Amount() Money { return l.CostBasis.Sub(l.Commission) }

func (l Lot) String() string {
	return fmt.Sprintf("%s %s %s shares cost %s", l.Date, l.Ticker, l.Shares, l.CostBasis)
}
