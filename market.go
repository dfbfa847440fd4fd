package papertrade

import (
	"fmt"
	"iter"
	"regexp"

	"github.com/papertrade/papertrade/date"
)

// tickerRegex checks the ticker format: 1 to 10 uppercase alphanumeric characters.
var tickerRegex = regexp.MustCompile(`^[A-Z0-9]{1,10}$`)

// ValidateTicker checks that a ticker has the expected format.
func ValidateTicker(ticker string) error {
	if !tickerRegex.MatchString(ticker) {
		return fmt.Errorf("invalid ticker %q: %w", ticker, ErrValidation)
	}
	return nil
}

// Candle is one daily record of a price series. The simulator only consumes
// Low (purchase price of the day) and Volume (purchasable quantity cap), but
// sources deliver and cache the full record.
type Candle struct {
	Date   date.Date
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Series holds the daily candles of a single ticker, sorted by date.
type Series struct {
	ticker  string
	candles date.History[Candle]
}

// NewSeries returns a new empty series for a ticker.
func NewSeries(ticker string) *Series { return &Series{ticker: ticker} }

// Ticker returns the ticker this series describes.
func (s *Series) Ticker() string { return s.ticker }

// Len returns the number of daily records.
func (s *Series) Len() int { return s.candles.Len() }

// Append records the candle under its own date, overwriting any previous
// record for that day.
func (s *Series) Append(c Candle) *Series {
	s.candles.Append(c.Date, c)
	return s
}

// On returns the candle of exactly that day.
func (s *Series) On(day date.Date) (Candle, bool) { return s.candles.Get(day) }

// Has reports whether the series holds a record for exactly that day.
func (s *Series) Has(day date.Date) bool { return s.candles.Has(day) }

// First returns the earliest recorded day.
func (s *Series) First() (date.Date, bool) {
	day, _ := s.candles.First()
	return day, s.candles.Len() > 0
}

// Candles returns an iterator over all candles in chronological order.
func (s *Series) Candles() iter.Seq[Candle] {
	return func(yield func(Candle) bool) {
		for _, c := range s.candles.Values() {
			if !yield(c) {
				return
			}
		}
	}
}

// Low returns the low price of exactly that day, or ErrUnavailable.
func (s *Series) Low(day date.Date) (Money, error) {
	c, ok := s.candles.Get(day)
	if !ok {
		return Money{}, fmt.Errorf("no price for %s on %s: %w", s.ticker, day, ErrUnavailable)
	}
	return M(c.Low), nil
}

// PriceSource resolves a ticker to its daily price series.
//
// Implementations may hit a remote API or a local cache; the simulator does
// not care. Failures come in two flavors: an unknown ticker wraps ErrNotFound,
// unreachable or unreadable data wraps ErrUnavailable.
type PriceSource interface {
	Series(ticker string) (*Series, error)
}
