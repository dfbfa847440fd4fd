package papertrade

import (
	"fmt"
	"testing"
	"time"

	"github.com/papertrade/papertrade/date"
)

// memSource resolves series from an in-memory map. It records how many
// lookups were made, so tests can assert that validation happens before any
// price resolution.
type memSource struct {
	series  map[string]*Series
	lookups int
}

func (m *memSource) Series(ticker string) (*Series, error) {
	m.lookups++
	s, ok := m.series[ticker]
	if !ok {
		return nil, fmt.Errorf("unknown ticker %q: %w", ticker, ErrNotFound)
	}
	return s, nil
}

func weekday(d date.Date) time.Weekday {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC).Weekday()
}

// flatSeries builds a series with one candle per day over [from, to], all at
// the same low price and volume.
func flatSeries(ticker string, from, to date.Date, low, volume float64) *Series {
	s := NewSeries(ticker)
	for day := from; !day.After(to); day = day.Add(1) {
		s.Append(Candle{Date: day, Open: low + 1, High: low + 2, Low: low, Close: low + 1, Volume: volume})
	}
	return s
}

// newTestRegistry returns a registry over a fixed market:
//
//	GOOG            2016-02-29 only, low 698.51, volume 3000000
//	AAPL, MSFT, IBM 2019-01-01 .. 2019-03-31 daily, flat lows 100 / 50 / 25
//	GAPS            2019-01-01 .. 2019-01-31 weekdays only, low 10
func newTestRegistry(t *testing.T) (*Registry, *memSource) {
	t.Helper()

	goog := NewSeries("GOOG")
	goog.Append(Candle{
		Date: date.New(2016, time.February, 29),
		Open: 700.32, High: 710.89, Low: 698.51, Close: 705.07, Volume: 3000000,
	})

	gaps := NewSeries("GAPS")
	for day := date.New(2019, time.January, 1); !day.After(date.New(2019, time.January, 31)); day = day.Add(1) {
		if wd := weekday(day); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		gaps.Append(Candle{Date: day, Low: 10, Volume: 1000000})
	}

	from, to := date.New(2019, time.January, 1), date.New(2019, time.March, 31)
	src := &memSource{series: map[string]*Series{
		"GOOG": goog,
		"AAPL": flatSeries("AAPL", from, to, 100, 1000000),
		"MSFT": flatSeries("MSFT", from, to, 50, 1000000),
		"IBM":  flatSeries("IBM", from, to, 25, 1000000),
		"GAPS": gaps,
	}}
	return NewRegistry(src), src
}

// mustParse parses a date or fails the test.
func mustParse(t *testing.T, str string) date.Date {
	t.Helper()
	d, err := date.Parse(str)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", str, err)
	}
	return d
}

// mustCreate creates a portfolio or fails the test.
func mustCreate(t *testing.T, r *Registry, id string) {
	t.Helper()
	if err := r.Create(id); err != nil {
		t.Fatalf("Create(%q) failed: %v", id, err)
	}
}

// mustBuy buys or fails the test.
func mustBuy(t *testing.T, r *Registry, id, ticker string, amount float64, on string, commission float64) Lot {
	t.Helper()
	lot, err := r.Buy(id, ticker, amount, on, commission)
	if err != nil {
		t.Fatalf("Buy(%q, %q, %v, %q, %v) failed: %v", id, ticker, amount, on, commission, err)
	}
	return lot
}
