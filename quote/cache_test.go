package quote

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/papertrade/papertrade"
	"github.com/papertrade/papertrade/date"
)

// stubSource serves a fixed series and counts fetches.
type stubSource struct {
	series  map[string]*papertrade.Series
	fetches int
}

func (s *stubSource) Series(ticker string) (*papertrade.Series, error) {
	s.fetches++
	if series, ok := s.series[ticker]; ok {
		return series, nil
	}
	return nil, fmt.Errorf("unknown ticker %q: %w", ticker, papertrade.ErrNotFound)
}

func testSeries(t *testing.T) *papertrade.Series {
	t.Helper()
	s := papertrade.NewSeries("GOOG")
	s.Append(papertrade.Candle{
		Date: date.New(2016, time.February, 29),
		Open: 700.32, High: 710.89, Low: 698.51, Close: 705.07, Volume: 3000000,
	})
	s.Append(papertrade.Candle{
		Date: date.New(2016, time.March, 1),
		Open: 703.62, High: 718.81, Low: 699.86, Close: 718.81, Volume: 2148608,
	})
	return s
}

func TestCache_PopulatesOnMiss(t *testing.T) {
	dir := t.TempDir()
	src := &stubSource{series: map[string]*papertrade.Series{"GOOG": testSeries(t)}}
	cache := NewCache(dir, src)

	series, err := cache.Series("GOOG")
	if err != nil {
		t.Fatalf("Series() failed: %v", err)
	}
	if series.Len() != 2 {
		t.Errorf("Len() = %d, want 2", series.Len())
	}
	if src.fetches != 1 {
		t.Errorf("fetches = %d, want 1", src.fetches)
	}
	if _, err := os.Stat(filepath.Join(dir, "goog.csv")); err != nil {
		t.Errorf("cache file missing: %v", err)
	}

	// second lookup is served from disk
	if _, err := cache.Series("GOOG"); err != nil {
		t.Fatalf("Series() from cache failed: %v", err)
	}
	if src.fetches != 1 {
		t.Errorf("fetches = %d after cached lookup, want 1", src.fetches)
	}
}

func TestCache_RoundTripKeepsValues(t *testing.T) {
	dir := t.TempDir()
	src := &stubSource{series: map[string]*papertrade.Series{"GOOG": testSeries(t)}}
	cache := NewCache(dir, src)

	if _, err := cache.Series("GOOG"); err != nil {
		t.Fatalf("Series() failed: %v", err)
	}
	series, err := cache.Series("GOOG")
	if err != nil {
		t.Fatalf("Series() from cache failed: %v", err)
	}
	c, ok := series.On(date.New(2016, time.February, 29))
	if !ok {
		t.Fatal("On() missed the leap day")
	}
	if c.Low != 698.51 || c.Volume != 3000000 || c.High != 710.89 {
		t.Errorf("candle = %+v", c)
	}
}

func TestCache_Refresh(t *testing.T) {
	dir := t.TempDir()
	src := &stubSource{series: map[string]*papertrade.Series{"GOOG": testSeries(t)}}
	cache := NewCache(dir, src)

	if _, err := cache.Series("GOOG"); err != nil {
		t.Fatalf("Series() failed: %v", err)
	}
	if _, err := cache.Refresh("GOOG"); err != nil {
		t.Fatalf("Refresh() failed: %v", err)
	}
	if src.fetches != 2 {
		t.Errorf("fetches = %d after refresh, want 2", src.fetches)
	}
}

func TestCache_UnknownTickerPropagates(t *testing.T) {
	cache := NewCache(t.TempDir(), &stubSource{})
	if _, err := cache.Series("NOPE"); !errors.Is(err, papertrade.ErrNotFound) {
		t.Errorf("Series() = %v, want ErrNotFound", err)
	}
}

func TestCache_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	cache := NewCache(dir, &stubSource{})
	if err := os.WriteFile(filepath.Join(dir, "bad.csv"), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.Series("BAD"); !errors.Is(err, papertrade.ErrUnavailable) {
		t.Errorf("Series() = %v, want ErrUnavailable", err)
	}
}

func TestCache_FileFormat(t *testing.T) {
	dir := t.TempDir()
	src := &stubSource{series: map[string]*papertrade.Series{"GOOG": testSeries(t)}}
	cache := NewCache(dir, src)
	if _, err := cache.Series("GOOG"); err != nil {
		t.Fatalf("Series() failed: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "goog.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if lines[0] != "timestamp,open,high,low,close,volume" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "2016-02-29,700.32,710.89,698.51,705.07,3000000" {
		t.Errorf("row = %q", lines[1])
	}
}
