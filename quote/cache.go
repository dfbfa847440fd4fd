package quote

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/papertrade/papertrade"
	"github.com/papertrade/papertrade/date"
)

// cacheHeader matches the column order of the AlphaVantage CSV export, so a
// hand-downloaded file dropped in the data directory works as-is.
var cacheHeader = []string{"timestamp", "open", "high", "low", "close", "volume"}

// Cache is a lookup-or-populate price source: a ticker's series is read from
// one CSV file per ticker under dir, and fetched (then written) through the
// wrapped source only when the file does not exist yet.
//
// The cache never expires on its own; Refresh forces a refetch.
type Cache struct {
	dir    string
	source papertrade.PriceSource
}

// NewCache returns a cache over dir populating from source.
func NewCache(dir string, source papertrade.PriceSource) *Cache {
	return &Cache{dir: dir, source: source}
}

func (c *Cache) file(ticker string) string {
	return filepath.Join(c.dir, strings.ToLower(ticker)+".csv")
}

// Series returns the cached series of a ticker, populating the cache on a
// miss.
func (c *Cache) Series(ticker string) (*papertrade.Series, error) {
	f, err := os.Open(c.file(ticker))
	if errors.Is(err, fs.ErrNotExist) {
		return c.Refresh(ticker)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read data for %q: %s: %w", ticker, err, papertrade.ErrUnavailable)
	}
	defer f.Close()
	series, err := decodeSeries(ticker, f)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("ticker", ticker).Int("days", series.Len()).Msg("series from cache")
	return series, nil
}

// Refresh fetches the series from the wrapped source and rewrites the cache
// file.
func (c *Cache) Refresh(ticker string) (*papertrade.Series, error) {
	series, err := c.source.Series(ticker)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create data directory: %s: %w", err, papertrade.ErrUnavailable)
	}
	f, err := os.Create(c.file(ticker))
	if err != nil {
		return nil, fmt.Errorf("cannot write data for %q: %s: %w", ticker, err, papertrade.ErrUnavailable)
	}
	defer f.Close()
	if err := encodeSeries(f, series); err != nil {
		return nil, fmt.Errorf("cannot write data for %q: %s: %w", ticker, err, papertrade.ErrUnavailable)
	}
	log.Info().Str("ticker", ticker).Int("days", series.Len()).Str("file", c.file(ticker)).Msg("cached series")
	return series, nil
}

// encodeSeries writes the whole series in chronological order.
func encodeSeries(w io.Writer, series *papertrade.Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(cacheHeader); err != nil {
		return err
	}
	for c := range series.Candles() {
		row := []string{
			c.Date.String(),
			formatPrice(c.Open),
			formatPrice(c.High),
			formatPrice(c.Low),
			formatPrice(c.Close),
			strconv.FormatFloat(c.Volume, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatPrice(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// decodeSeries parses a per-ticker cache file.
func decodeSeries(ticker string, r io.Reader) (*papertrade.Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 6
	all, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("data file for %q is corrupt: %s: %w", ticker, err, papertrade.ErrUnavailable)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("data file for %q is empty: %w", ticker, papertrade.ErrUnavailable)
	}
	series := papertrade.NewSeries(ticker)
	for _, row := range all[1:] {
		day, err := date.Parse(row[0])
		if err != nil {
			return nil, fmt.Errorf("data file for %q is corrupt: %s: %w", ticker, err, papertrade.ErrUnavailable)
		}
		var fields [5]float64
		for i := range fields {
			fields[i], err = strconv.ParseFloat(row[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("data file for %q is corrupt: %s: %w", ticker, err, papertrade.ErrUnavailable)
			}
		}
		series.Append(papertrade.Candle{
			Date:   day,
			Open:   fields[0],
			High:   fields[1],
			Low:    fields[2],
			Close:  fields[3],
			Volume: fields[4],
		})
	}
	return series, nil
}

var _ papertrade.PriceSource = (*Cache)(nil)
