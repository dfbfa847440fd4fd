package quote

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"github.com/PaesslerAG/jsonpath"
	"github.com/rs/zerolog/log"

	"github.com/papertrade/papertrade"
	"github.com/papertrade/papertrade/date"
)

// alphaVantageURL is the daily time series endpoint, full output size so the
// whole history comes back in one call.
const alphaVantageURL = "https://www.alphavantage.co/query?function=TIME_SERIES_DAILY&outputsize=full&symbol=%s&apikey=%s"

// AlphaVantage fetches daily price series from alphavantage.co.
//
// The free tier rate-limits per key, so the fetcher accepts a list of keys
// and rotates to the next one when the API answers with a rate-limit note
// instead of data. HTTP responses are additionally cached on disk with a
// daily expiry, so repeated lookups of the same ticker within a day never
// leave the machine.
type AlphaVantage struct {
	keys     []string
	keyIndex int
	client   *http.Client
	base     string // endpoint override for tests
}

// NewAlphaVantage returns a fetcher rotating over the given API keys.
func NewAlphaVantage(keys ...string) (*AlphaVantage, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("no AlphaVantage API key given: %w", papertrade.ErrUnavailable)
	}
	return &AlphaVantage{keys: keys, client: newDailyCachingClient(), base: alphaVantageURL}, nil
}

// Series fetches and parses the full daily history of a ticker.
func (av *AlphaVantage) Series(ticker string) (*papertrade.Series, error) {
	if err := papertrade.ValidateTicker(ticker); err != nil {
		return nil, err
	}
	// one try per key: a rate-limited key rotates to the next
	for range av.keys {
		jobj, err := av.fetch(ticker)
		if err != nil {
			return nil, err
		}
		if msg, err := jsonpath.Get(`$["Error Message"]`, jobj); err == nil {
			return nil, fmt.Errorf("unknown ticker %q: %v: %w", ticker, msg, papertrade.ErrNotFound)
		}
		if note, err := jsonpath.Get(`$["Note"]`, jobj); err == nil {
			log.Warn().Str("ticker", ticker).Int("key", av.keyIndex).Interface("note", note).
				Msg("rate limited, rotating API key")
			av.keyIndex = (av.keyIndex + 1) % len(av.keys)
			continue
		}
		return parseSeries(ticker, jobj)
	}
	return nil, fmt.Errorf("all %d AlphaVantage keys are rate limited: %w", len(av.keys), papertrade.ErrUnavailable)
}

func (av *AlphaVantage) fetch(ticker string) (any, error) {
	addr := fmt.Sprintf(av.base, url.QueryEscape(ticker), av.keys[av.keyIndex])
	var jobj any
	if err := jwget(av.client, addr, &jobj); err != nil {
		return nil, fmt.Errorf("cannot fetch %q: %s: %w", ticker, err, papertrade.ErrUnavailable)
	}
	return jobj, nil
}

// parseSeries extracts the candle map from the AlphaVantage JSON payload.
func parseSeries(ticker string, jobj any) (*papertrade.Series, error) {
	jval, err := jsonpath.Get(`$["Time Series (Daily)"]`, jobj)
	if err != nil {
		return nil, fmt.Errorf("no data for %q: %s: %w", ticker, err, papertrade.ErrUnavailable)
	}
	days, ok := jval.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("no data for %q: unexpected payload shape: %w", ticker, papertrade.ErrUnavailable)
	}

	series := papertrade.NewSeries(ticker)
	// deterministic parse order makes failures reproducible
	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		day, err := date.Parse(k)
		if err != nil {
			return nil, fmt.Errorf("bad date %q in data for %q: %w", k, ticker, papertrade.ErrUnavailable)
		}
		fields, ok := days[k].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("bad record %q in data for %q: %w", k, ticker, papertrade.ErrUnavailable)
		}
		c := papertrade.Candle{Date: day}
		for name, dst := range map[string]*float64{
			"1. open":   &c.Open,
			"2. high":   &c.High,
			"3. low":    &c.Low,
			"4. close":  &c.Close,
			"5. volume": &c.Volume,
		} {
			raw, ok := fields[name].(string)
			if !ok {
				return nil, fmt.Errorf("missing %q on %s for %q: %w", name, k, ticker, papertrade.ErrUnavailable)
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("bad %q on %s for %q: %s: %w", name, k, ticker, err, papertrade.ErrUnavailable)
			}
			*dst = v
		}
		series.Append(c)
	}
	log.Debug().Str("ticker", ticker).Int("days", series.Len()).Msg("fetched series")
	return series, nil
}

var _ papertrade.PriceSource = (*AlphaVantage)(nil)
