package quote

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/papertrade/papertrade"
	"github.com/papertrade/papertrade/date"
)

const samplePayload = `{
  "Meta Data": {
    "1. Information": "Daily Prices (open, high, low, close) and Volumes",
    "2. Symbol": "GOOG"
  },
  "Time Series (Daily)": {
    "2016-03-01": {
      "1. open": "703.62",
      "2. high": "718.81",
      "3. low": "699.86",
      "4. close": "718.81",
      "5. volume": "2148608"
    },
    "2016-02-29": {
      "1. open": "700.32",
      "2. high": "710.89",
      "3. low": "698.51",
      "4. close": "705.07",
      "5. volume": "3000000"
    }
  }
}`

func TestParseSeries(t *testing.T) {
	var jobj any
	if err := json.Unmarshal([]byte(samplePayload), &jobj); err != nil {
		t.Fatal(err)
	}
	series, err := parseSeries("GOOG", jobj)
	if err != nil {
		t.Fatalf("parseSeries() failed: %v", err)
	}
	if series.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", series.Len())
	}
	c, ok := series.On(date.New(2016, time.February, 29))
	if !ok {
		t.Fatal("On() missed the leap day")
	}
	if c.Open != 700.32 || c.High != 710.89 || c.Low != 698.51 || c.Close != 705.07 || c.Volume != 3000000 {
		t.Errorf("candle = %+v", c)
	}
}

func TestParseSeries_Errors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"no time series", `{"Meta Data": {}}`},
		{"bad date key", `{"Time Series (Daily)": {"yesterday": {}}}`},
		{"missing field", `{"Time Series (Daily)": {"2016-02-29": {"1. open": "700.32"}}}`},
		{"non numeric field", `{"Time Series (Daily)": {"2016-02-29": {
			"1. open": "x", "2. high": "1", "3. low": "1", "4. close": "1", "5. volume": "1"}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var jobj any
			if err := json.Unmarshal([]byte(tt.payload), &jobj); err != nil {
				t.Fatal(err)
			}
			if _, err := parseSeries("GOOG", jobj); !errors.Is(err, papertrade.ErrUnavailable) {
				t.Errorf("parseSeries() = %v, want ErrUnavailable", err)
			}
		})
	}
}

// avServer fakes the AlphaVantage endpoint, answering per key.
func avServer(t *testing.T, answers map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Query().Get("apikey")
		body, ok := answers[key]
		if !ok {
			t.Errorf("unexpected apikey %q", key)
			body = "{}"
		}
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

// testFetcher points an AlphaVantage fetcher at the fake server, bypassing
// the on-disk response cache.
func testFetcher(t *testing.T, server *httptest.Server, keys ...string) *AlphaVantage {
	t.Helper()
	av, err := NewAlphaVantage(keys...)
	if err != nil {
		t.Fatal(err)
	}
	av.client = server.Client()
	av.base = server.URL + "/query?symbol=%s&apikey=%s"
	return av
}

func TestAlphaVantage_Series(t *testing.T) {
	server := avServer(t, map[string]string{"k1": samplePayload})
	av := testFetcher(t, server, "k1")

	series, err := av.Series("GOOG")
	if err != nil {
		t.Fatalf("Series() failed: %v", err)
	}
	if series.Len() != 2 {
		t.Errorf("Len() = %d, want 2", series.Len())
	}
}

func TestAlphaVantage_RotatesRateLimitedKeys(t *testing.T) {
	server := avServer(t, map[string]string{
		"k1": `{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."}`,
		"k2": samplePayload,
	})
	av := testFetcher(t, server, "k1", "k2")

	series, err := av.Series("GOOG")
	if err != nil {
		t.Fatalf("Series() failed: %v", err)
	}
	if series.Len() != 2 {
		t.Errorf("Len() = %d, want 2", series.Len())
	}
	if av.keyIndex != 1 {
		t.Errorf("keyIndex = %d, want 1", av.keyIndex)
	}
}

func TestAlphaVantage_AllKeysRateLimited(t *testing.T) {
	note := `{"Note": "rate limited"}`
	server := avServer(t, map[string]string{"k1": note, "k2": note})
	av := testFetcher(t, server, "k1", "k2")

	if _, err := av.Series("GOOG"); !errors.Is(err, papertrade.ErrUnavailable) {
		t.Errorf("Series() = %v, want ErrUnavailable", err)
	}
}

func TestAlphaVantage_UnknownTicker(t *testing.T) {
	server := avServer(t, map[string]string{
		"k1": `{"Error Message": "Invalid API call. Please retry or visit the documentation."}`,
	})
	av := testFetcher(t, server, "k1")

	if _, err := av.Series("NOPE"); !errors.Is(err, papertrade.ErrNotFound) {
		t.Errorf("Series() = %v, want ErrNotFound", err)
	}
}

func TestAlphaVantage_BadTicker(t *testing.T) {
	av, err := NewAlphaVantage("k1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := av.Series("not a ticker"); !errors.Is(err, papertrade.ErrValidation) {
		t.Errorf("Series() = %v, want ErrValidation", err)
	}
}

func TestNewAlphaVantage_NoKeys(t *testing.T) {
	if _, err := NewAlphaVantage(); !errors.Is(err, papertrade.ErrUnavailable) {
		t.Errorf("NewAlphaVantage() = %v, want ErrUnavailable", err)
	}
}
