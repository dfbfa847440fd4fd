package papertrade

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

	"github.com/papertrade/papertrade/date"
)

// Store persists portfolios, strategies and graph exports as flat CSV files
// under a base directory:
//
//	<dir>/portfolio/<id>.csv   one row per lot
//	<dir>/strategy/<name>.csv  one dollar-cost-averaging descriptor
//	<dir>/temp/graphdata.csv   date,value rows for the chart renderer
//
// File names are lowercased, so IDs and strategy names are case-insensitive
// on disk.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store { return &Store{dir: dir} }

const portfolioHeader = "PurchaseDate,CompanyTicker,CostBasis,NumberOfShares,Commission"
const strategyHeader = "StartDate,EndDate,PeriodInDays,amount,weights,commission"

func (s *Store) portfolioFile(id string) string {
	return filepath.Join(s.dir, "portfolio", strings.ToLower(id)+".csv")
}

func (s *Store) strategyFile(name string) string {
	return filepath.Join(s.dir, "strategy", strings.ToLower(name)+".csv")
}

// GraphFile is the location of the last graph export.
func (s *Store) GraphFile() string {
	return filepath.Join(s.dir, "temp", "graphdata.csv")
}

// formatAmount writes a monetary value with at least one fractional digit,
// e.g. 4010 as "4010.0". The on-disk format always carries a decimal point.
func formatAmount(m Money) string {
	return ensurePoint(m.Decimal().String())
}

func formatFloat(v float64) string {
	return ensurePoint(strconv.FormatFloat(v, 'f', -1, 64))
}

func ensurePoint(s string) string {
	if !strings.Contains(s, ".") {
		return s + ".0"
	}
	return s
}

// create opens the file for writing, creating parent directories as needed.
func create(filename string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return nil, err
	}
	return os.Create(filename)
}

// SavePortfolio serializes every lot of the portfolio as one CSV row under a
// fixed header. A portfolio with no lots cannot be saved.
func (s *Store) SavePortfolio(r *Registry, id string) error {
	p, err := r.Get(id)
	if err != nil {
		return err
	}
	lots := p.Lots()
	if len(lots) == 0 {
		return fmt.Errorf("portfolio %q is empty: %w", id, ErrValidation)
	}
	f, err := create(s.portfolioFile(id))
	if err != nil {
		return fmt.Errorf("cannot write portfolio %q: %w", id, err)
	}
	defer f.Close()

	if err := s.encodePortfolio(f, lots); err != nil {
		return fmt.Errorf("cannot write portfolio %q: %w", id, err)
	}
	return nil
}

func (s *Store) encodePortfolio(w io.Writer, lots []Lot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(portfolioHeader, ",")); err != nil {
		return err
	}
	for _, lot := range lots {
		row := []string{
			lot.Date.String(),
			lot.Ticker,
			formatAmount(lot.CostBasis),
			lot.Shares.String(),
			formatAmount(lot.Commission),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// RetrievePortfolio reads a saved portfolio and replays each row as a buy
// with amount = costBasis - commission, reconstructing the pre-commission
// invested amount. Shares are never copied from the file: they are recomputed
// through the purchase algorithm, so retrieval fails if the underlying price
// series has changed incompatibly.
//
// The target ID must not be registered yet; a missing or corrupt file
// surfaces as ErrNotFound.
func (s *Store) RetrievePortfolio(r *Registry, id string) error {
	if r.Has(id) {
		return fmt.Errorf("portfolio %q already exists: %w", id, ErrValidation)
	}
	f, err := os.Open(s.portfolioFile(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("portfolio %q is not present in saved data: %w", id, ErrNotFound)
		}
		return fmt.Errorf("cannot read portfolio %q: %w", id, err)
	}
	defer f.Close()

	rows, err := readRows(f, 5)
	if err != nil {
		return fmt.Errorf("portfolio file for %q is corrupt: %s: %w", id, err, ErrNotFound)
	}
	if err := r.Create(id); err != nil {
		return err
	}
	for _, row := range rows {
		costBasis, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return fmt.Errorf("portfolio file for %q is corrupt: %s: %w", id, err, ErrNotFound)
		}
		commission, err := strconv.ParseFloat(row[4], 64)
		if err != nil {
			return fmt.Errorf("portfolio file for %q is corrupt: %s: %w", id, err, ErrNotFound)
		}
		// row[3] (the share count) is deliberately ignored: the buy recomputes it.
		if _, err := r.Buy(id, row[1], costBasis-commission, row[0], commission); err != nil {
			return err
		}
	}
	return nil
}

// readRows parses the CSV body after the header, checking the field count.
func readRows(f io.Reader, fields int) ([][]string, error) {
	cr := csv.NewReader(f)
	cr.FieldsPerRecord = fields
	all, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("missing header")
	}
	return all[1:], nil
}

// SaveStrategy serializes the portfolio's dollar-cost-averaging descriptor
// under a strategy name distinct from portfolio IDs.
func (s *Store) SaveStrategy(r *Registry, id, name string) error {
	p, err := r.Get(id)
	if err != nil {
		return err
	}
	if err := ValidateID(name); err != nil {
		return err
	}
	dca, ok := p.Strategy()
	if !ok {
		return fmt.Errorf("portfolio %q has no dollar-cost-averaging strategy: %w", id, ErrNotFound)
	}
	f, err := create(s.strategyFile(name))
	if err != nil {
		return fmt.Errorf("cannot write strategy %q: %w", name, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(strings.Split(strategyHeader, ",")); err != nil {
		return err
	}
	row := []string{
		dca.Start.String(),
		dca.End.String(),
		strconv.Itoa(dca.Period),
		formatFloat(dca.Amount),
		dca.Weights.String(),
		formatFloat(dca.Commission),
	}
	if err := cw.Write(row); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// RetrieveStrategy reads a saved descriptor and re-applies the whole
// dollar-cost-averaging schedule against the target portfolio.
func (s *Store) RetrieveStrategy(r *Registry, name, id string) error {
	if _, err := r.Get(id); err != nil {
		return err
	}
	f, err := os.Open(s.strategyFile(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("strategy %q is not present in saved data: %w", name, ErrNotFound)
		}
		return fmt.Errorf("cannot read strategy %q: %w", name, err)
	}
	defer f.Close()

	dca, err := decodeStrategy(f)
	if err != nil {
		return fmt.Errorf("strategy file for %q is corrupt: %s: %w", name, err, ErrNotFound)
	}
	return r.ApplyDollarCostAveraging(id, *dca)
}

func decodeStrategy(f io.Reader) (*DollarCostAverage, error) {
	rows, err := readRows(f, 6)
	if err != nil {
		return nil, err
	}
	if len(rows) != 1 {
		return nil, fmt.Errorf("want exactly one descriptor row, got %d", len(rows))
	}
	row := rows[0]
	start, err := date.Parse(row[0])
	if err != nil {
		return nil, err
	}
	end, err := date.Parse(row[1])
	if err != nil {
		return nil, err
	}
	period, err := strconv.Atoi(row[2])
	if err != nil {
		return nil, err
	}
	amount, err := strconv.ParseFloat(row[3], 64)
	if err != nil {
		return nil, err
	}
	// Tolerate the legacy map-dump braces around the weight list.
	weights, err := ParseWeights(strings.Trim(row[4], "{}"))
	if err != nil {
		return nil, err
	}
	commission, err := strconv.ParseFloat(row[5], 64)
	if err != nil {
		return nil, err
	}
	return &DollarCostAverage{
		Start:      start,
		End:        end,
		Amount:     amount,
		Period:     period,
		Weights:    weights,
		Commission: commission,
	}, nil
}

// ExportGraph writes the date,value rows (no header) of the portfolio's
// sampled valuation to w: from the first purchase date to today, stepping
// max(1, span/10) days, carrying the previous value forward on days with no
// resolvable price.
func (s *Store) ExportGraph(r *Registry, id string, w io.Writer) error {
	return s.exportGraphAsOf(r, id, w, date.Today())
}

func (s *Store) exportGraphAsOf(r *Registry, id string, w io.Writer, today date.Date) error {
	p, err := r.Get(id)
	if err != nil {
		return err
	}
	first, ok := p.FirstPurchase()
	if !ok {
		return fmt.Errorf("portfolio %q is empty: %w", id, ErrValidation)
	}
	step := today.Sub(first) / 10
	if step < 1 {
		step = 1
	}
	values, err := r.ValueSeries(id, first, today, step, ForwardFill)
	if err != nil {
		return err
	}
	if values.Len() == 0 {
		return fmt.Errorf("portfolio %q is empty: %w", id, ErrValidation)
	}
	for day, v := range values.Values() {
		if _, err := fmt.Fprintf(w, "%s,%s\n", day, formatFloat(v)); err != nil {
			return err
		}
	}
	return nil
}

// SaveGraph exports the graph data to the store's temp file.
func (s *Store) SaveGraph(r *Registry, id string) error {
	f, err := create(s.GraphFile())
	if err != nil {
		return fmt.Errorf("cannot write graph data: %w", err)
	}
	defer f.Close()
	return s.ExportGraph(r, id, f)
}
