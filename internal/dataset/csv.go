package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"momentumbt/types"
)

// Date layouts accepted for the index column, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// CSVReader loads a price table from a CSV file. The first column must
// hold the date, the remaining columns one asset each. Rows are sorted
// by date before the table is built; empty cells stay undefined.
type CSVReader struct {
	path string
}

func NewCSVReader(path string) *CSVReader {
	return &CSVReader{path: path}
}

// Read parses, sorts and validates the file into a price table. Files
// without a usable chronological index (unparseable dates, duplicate
// timestamps) are rejected before any computation can start.
func (r *CSVReader) Read() (*types.Table, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	table, err := readPricesCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.path, err)
	}
	log.Info().
		Str("path", r.path).
		Int("rows", table.NumRows()).
		Int("assets", table.NumAssets()).
		Msg("loaded price dataset")
	return table, nil
}

type priceRow struct {
	at     time.Time
	values []float64
}

func readPricesCSV(f io.Reader) (*types.Table, error) {
	cr := csv.NewReader(f)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("%w: need a date column and at least one asset column", types.ErrShapeMismatch)
	}
	assets := header[1:]

	var rows []priceRow
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		at, err := parseDate(record[0])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrBadTimeIndex, err)
		}
		values := make([]float64, len(assets))
		for i, cell := range record[1:] {
			if cell == "" {
				values[i] = math.NaN()
				continue
			}
			price, err := decimal.NewFromString(cell)
			if err != nil {
				return nil, fmt.Errorf("parse %s price at %s: %w", assets[i], record[0], err)
			}
			values[i] = price.InexactFloat64()
		}
		rows = append(rows, priceRow{at: at, values: values})
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].at.Before(rows[j].at) })

	index := make([]time.Time, len(rows))
	for i, row := range rows {
		index[i] = row.at
	}
	// NewTable rejects duplicate timestamps.
	table, err := types.NewTable(index, assets)
	if err != nil {
		return nil, err
	}
	for r, row := range rows {
		for c, v := range row.values {
			table.Set(r, c, v)
		}
	}
	return table, nil
}

func parseDate(cell string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if at, err := time.Parse(layout, cell); err == nil {
			return at.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse date %q", cell)
}
