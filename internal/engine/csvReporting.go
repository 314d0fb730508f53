package engine

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"momentumbt/types"
)

// Deterministic artifact names, one file per intermediate table.
const (
	signalFileName    = "momentumSignal.csv"
	ranksFileName     = "momentumRanks.csv"
	positionsFileName = "LongShortPositions.csv"
	weightsFileName   = "weights.csv"
)

// exportIntermediates persists the pipeline stages of a run as CSV
// files under dir (the working directory when dir is empty).
func exportIntermediates(dir string, inter *Intermediates) error {
	tables := []struct {
		name  string
		table *types.Table
	}{
		{signalFileName, inter.Signal},
		{ranksFileName, inter.Ranks},
		{positionsFileName, inter.LongShort},
		{weightsFileName, inter.DailyWeights},
	}
	for _, entry := range tables {
		if err := writeTableCSVFile(filepath.Join(dir, entry.name), entry.table); err != nil {
			return err
		}
	}
	return nil
}

// writeTableCSVFile writes a table to a CSV file at the given path.
func writeTableCSVFile(path string, table *types.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create table file: %w", err)
	}
	defer f.Close()

	return writeTableCSV(f, table)
}

// writeTableCSV writes a table to any io.Writer as CSV: date as the
// row label, asset identifiers as column headers, undefined cells as
// empty fields. You can pass os.Stdout for debugging, or a file.
func writeTableCSV(w io.Writer, table *types.Table) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := append([]string{"date"}, table.Assets()...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(header))
	for r, ts := range table.Index() {
		record[0] = ts.Format("2006-01-02")
		for c := 0; c < table.NumAssets(); c++ {
			if table.Defined(r, c) {
				record[c+1] = strconv.FormatFloat(table.At(r, c), 'g', -1, 64)
			} else {
				record[c+1] = ""
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
