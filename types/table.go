package types

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Global error declarations.
var (
	ErrBadTimeIndex  = errors.New("time index is not strictly ascending")
	ErrShapeMismatch = errors.New("table shapes are not aligned")
	ErrEmptyTable    = errors.New("table has no rows")
)

// Table is a dense (timestamp, asset) matrix of float64 values.
// Rows are keyed by a strictly ascending, de-duplicated time index and
// columns by a fixed, ordered set of asset identifiers. NaN marks an
// undefined cell. Pipeline stages never mutate a table they received;
// each stage allocates its own output.
type Table struct {
	index  []time.Time
	assets []string
	cells  [][]float64
}

// NewTable allocates a table with every cell undefined.
// The index must be strictly ascending with no duplicates.
func NewTable(index []time.Time, assets []string) (*Table, error) {
	if len(index) == 0 {
		return nil, ErrEmptyTable
	}
	if len(assets) == 0 {
		return nil, fmt.Errorf("%w: no asset columns", ErrShapeMismatch)
	}
	for i := 1; i < len(index); i++ {
		if !index[i].After(index[i-1]) {
			return nil, fmt.Errorf("%w: row %d (%s) does not follow row %d (%s)",
				ErrBadTimeIndex, i, index[i].Format(time.RFC3339), i-1, index[i-1].Format(time.RFC3339))
		}
	}

	cells := make([][]float64, len(index))
	for r := range cells {
		row := make([]float64, len(assets))
		for c := range row {
			row[c] = math.NaN()
		}
		cells[r] = row
	}
	return &Table{index: index, assets: assets, cells: cells}, nil
}

// EmptyLike allocates an all-undefined table with the same index and
// columns as t. The index validation is skipped, t already passed it.
func EmptyLike(t *Table) *Table {
	out := &Table{index: t.index, assets: t.assets, cells: make([][]float64, len(t.index))}
	for r := range out.cells {
		row := make([]float64, len(t.assets))
		for c := range row {
			row[c] = math.NaN()
		}
		out.cells[r] = row
	}
	return out
}

// Index returns the time index. Callers must not modify it.
func (t *Table) Index() []time.Time { return t.index }

// Assets returns the ordered asset columns. Callers must not modify it.
func (t *Table) Assets() []string { return t.assets }

// NumRows returns the number of timestamps.
func (t *Table) NumRows() int { return len(t.index) }

// NumAssets returns the number of asset columns.
func (t *Table) NumAssets() int { return len(t.assets) }

// At returns the cell at (row, col). NaN means undefined.
func (t *Table) At(row, col int) float64 { return t.cells[row][col] }

// Set writes the cell at (row, col).
func (t *Table) Set(row, col int, v float64) { t.cells[row][col] = v }

// Row returns the backing slice for a row. Callers must not modify it
// unless they own the table.
func (t *Table) Row(row int) []float64 { return t.cells[row] }

// SameColumns reports whether other carries the identical asset columns
// in the identical order.
func (t *Table) SameColumns(other *Table) error {
	if len(t.assets) != len(other.assets) {
		return fmt.Errorf("%w: %d vs %d asset columns", ErrShapeMismatch, len(t.assets), len(other.assets))
	}
	for i := range t.assets {
		if t.assets[i] != other.assets[i] {
			return fmt.Errorf("%w: column %d is %q vs %q", ErrShapeMismatch, i, t.assets[i], other.assets[i])
		}
	}
	return nil
}

// SameShape reports whether other shares both the time index and the
// asset columns. Stage boundaries call this instead of relying on
// positional luck.
func (t *Table) SameShape(other *Table) error {
	if err := t.SameColumns(other); err != nil {
		return err
	}
	if len(t.index) != len(other.index) {
		return fmt.Errorf("%w: %d vs %d rows", ErrShapeMismatch, len(t.index), len(other.index))
	}
	for i := range t.index {
		if !t.index[i].Equal(other.index[i]) {
			return fmt.Errorf("%w: row %d is %s vs %s", ErrShapeMismatch, i,
				t.index[i].Format(time.RFC3339), other.index[i].Format(time.RFC3339))
		}
	}
	return nil
}

// Defined reports whether the cell at (row, col) holds a value.
func (t *Table) Defined(row, col int) bool {
	return !math.IsNaN(t.cells[row][col])
}

// PctChange returns the fractional change of a cell against the
// previous row. Undefined for the first row, for undefined neighbours
// and for a zero base value.
func (t *Table) PctChange(row, col int) float64 {
	if row == 0 {
		return math.NaN()
	}
	prev := t.cells[row-1][col]
	cur := t.cells[row][col]
	if math.IsNaN(prev) || math.IsNaN(cur) || prev == 0 {
		return math.NaN()
	}
	return (cur - prev) / prev
}
