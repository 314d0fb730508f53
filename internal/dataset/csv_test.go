package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"momentumbt/types"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prices.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRead_SortsAndParses(t *testing.T) {
	// Rows intentionally out of order; one missing cell.
	path := writeTempCSV(t, `date,Asset_1,Asset_2
2000-01-05,101.25,49.5
2000-01-03,100,50
2000-01-04,,49.75
`)

	table, err := NewCSVReader(path).Read()
	require.NoError(t, err)

	assert.Equal(t, []string{"Asset_1", "Asset_2"}, table.Assets())
	require.Equal(t, 3, table.NumRows())

	index := table.Index()
	assert.Equal(t, "2000-01-03", index[0].Format("2006-01-02"))
	assert.Equal(t, "2000-01-05", index[2].Format("2006-01-02"))

	assert.InDelta(t, 100, table.At(0, 0), 1e-12)
	assert.False(t, table.Defined(1, 0), "empty cell must stay undefined")
	assert.InDelta(t, 49.75, table.At(1, 1), 1e-12)
	assert.InDelta(t, 101.25, table.At(2, 0), 1e-12)
}

func TestRead_RejectsBadDates(t *testing.T) {
	path := writeTempCSV(t, `date,Asset_1
not-a-date,100
`)
	_, err := NewCSVReader(path).Read()
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrBadTimeIndex)
}

func TestRead_RejectsDuplicateTimestamps(t *testing.T) {
	path := writeTempCSV(t, `date,Asset_1
2000-01-03,100
2000-01-03,101
`)
	_, err := NewCSVReader(path).Read()
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrBadTimeIndex)
}

func TestRead_RejectsBadPrices(t *testing.T) {
	path := writeTempCSV(t, `date,Asset_1
2000-01-03,abc
`)
	_, err := NewCSVReader(path).Read()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Asset_1")
}

func TestRead_RejectsHeaderOnlyFiles(t *testing.T) {
	path := writeTempCSV(t, "date,Asset_1\n")
	_, err := NewCSVReader(path).Read()
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrEmptyTable)
}

func TestRead_MissingFile(t *testing.T) {
	_, err := NewCSVReader(filepath.Join(t.TempDir(), "nope.csv")).Read()
	require.Error(t, err)
}
