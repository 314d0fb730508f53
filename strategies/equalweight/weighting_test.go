package equalweight

import (
	"math"
	"testing"
	"time"

	"momentumbt/types"
)

func membershipTable(t *testing.T, rows [][]float64) *types.Table {
	t.Helper()
	index := make([]time.Time, len(rows))
	base := time.Date(2000, 1, 31, 0, 0, 0, 0, time.UTC)
	for i := range rows {
		index[i] = base.AddDate(0, i, 0)
	}
	assets := make([]string, len(rows[0]))
	for i := range assets {
		assets[i] = string(rune('A' + i))
	}
	table, err := types.NewTable(index, assets)
	if err != nil {
		t.Fatal(err)
	}
	for r, row := range rows {
		for c, v := range row {
			table.Set(r, c, v)
		}
	}
	return table
}

func TestAssignWeights_LegSums(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name string
		row  []float64
		want []float64
	}{
		{
			name: "balanced",
			row:  []float64{1, 1, -1, -1},
			want: []float64{0.5, 0.5, -0.5, -0.5},
		},
		{
			name: "single long",
			row:  []float64{1, -1, -1},
			want: []float64{1, -0.5, -0.5},
		},
		{
			name: "empty long leg degrades to short only",
			row:  []float64{-1, -1},
			want: []float64{-0.5, -0.5},
		},
		{
			name: "empty short leg degrades to long only",
			row:  []float64{1, 1, 1},
			want: []float64{1.0 / 3, 1.0 / 3, 1.0 / 3},
		},
		{
			name: "undefined members keep no weight",
			row:  []float64{1, nan, -1},
			want: []float64{1, nan, -1},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			weights, err := Scheme{}.AssignWeights(membershipTable(t, [][]float64{tc.row}))
			if err != nil {
				t.Fatal(err)
			}
			for c, want := range tc.want {
				got := weights.At(0, c)
				if math.IsNaN(want) {
					if !math.IsNaN(got) {
						t.Errorf("col %d = %v, want undefined", c, got)
					}
					continue
				}
				if math.Abs(got-want) > 1e-9 {
					t.Errorf("col %d = %v, want %v", c, got, want)
				}
			}
		})
	}
}

func TestAssignWeights_RowSumsWithinTolerance(t *testing.T) {
	table := membershipTable(t, [][]float64{
		{1, 1, 1, -1, -1, -1, -1},
		{1, -1, -1, -1, -1, -1, -1},
	})
	weights, err := Scheme{}.AssignWeights(table)
	if err != nil {
		t.Fatal(err)
	}
	for r := 0; r < weights.NumRows(); r++ {
		longSum, shortSum := 0.0, 0.0
		for c := 0; c < weights.NumAssets(); c++ {
			v := weights.At(r, c)
			if v > 0 {
				longSum += v
			} else {
				shortSum += v
			}
		}
		if math.Abs(longSum-1) > 1e-9 {
			t.Errorf("row %d long leg sums to %v", r, longSum)
		}
		if math.Abs(shortSum+1) > 1e-9 {
			t.Errorf("row %d short leg sums to %v", r, shortSum)
		}
	}
}

func TestAssignWeights_UndefinedRowStaysUndefined(t *testing.T) {
	nan := math.NaN()
	weights, err := Scheme{}.AssignWeights(membershipTable(t, [][]float64{{nan, nan, nan}}))
	if err != nil {
		t.Fatal(err)
	}
	for c := 0; c < weights.NumAssets(); c++ {
		if weights.Defined(0, c) {
			t.Errorf("col %d defined in a warm-up row", c)
		}
	}
}
