package engine

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"momentumbt/strategies/equalweight"
	"momentumbt/types"
)

func TestExecute_CompoundsWeightedReturns(t *testing.T) {
	dates := []string{"2000-01-03", "2000-01-04", "2000-01-05"}
	assets := []string{"A", "B"}
	prices := buildTable(t, dates, assets, [][]float64{
		{100, 100},
		{110, 100},
		{121, 100},
	})
	// A is always ranked above B: long A, short B for the whole run.
	signal := buildTable(t, dates, assets, [][]float64{
		{0.2, 0.1},
		{0.2, 0.1},
		{0.2, 0.1},
	})

	gen, err := NewPortfolioGenerator(staticSignal{signal}, equalweight.New(), types.Month, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	bt := NewBacktester(gen, prices, ReportingConfig{})
	results, err := bt.Execute(false)
	if err != nil {
		t.Fatal(err)
	}

	// A compounds +10% a day at weight +1; B never moves at weight -1.
	wantA := []float64{0, 0.1, 0.21}
	for r, want := range wantA {
		if got := results.AssetPnL.At(r, 0); math.Abs(got-want) > 1e-12 {
			t.Errorf("pnl A row %d = %v, want %v", r, got, want)
		}
		if got := results.AssetPnL.At(r, 1); math.Abs(got) > 1e-12 {
			t.Errorf("pnl B row %d = %v, want 0", r, got)
		}
		if got := results.TotalPnL[r]; math.Abs(got-want) > 1e-12 {
			t.Errorf("total pnl row %d = %v, want %v", r, got, want)
		}
	}
}

func TestExecute_WarmupDaysAreFlat(t *testing.T) {
	// January signal is undefined, February onward defined: PnL must
	// stay zero through January and be finite everywhere.
	nan := math.NaN()
	dates := []string{"2000-01-03", "2000-01-17", "2000-02-01", "2000-02-15", "2000-03-01"}
	assets := []string{"A", "B"}
	prices := buildTable(t, dates, assets, [][]float64{
		{100, 50},
		{120, 45},
		{110, 55},
		{130, 40},
		{125, 42},
	})
	signal := buildTable(t, dates, assets, [][]float64{
		{nan, nan},
		{nan, nan},
		{0.1, -0.1},
		{0.1, -0.1},
		{-0.2, 0.3},
	})

	gen, err := NewPortfolioGenerator(staticSignal{signal}, equalweight.New(), types.Month, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	results, err := NewBacktester(gen, prices, ReportingConfig{}).Execute(false)
	if err != nil {
		t.Fatal(err)
	}

	for r := 0; r < 2; r++ {
		if got := results.TotalPnL[r]; got != 0 {
			t.Errorf("warm-up total pnl row %d = %v, want 0", r, got)
		}
	}
	for r, v := range results.TotalPnL {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("total pnl row %d = %v, want finite", r, v)
		}
	}
	// The first positioned day: long A, short B decided from the
	// February snapshot, returns accrue from the next price move.
	if results.TotalPnL[3] == 0 {
		t.Error("positioned rows must accrue pnl")
	}
}

func TestExecute_WritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	dates := []string{"2000-01-03", "2000-01-04"}
	assets := []string{"A", "B"}
	prices := buildTable(t, dates, assets, [][]float64{
		{100, 100},
		{105, 95},
	})
	signal := buildTable(t, dates, assets, [][]float64{
		{0.2, 0.1},
		{0.2, 0.1},
	})

	gen, err := NewPortfolioGenerator(staticSignal{signal}, equalweight.New(), types.Month, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	bt := NewBacktester(gen, prices, NewReportingConfig(filepath.Join(dir, "pnl.png"), dir, false))
	if _, err := bt.Execute(true); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"pnl.png", signalFileName, ranksFileName, positionsFileName, weightsFileName} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("artifact %s missing: %v", name, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("artifact %s is empty", name)
		}
	}
}
