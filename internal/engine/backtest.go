package engine

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"

	"momentumbt/types"
)

// ReportingConfig controls the artifacts Execute produces next to the
// PnL tables.
type ReportingConfig struct {
	PlotPath     string // PNG chart of the total PnL, skipped when empty
	ExportDir    string // target directory for exported intermediates
	ShowProgress bool
}

func NewReportingConfig(plotPath, exportDir string, showProgress bool) ReportingConfig {
	return ReportingConfig{
		PlotPath:     plotPath,
		ExportDir:    exportDir,
		ShowProgress: showProgress,
	}
}

// Backtester runs a portfolio generator over a price history and
// accrues per-asset and total PnL.
type Backtester struct {
	generator *PortfolioGenerator
	prices    *types.Table
	reporting ReportingConfig
}

// Results of a single backtest run. AssetPnL holds the cumulative
// compounded return contribution per asset, TotalPnL its row-wise sum.
type Results struct {
	AssetPnL     *types.Table
	TotalPnL     []float64
	DailyWeights *types.Table
	Report       *Report
}

func NewBacktester(generator *PortfolioGenerator, prices *types.Table, reporting ReportingConfig) *Backtester {
	return &Backtester{
		generator: generator,
		prices:    prices,
		reporting: reporting,
	}
}

// Execute runs the full pipeline: daily weights, PnL accrual, summary
// report, PnL chart. With export set the intermediate tables are also
// written out as CSV files.
func (b *Backtester) Execute(export bool) (*Results, error) {
	daily, intermediates, err := b.generator.GenerateWeightsWithIntermediates(b.prices)
	if err != nil {
		return nil, err
	}
	if err := b.prices.SameShape(daily); err != nil {
		return nil, fmt.Errorf("daily weight table: %w", err)
	}

	assetPnL, totalPnL := b.accruePnLs(daily)
	report := buildReport(b.prices.Index(), totalPnL, intermediates.Ranks.NumRows())

	if b.reporting.PlotPath != "" {
		if err := plotTotalPnL(b.reporting.PlotPath, b.prices.Index(), totalPnL); err != nil {
			return nil, fmt.Errorf("plot total pnl: %w", err)
		}
		log.Info().Str("path", b.reporting.PlotPath).Msg("wrote pnl chart")
	}
	if export {
		if err := exportIntermediates(b.reporting.ExportDir, intermediates); err != nil {
			return nil, fmt.Errorf("export intermediates: %w", err)
		}
		log.Info().Str("dir", b.reporting.ExportDir).Msg("exported intermediate tables")
	}

	return &Results{
		AssetPnL:     assetPnL,
		TotalPnL:     totalPnL,
		DailyWeights: daily,
		Report:       report,
	}, nil
}

// accruePnLs multiplies daily returns by daily weights and compounds
// the weighted returns per asset from the series start. Undefined
// weights or returns contribute nothing that day: the position is flat,
// not poisoned.
func (b *Backtester) accruePnLs(dailyWeights *types.Table) (*types.Table, []float64) {
	pnl := types.EmptyLike(b.prices)
	total := make([]float64, b.prices.NumRows())

	cum := make([]float64, b.prices.NumAssets())
	for c := range cum {
		cum[c] = 1
	}

	var bar *progressbar.ProgressBar
	if b.reporting.ShowProgress {
		bar = initProgressBar(b.prices.NumRows())
	}

	for r := 0; r < b.prices.NumRows(); r++ {
		rowTotal := 0.0
		for c := 0; c < b.prices.NumAssets(); c++ {
			weighted := dailyWeights.At(r, c) * b.prices.PctChange(r, c)
			if !math.IsNaN(weighted) {
				cum[c] *= 1 + weighted
			}
			pnl.Set(r, c, cum[c]-1)
			rowTotal += cum[c] - 1
		}
		total[r] = rowTotal
		if bar != nil {
			bar.Add(1)
		}
	}
	return pnl, total
}

func initProgressBar(maxTicks int) *progressbar.ProgressBar {
	return progressbar.NewOptions(maxTicks,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("Backtesting in progress..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
