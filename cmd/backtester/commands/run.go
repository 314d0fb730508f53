package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"momentumbt/internal/config"
	"momentumbt/internal/dataset"
	"momentumbt/internal/engine"
	"momentumbt/internal/repository"
	"momentumbt/strategies/equalweight"
	"momentumbt/strategies/momentum"
	"momentumbt/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backtest",
	Long: `Runs the full backtest pipeline over a price history and writes the
PnL chart, printing a summary report. With --export the intermediate
signal, rank, position and weight tables are written out as CSV files.

Example:
  backtester run --csv prices.csv --window 252
  backtester run --config backtest.yaml --rebalance M --split 0.5 --export`,
	RunE: runBacktest,
}

var (
	// Flags
	runCSVPath   string
	runDBURL     string
	runTickers   []string
	runFrom      string
	runTo        string
	runWindow    int
	runRebalance string
	runSplit     float64
	runExport    bool
	runPlotPath  string
	runExportDir string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runCSVPath, "csv", "", "CSV price file (date column first)")
	runCmd.Flags().StringVar(&runDBURL, "db", "", "postgres URL of the price store")
	runCmd.Flags().StringSliceVar(&runTickers, "tickers", nil, "tickers to load from the price store")
	runCmd.Flags().StringVar(&runFrom, "from", "", "range start (YYYY-MM-DD, postgres source)")
	runCmd.Flags().StringVar(&runTo, "to", "", "range end (YYYY-MM-DD, postgres source)")
	runCmd.Flags().IntVar(&runWindow, "window", 0, "momentum rolling window in calendar days (required)")
	runCmd.Flags().StringVar(&runRebalance, "rebalance", "", "rebalance period: W, M, Q or Y (default M)")
	runCmd.Flags().Float64Var(&runSplit, "split", 0, "fraction of the universe going long (default 0.5)")
	runCmd.Flags().BoolVar(&runExport, "export", false, "export intermediate tables as CSV")
	runCmd.Flags().StringVar(&runPlotPath, "plot", "", "PnL chart path (default pnl.png)")
	runCmd.Flags().StringVar(&runExportDir, "out", "", "directory for exported CSVs (default working dir)")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig()
	if err != nil {
		return err
	}

	prices, err := loadPrices(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	signals, err := momentum.New(momentum.Config{RollingAvgDays: cfg.Strategy.RollingAvgDays})
	if err != nil {
		return err
	}
	generator, err := engine.NewPortfolioGenerator(
		signals,
		equalweight.New(),
		types.Period(cfg.Portfolio.RebalancePeriod),
		cfg.Portfolio.LongShortSplit,
	)
	if err != nil {
		return err
	}

	backtester := engine.NewBacktester(generator, prices, engine.NewReportingConfig(
		cfg.Output.PlotPath,
		cfg.Output.ExportDir,
		true,
	))
	results, err := backtester.Execute(cfg.Output.Export)
	if err != nil {
		return err
	}

	fmt.Println()
	results.Report.Print()
	return nil
}

// loadRunConfig layers flag overrides over the config file (or the
// defaults when no file is given), then validates the result once.
func loadRunConfig() (config.Config, error) {
	cfg := config.Default()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if runCSVPath != "" {
		cfg.Data.Source = "csv"
		cfg.Data.CSVPath = runCSVPath
	}
	if runDBURL != "" {
		cfg.Data.Source = "postgres"
		cfg.Data.DatabaseURL = runDBURL
	}
	if len(runTickers) > 0 {
		cfg.Data.Tickers = runTickers
	}
	if runFrom != "" {
		cfg.Data.From = runFrom
	}
	if runTo != "" {
		cfg.Data.To = runTo
	}
	if runWindow > 0 {
		cfg.Strategy.RollingAvgDays = runWindow
	}
	if runRebalance != "" {
		cfg.Portfolio.RebalancePeriod = runRebalance
	}
	if runSplit > 0 {
		cfg.Portfolio.LongShortSplit = runSplit
	}
	if runExport {
		cfg.Output.Export = true
	}
	if runPlotPath != "" {
		cfg.Output.PlotPath = runPlotPath
	}
	if runExportDir != "" {
		cfg.Output.ExportDir = runExportDir
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadPrices(ctx context.Context, cfg config.Config) (*types.Table, error) {
	switch cfg.Data.Source {
	case "csv":
		return dataset.NewCSVReader(cfg.Data.CSVPath).Read()
	case "postgres":
		db, err := repository.NewDatabase(cfg.Data.DatabaseURL)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		from, err := cfg.FromDate()
		if err != nil {
			return nil, err
		}
		to, err := cfg.ToDate()
		if err != nil {
			return nil, err
		}
		return db.GetPriceTable(ctx, cfg.Data.Tickers, from, to)
	}
	return nil, fmt.Errorf("unknown data source %q", cfg.Data.Source)
}
