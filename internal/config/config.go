package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"momentumbt/types"
)

// Config is the full run configuration for a backtest.
type Config struct {
	Data      Data      `yaml:"data"`
	Strategy  Strategy  `yaml:"strategy"`
	Portfolio Portfolio `yaml:"portfolio"`
	Output    Output    `yaml:"output"`
}

// Data selects and parameterizes the price source.
type Data struct {
	Source      string   `yaml:"source"` // "csv" or "postgres"
	CSVPath     string   `yaml:"csv_path"`
	DatabaseURL string   `yaml:"database_url"`
	Tickers     []string `yaml:"tickers"`
	From        string   `yaml:"from"` // YYYY-MM-DD
	To          string   `yaml:"to"`   // YYYY-MM-DD
}

// Strategy holds the signal generator parameters.
type Strategy struct {
	RollingAvgDays int `yaml:"rolling_avg_days"`
}

// Portfolio holds the weight pipeline parameters.
type Portfolio struct {
	RebalancePeriod string  `yaml:"rebalance_period"`
	LongShortSplit  float64 `yaml:"longshort_split"`
}

// Output holds artifact destinations.
type Output struct {
	PlotPath  string `yaml:"plot_path"`
	ExportDir string `yaml:"export_dir"`
	Export    bool   `yaml:"export"`
}

// Default returns the configuration with every optional knob at its
// documented default. The momentum window has no default and must be
// supplied.
func Default() Config {
	return Config{
		Data: Data{Source: "csv"},
		Portfolio: Portfolio{
			RebalancePeriod: string(types.Month),
			LongShortSplit:  0.5,
		},
		Output: Output{PlotPath: "pnl.png"},
	}
}

// Load reads a YAML config file on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration and names the offending field in
// every failure.
func (c *Config) Validate() error {
	switch c.Data.Source {
	case "csv":
		if c.Data.CSVPath == "" {
			return fmt.Errorf("data.csv_path: required for csv source")
		}
	case "postgres":
		if c.Data.DatabaseURL == "" {
			return fmt.Errorf("data.database_url: required for postgres source")
		}
		if len(c.Data.Tickers) == 0 {
			return fmt.Errorf("data.tickers: required for postgres source")
		}
		if _, err := c.FromDate(); err != nil {
			return fmt.Errorf("data.from: %w", err)
		}
		if _, err := c.ToDate(); err != nil {
			return fmt.Errorf("data.to: %w", err)
		}
	default:
		return fmt.Errorf("data.source: unknown source %q", c.Data.Source)
	}

	if c.Strategy.RollingAvgDays <= 0 {
		return fmt.Errorf("strategy.rolling_avg_days: must be a positive number of days")
	}
	if !types.Period(c.Portfolio.RebalancePeriod).Valid() {
		return fmt.Errorf("portfolio.rebalance_period: unknown period %q", c.Portfolio.RebalancePeriod)
	}
	if c.Portfolio.LongShortSplit <= 0 || c.Portfolio.LongShortSplit >= 1 {
		return fmt.Errorf("portfolio.longshort_split: must lie in (0,1), got %v", c.Portfolio.LongShortSplit)
	}
	return nil
}

// FromDate parses the range start for the postgres source.
func (c *Config) FromDate() (time.Time, error) {
	return time.Parse("2006-01-02", c.Data.From)
}

// ToDate parses the range end for the postgres source.
func (c *Config) ToDate() (time.Time, error) {
	return time.Parse("2006-01-02", c.Data.To)
}
