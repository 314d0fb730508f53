package engine

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Report summarizes a total PnL series.
type Report struct {
	// Meta / period info
	StartDate   time.Time
	TotalPeriod time.Duration
	Rebalances  int

	// Absolute performance
	FinalPnL float64

	// Drawdown metrics
	MaxDrawdown     float64
	MaxDrawdownDays time.Duration

	// Risk-adjusted metrics
	SharpeRatio float64
}

func buildReport(index []time.Time, totalPnL []float64, rebalances int) *Report {
	report := &Report{Rebalances: rebalances}
	if len(index) == 0 {
		return report
	}
	report.StartDate = index[0]
	report.TotalPeriod = index[len(index)-1].Sub(index[0]).Truncate(time.Hour * 24)
	report.FinalPnL = totalPnL[len(totalPnL)-1]
	report.MaxDrawdown, report.MaxDrawdownDays = calcDrawdownMetrics(index, totalPnL)
	report.SharpeRatio = calcSharpeRatio(index, totalPnL)
	return report
}

func (r *Report) Print() {
	fmt.Println("===== Backtest Report =====")
	fmt.Printf("Start Date:        %s\n", r.StartDate.Format("2006-01-02"))
	fmt.Printf("Total Period:      %d days\n", r.TotalPeriod/(24*time.Hour))
	fmt.Printf("Rebalances:        %d\n", r.Rebalances)

	fmt.Println("\n-- Performance --")
	fmt.Printf("Final PnL:         %.6f\n", r.FinalPnL)

	fmt.Println("\n-- Drawdown Metrics --")
	fmt.Printf("Max Drawdown:      %.6f\n", r.MaxDrawdown)
	fmt.Printf("Max Drawdown Days: %v\n", r.MaxDrawdownDays)

	fmt.Println("\n-- Risk-Adjusted Metrics --")
	fmt.Printf("Sharpe Ratio:      %.4f\n", r.SharpeRatio)

	fmt.Println("===========================")
}

func calcDrawdownMetrics(index []time.Time, totalPnL []float64) (float64, time.Duration) {
	peak := math.Inf(-1)
	var peakTime time.Time

	maxDD := 0.0
	var maxDDDuration time.Duration

	for i, v := range totalPnL {
		if v > peak {
			peak = v
			peakTime = index[i]
		}
		dd := peak - v
		if dd > maxDD {
			maxDD = dd
			maxDDDuration = index[i].Sub(peakTime)
		}
	}
	return maxDD, maxDDDuration
}

// calcSharpeRatio works on month-over-month PnL deltas. PnL is an
// additive cumulative series, so differences between consecutive
// month-end values are used rather than ratios, then annualized by
// sqrt(12).
func calcSharpeRatio(index []time.Time, totalPnL []float64) float64 {
	monthEnds := monthEndValues(index, totalPnL)
	if len(monthEnds) < 3 {
		// Need at least 2 deltas to compute a stddev.
		return 0
	}

	deltas := make([]float64, 0, len(monthEnds)-1)
	for i := 1; i < len(monthEnds); i++ {
		deltas = append(deltas, monthEnds[i]-monthEnds[i-1])
	}

	mean := stat.Mean(deltas, nil)
	std := stat.StdDev(deltas, nil)
	if std == 0 {
		return 0
	}
	return mean / std * math.Sqrt(12)
}

// monthEndValues collects the last PnL observation of each calendar
// month, in chronological order. The index is already sorted, so one
// pass suffices.
func monthEndValues(index []time.Time, totalPnL []float64) []float64 {
	var out []float64
	for i := range index {
		y, m, _ := index[i].Date()
		if i+1 < len(index) {
			ny, nm, _ := index[i+1].Date()
			if ny == y && nm == m {
				continue
			}
		}
		out = append(out, totalPnL[i])
	}
	return out
}
