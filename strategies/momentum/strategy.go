package momentum

import (
	"fmt"
	"math"
	"time"

	"github.com/gammazero/deque"

	"momentumbt/internal/engine"
	"momentumbt/types"
)

// Config holds the momentum strategy parameters.
type Config struct {
	// RollingAvgDays is the trailing mean window in calendar days.
	// Duration-based, not row-count based: gaps in the price history
	// shrink the number of observations, never the span.
	RollingAvgDays int
}

// Strategy generates a momentum signal: the trailing mean of
// day-over-day percent price changes over a calendar-day window.
type Strategy struct {
	window time.Duration
}

// New validates the config and builds the strategy.
func New(cfg Config) (*Strategy, error) {
	if cfg.RollingAvgDays <= 0 {
		return nil, fmt.Errorf("momentum: rolling_avg_days: %w", engine.ErrMissingParameter)
	}
	return &Strategy{window: time.Duration(cfg.RollingAvgDays) * 24 * time.Hour}, nil
}

type observation struct {
	at    time.Time
	value float64
}

// Generate computes the signal table. A cell stays undefined until at
// least one percent change falls inside its trailing window, so the
// first row of every asset is always undefined.
func (s *Strategy) Generate(prices *types.Table) (*types.Table, error) {
	signal := types.EmptyLike(prices)
	index := prices.Index()

	for c := 0; c < prices.NumAssets(); c++ {
		var window deque.Deque[observation]
		sum := 0.0
		for r := 0; r < prices.NumRows(); r++ {
			if change := prices.PctChange(r, c); !math.IsNaN(change) {
				window.PushBack(observation{at: index[r], value: change})
				sum += change
			}
			// The window covers (t - window, t].
			cut := index[r].Add(-s.window)
			for window.Len() > 0 && !window.Front().at.After(cut) {
				sum -= window.PopFront().value
			}
			if window.Len() > 0 {
				signal.Set(r, c, sum/float64(window.Len()))
			}
		}
	}
	return signal, nil
}
