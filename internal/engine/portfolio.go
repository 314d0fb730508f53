package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"momentumbt/types"
)

const (
	DefaultRebalance = types.Month
	DefaultSplit     = 0.5
)

// PortfolioGenerator builds a daily weight table from prices: signal,
// per-period rank, long/short split, leg weights, back-fill upsample.
type PortfolioGenerator struct {
	signals   SignalGenerator
	weighting WeightingScheme
	rebalance types.Period
	split     float64
}

// Intermediates holds the pipeline stages kept around for exporting.
// Not needed for the PnL computation itself.
type Intermediates struct {
	Signal       *types.Table
	Ranks        *types.Table
	LongShort    *types.Table
	DailyWeights *types.Table
}

// NewPortfolioGenerator wires a signal generator and a weighting scheme
// into the rank/split/upsample pipeline. A zero rebalance period
// defaults to monthly and a zero split to 0.5.
func NewPortfolioGenerator(signals SignalGenerator, weighting WeightingScheme, rebalance types.Period, split float64) (*PortfolioGenerator, error) {
	if rebalance == "" {
		rebalance = DefaultRebalance
	}
	if split == 0 {
		split = DefaultSplit
	}
	if !rebalance.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrBadPeriod, string(rebalance))
	}
	if split <= 0 || split >= 1 {
		return nil, fmt.Errorf("%w: got %v", ErrBadSplit, split)
	}
	return &PortfolioGenerator{
		signals:   signals,
		weighting: weighting,
		rebalance: rebalance,
		split:     split,
	}, nil
}

// GenerateWeights runs the pipeline and returns the daily weight table.
func (g *PortfolioGenerator) GenerateWeights(prices *types.Table) (*types.Table, error) {
	daily, _, err := g.run(prices)
	return daily, err
}

// GenerateWeightsWithIntermediates additionally returns the
// intermediate tables for exporting.
func (g *PortfolioGenerator) GenerateWeightsWithIntermediates(prices *types.Table) (*types.Table, *Intermediates, error) {
	return g.run(prices)
}

func (g *PortfolioGenerator) run(prices *types.Table) (*types.Table, *Intermediates, error) {
	signal, err := g.signals.Generate(prices)
	if err != nil {
		return nil, nil, fmt.Errorf("generate signal: %w", err)
	}
	if err := prices.SameShape(signal); err != nil {
		return nil, nil, fmt.Errorf("signal table: %w", err)
	}

	ranks, err := g.rankSignals(signal)
	if err != nil {
		return nil, nil, err
	}
	longShort := g.assignLongShort(ranks)

	weights, err := g.weighting.AssignWeights(longShort)
	if err != nil {
		return nil, nil, fmt.Errorf("assign weights: %w", err)
	}
	if err := longShort.SameShape(weights); err != nil {
		return nil, nil, fmt.Errorf("weight table: %w", err)
	}

	daily := upsampleWeights(weights, prices)
	log.Debug().
		Int("rebalance_rows", weights.NumRows()).
		Int("daily_rows", daily.NumRows()).
		Str("period", g.rebalance.String()).
		Msg("generated daily weights")

	return daily, &Intermediates{
		Signal:       signal,
		Ranks:        ranks,
		LongShort:    longShort,
		DailyWeights: daily,
	}, nil
}

// rankSignals snapshots the signal at the first observation of each
// rebalance period and ranks each snapshot row across assets,
// descending: rank 1 is the strongest signal. Ties break by original
// column position so every defined row is a true 1..k permutation.
func (g *PortfolioGenerator) rankSignals(signal *types.Table) (*types.Table, error) {
	labels, firstRows := resampleFirst(signal.Index(), g.rebalance)

	ranks, err := types.NewTable(labels, signal.Assets())
	if err != nil {
		return nil, fmt.Errorf("rank table: %w", err)
	}

	usable := 0
	for p, src := range firstRows {
		cols := make([]int, 0, signal.NumAssets())
		for c := 0; c < signal.NumAssets(); c++ {
			if signal.Defined(src, c) {
				cols = append(cols, c)
			}
		}
		if len(cols) == 0 {
			// Warm-up period, the whole rank row stays undefined.
			continue
		}
		sort.SliceStable(cols, func(i, j int) bool {
			return signal.At(src, cols[i]) > signal.At(src, cols[j])
		})
		for rank, c := range cols {
			ranks.Set(p, c, float64(rank+1))
		}
		usable++
	}
	if usable == 0 {
		return nil, fmt.Errorf("%w: %d %s periods, all inside the signal warm-up",
			ErrNoPeriods, len(labels), g.rebalance)
	}
	return ranks, nil
}

// resampleFirst buckets an ascending index by rebalance period and
// returns one label per period (its last calendar day) together with
// the row of the first observation inside it. With gapped histories the
// first observation may lag the nominal period start.
func resampleFirst(index []time.Time, period types.Period) ([]time.Time, []int) {
	var labels []time.Time
	var firstRows []int
	var curStart time.Time
	for r, ts := range index {
		start := period.Start(ts)
		if len(labels) == 0 || !start.Equal(curStart) {
			curStart = start
			labels = append(labels, period.End(ts))
			firstRows = append(firstRows, r)
		}
	}
	return labels, firstRows
}

// assignLongShort maps ranks to leg membership: rank <= N*split goes
// long (+1), the rest short (-1). The cutoff comparison is kept as a
// literal float comparison, so an odd universe with split 0.5 puts
// fewer assets in the long leg. Undefined ranks stay out of both legs.
func (g *PortfolioGenerator) assignLongShort(ranks *types.Table) *types.Table {
	cutoff := float64(ranks.NumAssets()) * g.split
	longShort := types.EmptyLike(ranks)
	for r := 0; r < ranks.NumRows(); r++ {
		for c := 0; c < ranks.NumAssets(); c++ {
			if !ranks.Defined(r, c) {
				continue
			}
			if ranks.At(r, c) <= cutoff {
				longShort.Set(r, c, 1)
			} else {
				longShort.Set(r, c, -1)
			}
		}
	}
	return longShort
}

// upsampleWeights back-fills period-level weights onto the daily price
// index: each day takes the row of the first period label at or after
// it. Days past the last label, and days whose period weights are
// undefined, stay undefined.
func upsampleWeights(weights *types.Table, prices *types.Table) *types.Table {
	daily := types.EmptyLike(prices)
	labels := weights.Index()
	j := 0
	for r, ts := range prices.Index() {
		for j < len(labels) && labels[j].Before(ts) {
			j++
		}
		if j == len(labels) {
			break
		}
		for c := 0; c < weights.NumAssets(); c++ {
			daily.Set(r, c, weights.At(j, c))
		}
	}
	return daily
}
