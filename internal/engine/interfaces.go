package engine

import "momentumbt/types"

// SignalGenerator turns a price table into a signal table of the same
// shape. Implementations are pure: same prices in, same signal out.
type SignalGenerator interface {
	Generate(prices *types.Table) (*types.Table, error)
}

// WeightingScheme turns a long/short membership table (+1 long, -1
// short, NaN no position) into signed weights. For every row the long
// leg sums to +1 and the short leg to -1, unless a leg is empty that
// row.
type WeightingScheme interface {
	AssignWeights(longShort *types.Table) (*types.Table, error)
}
