package equalweight

import "momentumbt/types"

// Scheme assigns equal weights within each leg: +1/longCount for longs
// and -1/shortCount for shorts, so each non-empty leg sums to exactly
// +1 or -1 per period. A period with an empty leg simply has no weights
// in that leg, never a division error.
type Scheme struct{}

func New() Scheme { return Scheme{} }

func (Scheme) AssignWeights(longShort *types.Table) (*types.Table, error) {
	weights := types.EmptyLike(longShort)
	for r := 0; r < longShort.NumRows(); r++ {
		longs, shorts := 0, 0
		for c := 0; c < longShort.NumAssets(); c++ {
			if !longShort.Defined(r, c) {
				continue
			}
			if longShort.At(r, c) > 0 {
				longs++
			} else {
				shorts++
			}
		}
		for c := 0; c < longShort.NumAssets(); c++ {
			if !longShort.Defined(r, c) {
				continue
			}
			if longShort.At(r, c) > 0 {
				weights.Set(r, c, 1/float64(longs))
			} else {
				weights.Set(r, c, -1/float64(shorts))
			}
		}
	}
	return weights, nil
}
