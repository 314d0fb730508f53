package engine

import "errors"

// Global error declarations.
var (
	ErrMissingParameter = errors.New("required strategy parameter missing")
	ErrBadSplit         = errors.New("long/short split must lie in (0,1)")
	ErrBadPeriod        = errors.New("rebalance period not supported")
	ErrNoPeriods        = errors.New("no usable rebalance periods")
)
