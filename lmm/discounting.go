package lmm

import "gonum.org/v1/gonum/floats"

// Discounting reconstructs the numeraire-rebased discount factors along one
// simulated path. The terminal grid point is 1 exactly (the numeraire is the
// bond maturing there); earlier points compound backward:
//
//	D[i] = D[i+1] * (1 + fwd[i]*accrualFactor[i])
//
// The returned slice has length PeriodCount()+1, indexed like the grid.
func (e *Evolution) Discounting(state []float64) []float64 {
	n := e.params.PeriodCount()
	d := make([]float64, n+1)
	d[n] = 1.0
	for i := n - 1; i >= 0; i-- {
		d[i] = d[i+1] * (1.0 + state[i]*e.params.AccrualFactor(i))
	}
	return d
}

// DiscountingAll rebases a whole block of path states at once, reusing one
// backing array to keep the per-block allocation at O(paths x grid).
func (e *Evolution) DiscountingAll(states [][]float64) [][]float64 {
	n := e.params.PeriodCount()
	backing := make([]float64, len(states)*(n+1))
	out := make([][]float64, len(states))
	for p, state := range states {
		d := backing[p*(n+1) : (p+1)*(n+1)]
		d[n] = 1.0
		for i := n - 1; i >= 0; i-- {
			d[i] = d[i+1] * (1.0 + state[i]*e.params.AccrualFactor(i))
		}
		out[p] = d
	}
	return out
}

// ImpliedZeroCoupon returns the curve-style discount factors a path state
// implies relative to time zero, i.e. the rebased factors scaled so that the
// first grid point discounts to the numeraire's initial value.
func (e *Evolution) ImpliedZeroCoupon(state []float64, numeraireValue float64) []float64 {
	d := e.Discounting(state)
	floats.Scale(numeraireValue, d)
	return d
}
