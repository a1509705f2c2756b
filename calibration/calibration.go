// Package calibration fits model parameters to observed option prices by
// minimizing the squared pricing error over repriced targets.
package calibration

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/optimize"

	"github.com/meenmo/ratemodel/curve"
	"github.com/meenmo/ratemodel/lmm"
	"github.com/meenmo/ratemodel/market"
	"github.com/meenmo/ratemodel/montecarlo"
)

// Target couples a product with the price the calibrated model should
// reproduce. Product must satisfy montecarlo.EuropeanProduct or
// montecarlo.MultiDateProduct.
type Target struct {
	Product any
	Price   float64
}

// Config describes the Hull-White-like model family being fitted and the
// simulation used to reprice the targets. The same Seed is reused on every
// objective evaluation, so the objective is a deterministic function of the
// volatility and the optimizer sees a consistent surface.
type Config struct {
	Valuation     time.Time
	Currency      market.Currency
	GridDates     []time.Time
	MeanReversion float64
	Displacement  float64
	Seed          uint64
	Simulation    montecarlo.Config
}

// penalty keeps the simplex away from parameter regions where the model
// cannot be built or priced.
const penalty = 1e10

// Fit solves for the flat volatility that minimizes the mean squared pricing
// error across the targets, starting the simplex at initialVol.
func Fit(targets []Target, provider curve.Provider, cfg Config, initialVol float64) (float64, error) {
	if len(targets) == 0 {
		return 0, fmt.Errorf("Fit: no targets")
	}
	if initialVol <= 0 {
		return 0, fmt.Errorf("Fit: initial volatility %g not positive", initialVol)
	}
	for i, tgt := range targets {
		switch tgt.Product.(type) {
		case montecarlo.EuropeanProduct, montecarlo.MultiDateProduct:
		default:
			return 0, fmt.Errorf("Fit: target %d: unsupported product %T", i, tgt.Product)
		}
	}

	objective := func(x []float64) float64 {
		vol := x[0]
		if vol <= 0 {
			return penalty * (1 - vol)
		}
		mse, err := meanSquaredError(targets, provider, cfg, vol)
		if err != nil {
			return penalty
		}
		return mse
	}

	problem := optimize.Problem{Func: objective}
	result, err := optimize.Minimize(problem, []float64{initialVol}, nil, &optimize.NelderMead{})
	if err != nil {
		return 0, fmt.Errorf("Fit: %w", err)
	}
	vol := result.X[0]
	if vol <= 0 || math.IsNaN(vol) {
		return 0, fmt.Errorf("Fit: optimizer left the admissible region (vol=%g)", vol)
	}
	return vol, nil
}

func meanSquaredError(targets []Target, provider curve.Provider, cfg Config, vol float64) (float64, error) {
	params, err := lmm.HullWhiteLike(cfg.Valuation, cfg.Currency, cfg.GridDates, cfg.MeanReversion, vol, cfg.Displacement)
	if err != nil {
		return 0, err
	}
	engine := lmm.NewEvolution(params, rand.NewSource(cfg.Seed))

	sum := 0.0
	for i, tgt := range targets {
		var pv float64
		switch prod := tgt.Product.(type) {
		case montecarlo.EuropeanProduct:
			pv, err = montecarlo.PresentValueEuropean(prod, provider, engine, cfg.Simulation)
		case montecarlo.MultiDateProduct:
			pv, err = montecarlo.PresentValueMultiDate(prod, provider, engine, cfg.Simulation)
		default:
			return 0, fmt.Errorf("meanSquaredError: target %d: unsupported product %T", i, tgt.Product)
		}
		if err != nil {
			return 0, fmt.Errorf("meanSquaredError: target %d: %w", i, err)
		}
		diff := pv - tgt.Price
		sum += diff * diff
	}
	return sum / float64(len(targets)), nil
}
