// Package montecarlo orchestrates block-wise Monte Carlo pricing: decompose
// the product, read starting values off the curves, evolve paths to the
// decision dates, aggregate deflated payoffs and undo the numeraire deflation.
package montecarlo

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/meenmo/ratemodel/curve"
	"github.com/meenmo/ratemodel/market"
	"github.com/meenmo/ratemodel/multicurve"
)

// Model is the evolution capability a stochastic model must provide to drive
// the generic pricers: initial state off the curves, path evolution to one or
// several decision times, numeraire-rebased discounting along a path, and the
// mapping of calendar dates onto the model grid.
type Model interface {
	InitialValues(p curve.Provider) ([]float64, error)
	NumeraireInitialValue(p curve.Provider) (float64, error)
	Evolve(initial []float64, expiry float64, paths int) ([][]float64, error)
	EvolveMulti(initial []float64, expiries []float64, paths int) ([][][]float64, error)
	Discounting(state []float64) []float64
	RelativeTime(date time.Time) float64
	TimeIndex(date time.Time) (int, error)
}

// EuropeanProduct decomposes to a single decision date and prices one path
// from the state and rebased discount factors at that date.
type EuropeanProduct interface {
	DecisionSchedule() (multicurve.Schedule, error)
	// Payoff returns the numeraire-deflated payoff of one path.
	Payoff(eq multicurve.Equivalent, state, rebased []float64, m Model) (float64, error)
}

// MultiDateProduct decomposes to several decision dates and aggregates the
// deflated payoff along one whole path trajectory (states[k] is the path
// state at decision date k).
type MultiDateProduct interface {
	DecisionSchedule() (multicurve.Schedule, error)
	PathPayoff(sched multicurve.Schedule, states [][]float64, m Model) (float64, error)
}

// Config sizes a simulation. BlockSize bounds peak memory: evolution and
// aggregation allocate O(BlockSize x grid) per block, independent of Paths.
type Config struct {
	Paths     int
	BlockSize int
}

func (c Config) validate() error {
	if c.Paths <= 0 {
		return fmt.Errorf("path count %d", c.Paths)
	}
	if c.BlockSize <= 0 {
		return fmt.Errorf("block size %d", c.BlockSize)
	}
	return nil
}

// blocks yields the full-block count and residual size for a path total.
func (c Config) blocks() (full, residual int) {
	return c.Paths / c.BlockSize, c.Paths % c.BlockSize
}

// Result is a Monte Carlo estimate with its statistical error. StdErr shrinks
// as 1/sqrt(Paths); it is not a bound, it is one standard deviation of the
// estimator.
type Result struct {
	PV     float64
	StdErr float64
	Paths  int
}

// PresentValueEuropean prices a single-decision-date product. Any failure in
// any block aborts the whole call; there are no retries and no partial
// results. The result is deterministic for a seeded model source.
func PresentValueEuropean(prod EuropeanProduct, provider curve.Provider, m Model, cfg Config) (float64, error) {
	res, err := EstimateEuropean(prod, provider, m, cfg)
	if err != nil {
		return 0, err
	}
	return res.PV, nil
}

// EstimateEuropean prices a single-decision-date product and reports the
// statistical error of the estimate.
func EstimateEuropean(prod EuropeanProduct, provider curve.Provider, m Model, cfg Config) (Result, error) {
	if err := cfg.validate(); err != nil {
		return Result{}, fmt.Errorf("EstimateEuropean: %w", err)
	}
	sched, err := prod.DecisionSchedule()
	if err != nil {
		return Result{}, fmt.Errorf("EstimateEuropean: %w", err)
	}
	if len(sched.Equivalents) != 1 {
		return Result{}, fmt.Errorf("EstimateEuropean: %d decision dates for a European product", len(sched.Equivalents))
	}
	eq := sched.Equivalents[0]
	if eq.DecisionTime.IsZero() {
		return Result{}, fmt.Errorf("EstimateEuropean: decision time not assigned")
	}

	initial, err := m.InitialValues(provider)
	if err != nil {
		return Result{}, fmt.Errorf("EstimateEuropean: %w", err)
	}
	numeraire, err := m.NumeraireInitialValue(provider)
	if err != nil {
		return Result{}, fmt.Errorf("EstimateEuropean: %w", err)
	}
	decision := m.RelativeTime(eq.DecisionTime)

	payoffs := make([]float64, 0, cfg.Paths)
	runBlock := func(n int) error {
		states, err := m.Evolve(initial, decision, n)
		if err != nil {
			return err
		}
		for _, state := range states {
			rebased := m.Discounting(state)
			pay, err := prod.Payoff(eq, state, rebased, m)
			if err != nil {
				return err
			}
			payoffs = append(payoffs, pay)
		}
		return nil
	}

	full, residual := cfg.blocks()
	for b := 0; b < full; b++ {
		if err := runBlock(cfg.BlockSize); err != nil {
			return Result{}, fmt.Errorf("EstimateEuropean: block %d: %w", b, err)
		}
	}
	if residual > 0 {
		if err := runBlock(residual); err != nil {
			return Result{}, fmt.Errorf("EstimateEuropean: residual block: %w", err)
		}
	}

	return summarize(payoffs, numeraire), nil
}

// PresentValueMultiDate prices a path-dependent product across its decision
// schedule. Failure semantics match PresentValueEuropean.
func PresentValueMultiDate(prod MultiDateProduct, provider curve.Provider, m Model, cfg Config) (float64, error) {
	res, err := EstimateMultiDate(prod, provider, m, cfg)
	if err != nil {
		return 0, err
	}
	return res.PV, nil
}

// EstimateMultiDate prices a path-dependent product and reports the
// statistical error of the estimate.
func EstimateMultiDate(prod MultiDateProduct, provider curve.Provider, m Model, cfg Config) (Result, error) {
	if err := cfg.validate(); err != nil {
		return Result{}, fmt.Errorf("EstimateMultiDate: %w", err)
	}
	sched, err := prod.DecisionSchedule()
	if err != nil {
		return Result{}, fmt.Errorf("EstimateMultiDate: %w", err)
	}
	if len(sched.Equivalents) == 0 {
		return Result{}, fmt.Errorf("EstimateMultiDate: empty decision schedule")
	}
	expiries := make([]float64, len(sched.Equivalents))
	for k, eq := range sched.Equivalents {
		if eq.DecisionTime.IsZero() {
			return Result{}, fmt.Errorf("EstimateMultiDate: decision time %d not assigned", k)
		}
		expiries[k] = m.RelativeTime(eq.DecisionTime)
	}

	initial, err := m.InitialValues(provider)
	if err != nil {
		return Result{}, fmt.Errorf("EstimateMultiDate: %w", err)
	}
	numeraire, err := m.NumeraireInitialValue(provider)
	if err != nil {
		return Result{}, fmt.Errorf("EstimateMultiDate: %w", err)
	}

	payoffs := make([]float64, 0, cfg.Paths)
	runBlock := func(n int) error {
		trajectories, err := m.EvolveMulti(initial, expiries, n)
		if err != nil {
			return err
		}
		for _, states := range trajectories {
			pay, err := prod.PathPayoff(sched, states, m)
			if err != nil {
				return err
			}
			payoffs = append(payoffs, pay)
		}
		return nil
	}

	full, residual := cfg.blocks()
	for b := 0; b < full; b++ {
		if err := runBlock(cfg.BlockSize); err != nil {
			return Result{}, fmt.Errorf("EstimateMultiDate: block %d: %w", b, err)
		}
	}
	if residual > 0 {
		if err := runBlock(residual); err != nil {
			return Result{}, fmt.Errorf("EstimateMultiDate: residual block: %w", err)
		}
	}

	return summarize(payoffs, numeraire), nil
}

func summarize(payoffs []float64, numeraire float64) Result {
	n := len(payoffs)
	mean := floats.Sum(payoffs) / float64(n)
	var stderr float64
	if n > 1 {
		stderr = stat.StdDev(payoffs, nil) / math.Sqrt(float64(n))
	}
	return Result{
		PV:     mean * numeraire,
		StdErr: stderr * numeraire,
		Paths:  n,
	}
}

// pathIborRate reads a simulated forward Ibor rate off the rebased discount
// factors: the observation's effective and maturity dates must sit on the
// model grid, and the rate comes back in the observation's own day count.
func pathIborRate(obs market.IborObservation, rebased []float64, m Model) (float64, error) {
	i1, err := m.TimeIndex(obs.EffectiveDate)
	if err != nil {
		return 0, fmt.Errorf("pathIborRate: %w", err)
	}
	i2, err := m.TimeIndex(obs.MaturityDate)
	if err != nil {
		return 0, fmt.Errorf("pathIborRate: %w", err)
	}
	if obs.YearFraction == 0 {
		return 0, fmt.Errorf("pathIborRate: zero year fraction for %s", obs.Index.Name)
	}
	return (rebased[i1]/rebased[i2] - 1.0) / obs.YearFraction, nil
}

// pathOvernightRate reads a simulated compounded overnight period rate off the
// rebased discount factors.
func pathOvernightRate(obs market.OvernightObservation, rebased []float64, m Model) (float64, error) {
	i1, err := m.TimeIndex(obs.StartDate)
	if err != nil {
		return 0, fmt.Errorf("pathOvernightRate: %w", err)
	}
	i2, err := m.TimeIndex(obs.EndDate)
	if err != nil {
		return 0, fmt.Errorf("pathOvernightRate: %w", err)
	}
	if obs.YearFraction == 0 {
		return 0, fmt.Errorf("pathOvernightRate: zero year fraction for %s", obs.Index.Name)
	}
	return (rebased[i1]/rebased[i2] - 1.0) / obs.YearFraction, nil
}
