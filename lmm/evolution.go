package lmm

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/meenmo/ratemodel/curve"
)

// Evolution is the Monte Carlo engine: it advances the grid forward rates from
// valuation to one or several decision times under the terminal-bond measure.
//
// An Evolution holds no per-simulation state: every Evolve call is a fresh
// draw governed only by the supplied random source, which is consumed
// strictly sequentially (paths outer, time steps inner). Callers wanting
// reproducible runs seed the source; callers wanting parallel blocks construct
// one Evolution per worker.
type Evolution struct {
	params  *Parameters
	normal  distuv.Normal
	maxStep float64
	lam     [][]float64 // cached per-period factor loadings
}

// defaultMaxStep caps a discretization step at one year.
const defaultMaxStep = 1.0

// NewEvolution wires parameters and a random source into an engine with the
// default discretization step cap.
func NewEvolution(p *Parameters, src rand.Source) *Evolution {
	return NewEvolutionWithStep(p, src, defaultMaxStep)
}

// NewEvolutionWithStep sets an explicit cap on the discretization step length
// (years). Smaller steps reduce discretization bias at linear cost.
func NewEvolutionWithStep(p *Parameters, src rand.Source, maxStep float64) *Evolution {
	if maxStep <= 0 {
		maxStep = defaultMaxStep
	}
	lam := make([][]float64, p.PeriodCount())
	for i := range lam {
		lam[i] = p.VolatilityRow(i)
	}
	return &Evolution{
		params:  p,
		normal:  distuv.Normal{Mu: 0, Sigma: 1, Src: src},
		maxStep: maxStep,
		lam:     lam,
	}
}

// Parameters returns the model parameters backing the engine.
func (e *Evolution) Parameters() *Parameters { return e.params }

// RelativeTime maps a date to model time.
func (e *Evolution) RelativeTime(date time.Time) float64 { return e.params.RelativeTime(date) }

// TimeIndex locates a date on the model grid.
func (e *Evolution) TimeIndex(date time.Time) (int, error) { return e.params.TimeIndex(date) }

// AccrualFactor returns the accrual factor of grid period i.
func (e *Evolution) AccrualFactor(i int) float64 { return e.params.AccrualFactor(i) }

// NumeraireInitialValue reads the time-zero value of the numeraire asset: the
// discount factor at the terminal grid date.
func (e *Evolution) NumeraireInitialValue(p curve.Provider) (float64, error) {
	df := p.DiscountFactor(e.params.Currency(), e.params.GridDate(e.params.PeriodCount()))
	if math.IsNaN(df) || df <= 0 {
		return 0, fmt.Errorf("NumeraireInitialValue: no discount curve for %s", e.params.Currency())
	}
	return df, nil
}

// InitialValues converts the curve-implied discount factors into simple
// forward rates over each grid period:
//
//	fwd[i] = (DF(t_i)/DF(t_i+1) - 1) / accrualFactor[i]
func (e *Evolution) InitialValues(p curve.Provider) ([]float64, error) {
	n := e.params.PeriodCount()
	ccy := e.params.Currency()
	fwd := make([]float64, n)
	dfPrev := p.DiscountFactor(ccy, e.params.GridDate(0))
	for i := 0; i < n; i++ {
		dfNext := p.DiscountFactor(ccy, e.params.GridDate(i+1))
		if math.IsNaN(dfPrev) || math.IsNaN(dfNext) || dfNext <= 0 {
			return nil, fmt.Errorf("InitialValues: no discount curve for %s", ccy)
		}
		fwd[i] = (dfPrev/dfNext - 1.0) / e.params.AccrualFactor(i)
		if fwd[i]+e.params.Displacement(i) <= 0 {
			return nil, fmt.Errorf("InitialValues: period %d: displaced forward %.6f not positive", i, fwd[i]+e.params.Displacement(i))
		}
		dfPrev = dfNext
	}
	return fwd, nil
}

// Evolve advances the forward vector to a single decision time for the
// requested number of paths. The returned vectors keep the full grid length;
// entries whose reset time has passed stay frozen at their fixed value.
func (e *Evolution) Evolve(initial []float64, expiry float64, paths int) ([][]float64, error) {
	multi, err := e.EvolveMulti(initial, []float64{expiry}, paths)
	if err != nil {
		return nil, err
	}
	out := make([][]float64, paths)
	for i := range multi {
		out[i] = multi[i][0]
	}
	return out, nil
}

// EvolveMulti advances the forward vector through all requested decision times
// in chronological order, returning per path the state vector at each time.
// Paths are independent and identically distributed; within a path the states
// are consecutive snapshots of one trajectory, which is what path-dependent
// payoffs rely on.
func (e *Evolution) EvolveMulti(initial []float64, expiries []float64, paths int) ([][][]float64, error) {
	n := e.params.PeriodCount()
	if len(initial) != n {
		return nil, fmt.Errorf("EvolveMulti: %d initial values for %d grid periods", len(initial), n)
	}
	if paths <= 0 {
		return nil, fmt.Errorf("EvolveMulti: path count %d", paths)
	}
	if len(expiries) == 0 {
		return nil, fmt.Errorf("EvolveMulti: no expiries")
	}
	// A zero first expiry is legal (a fixing on the valuation date observes
	// the initial state); later expiries must not go backward.
	prev := 0.0
	for k, t := range expiries {
		if t < prev-timeTolerance {
			return nil, fmt.Errorf("EvolveMulti: expiries not ordered at %d (%.6f)", k, t)
		}
		if t > e.params.LastTime()+timeTolerance {
			return nil, fmt.Errorf("EvolveMulti: expiry %.6f beyond terminal grid time %.6f", t, e.params.LastTime())
		}
		prev = t
	}

	out := make([][][]float64, paths)
	f := make([]float64, n)
	for p := 0; p < paths; p++ {
		copy(f, initial)
		out[p] = make([][]float64, len(expiries))
		tCur := 0.0
		for k, expiry := range expiries {
			if err := e.evolveSpan(f, tCur, expiry); err != nil {
				return nil, fmt.Errorf("EvolveMulti: path %d: %w", p, err)
			}
			state := make([]float64, n)
			copy(state, f)
			out[p][k] = state
			tCur = expiry
		}
	}
	return out, nil
}

// evolveSpan advances one path state from t0 to t1 in capped substeps using a
// predictor-corrector log-Euler scheme on the displaced forwards.
func (e *Evolution) evolveSpan(f []float64, t0, t1 float64) error {
	if t1-t0 <= timeTolerance {
		return nil
	}
	nsub := int(math.Ceil((t1 - t0) / e.maxStep))
	if nsub < 1 {
		nsub = 1
	}
	dt := (t1 - t0) / float64(nsub)
	sqdt := math.Sqrt(dt)
	n := e.params.PeriodCount()
	nf := e.params.FactorCount()

	z := make([]float64, nf)
	d0 := make([]float64, n)
	d1 := make([]float64, n)
	pred := make([]float64, n)

	for s := 0; s < nsub; s++ {
		t := t0 + float64(s)*dt
		for j := 0; j < nf; j++ {
			z[j] = e.normal.Rand()
		}

		e.terminalDrift(f, t, d0)
		for j := 0; j < n; j++ {
			pred[j] = f[j]
			if e.params.Time(j) <= t+timeTolerance {
				continue // rate already fixed
			}
			lam := e.lam[j]
			var dw, v2 float64
			for q := 0; q < nf; q++ {
				dw += lam[q] * z[q] * sqdt
				v2 += lam[q] * lam[q]
			}
			alpha := e.params.Displacement(j)
			pred[j] = (f[j]+alpha)*math.Exp((d0[j]-0.5*v2)*dt+dw) - alpha
		}

		e.terminalDrift(pred, t, d1)
		for j := 0; j < n; j++ {
			if e.params.Time(j) <= t+timeTolerance {
				continue
			}
			lam := e.lam[j]
			var dw, v2 float64
			for q := 0; q < nf; q++ {
				dw += lam[q] * z[q] * sqdt
				v2 += lam[q] * lam[q]
			}
			alpha := e.params.Displacement(j)
			f[j] = (f[j]+alpha)*math.Exp((0.5*(d0[j]+d1[j])-0.5*v2)*dt+dw) - alpha
			if math.IsNaN(f[j]) || math.IsInf(f[j], 0) {
				return fmt.Errorf("evolveSpan: non-finite forward at period %d, t=%.4f", j, t)
			}
		}
	}
	return nil
}

// terminalDrift fills drift[j] with the percentage drift of the displaced
// forward j under the terminal-bond measure:
//
//	mu_j = - sum_{k>j} accr_k (f_k+alpha_k) / (1+accr_k f_k) * (lam_j . lam_k)
//
// Rates whose reset time has passed carry zero volatility and drop out of the
// sum. Computed backward from the terminal period with a running factor sum.
func (e *Evolution) terminalDrift(f []float64, t float64, drift []float64) {
	n := e.params.PeriodCount()
	nf := e.params.FactorCount()
	sum := make([]float64, nf)
	for j := n - 1; j >= 0; j-- {
		lam := e.lam[j]
		drift[j] = 0
		for q := 0; q < nf; q++ {
			drift[j] -= lam[q] * sum[q]
		}
		if e.params.Time(j) > t+timeTolerance {
			accr := e.params.AccrualFactor(j)
			alpha := e.params.Displacement(j)
			term := accr * (f[j] + alpha) / (1.0 + accr*f[j])
			for q := 0; q < nf; q++ {
				sum[q] += term * lam[q]
			}
		}
	}
}
