// Package lmm implements a Libor Market Model with displaced diffusion and its
// Monte Carlo evolution under the terminal-bond measure.
package lmm

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/meenmo/ratemodel/market"
	"github.com/meenmo/ratemodel/multicurve"
	"github.com/meenmo/ratemodel/utils"
)

// modelDayCount is the time basis of the model grid, matching the curve axis.
const modelDayCount = "ACT/365F"

// timeTolerance is the slack used to match dates onto grid times, well under
// one calendar day.
const timeTolerance = 0.5 / 365.0

// Parameters holds the model grid and diffusion coefficients: Ibor times
// t_0 < ... < t_n, accrual factors between consecutive grid points, a
// displacement per period and a volatility loading per period and factor.
// The numeraire is the zero-coupon bond maturing at the terminal grid date.
type Parameters struct {
	currency      market.Currency
	valuation     time.Time
	gridDates     []time.Time // n+1
	times         []float64   // n+1, years from valuation
	accruals      []float64   // n
	displacements []float64   // n
	vols          *mat.Dense  // n x factors
	factors       int
	meanReversion float64
}

// HullWhiteLike builds single-factor LMM-DDD parameters whose volatility term
// structure mimics a Hull-White model: per-period loading
// sigma * (1 - exp(-a*tau)) / (a*tau) with a constant displacement.
func HullWhiteLike(valuation time.Time, ccy market.Currency, gridDates []time.Time, meanReversion, volatility, displacement float64) (*Parameters, error) {
	if len(gridDates) < 2 {
		return nil, fmt.Errorf("HullWhiteLike: need at least 2 grid dates, got %d", len(gridDates))
	}
	if volatility <= 0 {
		return nil, fmt.Errorf("HullWhiteLike: volatility must be positive, got %g", volatility)
	}

	n := len(gridDates) - 1
	p := &Parameters{
		currency:      ccy,
		valuation:     valuation,
		gridDates:     make([]time.Time, len(gridDates)),
		times:         make([]float64, len(gridDates)),
		accruals:      make([]float64, n),
		displacements: make([]float64, n),
		vols:          mat.NewDense(n, 1, nil),
		factors:       1,
		meanReversion: meanReversion,
	}
	copy(p.gridDates, gridDates)

	for i, d := range gridDates {
		if d.Before(valuation) {
			return nil, fmt.Errorf("HullWhiteLike: grid date %s before valuation %s", d.Format("2006-01-02"), valuation.Format("2006-01-02"))
		}
		p.times[i] = utils.YearFraction(valuation, d, modelDayCount)
		if i > 0 && p.times[i] <= p.times[i-1]+timeTolerance {
			return nil, fmt.Errorf("HullWhiteLike: grid dates not increasing at %d (%s)", i, d.Format("2006-01-02"))
		}
	}
	for i := 0; i < n; i++ {
		tau := p.times[i+1] - p.times[i]
		p.accruals[i] = tau
		p.displacements[i] = displacement
		gamma := volatility
		if meanReversion != 0 {
			gamma = volatility * (1.0 - math.Exp(-meanReversion*tau)) / (meanReversion * tau)
		}
		p.vols.Set(i, 0, gamma)
	}
	return p, nil
}

// Currency returns the model currency.
func (p *Parameters) Currency() market.Currency { return p.currency }

// ValuationDate returns the model anchor date (time zero).
func (p *Parameters) ValuationDate() time.Time { return p.valuation }

// PeriodCount returns the number of grid periods n.
func (p *Parameters) PeriodCount() int { return len(p.accruals) }

// FactorCount returns the number of Brownian factors.
func (p *Parameters) FactorCount() int { return p.factors }

// Time returns grid time i (0..n).
func (p *Parameters) Time(i int) float64 { return p.times[i] }

// LastTime returns the terminal grid time t_n, the numeraire maturity.
func (p *Parameters) LastTime() float64 { return p.times[len(p.times)-1] }

// GridDate returns grid date i (0..n).
func (p *Parameters) GridDate(i int) time.Time { return p.gridDates[i] }

// AccrualFactor returns the accrual factor of grid period i.
func (p *Parameters) AccrualFactor(i int) float64 { return p.accruals[i] }

// Displacement returns the diffusion displacement of grid period i.
func (p *Parameters) Displacement(i int) float64 { return p.displacements[i] }

// VolatilityRow returns the factor loadings of grid period i.
func (p *Parameters) VolatilityRow(i int) []float64 {
	return mat.Row(nil, i, p.vols)
}

// MeanReversion returns the mean reversion used by the Hull-White-like
// construction (zero for other parameterizations).
func (p *Parameters) MeanReversion() float64 { return p.meanReversion }

// RelativeTime maps a date to model time (years from valuation, ACT/365F).
func (p *Parameters) RelativeTime(date time.Time) float64 {
	return utils.YearFraction(p.valuation, date, modelDayCount)
}

// TimeIndex locates a date on the model grid.
func (p *Parameters) TimeIndex(date time.Time) (int, error) {
	t := p.RelativeTime(date)
	for i, gt := range p.times {
		if math.Abs(gt-t) <= timeTolerance {
			return i, nil
		}
	}
	return 0, fmt.Errorf("TimeIndex: %s (t=%.6f) not on the model grid", date.Format("2006-01-02"), t)
}

// GridFromSchedule collects every payment and observation date of a decision
// schedule into a sorted, de-duplicated model grid. Building the model on the
// product's own dates keeps every cash-flow event exactly on a grid point.
func GridFromSchedule(sched multicurve.Schedule) []time.Time {
	seen := make(map[string]time.Time)
	add := func(d time.Time) {
		if !d.IsZero() {
			seen[d.Format("2006-01-02")] = d
		}
	}
	for _, eq := range sched.Equivalents {
		for _, pay := range eq.DiscountFactorPayments {
			add(pay.PayDate)
		}
		for _, obs := range eq.IborObservations {
			add(obs.EffectiveDate)
			add(obs.MaturityDate)
		}
		for _, f := range eq.IborPayments {
			add(f.PayDate)
		}
		for _, obs := range eq.OvernightObservations {
			add(obs.StartDate)
			add(obs.EndDate)
		}
		for _, f := range eq.OvernightPayments {
			add(f.PayDate)
		}
	}
	out := make([]time.Time, 0, len(seen))
	for _, d := range seen {
		out = append(out, d)
	}
	utils.SortDates(out)
	return out
}
