package curve

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/meenmo/ratemodel/market"
	"github.com/meenmo/ratemodel/utils"
)

// curveDayCount is the time basis for the curve axis. Following market
// convention (and QuantLib), interpolation and zero rates use ACT/365F
// regardless of currency; leg-specific day counts apply to coupon accrual only.
const curveDayCount = "ACT/365F"

// Zero is a continuously-compounded zero curve with linear interpolation in
// z(t)*t, i.e. log-linear interpolation of discount factors.
type Zero struct {
	valuation time.Time
	times     []float64
	zeros     []float64 // decimal, continuous compounding
}

// NewZero builds a zero curve from node times (in years from valuation,
// ACT/365F) and continuously-compounded zero rates in decimal.
func NewZero(valuation time.Time, times, zeros []float64) (*Zero, error) {
	if len(times) == 0 {
		return nil, fmt.Errorf("NewZero: no nodes")
	}
	if len(times) != len(zeros) {
		return nil, fmt.Errorf("NewZero: %d times vs %d zeros", len(times), len(zeros))
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return nil, fmt.Errorf("NewZero: node times not strictly increasing at %d", i)
		}
	}
	c := &Zero{valuation: valuation, times: make([]float64, len(times)), zeros: make([]float64, len(zeros))}
	copy(c.times, times)
	copy(c.zeros, zeros)
	return c, nil
}

// NewFlatZero builds a single-rate curve, mainly for tests and examples.
func NewFlatZero(valuation time.Time, rate float64) *Zero {
	c, _ := NewZero(valuation, []float64{1.0}, []float64{rate})
	return c
}

// Time converts a date to curve time (years from valuation, ACT/365F).
func (c *Zero) Time(date time.Time) float64 {
	return utils.YearFraction(c.valuation, date, curveDayCount)
}

// ZeroRate returns the interpolated zero rate at curve time t (decimal).
func (c *Zero) ZeroRate(t float64) float64 {
	n := len(c.times)
	if n == 1 || t <= c.times[0] {
		return c.zeros[0]
	}
	if t >= c.times[n-1] {
		return c.zeros[n-1]
	}
	i := sort.SearchFloat64s(c.times, t)
	if c.times[i] == t {
		return c.zeros[i]
	}
	// Interpolate z*t linearly between brackets (log-linear DF).
	t0, t1 := c.times[i-1], c.times[i]
	v0, v1 := c.zeros[i-1]*t0, c.zeros[i]*t1
	v := v0 + (v1-v0)*(t-t0)/(t1-t0)
	return v / t
}

// DiscountFactor returns exp(-z(t)*t) at curve time t.
func (c *Zero) DiscountFactor(t float64) float64 {
	if t <= 0 {
		return 1.0
	}
	return math.Exp(-c.ZeroRate(t) * t)
}

// DF returns the discount factor for a calendar date.
func (c *Zero) DF(date time.Time) float64 {
	return c.DiscountFactor(c.Time(date))
}

// MultiProvider is a Provider backed by one discount curve per currency and
// optional projection curves per index name. An index without a dedicated
// projection curve projects off its currency's discount curve (single-curve).
type MultiProvider struct {
	valuation  time.Time
	discount   map[market.Currency]*Zero
	projection map[string]*Zero
}

// NewMultiProvider wires discount and projection curves into a Provider.
func NewMultiProvider(valuation time.Time, discount map[market.Currency]*Zero, projection map[string]*Zero) (*MultiProvider, error) {
	if len(discount) == 0 {
		return nil, fmt.Errorf("NewMultiProvider: at least one discount curve is required")
	}
	p := &MultiProvider{
		valuation:  valuation,
		discount:   make(map[market.Currency]*Zero, len(discount)),
		projection: make(map[string]*Zero, len(projection)),
	}
	for ccy, c := range discount {
		if c == nil {
			return nil, fmt.Errorf("NewMultiProvider: %s: %w", ccy, ErrNilCurve)
		}
		p.discount[ccy] = c
	}
	for name, c := range projection {
		if c == nil {
			return nil, fmt.Errorf("NewMultiProvider: %s: %w", name, ErrNilCurve)
		}
		p.projection[name] = c
	}
	return p, nil
}

// ValuationDate returns the date all curve values are quoted as of.
func (p *MultiProvider) ValuationDate() time.Time { return p.valuation }

// DiscountFactor reads the discount factor for a currency and date.
// An unknown currency returns NaN; decompositions validate currencies upfront.
func (p *MultiProvider) DiscountFactor(ccy market.Currency, date time.Time) float64 {
	c, ok := p.discount[ccy]
	if !ok {
		return math.NaN()
	}
	return c.DF(date)
}

// HasCurrency reports whether a discount curve exists for ccy.
func (p *MultiProvider) HasCurrency(ccy market.Currency) bool {
	_, ok := p.discount[ccy]
	return ok
}

func (p *MultiProvider) projectionFor(name string, ccy market.Currency) *Zero {
	if c, ok := p.projection[name]; ok {
		return c
	}
	return p.discount[ccy]
}

// IborRate returns the simple forward rate implied by the projection curve
// over the observation period, in the observation's own day count.
func (p *MultiProvider) IborRate(obs market.IborObservation) float64 {
	c := p.projectionFor(obs.Index.Name, obs.Index.Currency)
	if c == nil || obs.YearFraction == 0 {
		return math.NaN()
	}
	return (c.DF(obs.EffectiveDate)/c.DF(obs.MaturityDate) - 1.0) / obs.YearFraction
}

// OvernightPeriodRate returns the compounded overnight rate over [start, end)
// implied by the index's projection curve.
func (p *MultiProvider) OvernightPeriodRate(index market.OvernightIndex, start, end time.Time) float64 {
	c := p.projectionFor(index.Name, index.Currency)
	alpha := utils.YearFraction(start, end, string(index.DayCount))
	if c == nil || alpha == 0 {
		return math.NaN()
	}
	return (c.DF(start)/c.DF(end) - 1.0) / alpha
}
