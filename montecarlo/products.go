package montecarlo

import (
	"fmt"
	"math"

	"github.com/meenmo/ratemodel/multicurve"
	"github.com/meenmo/ratemodel/product"
)

// Swaption prices a European physical-delivery swaption: at expiry the
// underlying swap is valued on the path and exercised when positive.
type Swaption struct {
	Option product.Swaption
}

func (s Swaption) DecisionSchedule() (multicurve.Schedule, error) {
	return multicurve.SwaptionSchedule(s.Option)
}

func (s Swaption) Payoff(eq multicurve.Equivalent, state, rebased []float64, m Model) (float64, error) {
	pv, err := equivalentPathValue(eq, rebased, m)
	if err != nil {
		return 0, fmt.Errorf("Swaption.Payoff: %w", err)
	}
	return s.Option.LongShort.Sign() * math.Max(pv, 0), nil
}

// CapFloor prices a strip of caplets or floorlets, one decision date per
// period, each striking on the clean index fixing of that period.
type CapFloor struct {
	Leg product.CapFloorLeg
}

func (c CapFloor) DecisionSchedule() (multicurve.Schedule, error) {
	return multicurve.CapFloorSchedule(c.Leg)
}

func (c CapFloor) PathPayoff(sched multicurve.Schedule, states [][]float64, m Model) (float64, error) {
	omega := 1.0
	if c.Leg.CapFloor == product.Floor {
		omega = -1.0
	}
	total := 0.0
	for k, eq := range sched.Equivalents {
		rebased := m.Discounting(states[k])
		rate, err := pathIborRate(eq.IborObservations[0], rebased, m)
		if err != nil {
			return 0, fmt.Errorf("CapFloor.PathPayoff: period %d: %w", k, err)
		}
		flow := eq.IborPayments[0]
		idx, err := m.TimeIndex(flow.PayDate)
		if err != nil {
			return 0, fmt.Errorf("CapFloor.PathPayoff: period %d: %w", k, err)
		}
		total += flow.Amount * math.Max(omega*(rate-c.Leg.Strike), 0) * rebased[idx]
	}
	return c.Leg.LongShort.Sign() * total, nil
}

// Ratchet prices a path-dependent ratchet leg: each coupon rate feeds the next
// period's coefficient formula, so a whole trajectory is needed per path.
type Ratchet struct {
	Leg product.RatchetLeg
}

func (r Ratchet) DecisionSchedule() (multicurve.Schedule, error) {
	return multicurve.RatchetSchedule(r.Leg)
}

func (r Ratchet) PathPayoff(sched multicurve.Schedule, states [][]float64, m Model) (float64, error) {
	prev := r.Leg.InitialRate
	total := 0.0
	for k, eq := range sched.Equivalents {
		rebased := m.Discounting(states[k])
		ibor, err := pathIborRate(eq.IborObservations[0], rebased, m)
		if err != nil {
			return 0, fmt.Errorf("Ratchet.PathPayoff: period %d: %w", k, err)
		}
		rate := r.Leg.Main[0]*prev + r.Leg.Main[1]*ibor + r.Leg.Main[2]
		if f := r.Leg.Floor; f != nil {
			rate = math.Max(rate, f[0]*prev+f[1]*ibor+f[2])
		}
		if c := r.Leg.Cap; c != nil {
			rate = math.Min(rate, c[0]*prev+c[1]*ibor+c[2])
		}
		flow := eq.IborPayments[0]
		idx, err := m.TimeIndex(flow.PayDate)
		if err != nil {
			return 0, fmt.Errorf("Ratchet.PathPayoff: period %d: %w", k, err)
		}
		total += flow.Amount * rate * rebased[idx]
		prev = rate
	}
	return total, nil
}

// Cms prices a single constant-maturity-swap coupon, caplet or floorlet: the
// underlying swap's par rate is read off the path at the fixing date.
type Cms struct {
	Period product.CmsPeriod
}

func (c Cms) DecisionSchedule() (multicurve.Schedule, error) {
	return multicurve.CmsPeriodSchedule(c.Period)
}

func (c Cms) Payoff(eq multicurve.Equivalent, state, rebased []float64, m Model) (float64, error) {
	rate, err := pathSwapRate(c.Period.Underlying, rebased, m)
	if err != nil {
		return 0, fmt.Errorf("Cms.Payoff: %w", err)
	}
	idx, err := m.TimeIndex(c.Period.PayDate)
	if err != nil {
		return 0, fmt.Errorf("Cms.Payoff: %w", err)
	}
	v, err := cmsKindValue(c.Period.Kind, rate, c.Period.Strike)
	if err != nil {
		return 0, fmt.Errorf("Cms.Payoff: %w", err)
	}
	return v * c.Period.Notional * c.Period.YearFraction * rebased[idx], nil
}

// CmsSpread prices a coupon on the difference of two underlying swap rates
// observed at the same fixing date.
type CmsSpread struct {
	Period product.CmsSpreadPeriod
}

func (c CmsSpread) DecisionSchedule() (multicurve.Schedule, error) {
	return multicurve.CmsSpreadSchedule(c.Period)
}

func (c CmsSpread) Payoff(eq multicurve.Equivalent, state, rebased []float64, m Model) (float64, error) {
	r1, err := pathSwapRate(c.Period.Underlying1, rebased, m)
	if err != nil {
		return 0, fmt.Errorf("CmsSpread.Payoff: swap 1: %w", err)
	}
	r2, err := pathSwapRate(c.Period.Underlying2, rebased, m)
	if err != nil {
		return 0, fmt.Errorf("CmsSpread.Payoff: swap 2: %w", err)
	}
	idx, err := m.TimeIndex(c.Period.PayDate)
	if err != nil {
		return 0, fmt.Errorf("CmsSpread.Payoff: %w", err)
	}
	v, err := cmsKindValue(c.Period.Kind, r1-r2, c.Period.Strike)
	if err != nil {
		return 0, fmt.Errorf("CmsSpread.Payoff: %w", err)
	}
	return v * c.Period.Notional * c.Period.YearFraction * rebased[idx], nil
}

func cmsKindValue(kind product.CmsKind, rate, strike float64) (float64, error) {
	switch kind {
	case product.CmsCoupon:
		return rate, nil
	case product.CmsCaplet:
		return math.Max(rate-strike, 0), nil
	case product.CmsFloorlet:
		return math.Max(strike-rate, 0), nil
	default:
		return 0, fmt.Errorf("cmsKindValue: unknown kind %q", kind)
	}
}

// equivalentPathValue computes the deflated value of all events of an
// equivalent on one path: deterministic payments discount directly, rate
// observations are read off the rebased discount factors and paired with
// their parallel payments.
func equivalentPathValue(eq multicurve.Equivalent, rebased []float64, m Model) (float64, error) {
	pv := 0.0
	for _, pay := range eq.DiscountFactorPayments {
		idx, err := m.TimeIndex(pay.PayDate)
		if err != nil {
			return 0, err
		}
		pv += pay.Amount * rebased[idx]
	}
	for i, obs := range eq.IborObservations {
		rate, err := pathIborRate(obs, rebased, m)
		if err != nil {
			return 0, err
		}
		flow := eq.IborPayments[i]
		idx, err := m.TimeIndex(flow.PayDate)
		if err != nil {
			return 0, err
		}
		pv += flow.Amount * rate * rebased[idx]
	}
	for i, obs := range eq.OvernightObservations {
		rate, err := pathOvernightRate(obs, rebased, m)
		if err != nil {
			return 0, err
		}
		flow := eq.OvernightPayments[i]
		idx, err := m.TimeIndex(flow.PayDate)
		if err != nil {
			return 0, err
		}
		pv += flow.Amount * rate * rebased[idx]
	}
	return pv, nil
}

// pathSwapRate reads the par rate of a fixed-vs-floating swap off one path:
// floating-leg value over fixed-leg annuity, both taken unsigned. Spreads on
// the floating leg are rejected, the par rate is defined on the clean index.
func pathSwapRate(s product.Swap, rebased []float64, m Model) (float64, error) {
	annuity := 0.0
	floating := 0.0
	haveFixed, haveFloat := false, false
	for i, leg := range s.Legs {
		switch l := leg.(type) {
		case product.FixedLeg:
			haveFixed = true
			for _, p := range l.Periods {
				idx, err := m.TimeIndex(p.PayDate)
				if err != nil {
					return 0, fmt.Errorf("pathSwapRate: leg %d: %w", i, err)
				}
				annuity += p.Notional * p.YearFraction * rebased[idx]
			}
		case product.IborLeg:
			haveFloat = true
			for _, p := range l.Periods {
				if p.Spread != 0 {
					return 0, fmt.Errorf("pathSwapRate: leg %d: spread on underlying unsupported", i)
				}
				rate, err := pathIborRate(p.Observation, rebased, m)
				if err != nil {
					return 0, fmt.Errorf("pathSwapRate: leg %d: %w", i, err)
				}
				idx, err := m.TimeIndex(p.PayDate)
				if err != nil {
					return 0, fmt.Errorf("pathSwapRate: leg %d: %w", i, err)
				}
				floating += p.Notional * p.Gearing * p.YearFraction * rate * rebased[idx]
			}
		case product.OvernightLeg:
			haveFloat = true
			for _, p := range l.Periods {
				if p.Spread != 0 {
					return 0, fmt.Errorf("pathSwapRate: leg %d: spread on underlying unsupported", i)
				}
				rate, err := pathOvernightRate(p.Observation, rebased, m)
				if err != nil {
					return 0, fmt.Errorf("pathSwapRate: leg %d: %w", i, err)
				}
				idx, err := m.TimeIndex(p.PayDate)
				if err != nil {
					return 0, fmt.Errorf("pathSwapRate: leg %d: %w", i, err)
				}
				floating += p.Notional * p.YearFraction * rate * rebased[idx]
			}
		default:
			return 0, fmt.Errorf("pathSwapRate: leg %d (%T): %w", i, leg, multicurve.ErrUnsupportedLeg)
		}
	}
	if !haveFixed || !haveFloat {
		return 0, fmt.Errorf("pathSwapRate: underlying needs a fixed and a floating leg")
	}
	if annuity == 0 {
		return 0, fmt.Errorf("pathSwapRate: zero annuity")
	}
	return floating / annuity, nil
}
