// Package discounting prices by direct curve lookup: decompose the product,
// read time-zero values off the curves and sum. It is the deterministic
// cross-check for the Monte Carlo engine on linear products.
package discounting

import (
	"fmt"

	"github.com/meenmo/ratemodel/curve"
	"github.com/meenmo/ratemodel/market"
	"github.com/meenmo/ratemodel/multicurve"
	"github.com/meenmo/ratemodel/product"
)

// PresentValue prices a swap off the curves: deterministic payments discount
// at their pay dates, each rate observation is projected forward and its
// parallel payment discounted.
func PresentValue(s product.Swap, p curve.Provider) (float64, error) {
	eq, err := multicurve.SwapEquivalent(s)
	if err != nil {
		return 0, fmt.Errorf("PresentValue: %w", err)
	}
	return EquivalentValue(eq, p)
}

// EquivalentValue prices an already-decomposed equivalent off the curves.
func EquivalentValue(eq multicurve.Equivalent, p curve.Provider) (float64, error) {
	v, err := multicurve.StartingValues(eq, p)
	if err != nil {
		return 0, fmt.Errorf("EquivalentValue: %w", err)
	}

	ccy, err := flowCurrency(eq)
	if err != nil {
		return 0, fmt.Errorf("EquivalentValue: %w", err)
	}

	pv := 0.0
	for i, pay := range eq.DiscountFactorPayments {
		pv += pay.Amount * v.DiscountFactors[i]
	}
	for i, flow := range eq.IborPayments {
		df := p.DiscountFactor(ccy, flow.PayDate)
		pv += flow.Amount * v.IborRates[i] * df
	}
	for i, flow := range eq.OvernightPayments {
		df := p.DiscountFactor(ccy, flow.PayDate)
		pv += flow.Amount * v.OvernightRates[i] * df
	}
	return pv, nil
}

// ParRate solves the fixed rate that zeroes a fixed-vs-floating swap's value:
// floating-leg value over fixed-leg annuity.
func ParRate(s product.Swap, p curve.Provider) (float64, error) {
	annuity := 0.0
	floating := 0.0
	haveFixed, haveFloat := false, false
	for i, leg := range s.Legs {
		switch l := leg.(type) {
		case product.FixedLeg:
			haveFixed = true
			for _, per := range l.Periods {
				annuity += per.Notional * per.YearFraction * p.DiscountFactor(l.Currency, per.PayDate)
			}
		case product.IborLeg:
			haveFloat = true
			for _, per := range l.Periods {
				rate := p.IborRate(per.Observation)
				floating += per.Notional * per.Gearing * per.YearFraction * rate * p.DiscountFactor(l.Currency, per.PayDate)
			}
		case product.OvernightLeg:
			haveFloat = true
			for _, per := range l.Periods {
				rate := p.OvernightPeriodRate(per.Observation.Index, per.Observation.StartDate, per.Observation.EndDate)
				floating += per.Notional * per.YearFraction * rate * p.DiscountFactor(l.Currency, per.PayDate)
			}
		default:
			return 0, fmt.Errorf("ParRate: leg %d (%T): %w", i, leg, multicurve.ErrUnsupportedLeg)
		}
	}
	if !haveFixed || !haveFloat {
		return 0, fmt.Errorf("ParRate: swap needs a fixed and a floating leg")
	}
	if annuity == 0 {
		return 0, fmt.Errorf("ParRate: zero annuity")
	}
	return floating / annuity, nil
}

// flowCurrency resolves the discounting currency of an equivalent: the
// currency of its deterministic payments, or of its observation indices when
// no deterministic payment exists.
func flowCurrency(eq multicurve.Equivalent) (market.Currency, error) {
	if len(eq.DiscountFactorPayments) > 0 {
		return eq.DiscountFactorPayments[0].Currency, nil
	}
	if len(eq.IborObservations) > 0 {
		return eq.IborObservations[0].Index.Currency, nil
	}
	if len(eq.OvernightObservations) > 0 {
		return eq.OvernightObservations[0].Index.Currency, nil
	}
	return "", fmt.Errorf("flowCurrency: empty equivalent")
}
