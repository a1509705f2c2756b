package multicurve

import (
	"fmt"
	"math"

	"github.com/meenmo/ratemodel/curve"
)

// Values holds numeric arrays shaped 1:1 with an Equivalent's lists: one
// discount factor per deterministic payment, one rate per Ibor observation and
// one per overnight observation. They come either from a curve provider at
// time zero or from a Monte Carlo path state at a decision time.
type Values struct {
	DiscountFactors []float64
	IborRates       []float64
	OvernightRates  []float64
}

// MatchesShape checks that v is parallel to e's lists.
func (v Values) MatchesShape(e Equivalent) error {
	if len(v.DiscountFactors) != len(e.DiscountFactorPayments) {
		return fmt.Errorf("MatchesShape: %d discount factors vs %d payments", len(v.DiscountFactors), len(e.DiscountFactorPayments))
	}
	if len(v.IborRates) != len(e.IborObservations) {
		return fmt.Errorf("MatchesShape: %d ibor rates vs %d observations", len(v.IborRates), len(e.IborObservations))
	}
	if len(v.OvernightRates) != len(e.OvernightObservations) {
		return fmt.Errorf("MatchesShape: %d overnight rates vs %d observations", len(v.OvernightRates), len(e.OvernightObservations))
	}
	return nil
}

// StartingValues reads the time-zero values of an equivalent off a curve
// provider: the discount factor of each deterministic payment, the forward
// rate of each Ibor observation and the compounded period rate of each
// overnight observation.
//
// Each array is filled over its own list's length; the rate loops are never
// truncated to the discount-factor list.
func StartingValues(e Equivalent, p curve.Provider) (Values, error) {
	if err := e.Validate(); err != nil {
		return Values{}, fmt.Errorf("StartingValues: %w", err)
	}

	v := Values{
		DiscountFactors: make([]float64, len(e.DiscountFactorPayments)),
		IborRates:       make([]float64, len(e.IborObservations)),
		OvernightRates:  make([]float64, len(e.OvernightObservations)),
	}
	for i, pay := range e.DiscountFactorPayments {
		df := p.DiscountFactor(pay.Currency, pay.PayDate)
		if math.IsNaN(df) || math.IsInf(df, 0) {
			return Values{}, fmt.Errorf("StartingValues: payment %d: no discount curve for %s", i, pay.Currency)
		}
		v.DiscountFactors[i] = df
	}
	for i, obs := range e.IborObservations {
		r := p.IborRate(obs)
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return Values{}, fmt.Errorf("StartingValues: ibor observation %d (%s): rate unavailable", i, obs.Index.Name)
		}
		v.IborRates[i] = r
	}
	for i, obs := range e.OvernightObservations {
		r := p.OvernightPeriodRate(obs.Index, obs.StartDate, obs.EndDate)
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return Values{}, fmt.Errorf("StartingValues: overnight observation %d (%s): rate unavailable", i, obs.Index.Name)
		}
		v.OvernightRates[i] = r
	}
	return v, nil
}
