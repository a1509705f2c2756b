// Package multicurve reduces resolved interest-rate products to the minimal
// set of discount-factor, Ibor-fixing and overnight-fixing cash-flow events
// needed for multi-curve pricing and Monte Carlo simulation.
package multicurve

import (
	"errors"
	"fmt"
	"time"

	"github.com/meenmo/ratemodel/market"
)

var (
	// ErrDecisionTimeMismatch is returned when two equivalents with different
	// non-absent decision times are combined.
	ErrDecisionTimeMismatch = errors.New("decision time mismatch")
	// ErrCurrencyMismatch is returned when two equivalents carry discount
	// flows in different currencies.
	ErrCurrencyMismatch = errors.New("currency mismatch")
)

// DiscountFactorPayment is a deterministic cash amount paid on a date.
type DiscountFactorPayment struct {
	Currency market.Currency
	Amount   float64
	PayDate  time.Time
}

// Flow is an amount paid on a date, scaled by a simulated rate observation.
type Flow struct {
	Amount  float64
	PayDate time.Time
}

// Equivalent is the normalized multi-curve description of an instrument:
// deterministic discount-factor payments plus Ibor and overnight rate
// observations with their parallel payment entries, and one decision time.
//
// A zero DecisionTime means "not yet assigned"; decision-schedule builders set
// it. Values are never mutated in place: every operation returns a new
// Equivalent.
type Equivalent struct {
	DecisionTime           time.Time
	DiscountFactorPayments []DiscountFactorPayment
	IborObservations       []market.IborObservation
	IborPayments           []Flow
	OvernightObservations  []market.OvernightObservation
	OvernightPayments      []Flow
}

// Empty returns an equivalent with no events and no decision time.
func Empty() Equivalent { return Equivalent{} }

// WithDecisionTime returns a copy with the decision time set.
func (e Equivalent) WithDecisionTime(t time.Time) Equivalent {
	e.DecisionTime = t
	return e
}

// Validate checks the parallel-list invariant.
func (e Equivalent) Validate() error {
	if len(e.IborObservations) != len(e.IborPayments) {
		return fmt.Errorf("Validate: %d ibor observations vs %d payments", len(e.IborObservations), len(e.IborPayments))
	}
	if len(e.OvernightObservations) != len(e.OvernightPayments) {
		return fmt.Errorf("Validate: %d overnight observations vs %d payments", len(e.OvernightObservations), len(e.OvernightPayments))
	}
	return nil
}

func (e Equivalent) currency() (market.Currency, bool) {
	if len(e.DiscountFactorPayments) == 0 {
		return "", false
	}
	return e.DiscountFactorPayments[0].Currency, true
}

// CombinedWith concatenates all five event lists of e and o, e's first.
// The decision time of the result is the first non-absent one; combining two
// different non-absent decision times is an error, as is combining discount
// flows in different currencies.
func (e Equivalent) CombinedWith(o Equivalent) (Equivalent, error) {
	decision := e.DecisionTime
	if decision.IsZero() {
		decision = o.DecisionTime
	} else if !o.DecisionTime.IsZero() && !o.DecisionTime.Equal(decision) {
		return Equivalent{}, fmt.Errorf("CombinedWith: %s vs %s: %w",
			decision.Format("2006-01-02"), o.DecisionTime.Format("2006-01-02"), ErrDecisionTimeMismatch)
	}
	if c1, ok1 := e.currency(); ok1 {
		if c2, ok2 := o.currency(); ok2 && c1 != c2 {
			return Equivalent{}, fmt.Errorf("CombinedWith: %s vs %s: %w", c1, c2, ErrCurrencyMismatch)
		}
	}

	out := Equivalent{DecisionTime: decision}
	out.DiscountFactorPayments = concat(e.DiscountFactorPayments, o.DiscountFactorPayments)
	out.IborObservations = concat(e.IborObservations, o.IborObservations)
	out.IborPayments = concat(e.IborPayments, o.IborPayments)
	out.OvernightObservations = concat(e.OvernightObservations, o.OvernightObservations)
	out.OvernightPayments = concat(e.OvernightPayments, o.OvernightPayments)
	return out, nil
}

func concat[T any](a, b []T) []T {
	if len(a)+len(b) == 0 {
		return nil
	}
	out := make([]T, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

// Schedule is the ordered sequence of equivalents for a multi-date product,
// one entry per decision date in chronological order.
type Schedule struct {
	Equivalents []Equivalent
}

// DecisionTimes lists the decision time of each entry, in schedule order.
func (s Schedule) DecisionTimes() []time.Time {
	out := make([]time.Time, len(s.Equivalents))
	for i, e := range s.Equivalents {
		out[i] = e.DecisionTime
	}
	return out
}
