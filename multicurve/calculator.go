package multicurve

import (
	"errors"
	"fmt"
	"time"

	"github.com/meenmo/ratemodel/market"
	"github.com/meenmo/ratemodel/product"
)

var (
	// ErrUnsupportedLeg is returned for leg types outside fixed/Ibor/overnight.
	ErrUnsupportedLeg = errors.New("unsupported leg type")
	// ErrPaymentEvents is returned when a leg carries notional exchanges.
	ErrPaymentEvents = errors.New("leg has payment events")
)

// SwapEquivalent reduces a resolved swap to its multi-curve events.
//
// Fixed coupons become deterministic discount-factor payments. Each Ibor or
// overnight period emits one rate observation plus a parallel payment scaled
// by notional x gearing x year fraction; a non-zero flat spread becomes an
// additional deterministic payment (spread is a deterministic cash flow, not a
// stochastic observation). Deterministic payments are ordered fixed-leg flows
// first, then spread flows; observations keep period order, legs concatenated
// in leg order.
func SwapEquivalent(s product.Swap) (Equivalent, error) {
	var out Equivalent
	var fixedFlows, spreadFlows []DiscountFactorPayment

	for i, leg := range s.Legs {
		if leg.HasExchanges() {
			return Equivalent{}, fmt.Errorf("SwapEquivalent: leg %d: %w", i, ErrPaymentEvents)
		}
		if i > 0 && leg.LegCurrency() != s.Legs[0].LegCurrency() {
			return Equivalent{}, fmt.Errorf("SwapEquivalent: leg %d: %s vs %s: %w",
				i, leg.LegCurrency(), s.Legs[0].LegCurrency(), ErrCurrencyMismatch)
		}
		switch l := leg.(type) {
		case product.FixedLeg:
			sign := l.PayReceive.Sign()
			for _, p := range l.Periods {
				fixedFlows = append(fixedFlows, DiscountFactorPayment{
					Currency: l.Currency,
					Amount:   sign * p.Notional * p.YearFraction * p.Rate,
					PayDate:  p.PayDate,
				})
			}
		case product.IborLeg:
			sign := l.PayReceive.Sign()
			for _, p := range l.Periods {
				out.IborObservations = append(out.IborObservations, p.Observation)
				out.IborPayments = append(out.IborPayments, Flow{
					Amount:  sign * p.Notional * p.Gearing * p.YearFraction,
					PayDate: p.PayDate,
				})
				if p.Spread != 0 {
					spreadFlows = append(spreadFlows, DiscountFactorPayment{
						Currency: l.Currency,
						Amount:   sign * p.Notional * p.YearFraction * p.Spread,
						PayDate:  p.PayDate,
					})
				}
			}
		case product.OvernightLeg:
			sign := l.PayReceive.Sign()
			for _, p := range l.Periods {
				out.OvernightObservations = append(out.OvernightObservations, p.Observation)
				out.OvernightPayments = append(out.OvernightPayments, Flow{
					Amount:  sign * p.Notional * p.YearFraction,
					PayDate: p.PayDate,
				})
				if p.Spread != 0 {
					spreadFlows = append(spreadFlows, DiscountFactorPayment{
						Currency: l.Currency,
						Amount:   sign * p.Notional * p.YearFraction * p.Spread,
						PayDate:  p.PayDate,
					})
				}
			}
		default:
			return Equivalent{}, fmt.Errorf("SwapEquivalent: leg %d (%T): %w", i, leg, ErrUnsupportedLeg)
		}
	}

	out.DiscountFactorPayments = concat(fixedFlows, spreadFlows)
	return out, nil
}

// SwaptionSchedule decomposes the underlying swap and assigns the option
// expiry as the single decision time.
func SwaptionSchedule(sw product.Swaption) (Schedule, error) {
	eq, err := SwapEquivalent(sw.Underlying)
	if err != nil {
		return Schedule{}, fmt.Errorf("SwaptionSchedule: %w", err)
	}
	if sw.ExpiryDate.IsZero() {
		return Schedule{}, fmt.Errorf("SwaptionSchedule: expiry date is required")
	}
	return Schedule{Equivalents: []Equivalent{eq.WithDecisionTime(sw.ExpiryDate)}}, nil
}

// CmsPeriodSchedule decomposes the underlying swap, appends the coupon's own
// notional x year-fraction payment at the coupon pay date, and uses the index
// fixing date as the decision time.
func CmsPeriodSchedule(c product.CmsPeriod) (Schedule, error) {
	eq, err := SwapEquivalent(c.Underlying)
	if err != nil {
		return Schedule{}, fmt.Errorf("CmsPeriodSchedule: %w", err)
	}
	eq.DiscountFactorPayments = append(eq.DiscountFactorPayments, DiscountFactorPayment{
		Currency: c.Currency,
		Amount:   c.Notional * c.YearFraction,
		PayDate:  c.PayDate,
	})
	return Schedule{Equivalents: []Equivalent{eq.WithDecisionTime(c.FixingDate)}}, nil
}

// CmsSpreadSchedule combines the decompositions of both underlying swaps,
// swap 1 first, then appends the coupon payment. The combination order fixes
// the relative position of the two swaps' observations in the flat lists,
// which aggregation relies on.
func CmsSpreadSchedule(c product.CmsSpreadPeriod) (Schedule, error) {
	eq1, err := SwapEquivalent(c.Underlying1)
	if err != nil {
		return Schedule{}, fmt.Errorf("CmsSpreadSchedule: swap 1: %w", err)
	}
	eq2, err := SwapEquivalent(c.Underlying2)
	if err != nil {
		return Schedule{}, fmt.Errorf("CmsSpreadSchedule: swap 2: %w", err)
	}
	eq, err := eq1.CombinedWith(eq2)
	if err != nil {
		return Schedule{}, fmt.Errorf("CmsSpreadSchedule: %w", err)
	}
	eq.DiscountFactorPayments = append(eq.DiscountFactorPayments, DiscountFactorPayment{
		Currency: c.Currency,
		Amount:   c.Notional * c.YearFraction,
		PayDate:  c.PayDate,
	})
	return Schedule{Equivalents: []Equivalent{eq.WithDecisionTime(c.FixingDate)}}, nil
}

// CapFloorSchedule emits one equivalent per caplet/floorlet, decision time at
// each period's fixing date. Spread-bearing periods are rejected: a caplet
// strikes on the clean index fixing.
func CapFloorSchedule(cf product.CapFloorLeg) (Schedule, error) {
	sign := cf.Leg.PayReceive.Sign()
	sched := Schedule{Equivalents: make([]Equivalent, 0, len(cf.Leg.Periods))}
	for i, p := range cf.Leg.Periods {
		if p.Spread != 0 {
			return Schedule{}, fmt.Errorf("CapFloorSchedule: period %d: spread on optioned period unsupported", i)
		}
		eq := Equivalent{
			DecisionTime:     p.Observation.FixingDate,
			IborObservations: []market.IborObservation{p.Observation},
			IborPayments: []Flow{{
				Amount:  sign * p.Notional * p.Gearing * p.YearFraction,
				PayDate: p.PayDate,
			}},
		}
		sched.Equivalents = append(sched.Equivalents, eq)
	}
	return sched, nil
}

// RatchetSchedule emits one equivalent per ratchet coupon, each carrying the
// period's Ibor observation and the coupon's notional x year-fraction payment
// scale, decision time at the period fixing date.
func RatchetSchedule(r product.RatchetLeg) (Schedule, error) {
	if len(r.Periods) == 0 {
		return Schedule{}, fmt.Errorf("RatchetSchedule: no periods")
	}
	sign := r.PayReceive.Sign()
	sched := Schedule{Equivalents: make([]Equivalent, 0, len(r.Periods))}
	var prev time.Time
	for i, p := range r.Periods {
		if !prev.IsZero() && !p.FixingDate.After(prev) {
			return Schedule{}, fmt.Errorf("RatchetSchedule: period %d: fixing dates not increasing", i)
		}
		prev = p.FixingDate
		eq := Equivalent{
			DecisionTime:     p.FixingDate,
			IborObservations: []market.IborObservation{p.Observation},
			IborPayments: []Flow{{
				Amount:  sign * r.Notional * p.YearFraction,
				PayDate: p.PayDate,
			}},
		}
		sched.Equivalents = append(sched.Equivalents, eq)
	}
	return sched, nil
}
