package product

import (
	"time"

	"github.com/meenmo/ratemodel/market"
)

// LongShort indicates option position direction.
type LongShort string

const (
	Long  LongShort = "LONG"
	Short LongShort = "SHORT"
)

// Sign returns +1 for long, -1 for short.
func (ls LongShort) Sign() float64 {
	if ls == Short {
		return -1.0
	}
	return 1.0
}

// Swaption is a European option to enter the underlying swap at expiry.
type Swaption struct {
	ExpiryDate time.Time
	LongShort  LongShort
	Underlying Swap
}

// CapFloor selects the optionality direction of a rate option.
type CapFloor string

const (
	Cap   CapFloor = "CAP"
	Floor CapFloor = "FLOOR"
)

// CapFloorLeg is a strip of caplets or floorlets on the periods of an Ibor leg.
type CapFloorLeg struct {
	Leg       IborLeg
	CapFloor  CapFloor
	Strike    float64
	LongShort LongShort
}

// CmsKind selects the payoff applied to the observed swap rate.
type CmsKind string

const (
	CmsCoupon   CmsKind = "COUPON"
	CmsCaplet   CmsKind = "CAPLET"
	CmsFloorlet CmsKind = "FLOORLET"
)

// CmsPeriod is a single constant-maturity-swap coupon: the par rate of the
// underlying swap, observed at FixingDate, paid at PayDate on
// Notional x YearFraction. Caplet/floorlet kinds subtract/cap against Strike.
type CmsPeriod struct {
	Underlying   Swap
	Currency     market.Currency
	Notional     float64
	YearFraction float64
	StartDate    time.Time
	EndDate      time.Time
	PayDate      time.Time
	FixingDate   time.Time
	Kind         CmsKind
	Strike       float64
}

// CmsSpreadPeriod pays on the difference between two underlying swap rates
// observed at the same fixing date.
type CmsSpreadPeriod struct {
	Underlying1  Swap
	Underlying2  Swap
	Currency     market.Currency
	Notional     float64
	YearFraction float64
	StartDate    time.Time
	EndDate      time.Time
	PayDate      time.Time
	FixingDate   time.Time
	Kind         CmsKind
	Strike       float64
}

// RatchetPeriod is one coupon period of a ratchet leg: an Ibor observation
// fixed at FixingDate feeding the coefficient formula.
type RatchetPeriod struct {
	StartDate    time.Time
	EndDate      time.Time
	PayDate      time.Time
	FixingDate   time.Time
	YearFraction float64
	Observation  market.IborObservation
}

// RatchetLeg pays coupons of the form
//
//	rate_i = min(max(M0*rate_{i-1} + M1*ibor_i + M2,
//	                 F0*rate_{i-1} + F1*ibor_i + F2),
//	             C0*rate_{i-1} + C1*ibor_i + C2)
//
// where Floor/Cap are nil when the corresponding bound is absent. The
// [0, 1, 0] main coefficients with no bounds encode a plain Ibor leg, which is
// the standard cross-check against direct discounting.
type RatchetLeg struct {
	PayReceive  PayReceive
	Currency    market.Currency
	Notional    float64
	InitialRate float64
	Main        [3]float64
	Floor       *[3]float64
	Cap         *[3]float64
	Periods     []RatchetPeriod
}

// IborRatchet wraps an Ibor leg's schedule into a ratchet with the given
// coefficients. Gearing and spread on the source leg are ignored; the
// coefficient formula carries that role.
func IborRatchet(leg IborLeg, main [3]float64, floor, cap *[3]float64, initialRate float64) RatchetLeg {
	r := RatchetLeg{
		PayReceive:  leg.PayReceive,
		Currency:    leg.Currency,
		InitialRate: initialRate,
		Main:        main,
		Floor:       floor,
		Cap:         cap,
		Periods:     make([]RatchetPeriod, 0, len(leg.Periods)),
	}
	if len(leg.Periods) > 0 {
		r.Notional = leg.Periods[0].Notional
	}
	for _, p := range leg.Periods {
		r.Periods = append(r.Periods, RatchetPeriod{
			StartDate:    p.StartDate,
			EndDate:      p.EndDate,
			PayDate:      p.PayDate,
			FixingDate:   p.Observation.FixingDate,
			YearFraction: p.YearFraction,
			Observation:  p.Observation,
		})
	}
	return r
}
