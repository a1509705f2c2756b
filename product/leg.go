package product

import (
	"time"

	"github.com/meenmo/ratemodel/market"
)

// PayReceive indicates the direction of a leg's flows.
type PayReceive string

const (
	Pay     PayReceive = "PAY"
	Receive PayReceive = "RECEIVE"
)

// Sign returns +1 for receive, -1 for pay.
func (pr PayReceive) Sign() float64 {
	if pr == Pay {
		return -1.0
	}
	return 1.0
}

// FixedPeriod is one accrual/payment period of a fixed leg.
type FixedPeriod struct {
	StartDate    time.Time
	EndDate      time.Time
	PayDate      time.Time
	YearFraction float64
	Notional     float64
	Rate         float64
}

// IborPeriod is one accrual/payment period of an Ibor leg. A period carries
// exactly one rate observation; compounded sub-periods are not representable.
type IborPeriod struct {
	StartDate    time.Time
	EndDate      time.Time
	PayDate      time.Time
	YearFraction float64
	Notional     float64
	Observation  market.IborObservation
	Gearing      float64
	Spread       float64
}

// OvernightPeriod is one accrual/payment period of an overnight-compounded leg.
type OvernightPeriod struct {
	StartDate    time.Time
	EndDate      time.Time
	PayDate      time.Time
	YearFraction float64
	Notional     float64
	Observation  market.OvernightObservation
	Spread       float64
}

// Leg is the closed set of supported swap legs. Decomposition type-switches
// over the concrete leg types and rejects anything else.
type Leg interface {
	LegCurrency() market.Currency
	// HasExchanges reports whether the leg carries notional exchange events
	// in addition to its regular accrual payments.
	HasExchanges() bool

	sealedLeg()
}

// FixedLeg pays a fixed coupon each period.
type FixedLeg struct {
	PayReceive      PayReceive
	Currency        market.Currency
	Periods         []FixedPeriod
	InitialExchange bool
	FinalExchange   bool
}

// IborLeg pays a (geared, spread) Ibor coupon each period.
type IborLeg struct {
	PayReceive      PayReceive
	Currency        market.Currency
	Periods         []IborPeriod
	InitialExchange bool
	FinalExchange   bool
}

// OvernightLeg pays a compounded overnight coupon each period.
type OvernightLeg struct {
	PayReceive      PayReceive
	Currency        market.Currency
	Periods         []OvernightPeriod
	InitialExchange bool
	FinalExchange   bool
}

func (l FixedLeg) LegCurrency() market.Currency     { return l.Currency }
func (l IborLeg) LegCurrency() market.Currency      { return l.Currency }
func (l OvernightLeg) LegCurrency() market.Currency { return l.Currency }

func (l FixedLeg) HasExchanges() bool     { return l.InitialExchange || l.FinalExchange }
func (l IborLeg) HasExchanges() bool      { return l.InitialExchange || l.FinalExchange }
func (l OvernightLeg) HasExchanges() bool { return l.InitialExchange || l.FinalExchange }

func (FixedLeg) sealedLeg()     {}
func (IborLeg) sealedLeg()      {}
func (OvernightLeg) sealedLeg() {}

// Swap is a resolved multi-leg interest rate swap.
type Swap struct {
	Legs []Leg
}
