package curve

import (
	"errors"
	"time"

	"github.com/meenmo/ratemodel/market"
)

var (
	// ErrNilCurve is returned when a required curve argument is nil.
	ErrNilCurve = errors.New("nil curve")
	// ErrUnknownCurrency is returned when a provider has no discount curve for a currency.
	ErrUnknownCurrency = errors.New("unknown currency")
)

// Provider supplies the market values the pricing and simulation layers read:
// discount factors, forward Ibor rates and compounded overnight period rates,
// all as of a single valuation date.
//
// Implementations must be read-only after construction; pricers share one
// provider across all paths and blocks without synchronization.
type Provider interface {
	ValuationDate() time.Time
	DiscountFactor(ccy market.Currency, date time.Time) float64
	IborRate(obs market.IborObservation) float64
	OvernightPeriodRate(index market.OvernightIndex, start, end time.Time) float64
}
