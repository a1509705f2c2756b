package product

import (
	"fmt"
	"time"

	"github.com/meenmo/ratemodel/calendar"
	"github.com/meenmo/ratemodel/market"
	"github.com/meenmo/ratemodel/utils"
)

// SchedulePeriod is a date-generated cashflow period for a single leg.
//
// Dates are business-day adjusted per the provided leg convention.
type SchedulePeriod struct {
	StartDate   time.Time
	EndDate     time.Time
	PayDate     time.Time
	FixingDate  time.Time
	AccrualDays int
}

// GenerateSchedule builds the payment schedule for a leg.
//
// It returns business-day adjusted StartDate/EndDate/PayDate along with integer
// accrual days. When leg.ScheduleDirection is ScheduleBackward, periods are
// generated from maturity backward (Bloomberg SWPM convention for IBOR swaps),
// creating a front stub if needed.
func GenerateSchedule(effective, maturity time.Time, conv LegConvention) ([]SchedulePeriod, error) {
	if maturity.Before(effective) {
		return nil, fmt.Errorf("GenerateSchedule: maturity %s before effective %s", maturity.Format("2006-01-02"), effective.Format("2006-01-02"))
	}
	if conv.PayFrequency <= 0 {
		return nil, fmt.Errorf("GenerateSchedule: unsupported pay frequency %d", conv.PayFrequency)
	}

	if conv.ScheduleDirection == ScheduleBackward {
		return generateScheduleBackward(effective, maturity, conv)
	}
	return generateScheduleForward(effective, maturity, conv)
}

func generateScheduleForward(effective, maturity time.Time, conv LegConvention) ([]SchedulePeriod, error) {
	periods := make([]SchedulePeriod, 0, 64)
	months := int(conv.PayFrequency)
	start := effective

	for {
		var next time.Time
		if conv.RollConvention == BackwardEOM {
			next = utils.AddMonth(start, months)
		} else {
			next = start.AddDate(0, months, 0)
		}
		if next.After(maturity.AddDate(0, 0, 1)) {
			break
		}

		accrualStart := calendar.Adjust(conv.Calendar, start)
		accrualEnd := calendar.Adjust(conv.Calendar, next)
		paymentDate := calendar.AddBusinessDays(conv.Calendar, accrualEnd, conv.PayDelayDays)
		fixingDate := calendar.AddBusinessDays(conv.Calendar, accrualStart, -conv.FixingLagDays)

		periods = append(periods, SchedulePeriod{
			StartDate:   accrualStart,
			EndDate:     accrualEnd,
			PayDate:     paymentDate,
			FixingDate:  fixingDate,
			AccrualDays: int(utils.Days(accrualStart, accrualEnd)),
		})

		// Always use the unadjusted date for the next iteration to avoid drift.
		start = next
	}

	return periods, nil
}

// generateScheduleBackward generates periods rolling backward from maturity
// date so intermediate dates align with maturity and the first period becomes
// a front stub if needed.
func generateScheduleBackward(effective, maturity time.Time, conv LegConvention) ([]SchedulePeriod, error) {
	months := int(conv.PayFrequency)

	var unadjustedDates []time.Time
	current := maturity
	for current.After(effective) {
		unadjustedDates = append([]time.Time{current}, unadjustedDates...)
		if conv.RollConvention == BackwardEOM {
			current = utils.AddMonth(current, -months)
		} else {
			current = current.AddDate(0, -months, 0)
		}
	}

	// If the first backward-rolled date lands within 7 days of effective, skip
	// it so the first period becomes a long stub instead of a tiny one.
	if len(unadjustedDates) > 0 {
		daysDiff := int(utils.Days(effective, unadjustedDates[0]))
		if daysDiff > 0 && daysDiff <= 7 {
			unadjustedDates = unadjustedDates[1:]
		}
	}

	unadjustedDates = append([]time.Time{effective}, unadjustedDates...)

	periods := make([]SchedulePeriod, 0, len(unadjustedDates)-1)
	for i := 0; i < len(unadjustedDates)-1; i++ {
		accrualStart := calendar.Adjust(conv.Calendar, unadjustedDates[i])
		accrualEnd := calendar.Adjust(conv.Calendar, unadjustedDates[i+1])
		paymentDate := calendar.AddBusinessDays(conv.Calendar, accrualEnd, conv.PayDelayDays)
		fixingDate := calendar.AddBusinessDays(conv.Calendar, accrualStart, -conv.FixingLagDays)

		periods = append(periods, SchedulePeriod{
			StartDate:   accrualStart,
			EndDate:     accrualEnd,
			PayDate:     paymentDate,
			FixingDate:  fixingDate,
			AccrualDays: int(utils.Days(accrualStart, accrualEnd)),
		})
	}

	return periods, nil
}

// NewFixedLeg generates the schedule and resolves a fixed leg.
func NewFixedLeg(pr PayReceive, ccy market.Currency, notional, rate float64, conv LegConvention, effective, maturity time.Time) (FixedLeg, error) {
	periods, err := GenerateSchedule(effective, maturity, conv)
	if err != nil {
		return FixedLeg{}, fmt.Errorf("NewFixedLeg: %w", err)
	}
	leg := FixedLeg{PayReceive: pr, Currency: ccy, Periods: make([]FixedPeriod, 0, len(periods))}
	for _, p := range periods {
		leg.Periods = append(leg.Periods, FixedPeriod{
			StartDate:    p.StartDate,
			EndDate:      p.EndDate,
			PayDate:      p.PayDate,
			YearFraction: utils.YearFraction(p.StartDate, p.EndDate, string(conv.DayCount)),
			Notional:     notional,
			Rate:         rate,
		})
	}
	return leg, nil
}

// NewIborLeg generates the schedule and resolves an Ibor leg. The rate
// observation of each period spans the period's own accrual dates, measured in
// the index day count.
func NewIborLeg(pr PayReceive, index market.IborIndex, notional, gearing, spread float64, conv LegConvention, effective, maturity time.Time) (IborLeg, error) {
	periods, err := GenerateSchedule(effective, maturity, conv)
	if err != nil {
		return IborLeg{}, fmt.Errorf("NewIborLeg: %w", err)
	}
	leg := IborLeg{PayReceive: pr, Currency: index.Currency, Periods: make([]IborPeriod, 0, len(periods))}
	for _, p := range periods {
		obs := market.IborObservation{
			Index:         index,
			FixingDate:    p.FixingDate,
			EffectiveDate: p.StartDate,
			MaturityDate:  p.EndDate,
			YearFraction:  utils.YearFraction(p.StartDate, p.EndDate, string(index.DayCount)),
		}
		leg.Periods = append(leg.Periods, IborPeriod{
			StartDate:    p.StartDate,
			EndDate:      p.EndDate,
			PayDate:      p.PayDate,
			YearFraction: utils.YearFraction(p.StartDate, p.EndDate, string(conv.DayCount)),
			Notional:     notional,
			Observation:  obs,
			Gearing:      gearing,
			Spread:       spread,
		})
	}
	return leg, nil
}

// NewOvernightLeg generates the schedule and resolves an overnight-compounded leg.
func NewOvernightLeg(pr PayReceive, index market.OvernightIndex, notional, spread float64, conv LegConvention, effective, maturity time.Time) (OvernightLeg, error) {
	periods, err := GenerateSchedule(effective, maturity, conv)
	if err != nil {
		return OvernightLeg{}, fmt.Errorf("NewOvernightLeg: %w", err)
	}
	leg := OvernightLeg{PayReceive: pr, Currency: index.Currency, Periods: make([]OvernightPeriod, 0, len(periods))}
	for _, p := range periods {
		leg.Periods = append(leg.Periods, OvernightPeriod{
			StartDate:    p.StartDate,
			EndDate:      p.EndDate,
			PayDate:      p.PayDate,
			YearFraction: utils.YearFraction(p.StartDate, p.EndDate, string(conv.DayCount)),
			Notional:     notional,
			Observation:  market.ObserveOvernight(index, p.StartDate, p.EndDate),
			Spread:       spread,
		})
	}
	return leg, nil
}

// FixedVsIbor assembles the vanilla two-leg swap used throughout the examples:
// pay/receive fixed against a plain Ibor leg on the same dates.
func FixedVsIbor(fixedSide PayReceive, notional, fixedRate float64, fixedConv LegConvention, index market.IborIndex, floatConv LegConvention, effective, maturity time.Time) (Swap, error) {
	fixed, err := NewFixedLeg(fixedSide, index.Currency, notional, fixedRate, fixedConv, effective, maturity)
	if err != nil {
		return Swap{}, fmt.Errorf("FixedVsIbor: %w", err)
	}
	floatSide := Pay
	if fixedSide == Pay {
		floatSide = Receive
	}
	float, err := NewIborLeg(floatSide, index, notional, 1.0, 0.0, floatConv, effective, maturity)
	if err != nil {
		return Swap{}, fmt.Errorf("FixedVsIbor: %w", err)
	}
	return Swap{Legs: []Leg{fixed, float}}, nil
}
