package product

import (
	"github.com/meenmo/ratemodel/calendar"
	"github.com/meenmo/ratemodel/market"
)

// Frequency enumerates payment/reset frequencies in months.
type Frequency int

const (
	FreqAnnual    Frequency = 12
	FreqSemi      Frequency = 6
	FreqQuarterly Frequency = 3
	FreqMonthly   Frequency = 1
)

// RollConvention for month-end handling.
type RollConvention string

const (
	RollNone    RollConvention = ""
	BackwardEOM RollConvention = "BACKWARD_EOM"
)

// ScheduleDirection selects forward or backward period generation.
type ScheduleDirection string

const (
	ScheduleForward  ScheduleDirection = "FORWARD"
	ScheduleBackward ScheduleDirection = "BACKWARD"
)

// LegConvention captures the date-generation settings of a swap leg.
type LegConvention struct {
	DayCount          market.DayCount
	PayFrequency      Frequency
	FixingLagDays     int
	PayDelayDays      int
	Calendar          calendar.CalendarID
	RollConvention    RollConvention
	ScheduleDirection ScheduleDirection
}

// Preset leg conventions for EUR and JPY, mirroring standard market terms.
var (
	// EUR IRS fixed leg: annual payments, ACT/360, TARGET calendar.
	EurFixedAnnual = LegConvention{
		DayCount:       market.Act360,
		PayFrequency:   FreqAnnual,
		Calendar:       calendar.TARGET,
		RollConvention: BackwardEOM,
	}

	Euribor3MFloat = LegConvention{
		DayCount:          market.Act360,
		PayFrequency:      FreqQuarterly,
		FixingLagDays:     2,
		Calendar:          calendar.TARGET,
		RollConvention:    BackwardEOM,
		ScheduleDirection: ScheduleBackward,
	}

	Euribor6MFloat = LegConvention{
		DayCount:          market.Act360,
		PayFrequency:      FreqSemi,
		FixingLagDays:     2,
		Calendar:          calendar.TARGET,
		RollConvention:    BackwardEOM,
		ScheduleDirection: ScheduleBackward,
	}

	// EUR OIS leg: annual payments, ACT/360, TARGET calendar.
	EstrFloat = LegConvention{
		DayCount:       market.Act360,
		PayFrequency:   FreqAnnual,
		PayDelayDays:   1,
		Calendar:       calendar.TARGET,
		RollConvention: BackwardEOM,
	}

	// JPY IRS fixed leg: semiannual payments, ACT/365F, JPN calendar.
	JpyFixedSemi = LegConvention{
		DayCount:       market.Act365F,
		PayFrequency:   FreqSemi,
		Calendar:       calendar.JPN,
		RollConvention: BackwardEOM,
	}

	Tibor6MFloat = LegConvention{
		DayCount:       market.Act365F,
		PayFrequency:   FreqSemi,
		FixingLagDays:  2,
		PayDelayDays:   2,
		Calendar:       calendar.JPN,
		RollConvention: BackwardEOM,
	}

	TonarFloat = LegConvention{
		DayCount:       market.Act365F,
		PayFrequency:   FreqAnnual,
		PayDelayDays:   2,
		Calendar:       calendar.JPN,
		RollConvention: BackwardEOM,
	}
)
