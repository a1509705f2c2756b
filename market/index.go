package market

import (
	"time"

	"github.com/meenmo/ratemodel/calendar"
	"github.com/meenmo/ratemodel/utils"
)

// Currency is an ISO-4217 currency code.
type Currency string

const (
	EUR Currency = "EUR"
	JPY Currency = "JPY"
	USD Currency = "USD"
)

// DayCount enum.
type DayCount string

const (
	Act360  DayCount = "ACT/360"
	Act365F DayCount = "ACT/365F"
	Dc30360 DayCount = "30/360"
)

// IborIndex identifies a term fixing benchmark (e.g. EURIBOR 6M).
type IborIndex struct {
	Name          string
	Currency      Currency
	TenorMonths   int
	DayCount      DayCount
	FixingLagDays int
	Calendar      calendar.CalendarID
}

// OvernightIndex identifies an overnight benchmark compounded over a period.
type OvernightIndex struct {
	Name     string
	Currency Currency
	DayCount DayCount
	Calendar calendar.CalendarID
}

// Standard indices used throughout the examples and tests.
var (
	Euribor3M = IborIndex{Name: "EURIBOR3M", Currency: EUR, TenorMonths: 3, DayCount: Act360, FixingLagDays: 2, Calendar: calendar.TARGET}
	Euribor6M = IborIndex{Name: "EURIBOR6M", Currency: EUR, TenorMonths: 6, DayCount: Act360, FixingLagDays: 2, Calendar: calendar.TARGET}
	Tibor3M   = IborIndex{Name: "TIBOR3M", Currency: JPY, TenorMonths: 3, DayCount: Act365F, FixingLagDays: 2, Calendar: calendar.JPN}
	Tibor6M   = IborIndex{Name: "TIBOR6M", Currency: JPY, TenorMonths: 6, DayCount: Act365F, FixingLagDays: 2, Calendar: calendar.JPN}

	Estr  = OvernightIndex{Name: "ESTR", Currency: EUR, DayCount: Act360, Calendar: calendar.TARGET}
	Tonar = OvernightIndex{Name: "TONAR", Currency: JPY, DayCount: Act365F, Calendar: calendar.JPN}
	Sofr  = OvernightIndex{Name: "SOFR", Currency: USD, DayCount: Act360, Calendar: calendar.USD}
)

// IborObservation is a single term-rate fixing: the index, the fixing date and
// the accrual period the fixed rate applies to.
type IborObservation struct {
	Index         IborIndex
	FixingDate    time.Time
	EffectiveDate time.Time
	MaturityDate  time.Time
	YearFraction  float64
}

// ObserveIbor derives the observation period from the index conventions.
func ObserveIbor(index IborIndex, fixingDate time.Time) IborObservation {
	effective := calendar.AddBusinessDays(index.Calendar, fixingDate, index.FixingLagDays)
	maturity := calendar.Adjust(index.Calendar, utils.AddMonth(effective, index.TenorMonths))
	return IborObservation{
		Index:         index,
		FixingDate:    fixingDate,
		EffectiveDate: effective,
		MaturityDate:  maturity,
		YearFraction:  utils.YearFraction(effective, maturity, string(index.DayCount)),
	}
}

// OvernightObservation is a compounded overnight rate over [StartDate, EndDate).
type OvernightObservation struct {
	Index        OvernightIndex
	StartDate    time.Time
	EndDate      time.Time
	YearFraction float64
}

// ObserveOvernight builds the compounded observation for an accrual period.
func ObserveOvernight(index OvernightIndex, start, end time.Time) OvernightObservation {
	return OvernightObservation{
		Index:        index,
		StartDate:    start,
		EndDate:      end,
		YearFraction: utils.YearFraction(start, end, string(index.DayCount)),
	}
}
