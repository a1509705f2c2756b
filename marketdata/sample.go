// Package marketdata supplies curve inputs: a small embedded sample set for
// examples and tests, and a Postgres-backed store for production quotes.
package marketdata

import (
	"fmt"
	"time"

	"github.com/meenmo/ratemodel/curve"
	"github.com/meenmo/ratemodel/market"
	"github.com/meenmo/ratemodel/utils"
)

// sampleZeroRates holds continuously compounded zero rates per currency and
// tenor (months from the valuation date). Levels are indicative end-2025
// market shapes, not live quotes.
var sampleZeroRates = map[market.Currency][]struct {
	Months int
	Rate   float64
}{
	market.EUR: {
		{3, 0.0192}, {6, 0.0195}, {12, 0.0201},
		{24, 0.0210}, {36, 0.0219}, {60, 0.0233},
		{84, 0.0244}, {120, 0.0256}, {240, 0.0271}, {360, 0.0268},
	},
	market.USD: {
		{3, 0.0388}, {6, 0.0381}, {12, 0.0369},
		{24, 0.0357}, {36, 0.0354}, {60, 0.0356},
		{84, 0.0361}, {120, 0.0368}, {240, 0.0381}, {360, 0.0375},
	},
	market.JPY: {
		{3, 0.0048}, {6, 0.0053}, {12, 0.0061},
		{24, 0.0074}, {36, 0.0086}, {60, 0.0105},
		{84, 0.0119}, {120, 0.0133}, {240, 0.0162}, {360, 0.0171},
	},
}

// SampleProvider builds a multi-curve provider from the embedded sample rates,
// one discount curve per currency, used for both discounting and projection.
func SampleProvider(valuation time.Time) (*curve.MultiProvider, error) {
	discounts := make(map[market.Currency]*curve.Zero, len(sampleZeroRates))
	for ccy, quotes := range sampleZeroRates {
		times := make([]float64, len(quotes))
		rates := make([]float64, len(quotes))
		for i, q := range quotes {
			times[i] = utils.YearFraction(valuation, utils.AddMonth(valuation, q.Months), "ACT/365F")
			rates[i] = q.Rate
		}
		zc, err := curve.NewZero(valuation, times, rates)
		if err != nil {
			return nil, fmt.Errorf("SampleProvider: %s: %w", ccy, err)
		}
		discounts[ccy] = zc
	}
	p, err := curve.NewMultiProvider(valuation, discounts, nil)
	if err != nil {
		return nil, fmt.Errorf("SampleProvider: %w", err)
	}
	return p, nil
}

// FlatProvider builds a single-currency provider with one flat zero rate,
// convenient for tests where curve shape is irrelevant.
func FlatProvider(valuation time.Time, ccy market.Currency, rate float64) *curve.MultiProvider {
	p, _ := curve.NewMultiProvider(valuation, map[market.Currency]*curve.Zero{
		ccy: curve.NewFlatZero(valuation, rate),
	}, nil)
	return p
}
