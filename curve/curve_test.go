package curve

import (
	"math"
	"testing"
	"time"

	"github.com/meenmo/ratemodel/market"
)

var valuation = time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)

func flatProvider(t *testing.T, rate float64) *MultiProvider {
	t.Helper()
	p, err := NewMultiProvider(valuation, map[market.Currency]*Zero{
		market.EUR: NewFlatZero(valuation, rate),
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestZeroDiscountFactor(t *testing.T) {
	t.Parallel()

	c := NewFlatZero(valuation, 0.02)
	if got := c.DiscountFactor(0); got != 1.0 {
		t.Errorf("DF(0) = %g", got)
	}
	want := math.Exp(-0.02 * 2.5)
	if got := c.DiscountFactor(2.5); math.Abs(got-want) > 1e-15 {
		t.Errorf("DF(2.5) = %.15f, want %.15f", got, want)
	}
}

func TestZeroInterpolation(t *testing.T) {
	t.Parallel()

	c, err := NewZero(valuation, []float64{1, 2}, []float64{0.01, 0.03})
	if err != nil {
		t.Fatal(err)
	}
	// Linear in z*t: at t=1.5, z*t = (0.01*1 + 0.03*2)/2 = 0.035.
	if got := c.ZeroRate(1.5); math.Abs(got-0.035/1.5) > 1e-12 {
		t.Errorf("ZeroRate(1.5) = %.12f", got)
	}
	// Flat extrapolation on both ends.
	if got := c.ZeroRate(0.5); got != 0.01 {
		t.Errorf("ZeroRate(0.5) = %g", got)
	}
	if got := c.ZeroRate(5); got != 0.03 {
		t.Errorf("ZeroRate(5) = %g", got)
	}
}

func TestNewZeroValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewZero(valuation, nil, nil); err == nil {
		t.Error("expected error for empty nodes")
	}
	if _, err := NewZero(valuation, []float64{1, 1}, []float64{0.01, 0.02}); err == nil {
		t.Error("expected error for non-increasing times")
	}
	if _, err := NewZero(valuation, []float64{1}, []float64{0.01, 0.02}); err == nil {
		t.Error("expected error for length mismatch")
	}
}

func TestMultiProviderIborRate(t *testing.T) {
	t.Parallel()

	p := flatProvider(t, 0.02)
	obs := market.ObserveIbor(market.Euribor6M, valuation)

	got := p.IborRate(obs)
	want := (p.DiscountFactor(market.EUR, obs.EffectiveDate)/p.DiscountFactor(market.EUR, obs.MaturityDate) - 1.0) / obs.YearFraction
	if math.Abs(got-want) > 1e-15 {
		t.Errorf("IborRate = %.15f, want %.15f", got, want)
	}
	if got <= 0 {
		t.Errorf("IborRate = %g, want positive for a positive flat curve", got)
	}
}

func TestMultiProviderUnknownCurrency(t *testing.T) {
	t.Parallel()

	p := flatProvider(t, 0.02)
	if got := p.DiscountFactor(market.JPY, valuation.AddDate(1, 0, 0)); !math.IsNaN(got) {
		t.Errorf("DiscountFactor(JPY) = %g, want NaN", got)
	}
	if p.HasCurrency(market.JPY) {
		t.Error("HasCurrency(JPY) = true")
	}
	if !p.HasCurrency(market.EUR) {
		t.Error("HasCurrency(EUR) = false")
	}
}

func TestProjectionCurveFallback(t *testing.T) {
	t.Parallel()

	disc := NewFlatZero(valuation, 0.02)
	proj := NewFlatZero(valuation, 0.025)
	p, err := NewMultiProvider(valuation, map[market.Currency]*Zero{market.EUR: disc},
		map[string]*Zero{market.Euribor6M.Name: proj})
	if err != nil {
		t.Fatal(err)
	}

	obs6 := market.ObserveIbor(market.Euribor6M, valuation)
	obs3 := market.ObserveIbor(market.Euribor3M, valuation)

	// Euribor6M projects off its dedicated curve, Euribor3M falls back to the
	// EUR discount curve.
	if r6 := p.IborRate(obs6); r6 < 0.024 || r6 > 0.027 {
		t.Errorf("projected 6M rate = %g", r6)
	}
	if r3 := p.IborRate(obs3); r3 < 0.019 || r3 > 0.022 {
		t.Errorf("fallback 3M rate = %g", r3)
	}
}
