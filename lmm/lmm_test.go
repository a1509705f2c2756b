package lmm

import (
	"math"
	"testing"
	"time"

	"golang.org/x/exp/rand"

	"github.com/meenmo/ratemodel/curve"
	"github.com/meenmo/ratemodel/market"
	"github.com/meenmo/ratemodel/multicurve"
	"github.com/meenmo/ratemodel/product"
)

var valuation = time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)

func testProvider(t *testing.T, rate float64) *curve.MultiProvider {
	t.Helper()
	p, err := curve.NewMultiProvider(valuation, map[market.Currency]*curve.Zero{
		market.EUR: curve.NewFlatZero(valuation, rate),
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func testSchedule(t *testing.T) multicurve.Schedule {
	t.Helper()
	effective := time.Date(2026, time.January, 19, 0, 0, 0, 0, time.UTC)
	maturity := effective.AddDate(2, 0, 0)
	leg, err := product.NewIborLeg(product.Receive, market.Euribor6M, 1e6, 1.0, 0.0, product.Euribor6MFloat, effective, maturity)
	if err != nil {
		t.Fatal(err)
	}
	sched, err := multicurve.RatchetSchedule(product.IborRatchet(leg, [3]float64{0, 1, 0}, nil, nil, 0))
	if err != nil {
		t.Fatal(err)
	}
	return sched
}

func testParameters(t *testing.T, vol float64) *Parameters {
	t.Helper()
	p, err := HullWhiteLike(valuation, market.EUR, GridFromSchedule(testSchedule(t)), 0.02, vol, 0.10)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestGridFromSchedule(t *testing.T) {
	t.Parallel()

	grid := GridFromSchedule(testSchedule(t))
	if len(grid) < 5 {
		t.Fatalf("grid has %d dates", len(grid))
	}
	for i := 1; i < len(grid); i++ {
		if !grid[i].After(grid[i-1]) {
			t.Errorf("grid not strictly increasing at %d", i)
		}
	}
	// Every observation and payment date of the schedule is on the grid.
	params := testParameters(t, 0.01)
	for _, eq := range testSchedule(t).Equivalents {
		for _, obs := range eq.IborObservations {
			if _, err := params.TimeIndex(obs.EffectiveDate); err != nil {
				t.Errorf("effective date off grid: %v", err)
			}
			if _, err := params.TimeIndex(obs.MaturityDate); err != nil {
				t.Errorf("maturity date off grid: %v", err)
			}
		}
		for _, f := range eq.IborPayments {
			if _, err := params.TimeIndex(f.PayDate); err != nil {
				t.Errorf("pay date off grid: %v", err)
			}
		}
	}
}

func TestHullWhiteLikeValidation(t *testing.T) {
	t.Parallel()

	grid := GridFromSchedule(testSchedule(t))
	if _, err := HullWhiteLike(valuation, market.EUR, grid[:1], 0.02, 0.01, 0.10); err == nil {
		t.Error("expected error for a single grid date")
	}
	if _, err := HullWhiteLike(valuation, market.EUR, grid, 0.02, 0, 0.10); err == nil {
		t.Error("expected error for zero volatility")
	}
	if _, err := HullWhiteLike(grid[1], market.EUR, grid, 0.02, 0.01, 0.10); err == nil {
		t.Error("expected error for grid date before valuation")
	}
}

func TestHullWhiteLikeLoadings(t *testing.T) {
	t.Parallel()

	p := testParameters(t, 0.01)
	if p.FactorCount() != 1 {
		t.Fatalf("factors = %d", p.FactorCount())
	}
	for i := 0; i < p.PeriodCount(); i++ {
		tau := p.AccrualFactor(i)
		want := 0.01 * (1 - math.Exp(-0.02*tau)) / (0.02 * tau)
		got := p.VolatilityRow(i)[0]
		if math.Abs(got-want) > 1e-12 {
			t.Errorf("loading %d = %.12f, want %.12f", i, got, want)
		}
		if p.Displacement(i) != 0.10 {
			t.Errorf("displacement %d = %g", i, p.Displacement(i))
		}
	}
}

func TestInitialValuesReproduceCurve(t *testing.T) {
	t.Parallel()

	provider := testProvider(t, 0.02)
	e := NewEvolution(testParameters(t, 0.01), rand.NewSource(1))
	fwd, err := e.InitialValues(provider)
	if err != nil {
		t.Fatal(err)
	}
	p := e.Parameters()
	// Compounding the forwards across the grid telescopes back to the
	// discount-factor ratio of the endpoints.
	prod := 1.0
	for i := range fwd {
		prod *= 1 + fwd[i]*p.AccrualFactor(i)
	}
	want := provider.DiscountFactor(market.EUR, p.GridDate(0)) / provider.DiscountFactor(market.EUR, p.GridDate(p.PeriodCount()))
	if math.Abs(prod-want) > 1e-12 {
		t.Errorf("compounded forwards = %.12f, want %.12f", prod, want)
	}
}

func TestDiscountingRecurrence(t *testing.T) {
	t.Parallel()

	provider := testProvider(t, 0.02)
	e := NewEvolution(testParameters(t, 0.01), rand.NewSource(1))
	fwd, err := e.InitialValues(provider)
	if err != nil {
		t.Fatal(err)
	}
	d := e.Discounting(fwd)
	n := e.Parameters().PeriodCount()
	if len(d) != n+1 {
		t.Fatalf("len = %d, want %d", len(d), n+1)
	}
	if d[n] != 1.0 {
		t.Errorf("terminal rebased factor = %g, want exactly 1", d[n])
	}
	for i := n - 1; i >= 0; i-- {
		want := d[i+1] * (1 + fwd[i]*e.AccrualFactor(i))
		if d[i] != want {
			t.Errorf("recurrence broken at %d", i)
		}
	}

	all := e.DiscountingAll([][]float64{fwd, fwd})
	for p := range all {
		for i := range all[p] {
			if all[p][i] != d[i] {
				t.Fatalf("DiscountingAll path %d differs at %d", p, i)
			}
		}
	}

	// Scaling by the numeraire's initial value recovers curve-style discount
	// factors: at the initial state they match the input curve.
	nv, err := e.NumeraireInitialValue(provider)
	if err != nil {
		t.Fatal(err)
	}
	zc := e.ImpliedZeroCoupon(fwd, nv)
	for i := 0; i <= n; i++ {
		want := provider.DiscountFactor(market.EUR, e.Parameters().GridDate(i))
		if math.Abs(zc[i]-want) > 1e-12 {
			t.Errorf("implied zero coupon %d = %.12f, want %.12f", i, zc[i], want)
		}
	}
}

func TestEvolveFreezesResetRates(t *testing.T) {
	t.Parallel()

	provider := testProvider(t, 0.02)
	e := NewEvolution(testParameters(t, 0.01), rand.NewSource(7))
	fwd, err := e.InitialValues(provider)
	if err != nil {
		t.Fatal(err)
	}
	p := e.Parameters()
	expiry := p.Time(p.PeriodCount() - 1)
	states, err := e.Evolve(fwd, expiry, 8)
	if err != nil {
		t.Fatal(err)
	}
	for pi, state := range states {
		if len(state) != p.PeriodCount() {
			t.Fatalf("path %d: state length %d", pi, len(state))
		}
		for j := range state {
			if math.IsNaN(state[j]) || math.IsInf(state[j], 0) {
				t.Fatalf("path %d: non-finite forward %d", pi, j)
			}
		}
		// The last forward is still live at its own reset time boundary; all
		// earlier ones have reset and must differ across paths only through
		// their pre-reset evolution, staying displaced-positive throughout.
		for j := range state {
			if state[j]+p.Displacement(j) <= 0 {
				t.Errorf("path %d: displaced forward %d not positive", pi, j)
			}
		}
	}
}

func TestEvolveMultiTrajectorySnapshots(t *testing.T) {
	t.Parallel()

	provider := testProvider(t, 0.02)
	e := NewEvolution(testParameters(t, 0.01), rand.NewSource(11))
	fwd, err := e.InitialValues(provider)
	if err != nil {
		t.Fatal(err)
	}
	p := e.Parameters()
	expiries := []float64{p.Time(1), p.Time(2), p.Time(3)}
	paths, err := e.EvolveMulti(fwd, expiries, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 4 {
		t.Fatalf("paths = %d", len(paths))
	}
	for pi, states := range paths {
		if len(states) != len(expiries) {
			t.Fatalf("path %d: %d snapshots", pi, len(states))
		}
		// Once a rate has reset, later snapshots of the same path carry the
		// identical frozen value.
		for k := 1; k < len(states); k++ {
			for j := 0; j < p.PeriodCount(); j++ {
				if p.Time(j) <= expiries[k-1]+timeTolerance && states[k][j] != states[k-1][j] {
					t.Errorf("path %d: frozen rate %d changed between snapshots %d and %d", pi, j, k-1, k)
				}
			}
		}
	}

	if _, err := e.EvolveMulti(fwd, []float64{p.Time(2), p.Time(1)}, 2); err == nil {
		t.Error("expected error for unordered expiries")
	}
	if _, err := e.EvolveMulti(fwd, []float64{p.LastTime() + 1}, 2); err == nil {
		t.Error("expected error for expiry beyond the terminal time")
	}
	if _, err := e.EvolveMulti(fwd[:1], expiries, 2); err == nil {
		t.Error("expected error for short initial vector")
	}
}

func TestNumeraireInitialValue(t *testing.T) {
	t.Parallel()

	provider := testProvider(t, 0.02)
	e := NewEvolution(testParameters(t, 0.01), rand.NewSource(1))
	nv, err := e.NumeraireInitialValue(provider)
	if err != nil {
		t.Fatal(err)
	}
	p := e.Parameters()
	want := provider.DiscountFactor(market.EUR, p.GridDate(p.PeriodCount()))
	if nv != want {
		t.Errorf("numeraire = %g, want %g", nv, want)
	}

	jpyOnly, err := curve.NewMultiProvider(valuation, map[market.Currency]*curve.Zero{
		market.JPY: curve.NewFlatZero(valuation, 0.005),
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.NumeraireInitialValue(jpyOnly); err == nil {
		t.Error("expected error without a EUR curve")
	}
}
