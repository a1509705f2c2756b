package calibration

import (
	"math"
	"testing"
	"time"

	"golang.org/x/exp/rand"

	"github.com/meenmo/ratemodel/curve"
	"github.com/meenmo/ratemodel/lmm"
	"github.com/meenmo/ratemodel/market"
	"github.com/meenmo/ratemodel/montecarlo"
	"github.com/meenmo/ratemodel/product"
)

var valuation = time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)

func testSetup(t *testing.T) (montecarlo.CapFloor, *curve.MultiProvider, Config) {
	t.Helper()

	provider, err := curve.NewMultiProvider(valuation, map[market.Currency]*curve.Zero{
		market.EUR: curve.NewFlatZero(valuation, 0.02),
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	effective := time.Date(2026, time.January, 19, 0, 0, 0, 0, time.UTC)
	leg, err := product.NewIborLeg(product.Receive, market.Euribor6M, 1e6, 1.0, 0.0,
		product.Euribor6MFloat, effective, effective.AddDate(1, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	cap := montecarlo.CapFloor{Leg: product.CapFloorLeg{
		Leg: leg, CapFloor: product.Cap, Strike: 0.02, LongShort: product.Long,
	}}
	sched, err := cap.DecisionSchedule()
	if err != nil {
		t.Fatal(err)
	}
	cfg := Config{
		Valuation:     valuation,
		Currency:      market.EUR,
		GridDates:     lmm.GridFromSchedule(sched),
		MeanReversion: 0.02,
		Displacement:  0.10,
		Seed:          77,
		Simulation:    montecarlo.Config{Paths: 400, BlockSize: 200},
	}
	return cap, provider, cfg
}

// Pricing a caplet strip at a known volatility and fitting against that price
// must recover the volatility: the objective reuses the seed, so it is exactly
// zero at the true parameter.
func TestFitRecoversVolatility(t *testing.T) {
	t.Parallel()

	cap, provider, cfg := testSetup(t)
	const trueVol = 0.009

	params, err := lmm.HullWhiteLike(cfg.Valuation, cfg.Currency, cfg.GridDates, cfg.MeanReversion, trueVol, cfg.Displacement)
	if err != nil {
		t.Fatal(err)
	}
	engine := lmm.NewEvolution(params, rand.NewSource(cfg.Seed))
	price, err := montecarlo.PresentValueMultiDate(cap, provider, engine, cfg.Simulation)
	if err != nil {
		t.Fatal(err)
	}
	if price <= 0 {
		t.Fatalf("ATM cap price = %g, want positive", price)
	}

	vol, err := Fit([]Target{{Product: cap, Price: price}}, provider, cfg, 0.005)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(vol-trueVol) > 5e-4 {
		t.Errorf("fitted vol = %.6f, want %.6f", vol, trueVol)
	}
}

func TestFitValidation(t *testing.T) {
	t.Parallel()

	cap, provider, cfg := testSetup(t)
	if _, err := Fit(nil, provider, cfg, 0.01); err == nil {
		t.Error("expected error for no targets")
	}
	if _, err := Fit([]Target{{Product: cap, Price: 100}}, provider, cfg, -0.01); err == nil {
		t.Error("expected error for negative initial volatility")
	}
	if _, err := Fit([]Target{{Product: "not a product", Price: 100}}, provider, cfg, 0.01); err == nil {
		t.Error("expected error for an unsupported target type")
	}
}
