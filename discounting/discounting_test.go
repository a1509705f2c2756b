package discounting

import (
	"math"
	"testing"
	"time"

	"github.com/meenmo/ratemodel/curve"
	"github.com/meenmo/ratemodel/market"
	"github.com/meenmo/ratemodel/multicurve"
	"github.com/meenmo/ratemodel/product"
)

var (
	valuation = time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
	effective = time.Date(2026, time.January, 19, 0, 0, 0, 0, time.UTC)
	maturity  = time.Date(2028, time.January, 19, 0, 0, 0, 0, time.UTC)
)

func testProvider(t *testing.T) *curve.MultiProvider {
	t.Helper()
	p, err := curve.NewMultiProvider(valuation, map[market.Currency]*curve.Zero{
		market.EUR: curve.NewFlatZero(valuation, 0.02),
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestParRateZeroesTheSwap(t *testing.T) {
	t.Parallel()

	provider := testProvider(t)
	swap, err := product.FixedVsIbor(product.Pay, 1e6, 0.02, product.EurFixedAnnual,
		market.Euribor6M, product.Euribor6MFloat, effective, maturity)
	if err != nil {
		t.Fatal(err)
	}
	par, err := ParRate(swap, provider)
	if err != nil {
		t.Fatal(err)
	}
	if par <= 0 || par > 0.05 {
		t.Fatalf("par rate = %g", par)
	}

	atPar, err := product.FixedVsIbor(product.Pay, 1e6, par, product.EurFixedAnnual,
		market.Euribor6M, product.Euribor6MFloat, effective, maturity)
	if err != nil {
		t.Fatal(err)
	}
	pv, err := PresentValue(atPar, provider)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(pv) > 1e-6 {
		t.Errorf("PV at par = %.8f, want 0", pv)
	}
}

func TestPresentValueDirection(t *testing.T) {
	t.Parallel()

	provider := testProvider(t)
	payer, err := product.FixedVsIbor(product.Pay, 1e6, 0.01, product.EurFixedAnnual,
		market.Euribor6M, product.Euribor6MFloat, effective, maturity)
	if err != nil {
		t.Fatal(err)
	}
	receiver, err := product.FixedVsIbor(product.Receive, 1e6, 0.01, product.EurFixedAnnual,
		market.Euribor6M, product.Euribor6MFloat, effective, maturity)
	if err != nil {
		t.Fatal(err)
	}
	pvPay, err := PresentValue(payer, provider)
	if err != nil {
		t.Fatal(err)
	}
	pvRec, err := PresentValue(receiver, provider)
	if err != nil {
		t.Fatal(err)
	}
	// Paying 1% against a ~2% curve is worth money; the mirror swap is its
	// exact negative.
	if pvPay <= 0 {
		t.Errorf("payer PV = %.2f, want positive", pvPay)
	}
	if math.Abs(pvPay+pvRec) > 1e-9 {
		t.Errorf("payer %.6f and receiver %.6f are not mirrors", pvPay, pvRec)
	}
}

func TestPresentValueSpread(t *testing.T) {
	t.Parallel()

	provider := testProvider(t)
	plain, err := product.NewIborLeg(product.Receive, market.Euribor6M, 1e6, 1.0, 0.0, product.Euribor6MFloat, effective, maturity)
	if err != nil {
		t.Fatal(err)
	}
	spread, err := product.NewIborLeg(product.Receive, market.Euribor6M, 1e6, 1.0, 0.0025, product.Euribor6MFloat, effective, maturity)
	if err != nil {
		t.Fatal(err)
	}
	pvPlain, err := PresentValue(product.Swap{Legs: []product.Leg{plain}}, provider)
	if err != nil {
		t.Fatal(err)
	}
	pvSpread, err := PresentValue(product.Swap{Legs: []product.Leg{spread}}, provider)
	if err != nil {
		t.Fatal(err)
	}
	// The spread adds the discounted annuity of 25bp.
	diff := pvSpread - pvPlain
	if diff <= 0 {
		t.Fatalf("spread leg not worth more: %g", diff)
	}
	annuity := 0.0
	for _, p := range spread.Periods {
		annuity += p.Notional * p.YearFraction * provider.DiscountFactor(market.EUR, p.PayDate)
	}
	if math.Abs(diff-0.0025*annuity) > 1e-6 {
		t.Errorf("spread value = %.6f, want %.6f", diff, 0.0025*annuity)
	}
}

func TestEquivalentValueEmpty(t *testing.T) {
	t.Parallel()

	if _, err := EquivalentValue(multicurve.Empty(), testProvider(t)); err == nil {
		t.Error("expected error for empty equivalent")
	}
}
