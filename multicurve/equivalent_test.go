package multicurve

import (
	"errors"
	"testing"
	"time"

	"github.com/meenmo/ratemodel/curve"
	"github.com/meenmo/ratemodel/market"
)

func eqWith(ccy market.Currency, decision time.Time) Equivalent {
	return Equivalent{
		DecisionTime: decision,
		DiscountFactorPayments: []DiscountFactorPayment{
			{Currency: ccy, Amount: 100, PayDate: effective.AddDate(1, 0, 0)},
		},
	}
}

func TestCombinedWithEmpty(t *testing.T) {
	t.Parallel()

	e := eqWith(market.EUR, time.Time{})
	got, err := e.CombinedWith(Empty())
	if err != nil {
		t.Fatal(err)
	}
	if len(got.DiscountFactorPayments) != 1 || !got.DecisionTime.IsZero() {
		t.Errorf("combine with empty changed the equivalent: %+v", got)
	}
	got, err = Empty().CombinedWith(e)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.DiscountFactorPayments) != 1 {
		t.Errorf("empty.CombinedWith dropped events")
	}
}

func TestCombinedWithConcatenatesInOrder(t *testing.T) {
	t.Parallel()

	a := eqWith(market.EUR, time.Time{})
	b := eqWith(market.EUR, time.Time{})
	b.DiscountFactorPayments[0].Amount = 200

	got, err := a.CombinedWith(b)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.DiscountFactorPayments) != 2 {
		t.Fatalf("payments = %d", len(got.DiscountFactorPayments))
	}
	if got.DiscountFactorPayments[0].Amount != 100 || got.DiscountFactorPayments[1].Amount != 200 {
		t.Error("receiver's events must come first")
	}
	// Inputs are not mutated.
	if len(a.DiscountFactorPayments) != 1 || len(b.DiscountFactorPayments) != 1 {
		t.Error("inputs mutated")
	}
}

func TestCombinedWithDecisionTimes(t *testing.T) {
	t.Parallel()

	d1 := time.Date(2027, time.January, 15, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2027, time.June, 15, 0, 0, 0, 0, time.UTC)

	// Absent + assigned keeps the assigned one, in either order.
	got, err := eqWith(market.EUR, time.Time{}).CombinedWith(eqWith(market.EUR, d1))
	if err != nil || !got.DecisionTime.Equal(d1) {
		t.Errorf("decision = %v, err = %v", got.DecisionTime, err)
	}
	got, err = eqWith(market.EUR, d1).CombinedWith(eqWith(market.EUR, time.Time{}))
	if err != nil || !got.DecisionTime.Equal(d1) {
		t.Errorf("decision = %v, err = %v", got.DecisionTime, err)
	}
	// Equal assigned times are fine.
	if _, err := eqWith(market.EUR, d1).CombinedWith(eqWith(market.EUR, d1)); err != nil {
		t.Errorf("equal decision times: %v", err)
	}
	// Different assigned times are an error.
	_, err = eqWith(market.EUR, d1).CombinedWith(eqWith(market.EUR, d2))
	if !errors.Is(err, ErrDecisionTimeMismatch) {
		t.Errorf("err = %v, want ErrDecisionTimeMismatch", err)
	}
}

func TestCombinedWithCurrencyMismatch(t *testing.T) {
	t.Parallel()

	_, err := eqWith(market.EUR, time.Time{}).CombinedWith(eqWith(market.JPY, time.Time{}))
	if !errors.Is(err, ErrCurrencyMismatch) {
		t.Errorf("err = %v, want ErrCurrencyMismatch", err)
	}
}

func TestStartingValues(t *testing.T) {
	t.Parallel()

	valuation := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
	p, err := curve.NewMultiProvider(valuation, map[market.Currency]*curve.Zero{
		market.EUR: curve.NewFlatZero(valuation, 0.02),
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	eq, err := SwapEquivalent(testSwap(t, 0))
	if err != nil {
		t.Fatal(err)
	}
	v, err := StartingValues(eq, p)
	if err != nil {
		t.Fatal(err)
	}
	if err := v.MatchesShape(eq); err != nil {
		t.Fatal(err)
	}
	// Every rate array is filled over its own list's length, not truncated to
	// the discount-factor list.
	if len(v.IborRates) != 4 {
		t.Fatalf("ibor rates = %d, want 4", len(v.IborRates))
	}
	for i, df := range v.DiscountFactors {
		if df <= 0 || df >= 1 {
			t.Errorf("df %d = %g", i, df)
		}
	}
	for i, r := range v.IborRates {
		if r <= 0 || r > 0.05 {
			t.Errorf("rate %d = %g", i, r)
		}
	}
}

func TestStartingValuesUnknownCurrency(t *testing.T) {
	t.Parallel()

	valuation := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
	p, err := curve.NewMultiProvider(valuation, map[market.Currency]*curve.Zero{
		market.JPY: curve.NewFlatZero(valuation, 0.005),
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	eq := eqWith(market.EUR, time.Time{})
	if _, err := StartingValues(eq, p); err == nil {
		t.Error("expected error for missing EUR curve")
	}
}
