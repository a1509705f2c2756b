// Command mcswap prices a EUR fixed-vs-EURIBOR swap off the sample curves and
// cross-checks the Monte Carlo engine against direct discounting, then prices
// a European swaption on the same underlying.
package main

import (
	"fmt"
	"log"
	"time"

	"github.com/leekchan/accounting"
	"golang.org/x/exp/rand"

	"github.com/meenmo/ratemodel/calendar"
	"github.com/meenmo/ratemodel/discounting"
	"github.com/meenmo/ratemodel/lmm"
	"github.com/meenmo/ratemodel/market"
	"github.com/meenmo/ratemodel/marketdata"
	"github.com/meenmo/ratemodel/montecarlo"
	"github.com/meenmo/ratemodel/multicurve"
	"github.com/meenmo/ratemodel/product"
)

const (
	notional  = 100_000_000.0
	fixedRate = 0.0225
	seed      = 20260825
)

func main() {
	valuation := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
	provider, err := marketdata.SampleProvider(valuation)
	if err != nil {
		log.Fatal(err)
	}

	effective := calendar.AddBusinessDays(calendar.TARGET, valuation, 2)
	maturity := effective.AddDate(2, 0, 0)

	swap, err := product.FixedVsIbor(product.Pay, notional, fixedRate,
		product.EurFixedAnnual, market.Euribor6M, product.Euribor6MFloat,
		effective, maturity)
	if err != nil {
		log.Fatal(err)
	}

	money := accounting.Accounting{Symbol: "EUR ", Precision: 2}

	fmt.Println("=== Curve pricing ===")
	pv, err := discounting.PresentValue(swap, provider)
	if err != nil {
		log.Fatal(err)
	}
	par, err := discounting.ParRate(swap, provider)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("  Swap PV (pay %.4f%% vs EURIBOR6M): %s\n", fixedRate*100, money.FormatMoney(pv))
	fmt.Printf("  Par rate: %.4f%%\n", par*100)

	fmt.Println("=== Monte Carlo cross-check ===")
	var floatLeg product.IborLeg
	for _, leg := range swap.Legs {
		if l, ok := leg.(product.IborLeg); ok {
			floatLeg = l
		}
	}
	ratchet := montecarlo.Ratchet{Leg: product.IborRatchet(floatLeg, [3]float64{0, 1, 0}, nil, nil, 0)}
	sched, err := ratchet.DecisionSchedule()
	if err != nil {
		log.Fatal(err)
	}
	params, err := lmm.HullWhiteLike(valuation, market.EUR, lmm.GridFromSchedule(sched), 0.02, 0.0085, 0.10)
	if err != nil {
		log.Fatal(err)
	}
	engine := lmm.NewEvolution(params, rand.NewSource(seed))
	cfg := montecarlo.Config{Paths: 20_000, BlockSize: 1_000}

	res, err := montecarlo.EstimateMultiDate(ratchet, provider, engine, cfg)
	if err != nil {
		log.Fatal(err)
	}
	floatPV, err := discounting.PresentValue(product.Swap{Legs: []product.Leg{floatLeg}}, provider)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("  Float leg, curve:       %s\n", money.FormatMoney(floatPV))
	fmt.Printf("  Float leg, Monte Carlo: %s (stderr %s, %d paths)\n",
		money.FormatMoney(res.PV), money.FormatMoney(res.StdErr), res.Paths)

	fmt.Println("=== Swaption ===")
	expiry := calendar.Adjust(calendar.TARGET, valuation.AddDate(1, 0, 0))
	fwdEffective := calendar.AddBusinessDays(calendar.TARGET, expiry, 2)
	fwdMaturity := fwdEffective.AddDate(2, 0, 0)
	underlying, err := product.FixedVsIbor(product.Pay, notional, fixedRate,
		product.EurFixedAnnual, market.Euribor6M, product.Euribor6MFloat,
		fwdEffective, fwdMaturity)
	if err != nil {
		log.Fatal(err)
	}
	swaption := montecarlo.Swaption{Option: product.Swaption{
		ExpiryDate: expiry,
		LongShort:  product.Long,
		Underlying: underlying,
	}}
	swnSched, err := multicurve.SwaptionSchedule(swaption.Option)
	if err != nil {
		log.Fatal(err)
	}
	swnParams, err := lmm.HullWhiteLike(valuation, market.EUR, lmm.GridFromSchedule(swnSched), 0.02, 0.0085, 0.10)
	if err != nil {
		log.Fatal(err)
	}
	swnEngine := lmm.NewEvolution(swnParams, rand.NewSource(seed))
	swnRes, err := montecarlo.EstimateEuropean(swaption, provider, swnEngine, cfg)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("  1Yx2Y payer swaption @ %.4f%%: %s (stderr %s)\n",
		fixedRate*100, money.FormatMoney(swnRes.PV), money.FormatMoney(swnRes.StdErr))
}
