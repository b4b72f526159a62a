package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"grant-simulation/internal/logging"
	"grant-simulation/internal/model"
	"grant-simulation/internal/simulation"
	"grant-simulation/internal/valuation"

	"github.com/leekchan/accounting"
	"github.com/phuslu/log"
)

// Demo:
// - Build one observation from flags
// - Simulate a handful of monthly GBM paths for it
// - Price the grant-date option and invert a predicted payoff into counts
func main() {
	s0 := flag.Float64("s0", 50, "Initial price")
	u := flag.Float64("u", 0.05, "Annual drift")
	sigma := flag.Float64("sigma", 0.2, "Annual volatility")
	base := flag.String("date", "2010-01-31", "Base date (YYYY-MM-DD)")
	grantOpt := flag.String("grant-opt", "2010-09-30", "Option grant date (YYYY-MM-DD)")
	grantSt := flag.String("grant-st", "2010-06-30", "Stock grant date (YYYY-MM-DD)")
	n := flag.Int("n", 5, "Number of paths")
	seed := flag.Uint64("seed", simulation.DefaultSeed, "Random seed")
	payoff := flag.Float64("payoff", 250000, "Predicted payoff to invert")
	t := flag.Float64("t", 0.67, "Years to grant")
	r := flag.Float64("r", 0.02, "Risk-free rate")
	d := flag.Float64("d", 0.01, "Dividend yield")
	flag.Parse()

	logger := logging.Setup("warn", logging.FormatConsole)

	obs := model.Observation{
		Key:          model.FirmYear{Permno: "demo", FYear: "0"},
		S0:           *s0,
		U:            *u,
		Sigma:        *sigma,
		S1:           *s0,
		Date:         mustDate(*base),
		GrantDateOpt: mustDate(*grantOpt),
		GrantDateSt:  mustDate(*grantSt),
	}

	eng := simulation.New(simulation.Options{
		Iterations:   *n,
		Seed:         *seed,
		KeepFullPath: true,
	}, logger)
	tbl, err := eng.Run(context.Background(), &model.Panel{Observations: []model.Observation{obs}})
	if err != nil {
		log.Fatal().Err(err).Msg("Demo: simulation failed")
	}

	ac := accounting.Accounting{Symbol: "$", Precision: 2}
	ends := simulation.MonthEnds(obs.Date)
	fmt.Printf("S0=%s u=%.4f sigma=%.4f base=%s\n", ac.FormatMoney(obs.S0), obs.U, obs.Sigma, obs.Date.Format("2006-01-02"))
	fmt.Printf("%-6s", "month")
	for it := 1; it <= *n; it++ {
		fmt.Printf(" %12s", fmt.Sprintf("P%d", it))
	}
	fmt.Println()
	for m := 1; m <= simulation.Months; m++ {
		fmt.Printf("%-6s", ends[m-1].Format("Jan06"))
		for it := 1; it <= *n; it++ {
			fmt.Printf(" %12s", ac.FormatMoney(tbl.MonthPrice(0, it, m)))
		}
		fmt.Println()
	}

	in := model.ValuationInput{Key: obs.Key, T: *t, Sigma: *sigma, R: *r, D: *d, Predicted: *payoff}
	rep, err := valuation.New(1, logger).InferGrants(context.Background(), tbl, map[model.FirmYear]model.ValuationInput{obs.Key: in})
	if err != nil {
		log.Fatal().Err(err).Msg("Demo: valuation failed")
	}

	fmt.Printf("\nPayoff %s inverted per path (singular cells: %d)\n", ac.FormatMoney(*payoff), rep.SingularOption+rep.SingularStock)
	fmt.Printf("%-4s %12s %12s %14s %12s %14s\n", "path", "opt price", "call value", "options", "stock price", "shares")
	for it := 1; it <= *n; it++ {
		p := tbl.Extract(0, it, model.ExtractOptionGrant)
		s := tbl.Extract(0, it, model.ExtractStockGrant)
		fmt.Printf("%-4d %12s %12s %14.1f %12s %14.1f\n",
			it,
			ac.FormatMoney(p),
			ac.FormatMoney(valuation.CallPriceFactor(p, *t, *sigma, *r, *d)),
			tbl.Valuation(0, it, model.ValuationOption),
			ac.FormatMoney(s),
			tbl.Valuation(0, it, model.ValuationStock),
		)
	}
}

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}
