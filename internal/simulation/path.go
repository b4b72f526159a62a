package simulation

import (
	"fmt"
	"math"
	"time"

	"grant-simulation/internal/model"
)

// dt is one month in years.
const dt = 1.0 / Months

// Result is one simulated path for one (observation, iteration) pair.
type Result struct {
	Iteration int

	// Prices[k] is the price at the end of month k+1.
	Prices [Months]float64

	StockGrant  float64
	OptionGrant float64
	YearEnd     float64
}

// Extract returns the named scalar.
func (r *Result) Extract(kind model.ExtractKind) float64 {
	switch kind {
	case model.ExtractStockGrant:
		return r.StockGrant
	case model.ExtractOptionGrant:
		return r.OptionGrant
	case model.ExtractYearEnd:
		return r.YearEnd
	default:
		return math.NaN()
	}
}

// Simulate advances a monthly GBM path from obs.S0:
//
//	price[m] = price[m-1] * exp((u - sigma²/2)/12 + sigma*Z_m*sqrt(1/12))
//
// It consumes exactly Months draws from z, also when sigma is 0, so the draw
// order of later rows does not depend on earlier rows' parameters.
//
// Grant prices are matched by calendar month only: month index
// grantDate.Month()-1 into the 12 generated prices. The year is ignored.
func Simulate(obs *model.Observation, iteration int, z Normals) (Result, error) {
	if iteration < 1 {
		return Result{}, &model.ParamError{Name: "iteration", Value: float64(iteration), Msg: "must be >= 1"}
	}
	if !(obs.S0 > 0) || math.IsInf(obs.S0, 0) {
		return Result{}, &model.ParamError{Row: obs.Key, Name: model.ColS0, Value: obs.S0, Msg: "must be > 0"}
	}
	if !(obs.Sigma >= 0) || math.IsInf(obs.Sigma, 0) {
		return Result{}, &model.ParamError{Row: obs.Key, Name: model.ColSigma, Value: obs.Sigma, Msg: "must be >= 0"}
	}
	stIdx, err := grantIndex(obs.Key, model.ColGrantDateSt, obs.GrantDateSt)
	if err != nil {
		return Result{}, err
	}
	optIdx, err := grantIndex(obs.Key, model.ColGrantDateOpt, obs.GrantDateOpt)
	if err != nil {
		return Result{}, err
	}

	res := Result{Iteration: iteration}
	u, sigma := obs.U, obs.Sigma
	price := obs.S0
	for m := 0; m < Months; m++ {
		price = price * math.Exp((u-sigma*sigma/2)*dt+sigma*z.Next()*math.Sqrt(dt))
		res.Prices[m] = price
	}

	res.StockGrant = res.Prices[stIdx]
	res.OptionGrant = res.Prices[optIdx]
	res.YearEnd = res.Prices[Months-1]
	return res, nil
}

func grantIndex(key model.FirmYear, field string, d time.Time) (int, error) {
	idx := int(d.Month()) - 1
	if idx < 0 || idx >= Months {
		return 0, fmt.Errorf("row %s: %s month index %d: %w", key, field, idx, model.ErrIndexOutOfRange)
	}
	return idx, nil
}
