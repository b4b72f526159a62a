package valuation

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// CallPriceFactor is the Black–Scholes value of one at-the-money call struck
// at the grant-date price p, with t years to expiry:
//
//	z = t*(r - d + sigma²/2) / (sigma*sqrt(t))
//	f = p*e^(-d*t)*Φ(z) - p*e^(-r*t)*Φ(z - sigma*sqrt(t))
//
// It returns NaN when sigma*sqrt(t) is not strictly positive and finite.
func CallPriceFactor(p, t, sigma, r, d float64) float64 {
	vol := sigma * math.Sqrt(t)
	if !(vol > 0) || math.IsInf(vol, 0) {
		return math.NaN()
	}
	z := t * (r - d + sigma*sigma/2) / vol
	return p*math.Exp(-d*t)*distuv.UnitNormal.CDF(z) - p*math.Exp(-r*t)*distuv.UnitNormal.CDF(z-vol)
}

// ImpliedOptionCount is the number of options worth payoff at grant-date
// price p. Singular parameters give NaN (no volatility over the horizon) or
// +Inf (zero or non-finite call value).
func ImpliedOptionCount(payoff, p, t, sigma, r, d float64) float64 {
	if vol := sigma * math.Sqrt(t); !(vol > 0) || math.IsInf(vol, 0) {
		return math.NaN()
	}
	f := CallPriceFactor(p, t, sigma, r, d)
	if f == 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return math.Inf(1)
	}
	return payoff / f
}

// ImpliedStockCount is the number of shares worth payoff at price s, or +Inf
// when s is zero or non-finite.
func ImpliedStockCount(payoff, s float64) float64 {
	if s == 0 || math.IsNaN(s) || math.IsInf(s, 0) {
		return math.Inf(1)
	}
	return payoff / s
}

// IsSingular reports whether a valuation cell holds a sentinel.
func IsSingular(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}
