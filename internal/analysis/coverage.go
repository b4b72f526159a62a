package analysis

import (
	"math"
	"sort"

	"grant-simulation/internal/model"
	"grant-simulation/internal/simulation"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Coverage summarizes the simulated distribution of one observation's price
// and checks whether the realized price S1 fell inside it.
type Coverage struct {
	Key model.FirmYear
	S0  float64
	S1  float64

	Count  int
	Mean   float64
	Std    float64
	Median float64
	Min    float64
	Max    float64
	P05    float64
	P95    float64
	Range  float64

	// OOR is 0 when Min <= S1 <= Max and 1 otherwise, including a missing S1.
	OOR int
}

// InRange reports whether S1 lies within the simulated [Min, Max].
func (c Coverage) InRange() bool { return c.OOR == 0 }

// ComputeCoverage summarizes sims, the simulated prices of one observation
// across iterations. Std is the sample standard deviation.
func ComputeCoverage(obs *model.Observation, sims []float64) Coverage {
	c := Coverage{Key: obs.Key, S0: obs.S0, S1: obs.S1, Count: len(sims), OOR: 1}
	if len(sims) == 0 {
		c.Mean, c.Std, c.Median = math.NaN(), math.NaN(), math.NaN()
		c.Min, c.Max, c.P05, c.P95, c.Range = math.NaN(), math.NaN(), math.NaN(), math.NaN(), math.NaN()
		return c
	}
	sorted := append([]float64(nil), sims...)
	sort.Float64s(sorted)

	c.Mean, c.Std = stat.MeanStdDev(sorted, nil)
	c.Min = floats.Min(sorted)
	c.Max = floats.Max(sorted)
	c.Median = percentileSorted(sorted, 0.5)
	c.P05 = percentileSorted(sorted, 0.05)
	c.P95 = percentileSorted(sorted, 0.95)
	c.Range = c.Max - c.Min
	if c.Min <= c.S1 && c.S1 <= c.Max {
		c.OOR = 0
	}
	return c
}

// CoverageOf summarizes kind for every row of tbl, in row order.
func CoverageOf(tbl *simulation.Table, kind model.ExtractKind) []Coverage {
	out := make([]Coverage, tbl.Rows())
	for row := range out {
		out[row] = ComputeCoverage(tbl.Observation(row), tbl.ExtractSeries(row, kind))
	}
	return out
}

// OORRate is the share of rows whose realized price fell outside the
// simulated range.
func OORRate(covs []Coverage) float64 {
	if len(covs) == 0 {
		return math.NaN()
	}
	n := 0
	for _, c := range covs {
		n += c.OOR
	}
	return float64(n) / float64(len(covs))
}

// percentileSorted interpolates linearly between order statistics.
func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
