package simulation

import (
	"errors"
	"math"
	"testing"

	"grant-simulation/internal/model"

	"github.com/stretchr/testify/require"
)

func TestSimulateDeterministicDrift(t *testing.T) {
	o := obs("1", 100, 0.06, 0)
	res, err := Simulate(&o, 1, fixedNormals(1.7))
	require.NoError(t, err)

	for k := 1; k <= Months; k++ {
		want := 100 * math.Exp(0.06*float64(k)/12)
		require.InDelta(t, want, res.Prices[k-1], 1e-9, "month %d", k)
	}
	require.Equal(t, res.Prices[5], res.StockGrant)
	require.Equal(t, res.Prices[8], res.OptionGrant)
	require.Equal(t, res.Prices[11], res.YearEnd)
}

func TestSimulateFlatPath(t *testing.T) {
	o := obs("1", 100, 0, 0)
	res, err := Simulate(&o, 3, fixedNormals(-2))
	require.NoError(t, err)
	require.Equal(t, 3, res.Iteration)
	for k, p := range res.Prices {
		require.InDelta(t, 100.0, p, 1e-12, "month %d", k+1)
	}
}

func TestSimulateShockedPath(t *testing.T) {
	o := obs("1", 10, 0.1, 0.3)
	res, err := Simulate(&o, 1, fixedNormals(0.5))
	require.NoError(t, err)

	step := math.Exp((0.1-0.3*0.3/2)/12 + 0.3*0.5*math.Sqrt(1.0/12))
	require.InDelta(t, 10*math.Pow(step, 12), res.YearEnd, 1e-9)
}

func TestSimulateConsumesTwelveDraws(t *testing.T) {
	for _, sigma := range []float64{0, 0.25} {
		o := obs("1", 10, 0.05, sigma)
		z := &countingNormals{}
		_, err := Simulate(&o, 1, z)
		require.NoError(t, err)
		require.Equal(t, Months, z.n)
	}
}

func TestSimulateRejects(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(o *model.Observation)
		iteration int
		field     string
	}{
		{"zero price", func(o *model.Observation) { o.S0 = 0 }, 1, model.ColS0},
		{"negative price", func(o *model.Observation) { o.S0 = -1 }, 1, model.ColS0},
		{"infinite price", func(o *model.Observation) { o.S0 = math.Inf(1) }, 1, model.ColS0},
		{"negative sigma", func(o *model.Observation) { o.Sigma = -0.1 }, 1, model.ColSigma},
		{"nan sigma", func(o *model.Observation) { o.Sigma = math.NaN() }, 1, model.ColSigma},
		{"iteration zero", func(o *model.Observation) {}, 0, "iteration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := obs("7", 10, 0, 0.2)
			tt.mutate(&o)
			_, err := Simulate(&o, tt.iteration, fixedNormals(0))
			require.ErrorIs(t, err, model.ErrInvalidParameter)
			var pe *model.ParamError
			require.True(t, errors.As(err, &pe))
			require.Equal(t, tt.field, pe.Name)
		})
	}
}
