package valuation

import (
	"context"
	"io"
	"math"
	"testing"
	"time"

	"grant-simulation/internal/model"
	"grant-simulation/internal/simulation"

	"github.com/phuslu/log"
	"github.com/stretchr/testify/require"
)

func quietLogger() *log.Logger {
	return &log.Logger{Level: log.ErrorLevel, Writer: &log.IOWriter{Writer: io.Discard}}
}

func observation(permno string, s0, sigma float64) model.Observation {
	return model.Observation{
		Key:          model.FirmYear{Permno: permno, FYear: "2012"},
		S0:           s0,
		U:            0.04,
		Sigma:        sigma,
		S1:           s0,
		Date:         time.Date(2012, time.March, 31, 0, 0, 0, 0, time.UTC),
		GrantDateOpt: time.Date(2012, time.August, 31, 0, 0, 0, 0, time.UTC),
		GrantDateSt:  time.Date(2012, time.May, 31, 0, 0, 0, 0, time.UTC),
	}
}

func simulate(t *testing.T, iterations int, rows ...model.Observation) *simulation.Table {
	t.Helper()
	eng := simulation.New(simulation.Options{Iterations: iterations, Seed: simulation.DefaultSeed}, quietLogger())
	tbl, err := eng.Run(context.Background(), &model.Panel{Observations: rows})
	require.NoError(t, err)
	return tbl
}

func input(permno string, payoff, sigma float64) model.ValuationInput {
	return model.ValuationInput{
		Key:       model.FirmYear{Permno: permno, FYear: "2012"},
		T:         0.5,
		Sigma:     sigma,
		R:         0.02,
		D:         0.01,
		Predicted: payoff,
	}
}

func index(ins ...model.ValuationInput) map[model.FirmYear]model.ValuationInput {
	out := make(map[model.FirmYear]model.ValuationInput, len(ins))
	for _, in := range ins {
		out[in.Key] = in
	}
	return out
}

func TestInferGrantsFillsBothFamilies(t *testing.T) {
	tbl := simulate(t, 3, observation("1", 20, 0.3), observation("2", 55, 0.25))
	inputs := index(input("1", 5000, 0.3), input("2", 0, 0.25))

	for _, workers := range []int{1, 4} {
		rep, err := New(workers, quietLogger()).InferGrants(context.Background(), tbl, inputs)
		require.NoError(t, err)
		require.True(t, tbl.Valued())
		require.Equal(t, 2, rep.Rows)
		require.Equal(t, 3, rep.Iterations)
		require.Equal(t, 6, rep.Cells())
		require.Zero(t, rep.SingularOption)
		require.Zero(t, rep.SingularStock)
		require.Equal(t, "5000", rep.TotalPredicted.String())

		for it := 1; it <= 3; it++ {
			p := tbl.Extract(0, it, model.ExtractOptionGrant)
			s := tbl.Extract(0, it, model.ExtractStockGrant)
			require.InDelta(t, 5000/CallPriceFactor(p, 0.5, 0.3, 0.02, 0.01), tbl.Valuation(0, it, model.ValuationOption), 1e-9)
			require.InDelta(t, 5000/s, tbl.Valuation(0, it, model.ValuationStock), 1e-9)

			require.Equal(t, 0.0, tbl.Valuation(1, it, model.ValuationOption))
			require.Equal(t, 0.0, tbl.Valuation(1, it, model.ValuationStock))
		}
	}
}

func TestInferGrantsCountsSingularCells(t *testing.T) {
	tbl := simulate(t, 2, observation("1", 20, 0.3))
	in := input("1", 100, 0)
	rep, err := New(1, quietLogger()).InferGrants(context.Background(), tbl, index(in))
	require.NoError(t, err)
	require.Equal(t, 2, rep.SingularOption)
	require.Zero(t, rep.SingularStock)
	require.True(t, math.IsNaN(tbl.Valuation(0, 1, model.ValuationOption)))
}

func TestInferGrantsSigmaFallback(t *testing.T) {
	tbl := simulate(t, 1, observation("1", 20, 0.3))
	rep, err := New(1, quietLogger()).InferGrants(context.Background(), tbl, index(input("1", 100, math.NaN())))
	require.NoError(t, err)
	require.Zero(t, rep.SingularOption)

	p := tbl.Extract(0, 1, model.ExtractOptionGrant)
	require.InDelta(t, 100/CallPriceFactor(p, 0.5, 0.3, 0.02, 0.01), tbl.Valuation(0, 1, model.ValuationOption), 1e-9)
}

func TestInferGrantsRejects(t *testing.T) {
	negT := input("1", 100, 0.2)
	negT.T = -1
	noPayoff := input("1", math.NaN(), 0.2)

	tests := []struct {
		name   string
		inputs map[model.FirmYear]model.ValuationInput
		target error
	}{
		{"missing row", index(input("9", 100, 0.2)), model.ErrSchema},
		{"negative payoff", index(input("1", -5, 0.2)), model.ErrInvalidParameter},
		{"negative horizon", index(negT), model.ErrInvalidParameter},
		{"negative sigma", index(input("1", 5, -0.2)), model.ErrInvalidParameter},
		{"missing payoff", index(noPayoff), model.ErrSchema},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := simulate(t, 1, observation("1", 20, 0.3))
			_, err := New(1, quietLogger()).InferGrants(context.Background(), tbl, tt.inputs)
			require.ErrorIs(t, err, tt.target)
			require.False(t, tbl.Valued())
			require.True(t, math.IsNaN(tbl.Valuation(0, 1, model.ValuationStock)))
		})
	}
}

func TestInferGrantsCancelled(t *testing.T) {
	tbl := simulate(t, 1, observation("1", 20, 0.3))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(2, quietLogger()).InferGrants(ctx, tbl, index(input("1", 1, 0.3)))
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, tbl.Valued())
}
