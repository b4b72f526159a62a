package valuation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCallPriceFactorAtTheMoney(t *testing.T) {
	// S = K = 100, one year, 20% vol, 5% rate: the textbook 10.4506.
	require.InDelta(t, 10.4506, CallPriceFactor(100, 1, 0.2, 0.05, 0), 1e-4)
	// Linear in the price.
	require.InDelta(t, 2*CallPriceFactor(40, 2, 0.3, 0.03, 0.01), CallPriceFactor(80, 2, 0.3, 0.03, 0.01), 1e-12)
}

func TestImpliedOptionCount(t *testing.T) {
	f := CallPriceFactor(100, 1, 0.2, 0.05, 0)
	tests := []struct {
		name   string
		payoff float64
		p      float64
		t      float64
		sigma  float64
		want   float64
	}{
		{"regular", 1000, 100, 1, 0.2, 1000 / f},
		{"zero payoff", 0, 100, 1, 0.2, 0},
		{"zero sigma", 1000, 100, 1, 0, math.NaN()},
		{"zero horizon", 1000, 100, 0, 0.2, math.NaN()},
		{"zero payoff singular", 0, 100, 0, 0.2, math.NaN()},
		{"zero price", 1000, 0, 1, 0.2, math.Inf(1)},
		{"infinite price", 1000, math.Inf(1), 1, 0.2, math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ImpliedOptionCount(tt.payoff, tt.p, tt.t, tt.sigma, 0.05, 0)
			switch {
			case math.IsNaN(tt.want):
				require.True(t, math.IsNaN(got), "got %v", got)
			case math.IsInf(tt.want, 1):
				require.True(t, math.IsInf(got, 1), "got %v", got)
			default:
				require.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestImpliedStockCount(t *testing.T) {
	require.Equal(t, 4.0, ImpliedStockCount(100, 25))
	require.Equal(t, 0.0, ImpliedStockCount(0, 25))
	require.True(t, math.IsInf(ImpliedStockCount(100, 0), 1))
	require.True(t, math.IsInf(ImpliedStockCount(100, math.NaN()), 1))
	require.True(t, IsSingular(math.Inf(1)))
	require.True(t, IsSingular(math.NaN()))
	require.False(t, IsSingular(0))
}
