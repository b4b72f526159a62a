package model

import "math"

// ValuationInput carries the per-observation parameters of the grant
// inversion. Units:
// - T: years to grant
// - Sigma, R, D: annualized volatility, risk-free rate, dividend yield
// - Predicted: payoff amount in currency units
type ValuationInput struct {
	Key       FirmYear `json:"key"`
	T         float64  `json:"T"`
	Sigma     float64  `json:"sigma"`
	R         float64  `json:"r"`
	D         float64  `json:"d"`
	Predicted float64  `json:"prediction"`
	Line      int      `json:"-"`
}

// Validate rejects inputs that would not be a modelling choice but a data
// error. Zero T or Sigma is allowed and yields a sentinel cell.
func (v ValuationInput) Validate() error {
	for _, f := range []struct {
		name string
		x    float64
	}{
		{ColPrediction, v.Predicted},
		{ColT, v.T},
		{ColSigma, v.Sigma},
		{ColR, v.R},
		{ColD, v.D},
	} {
		if math.IsNaN(f.x) {
			return &SchemaError{Row: v.Key, Line: v.Line, Field: f.name, Reason: "missing"}
		}
	}
	if v.Predicted < 0 || math.IsInf(v.Predicted, 0) {
		return &ParamError{Row: v.Key, Name: ColPrediction, Value: v.Predicted, Msg: "must be finite and >= 0"}
	}
	if v.T < 0 {
		return &ParamError{Row: v.Key, Name: ColT, Value: v.T, Msg: "must be >= 0"}
	}
	if v.Sigma < 0 {
		return &ParamError{Row: v.Key, Name: ColSigma, Value: v.Sigma, Msg: "must be >= 0"}
	}
	return nil
}

// WithFallbackSigma returns v with Sigma taken from sigma when v has none.
func (v ValuationInput) WithFallbackSigma(sigma float64) ValuationInput {
	if math.IsNaN(v.Sigma) {
		v.Sigma = sigma
	}
	return v
}
