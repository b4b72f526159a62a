package model

import (
	"math"
	"time"
)

// FirmYear is the composite key of one observation (company id, fiscal year).
type FirmYear struct {
	Permno string `json:"permno"`
	FYear  string `json:"fyear"`
}

func (k FirmYear) String() string { return k.Permno + "/" + k.FYear }

func (k FirmYear) IsZero() bool { return k.Permno == "" && k.FYear == "" }

// Observation is one company-fiscal-year record.
// Units:
// - S0, S1: price per share
// - U, Sigma: annualized drift and volatility
//
// Missing numeric inputs are NaN and missing dates are the zero time, so that
// Validate can name them.
type Observation struct {
	Key FirmYear `json:"key"`

	S0    float64 `json:"S0"`
	U     float64 `json:"u"`
	Sigma float64 `json:"sigma"`
	S1    float64 `json:"S1"`

	Date         time.Time `json:"date"`
	GrantDateOpt time.Time `json:"grantdate_opt"`
	GrantDateSt  time.Time `json:"grantdate_st"`

	// Values holds the raw input record, aligned with Panel.Columns.
	Values []string `json:"-"`
	// Line is the 1-based input line, 0 when not read from a file.
	Line int `json:"-"`
}

// Validate checks presence first (SchemaError) and then ranges (ParamError).
func (o *Observation) Validate() error {
	if o.Key.Permno == "" {
		return o.missing(ColPermno)
	}
	if o.Key.FYear == "" {
		return o.missing(ColFYear)
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{ColS0, o.S0},
		{ColU, o.U},
		{ColSigma, o.Sigma},
		{ColS1, o.S1},
	} {
		if math.IsNaN(f.v) {
			return o.missing(f.name)
		}
	}
	for _, f := range []struct {
		name string
		v    time.Time
	}{
		{ColDate, o.Date},
		{ColGrantDateOpt, o.GrantDateOpt},
		{ColGrantDateSt, o.GrantDateSt},
	} {
		if f.v.IsZero() {
			return o.missing(f.name)
		}
	}

	if o.S0 <= 0 || math.IsInf(o.S0, 0) {
		return &ParamError{Row: o.Key, Name: ColS0, Value: o.S0, Msg: "must be > 0"}
	}
	if o.Sigma < 0 || math.IsInf(o.Sigma, 0) {
		return &ParamError{Row: o.Key, Name: ColSigma, Value: o.Sigma, Msg: "must be >= 0"}
	}
	if math.IsInf(o.U, 0) {
		return &ParamError{Row: o.Key, Name: ColU, Value: o.U, Msg: "must be finite"}
	}
	return nil
}

func (o *Observation) missing(field string) error {
	return &SchemaError{Row: o.Key, Line: o.Line, Field: field, Reason: "missing"}
}

// Panel is an ordered set of observations plus the column order they were
// read with. Output preserves Columns.
type Panel struct {
	Columns      []string
	Observations []Observation
}

// OutputColumns returns Columns, or the required columns when the panel was
// not read from a file.
func (p *Panel) OutputColumns() []string {
	if len(p.Columns) == 0 {
		return RequiredColumns()
	}
	return p.Columns
}

// Len returns the number of observations.
func (p *Panel) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Observations)
}
