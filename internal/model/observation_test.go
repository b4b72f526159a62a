package model

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validObservation() Observation {
	base := time.Date(2010, 1, 31, 0, 0, 0, 0, time.UTC)
	return Observation{
		Key:          FirmYear{Permno: "10001", FYear: "2010"},
		S0:           50,
		U:            0.05,
		Sigma:        0.2,
		S1:           52,
		Date:         base,
		GrantDateOpt: time.Date(2010, 6, 30, 0, 0, 0, 0, time.UTC),
		GrantDateSt:  time.Date(2010, 6, 30, 0, 0, 0, 0, time.UTC),
	}
}

func TestObservationValidate(t *testing.T) {
	for _, tc := range []struct {
		name   string
		mutate func(o *Observation)
		target error
		field  string
	}{
		{name: "OK", mutate: func(o *Observation) {}},
		{name: "ZERO_SIGMA_OK", mutate: func(o *Observation) { o.Sigma = 0 }},
		{name: "MISSING_S0", mutate: func(o *Observation) { o.S0 = math.NaN() }, target: ErrSchema, field: ColS0},
		{name: "MISSING_DATE", mutate: func(o *Observation) { o.Date = time.Time{} }, target: ErrSchema, field: ColDate},
		{name: "MISSING_PERMNO", mutate: func(o *Observation) { o.Key.Permno = "" }, target: ErrSchema, field: ColPermno},
		{name: "NEGATIVE_SIGMA", mutate: func(o *Observation) { o.Sigma = -0.1 }, target: ErrInvalidParameter, field: ColSigma},
		{name: "ZERO_S0", mutate: func(o *Observation) { o.S0 = 0 }, target: ErrInvalidParameter, field: ColS0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			o := validObservation()
			tc.mutate(&o)
			err := o.Validate()
			if tc.target == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.target)

			var se *SchemaError
			var pe *ParamError
			switch {
			case errors.As(err, &se):
				require.Equal(t, tc.field, se.Field)
			case errors.As(err, &pe):
				require.Equal(t, tc.field, pe.Name)
				require.Equal(t, o.Key, pe.Row)
			default:
				t.Fatalf("unexpected error type %T", err)
			}
		})
	}
}

func TestValuationInputValidate(t *testing.T) {
	in := ValuationInput{Key: FirmYear{"1", "2010"}, T: 1, Sigma: math.NaN(), R: 0.03, D: 0.01, Predicted: 10}
	require.ErrorIs(t, in.Validate(), ErrSchema)

	in = in.WithFallbackSigma(0.3)
	require.Equal(t, 0.3, in.Sigma)
	require.NoError(t, in.Validate())

	in.Predicted = -1
	require.ErrorIs(t, in.Validate(), ErrInvalidParameter)
}

func TestPanelOutputColumns(t *testing.T) {
	p := &Panel{}
	require.Equal(t, RequiredColumns(), p.OutputColumns())

	p.Columns = []string{"permno", "fyear", "cfo"}
	require.Equal(t, []string{"permno", "fyear", "cfo"}, p.OutputColumns())
}
