package data

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"grant-simulation/internal/model"

	"github.com/stretchr/testify/require"
)

var layouts = []string{"2006-01-02", "01/02/2006"}

const observationsCSV = `permno,fyear,S0,u,sigma,date,grantdate_opt,grantdate_st,S1,roa
10001,2010,50,0.05,0.2,2010-01-31,09/30/2010,2010-06-30,55.1,0.12
10002,2010,12.5,-0.02,0.45,2010-03-31,2010-11-30,2010-08-31,,-0.3
`

func TestReadObservations(t *testing.T) {
	panel, err := ReadObservations(strings.NewReader(observationsCSV), layouts)
	require.NoError(t, err)
	require.Equal(t, append(model.RequiredColumns(), "roa"), panel.Columns)
	require.Equal(t, 2, panel.Len())

	o := panel.Observations[0]
	require.Equal(t, model.FirmYear{Permno: "10001", FYear: "2010"}, o.Key)
	require.Equal(t, 50.0, o.S0)
	require.Equal(t, 0.2, o.Sigma)
	require.Equal(t, time.Date(2010, time.September, 30, 0, 0, 0, 0, time.UTC), o.GrantDateOpt)
	require.Equal(t, time.Date(2010, time.June, 30, 0, 0, 0, 0, time.UTC), o.GrantDateSt)
	require.Equal(t, "0.12", o.Values[9])
	require.Equal(t, 2, o.Line)

	missing := panel.Observations[1]
	require.True(t, math.IsNaN(missing.S1))
	var se *model.SchemaError
	require.ErrorAs(t, missing.Validate(), &se)
	require.Equal(t, model.ColS1, se.Field)
	require.Equal(t, 3, se.Line)
}

func TestReadObservationsErrors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing column", "permno,fyear,S0\n1,2010,3\n", model.ColU},
		{"empty file", "", "header"},
		{"bad number", "permno,fyear,S0,u,sigma,date,grantdate_opt,grantdate_st,S1\n1,2010,abc,0,0,2010-01-31,2010-02-28,2010-02-28,1\n", model.ColS0},
		{"bad date", "permno,fyear,S0,u,sigma,date,grantdate_opt,grantdate_st,S1\n1,2010,1,0,0,31.01.2010,2010-02-28,2010-02-28,1\n", model.ColDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadObservations(strings.NewReader(tt.body), layouts)
			require.ErrorIs(t, err, model.ErrSchema)
			var se *model.SchemaError
			require.True(t, errors.As(err, &se))
			require.Equal(t, tt.field, se.Field)
		})
	}
}

func TestLoadPredictionsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preds.csv")
	body := "permno,fyear,prediction,T,r,d\n10001,2010,2500,0.67,0.02,0.01\n10002,2010,0,0.5,0.02,0\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	ins, err := LoadPredictionsCSV(path)
	require.NoError(t, err)
	require.Len(t, ins, 2)

	in := ins[model.FirmYear{Permno: "10001", FYear: "2010"}]
	require.Equal(t, 2500.0, in.Predicted)
	require.Equal(t, 0.67, in.T)
	require.True(t, math.IsNaN(in.Sigma))
	require.Equal(t, 0.3, in.WithFallbackSigma(0.3).Sigma)
}

func TestReadPredictionsWithSigma(t *testing.T) {
	ins, err := ReadPredictions(strings.NewReader("permno,fyear,prediction,T,r,d,sigma\n1,2011,10,1,0.01,0,0.35\n"))
	require.NoError(t, err)
	require.Len(t, ins, 1)
	require.Equal(t, 0.35, ins[0].Sigma)
}

func TestIndexPredictionsDuplicate(t *testing.T) {
	key := model.FirmYear{Permno: "1", FYear: "2011"}
	_, err := IndexPredictions([]model.ValuationInput{{Key: key, Line: 2}, {Key: key, Line: 5}})
	require.ErrorIs(t, err, model.ErrSchema)
	require.Contains(t, err.Error(), "line 2")
}

func TestPanelFromRecords(t *testing.T) {
	s0, u, sigma, s1 := 20.0, 0.01, 0.3, 21.0
	recs := []ObservationRecord{{
		Permno: "7", FYear: "2015",
		S0: &s0, U: &u, Sigma: &sigma, S1: &s1,
		Date: "2015-03-31", GrantDateOpt: "2015-08-31", GrantDateSt: "05/31/2015",
		Covariates: map[string]string{"size": "4.2", "lev": "0.3"},
	}}
	panel, err := PanelFromRecords(recs, layouts)
	require.NoError(t, err)
	require.Equal(t, append(model.RequiredColumns(), "lev", "size"), panel.Columns)

	o := panel.Observations[0]
	require.NoError(t, o.Validate())
	require.Equal(t, "7", o.Values[0])
	require.Equal(t, "20", o.Values[2])
	require.Equal(t, "0.3", o.Values[len(o.Values)-2])

	recs[0].S0 = nil
	panel, err = PanelFromRecords(recs, layouts)
	require.NoError(t, err)
	require.ErrorIs(t, panel.Observations[0].Validate(), model.ErrSchema)

	recs[0].Date = "yesterday"
	_, err = PanelFromRecords(recs, layouts)
	require.ErrorIs(t, err, model.ErrSchema)
}
