package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"grant-simulation/internal/model"
)

// LoadObservationsCSV reads an observation panel. Required columns must be
// present; other columns are carried through verbatim.
func LoadObservationsCSV(path string, dateLayouts []string) (*model.Panel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadObservations(f, dateLayouts)
}

func ReadObservations(in io.Reader, dateLayouts []string) (*model.Panel, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1

	header, col, err := readHeader(r, model.RequiredColumns())
	if err != nil {
		return nil, err
	}

	panel := &model.Panel{Columns: header}
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := r.FieldPos(0)
		row := cells{rec: rec, col: col, line: line}

		obs := model.Observation{
			Key:    model.FirmYear{Permno: row.str(model.ColPermno), FYear: row.str(model.ColFYear)},
			Values: append([]string(nil), rec...),
			Line:   line,
		}
		row.key = obs.Key
		if obs.S0, err = row.float(model.ColS0); err != nil {
			return nil, err
		}
		if obs.U, err = row.float(model.ColU); err != nil {
			return nil, err
		}
		if obs.Sigma, err = row.float(model.ColSigma); err != nil {
			return nil, err
		}
		if obs.S1, err = row.float(model.ColS1); err != nil {
			return nil, err
		}
		if obs.Date, err = row.date(model.ColDate, dateLayouts); err != nil {
			return nil, err
		}
		if obs.GrantDateOpt, err = row.date(model.ColGrantDateOpt, dateLayouts); err != nil {
			return nil, err
		}
		if obs.GrantDateSt, err = row.date(model.ColGrantDateSt, dateLayouts); err != nil {
			return nil, err
		}
		panel.Observations = append(panel.Observations, obs)
	}
	return panel, nil
}

// LoadPredictionsCSV reads the forecast collaborator's output and indexes it
// by firm-year. The sigma column is optional.
func LoadPredictionsCSV(path string) (map[model.FirmYear]model.ValuationInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ins, err := ReadPredictions(f)
	if err != nil {
		return nil, err
	}
	return IndexPredictions(ins)
}

func ReadPredictions(in io.Reader) ([]model.ValuationInput, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1

	_, col, err := readHeader(r, model.PredictionColumns())
	if err != nil {
		return nil, err
	}

	var out []model.ValuationInput
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := r.FieldPos(0)
		row := cells{rec: rec, col: col, line: line}

		v := model.ValuationInput{
			Key:   model.FirmYear{Permno: row.str(model.ColPermno), FYear: row.str(model.ColFYear)},
			Sigma: math.NaN(),
			Line:  line,
		}
		row.key = v.Key
		if v.Predicted, err = row.float(model.ColPrediction); err != nil {
			return nil, err
		}
		if v.T, err = row.float(model.ColT); err != nil {
			return nil, err
		}
		if v.R, err = row.float(model.ColR); err != nil {
			return nil, err
		}
		if v.D, err = row.float(model.ColD); err != nil {
			return nil, err
		}
		if _, ok := col[model.ColSigma]; ok {
			if v.Sigma, err = row.float(model.ColSigma); err != nil {
				return nil, err
			}
		}
		out = append(out, v)
	}
	return out, nil
}

// IndexPredictions keys inputs by firm-year. A repeated firm-year is a
// schema error.
func IndexPredictions(ins []model.ValuationInput) (map[model.FirmYear]model.ValuationInput, error) {
	out := make(map[model.FirmYear]model.ValuationInput, len(ins))
	for _, in := range ins {
		if prev, ok := out[in.Key]; ok {
			return nil, &model.SchemaError{Row: in.Key, Line: in.Line, Field: model.ColPermno,
				Reason: fmt.Sprintf("duplicate firm-year (first seen on line %d)", prev.Line)}
		}
		out[in.Key] = in
	}
	return out, nil
}

func readHeader(r *csv.Reader, required []string) ([]string, map[string]int, error) {
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, &model.SchemaError{Line: 1, Field: "header", Reason: "empty file"}
	}
	if err != nil {
		return nil, nil, err
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		header[i] = h
		col[h] = i
	}
	for _, name := range required {
		if _, ok := col[name]; !ok {
			return nil, nil, &model.SchemaError{Line: 1, Field: name, Reason: "missing column"}
		}
	}
	return header, col, nil
}

type cells struct {
	rec  []string
	col  map[string]int
	key  model.FirmYear
	line int
}

func (c cells) str(name string) string {
	i, ok := c.col[name]
	if !ok || i >= len(c.rec) {
		return ""
	}
	return strings.TrimSpace(c.rec[i])
}

// float parses a numeric cell. Empty and NA cells are NaN so that validation
// can report them as missing.
func (c cells) float(name string) (float64, error) {
	s := c.str(name)
	switch strings.ToLower(s) {
	case "", "na", "nan", "null":
		return math.NaN(), nil
	}
	x, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &model.SchemaError{Row: c.key, Line: c.line, Field: name, Reason: fmt.Sprintf("not a number: %q", s)}
	}
	return x, nil
}

func (c cells) date(name string, layouts []string) (t time.Time, err error) {
	t, err = ParseDate(c.str(name), layouts)
	if err != nil {
		return t, &model.SchemaError{Row: c.key, Line: c.line, Field: name, Reason: err.Error()}
	}
	return t, nil
}
