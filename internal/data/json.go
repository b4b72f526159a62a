package data

import (
	"encoding/json"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"grant-simulation/internal/model"
)

// ObservationRecord is the JSON shape of one observation. Dates are strings
// parsed with the configured layouts; absent numbers are missing.
type ObservationRecord struct {
	Permno       string            `json:"permno" binding:"required"`
	FYear        string            `json:"fyear" binding:"required"`
	S0           *float64          `json:"S0"`
	U            *float64          `json:"u"`
	Sigma        *float64          `json:"sigma"`
	S1           *float64          `json:"S1"`
	Date         string            `json:"date"`
	GrantDateOpt string            `json:"grantdate_opt"`
	GrantDateSt  string            `json:"grantdate_st"`
	Covariates   map[string]string `json:"covariates,omitempty"`
}

// PredictionRecord is the JSON shape of one valuation input.
type PredictionRecord struct {
	Permno     string   `json:"permno" binding:"required"`
	FYear      string   `json:"fyear" binding:"required"`
	Prediction *float64 `json:"prediction"`
	T          *float64 `json:"T"`
	R          *float64 `json:"r"`
	D          *float64 `json:"d"`
	Sigma      *float64 `json:"sigma,omitempty"`
}

func LoadObservationsJSON(path string, dateLayouts []string) (*model.Panel, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var recs []ObservationRecord
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, err
	}
	return PanelFromRecords(recs, dateLayouts)
}

// PanelFromRecords converts records to a panel. Covariate columns are the
// sorted union of all records' covariate names, after the required columns.
func PanelFromRecords(recs []ObservationRecord, dateLayouts []string) (*model.Panel, error) {
	covSet := map[string]struct{}{}
	for _, r := range recs {
		for k := range r.Covariates {
			covSet[k] = struct{}{}
		}
	}
	covs := make([]string, 0, len(covSet))
	for k := range covSet {
		covs = append(covs, k)
	}
	sort.Strings(covs)

	panel := &model.Panel{Columns: append(model.RequiredColumns(), covs...)}
	for _, r := range recs {
		key := model.FirmYear{Permno: r.Permno, FYear: r.FYear}
		obs := model.Observation{
			Key:   key,
			S0:    orNaN(r.S0),
			U:     orNaN(r.U),
			Sigma: orNaN(r.Sigma),
			S1:    orNaN(r.S1),
		}
		var err error
		if obs.Date, err = parseField(key, model.ColDate, r.Date, dateLayouts); err != nil {
			return nil, err
		}
		if obs.GrantDateOpt, err = parseField(key, model.ColGrantDateOpt, r.GrantDateOpt, dateLayouts); err != nil {
			return nil, err
		}
		if obs.GrantDateSt, err = parseField(key, model.ColGrantDateSt, r.GrantDateSt, dateLayouts); err != nil {
			return nil, err
		}
		if len(covs) > 0 {
			obs.Values = r.values(panel.Columns)
		}
		panel.Observations = append(panel.Observations, obs)
	}
	return panel, nil
}

// ValuationInputs converts records to indexed valuation inputs. A missing
// sigma is left NaN so the observation's sigma is used.
func ValuationInputs(recs []PredictionRecord) (map[model.FirmYear]model.ValuationInput, error) {
	ins := make([]model.ValuationInput, len(recs))
	for i, r := range recs {
		ins[i] = model.ValuationInput{
			Key:       model.FirmYear{Permno: r.Permno, FYear: r.FYear},
			Predicted: orNaN(r.Prediction),
			T:         orNaN(r.T),
			R:         orNaN(r.R),
			D:         orNaN(r.D),
			Sigma:     orNaN(r.Sigma),
		}
	}
	return IndexPredictions(ins)
}

// values lays the record out along columns, raw strings for dates.
func (r ObservationRecord) values(columns []string) []string {
	out := make([]string, len(columns))
	for j, name := range columns {
		switch name {
		case model.ColPermno:
			out[j] = r.Permno
		case model.ColFYear:
			out[j] = r.FYear
		case model.ColS0:
			out[j] = fmtOptional(r.S0)
		case model.ColU:
			out[j] = fmtOptional(r.U)
		case model.ColSigma:
			out[j] = fmtOptional(r.Sigma)
		case model.ColS1:
			out[j] = fmtOptional(r.S1)
		case model.ColDate:
			out[j] = r.Date
		case model.ColGrantDateOpt:
			out[j] = r.GrantDateOpt
		case model.ColGrantDateSt:
			out[j] = r.GrantDateSt
		default:
			out[j] = r.Covariates[name]
		}
	}
	return out
}

func parseField(key model.FirmYear, field, raw string, layouts []string) (time.Time, error) {
	t, err := ParseDate(raw, layouts)
	if err != nil {
		return time.Time{}, &model.SchemaError{Row: key, Field: field, Reason: err.Error()}
	}
	return t, nil
}

func fmtOptional(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'g', -1, 64)
}

func orNaN(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}
