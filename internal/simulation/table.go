package simulation

import (
	"math"

	"grant-simulation/internal/model"

	"gonum.org/v1/gonum/mat"
)

// Table is the wide result table: one row per observation, the panel's own
// columns followed by the schema columns. Storage is allocated once in
// NewTable; simulation and valuation only fill cells.
//
// Concurrent writers are safe as long as they write disjoint cells.
type Table struct {
	Schema Schema
	Panel  *model.Panel

	extracts   *mat.Dense
	valuations *mat.Dense
	valued     bool
}

// NewTable allocates storage for every row and schema column. Valuation
// cells start as NaN.
func NewTable(panel *model.Panel, schema Schema) (*Table, error) {
	rows := panel.Len()
	if rows == 0 {
		return nil, &model.ParamError{Name: "observations", Value: 0, Msg: "panel is empty"}
	}
	if schema.Iterations() == 0 {
		return nil, &model.ParamError{Name: "iterations", Value: 0, Msg: "must be > 0"}
	}
	vals := make([]float64, rows*schema.ValuationWidth())
	for i := range vals {
		vals[i] = math.NaN()
	}
	return &Table{
		Schema:     schema,
		Panel:      panel,
		extracts:   mat.NewDense(rows, schema.ExtractWidth(), nil),
		valuations: mat.NewDense(rows, schema.ValuationWidth(), vals),
	}, nil
}

func (t *Table) Rows() int { return t.Panel.Len() }

// Observation returns the input record of row.
func (t *Table) Observation(row int) *model.Observation {
	return &t.Panel.Observations[row]
}

// Write folds res into row, in res.Iteration's columns.
func (t *Table) Write(row int, res *Result) {
	for _, k := range model.ExtractKinds() {
		t.extracts.Set(row, t.Schema.ExtractIndex(res.Iteration, k), res.Extract(k))
	}
	if t.Schema.FullPath() {
		for m := 1; m <= Months; m++ {
			t.extracts.Set(row, t.Schema.MonthIndex(res.Iteration, m), res.Prices[m-1])
		}
	}
}

func (t *Table) Extract(row, iteration int, kind model.ExtractKind) float64 {
	return t.extracts.At(row, t.Schema.ExtractIndex(iteration, kind))
}

// MonthPrice returns month (1..12) of iteration's path. Full path only.
func (t *Table) MonthPrice(row, iteration, month int) float64 {
	return t.extracts.At(row, t.Schema.MonthIndex(iteration, month))
}

func (t *Table) SetValuation(row, iteration int, kind model.ValuationKind, v float64) {
	t.valuations.Set(row, t.Schema.ValuationIndex(iteration, kind), v)
}

func (t *Table) Valuation(row, iteration int, kind model.ValuationKind) float64 {
	return t.valuations.At(row, t.Schema.ValuationIndex(iteration, kind))
}

// Valued reports whether the valuation families have been filled.
func (t *Table) Valued() bool { return t.valued }

// MarkValued records that every valuation cell has been written.
func (t *Table) MarkValued() { t.valued = true }

// ExtractSeries returns kind for row across all iterations, in iteration order.
func (t *Table) ExtractSeries(row int, kind model.ExtractKind) []float64 {
	out := make([]float64, t.Schema.Iterations())
	for i := range out {
		out[i] = t.Extract(row, i+1, kind)
	}
	return out
}

// ExtractRow returns row's extract cells in schema order.
func (t *Table) ExtractRow(row int) []float64 {
	return mat.Row(nil, row, t.extracts)
}

// ValuationRow returns row's valuation cells in schema order.
func (t *Table) ValuationRow(row int) []float64 {
	return mat.Row(nil, row, t.valuations)
}
