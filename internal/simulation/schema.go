package simulation

import (
	"fmt"

	"grant-simulation/internal/model"
)

// Column identifies one simulated or valuation column. Exactly one of
// Extract, Month or Valuation is set.
type Column struct {
	Iteration int
	Extract   model.ExtractKind
	Month     int
	Valuation model.ValuationKind
}

// Name is the stable output column name, e.g. P3_month_opt, P3_7, P3_st_pred.
func (c Column) Name() string {
	switch {
	case c.Valuation != "":
		return fmt.Sprintf("P%d_%s", c.Iteration, c.Valuation)
	case c.Month > 0:
		return fmt.Sprintf("P%d_%d", c.Iteration, c.Month)
	default:
		return fmt.Sprintf("P%d_%s", c.Iteration, c.Extract)
	}
}

// Schema is the column layout of a run, fixed by the iteration count and the
// full-path flag before any simulation. It does not depend on the row count.
//
// Extract block per iteration: month_st, month_opt, year, then months 1..12
// when the full path is kept. Valuation columns follow all extract blocks:
// every iteration's opt_pred, then every iteration's st_pred.
type Schema struct {
	iterations int
	fullPath   bool
}

// NewSchema validates iterations and returns the layout.
func NewSchema(iterations int, fullPath bool) (Schema, error) {
	if iterations <= 0 {
		return Schema{}, &model.ParamError{Name: "iterations", Value: float64(iterations), Msg: "must be > 0"}
	}
	return Schema{iterations: iterations, fullPath: fullPath}, nil
}

func (s Schema) Iterations() int { return s.iterations }
func (s Schema) FullPath() bool  { return s.fullPath }

// BlockWidth is the number of extract columns per iteration.
func (s Schema) BlockWidth() int {
	if s.fullPath {
		return len(model.ExtractKinds()) + Months
	}
	return len(model.ExtractKinds())
}

func (s Schema) ExtractWidth() int   { return s.iterations * s.BlockWidth() }
func (s Schema) ValuationWidth() int { return s.iterations * len(model.ValuationKinds()) }

// ExtractIndex returns the position of (iteration, kind) among the extract
// columns. It panics on an iteration outside the schema.
func (s Schema) ExtractIndex(iteration int, kind model.ExtractKind) int {
	s.mustIteration(iteration)
	base := (iteration - 1) * s.BlockWidth()
	switch kind {
	case model.ExtractStockGrant:
		return base
	case model.ExtractOptionGrant:
		return base + 1
	case model.ExtractYearEnd:
		return base + 2
	}
	panic(fmt.Sprintf("simulation: unknown extract kind %q", kind))
}

// MonthIndex returns the position of month (1..12) of iteration among the
// extract columns. It panics when the full path is not kept.
func (s Schema) MonthIndex(iteration, month int) int {
	s.mustIteration(iteration)
	if !s.fullPath {
		panic("simulation: full path not retained")
	}
	if month < 1 || month > Months {
		panic(fmt.Sprintf("simulation: month %d out of range", month))
	}
	return (iteration-1)*s.BlockWidth() + len(model.ExtractKinds()) + month - 1
}

// ValuationIndex returns the position of (iteration, kind) among the
// valuation columns.
func (s Schema) ValuationIndex(iteration int, kind model.ValuationKind) int {
	s.mustIteration(iteration)
	switch kind {
	case model.ValuationOption:
		return iteration - 1
	case model.ValuationStock:
		return s.iterations + iteration - 1
	}
	panic(fmt.Sprintf("simulation: unknown valuation kind %q", kind))
}

// ExtractColumns lists the extract columns in storage order.
func (s Schema) ExtractColumns() []Column {
	out := make([]Column, 0, s.ExtractWidth())
	for i := 1; i <= s.iterations; i++ {
		for _, k := range model.ExtractKinds() {
			out = append(out, Column{Iteration: i, Extract: k})
		}
		if s.fullPath {
			for m := 1; m <= Months; m++ {
				out = append(out, Column{Iteration: i, Month: m})
			}
		}
	}
	return out
}

// ValuationColumns lists the valuation columns in storage order.
func (s Schema) ValuationColumns() []Column {
	out := make([]Column, 0, s.ValuationWidth())
	for _, k := range model.ValuationKinds() {
		for i := 1; i <= s.iterations; i++ {
			out = append(out, Column{Iteration: i, Valuation: k})
		}
	}
	return out
}

// Columns lists extract then valuation columns.
func (s Schema) Columns() []Column {
	return append(s.ExtractColumns(), s.ValuationColumns()...)
}

// Names returns the column names of cols.
func Names(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name()
	}
	return out
}

func (s Schema) mustIteration(iteration int) {
	if iteration < 1 || iteration > s.iterations {
		panic(fmt.Sprintf("simulation: iteration %d outside 1..%d", iteration, s.iterations))
	}
}
