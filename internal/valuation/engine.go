package valuation

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"grant-simulation/internal/model"
	"grant-simulation/internal/simulation"

	"github.com/phuslu/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Report summarizes one InferGrants pass.
type Report struct {
	Rows       int
	Iterations int

	// SingularOption and SingularStock count sentinel cells per family.
	SingularOption int
	SingularStock  int

	// TotalPredicted is the sum of the predicted payoffs of all rows.
	TotalPredicted decimal.Decimal
}

// Cells returns the number of cells written per family.
func (r Report) Cells() int { return r.Rows * r.Iterations }

// Engine infers implied grant counts for every cell of a simulated table.
type Engine struct {
	workers int
	logger  *log.Logger
}

// New returns an engine processing rows on up to workers goroutines (zero
// means GOMAXPROCS). A nil logger uses log.DefaultLogger.
func New(workers int, logger *log.Logger) *Engine {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = &log.DefaultLogger
	}
	return &Engine{workers: workers, logger: logger}
}

// InferGrants fills both valuation families of tbl in place: for every
// iteration, the implied option count from the option-grant-date price and
// the implied stock count from the stock-grant-date price.
//
// Inputs are joined to rows by firm-year and validated before any cell is
// written. Singular cells hold sentinels and are counted, not returned as
// errors.
func (e *Engine) InferGrants(ctx context.Context, tbl *simulation.Table, inputs map[model.FirmYear]model.ValuationInput) (Report, error) {
	if tbl == nil || tbl.Rows() == 0 {
		return Report{}, &model.ParamError{Name: "observations", Value: 0, Msg: "table is empty"}
	}
	resolved, err := Resolve(tbl.Panel, inputs)
	if err != nil {
		return Report{}, err
	}

	start := time.Now()
	rows, iterations := tbl.Rows(), tbl.Schema.Iterations()
	chunk := (rows + e.workers - 1) / e.workers

	type counts struct{ opt, st int }
	partial := make([]counts, 0, e.workers)
	for lo := 0; lo < rows; lo += chunk {
		partial = append(partial, counts{})
	}

	g, gctx := errgroup.WithContext(ctx)
	for c := range partial {
		c := c
		lo, hi := c*chunk, min((c+1)*chunk, rows)
		g.Go(func() error {
			for row := lo; row < hi; row++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				in := resolved[row]
				for it := 1; it <= iterations; it++ {
					opt := ImpliedOptionCount(in.Predicted, tbl.Extract(row, it, model.ExtractOptionGrant), in.T, in.Sigma, in.R, in.D)
					st := ImpliedStockCount(in.Predicted, tbl.Extract(row, it, model.ExtractStockGrant))
					tbl.SetValuation(row, it, model.ValuationOption, opt)
					tbl.SetValuation(row, it, model.ValuationStock, st)
					if IsSingular(opt) {
						partial[c].opt++
					}
					if IsSingular(st) {
						partial[c].st++
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	tbl.MarkValued()

	rep := Report{Rows: rows, Iterations: iterations, TotalPredicted: decimal.Zero}
	for _, p := range partial {
		rep.SingularOption += p.opt
		rep.SingularStock += p.st
	}
	for _, in := range resolved {
		rep.TotalPredicted = rep.TotalPredicted.Add(decimal.NewFromFloat(in.Predicted))
	}

	ev := e.logger.Info()
	if rep.SingularOption+rep.SingularStock > 0 {
		ev = e.logger.Warn()
	}
	ev.Int("rows", rows).
		Int("iterations", iterations).
		Int("singular_option", rep.SingularOption).
		Int("singular_stock", rep.SingularStock).
		Dur("elapsed", time.Since(start)).
		Msg("Valuation: grants inferred")
	return rep, nil
}

// Resolve returns the validated valuation input of every row of panel, in
// row order. Inputs without sigma fall back to the observation's sigma.
func Resolve(panel *model.Panel, inputs map[model.FirmYear]model.ValuationInput) ([]model.ValuationInput, error) {
	out := make([]model.ValuationInput, panel.Len())
	for i := range panel.Observations {
		obs := &panel.Observations[i]
		in, ok := inputs[obs.Key]
		if !ok {
			return nil, &model.SchemaError{Row: obs.Key, Line: obs.Line, Field: model.ColPrediction, Reason: "no valuation input for row"}
		}
		in = in.WithFallbackSigma(obs.Sigma)
		if err := in.Validate(); err != nil {
			return nil, fmt.Errorf("valuation input: %w", err)
		}
		out[i] = in
	}
	return out, nil
}
