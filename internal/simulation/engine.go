package simulation

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"grant-simulation/internal/model"

	"github.com/phuslu/log"
	"golang.org/x/sync/errgroup"
)

// Options configures one simulation run.
type Options struct {
	Iterations   int
	Seed         uint64
	KeepFullPath bool
	Policy       Policy
	// Workers bounds parallel iterations under PolicySubstream. Zero means
	// GOMAXPROCS. Ignored under PolicyShared.
	Workers int
	// StrictGrantWindow rejects rows whose grant dates fall outside the
	// simulated window instead of logging a warning.
	StrictGrantWindow bool
	// Progress, if set, is called after each completed iteration.
	Progress func(done, total int)
}

// DefaultOptions returns a single-iteration shared-stream run with DefaultSeed.
func DefaultOptions() Options {
	return Options{
		Iterations: 1,
		Seed:       DefaultSeed,
		Policy:     PolicyShared,
	}
}

// Engine runs the Monte Carlo simulation of a panel with fixed Options.
type Engine struct {
	opts   Options
	logger *log.Logger
}

// New returns an engine. A nil logger uses log.DefaultLogger.
func New(opts Options, logger *log.Logger) *Engine {
	if logger == nil {
		logger = &log.DefaultLogger
	}
	if opts.Policy == "" {
		opts.Policy = PolicyShared
	}
	return &Engine{opts: opts, logger: logger}
}

func (e *Engine) Options() Options { return e.opts }

// Run simulates every (observation, iteration) pair of panel and returns the
// filled table. All inputs are validated before any draw is taken; a failed
// or cancelled run returns no table.
func (e *Engine) Run(ctx context.Context, panel *model.Panel) (*Table, error) {
	schema, err := NewSchema(e.opts.Iterations, e.opts.KeepFullPath)
	if err != nil {
		return nil, err
	}
	if panel.Len() == 0 {
		return nil, &model.ParamError{Name: "observations", Value: 0, Msg: "panel is empty"}
	}
	if err := e.validate(panel); err != nil {
		return nil, err
	}
	tbl, err := NewTable(panel, schema)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	e.logger.Info().
		Int("rows", panel.Len()).
		Int("iterations", schema.Iterations()).
		Str("policy", string(e.opts.Policy)).
		Uint64("seed", e.opts.Seed).
		Bool("full_path", schema.FullPath()).
		Msg("Simulation: starting run")

	switch e.opts.Policy {
	case PolicyShared:
		err = e.runShared(ctx, tbl)
	case PolicySubstream:
		err = e.runSubstreams(ctx, tbl)
	default:
		err = fmt.Errorf("unsupported stream policy: %q", e.opts.Policy)
	}
	if err != nil {
		return nil, err
	}

	e.logger.Info().
		Int("rows", tbl.Rows()).
		Int("columns", len(schema.ExtractColumns())).
		Dur("elapsed", time.Since(start)).
		Msg("Simulation: run complete")
	return tbl, nil
}

func (e *Engine) validate(panel *model.Panel) error {
	for i := range panel.Observations {
		obs := &panel.Observations[i]
		if err := obs.Validate(); err != nil {
			return err
		}
		for _, g := range []struct {
			field string
			date  time.Time
		}{
			{model.ColGrantDateSt, obs.GrantDateSt},
			{model.ColGrantDateOpt, obs.GrantDateOpt},
		} {
			if InWindow(obs.Date, g.date) {
				continue
			}
			if e.opts.StrictGrantWindow {
				return fmt.Errorf("row %s: %s %s outside simulated window: %w",
					obs.Key, g.field, g.date.Format("2006-01-02"), model.ErrIndexOutOfRange)
			}
			e.logger.Warn().
				Str("row", obs.Key.String()).
				Str("field", g.field).
				Time("grant_date", g.date).
				Time("base_date", obs.Date).
				Msg("Simulation: grant date outside window, matching by calendar month")
		}
	}
	return nil
}

// runShared consumes one stream iteration-major, then row-major.
func (e *Engine) runShared(ctx context.Context, tbl *Table) error {
	stream := NewStream(e.opts.Seed)
	total := tbl.Schema.Iterations()
	for it := 1; it <= total; it++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := simulateIteration(tbl, it, stream); err != nil {
			return err
		}
		if e.opts.Progress != nil {
			e.opts.Progress(it, total)
		}
	}
	return nil
}

// runSubstreams runs iterations in parallel, each on its own stream. Every
// goroutine owns the columns of its iteration.
func (e *Engine) runSubstreams(ctx context.Context, tbl *Table) error {
	workers := e.opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	total := tbl.Schema.Iterations()

	var (
		mu   sync.Mutex
		done int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for it := 1; it <= total; it++ {
		if gctx.Err() != nil {
			break
		}
		it := it
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := simulateIteration(tbl, it, NewStream(SubstreamSeed(e.opts.Seed, it))); err != nil {
				return err
			}
			if e.opts.Progress != nil {
				mu.Lock()
				done++
				e.opts.Progress(done, total)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func simulateIteration(tbl *Table, iteration int, z Normals) error {
	for row := 0; row < tbl.Rows(); row++ {
		res, err := Simulate(tbl.Observation(row), iteration, z)
		if err != nil {
			return fmt.Errorf("iteration %d: %w", iteration, err)
		}
		tbl.Write(row, &res)
	}
	return nil
}
