package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"grant-simulation/internal/analysis"
	"grant-simulation/internal/api/models"
	"grant-simulation/internal/config"
	"grant-simulation/internal/data"
	"grant-simulation/internal/model"
	"grant-simulation/internal/simulation"
	"grant-simulation/internal/valuation"

	"github.com/gin-gonic/gin"
	"github.com/phuslu/log"
)

// SimulationHandler handles simulation runs and retrieval of cached results
type SimulationHandler struct {
	defaults *config.Config
	cache    *data.RunCache
	logger   *log.Logger
}

// NewSimulationHandler creates a handler. Requests overlay cfg; finished runs
// are stored in cache.
func NewSimulationHandler(cfg *config.Config, cache *data.RunCache, logger *log.Logger) *SimulationHandler {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = &log.DefaultLogger
	}
	return &SimulationHandler{defaults: cfg, cache: cache, logger: logger}
}

// RunSimulation handles POST /api/v1/simulations
func (h *SimulationHandler) RunSimulation(c *gin.Context) {
	var req models.SimulationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err)
		return
	}

	cfg := *h.defaults
	cfg.Simulation = config.MergeSimulation(h.defaults.Simulation, req.Simulation)
	if err := cfg.Validate(); err != nil {
		badRequest(c, "INVALID_CONFIG", err)
		return
	}

	layouts := cfg.Input.DateLayouts
	if len(req.Options.DateLayouts) > 0 {
		layouts = req.Options.DateLayouts
	}
	panel, err := data.PanelFromRecords(req.Observations, layouts)
	if err != nil {
		writeError(c, err)
		return
	}

	var inputs map[model.FirmYear]model.ValuationInput
	if len(req.Predictions) > 0 {
		if inputs, err = data.ValuationInputs(req.Predictions); err != nil {
			writeError(c, err)
			return
		}
	}

	opts := cfg.Simulation.Options()
	tbl, err := simulation.New(opts, h.logger).Run(c.Request.Context(), panel)
	if err != nil {
		writeError(c, err)
		return
	}

	var rep *valuation.Report
	if inputs != nil {
		r, err := valuation.New(cfg.Valuation.Workers, h.logger).InferGrants(c.Request.Context(), tbl, inputs)
		if err != nil {
			writeError(c, err)
			return
		}
		rep = &r
	}

	run := h.cache.Put(tbl, rep)
	h.logger.Info().
		Str("id", run.ID).
		Int("rows", tbl.Rows()).
		Int("iterations", opts.Iterations).
		Bool("valued", rep != nil).
		Msg("SimulationHandler: run stored")

	c.JSON(http.StatusOK, buildResponse(run, opts, req.Options.IncludeRows))
}

// GetTable handles GET /api/v1/simulations/:id/table
func (h *SimulationHandler) GetTable(c *gin.Context) {
	run, ok := h.lookup(c)
	if !ok {
		return
	}
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", run.ID+".csv"))
	c.Status(http.StatusOK)
	if err := simulation.WriteTable(c.Writer, run.Table, h.defaults.Output.Layouts()); err != nil {
		h.logger.Error().Err(err).Str("id", run.ID).Msg("SimulationHandler: writing table failed")
	}
}

func (h *SimulationHandler) lookup(c *gin.Context) (*data.Run, bool) {
	id := c.Param("id")
	run, ok := h.cache.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "RUN_NOT_FOUND",
				Message: "no run with this id, or it has expired",
				Details: map[string]interface{}{"id": id},
			},
		})
		return nil, false
	}
	return run, true
}

func buildResponse(run *data.Run, opts simulation.Options, includeRows bool) models.SimulationResponse {
	tbl := run.Table
	resp := models.SimulationResponse{
		ID:     run.ID,
		Status: "completed",
		Summary: models.SimulationSummary{
			Rows:       tbl.Rows(),
			Iterations: tbl.Schema.Iterations(),
			Seed:       opts.Seed,
			Policy:     string(opts.Policy),
			FullPath:   tbl.Schema.FullPath(),
			CreatedAt:  run.CreatedAt,
			OORRate:    analysis.OORRate(analysis.CoverageOf(tbl, model.ExtractYearEnd)),
		},
	}
	if run.Report != nil {
		resp.Summary.Valuation = &models.ValuationSummary{
			SingularOption: run.Report.SingularOption,
			SingularStock:  run.Report.SingularStock,
			TotalPredicted: run.Report.TotalPredicted,
		}
	}
	if !includeRows {
		return resp
	}

	cols := tbl.Schema.ExtractColumns()
	if tbl.Valued() {
		cols = tbl.Schema.Columns()
	}
	resp.Columns = simulation.Names(cols)
	resp.Rows = make([]models.ResultRow, tbl.Rows())
	for row := range resp.Rows {
		obs := tbl.Observation(row)
		vals := tbl.ExtractRow(row)
		if tbl.Valued() {
			vals = append(vals, tbl.ValuationRow(row)...)
		}
		cells := make([]string, len(vals))
		for i, v := range vals {
			cells[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		resp.Rows[row] = models.ResultRow{Permno: obs.Key.Permno, FYear: obs.Key.FYear, Values: cells}
	}
	return resp
}
