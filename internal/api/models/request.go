package models

import (
	"grant-simulation/internal/config"
	"grant-simulation/internal/data"
)

// SimulationRequest represents the request body for running a simulation
type SimulationRequest struct {
	Observations []data.ObservationRecord `json:"observations" binding:"required,min=1,dive"`
	// Predictions are optional; when present, grants are inferred.
	Predictions []data.PredictionRecord `json:"predictions,omitempty" binding:"omitempty,dive"`
	// Simulation overlays the server defaults; zero fields keep the default.
	Simulation config.SimulationConfig `json:"simulation,omitempty"`
	Options    SimulationOptions       `json:"options,omitempty"`
}

// SimulationOptions contains optional response parameters
type SimulationOptions struct {
	IncludeRows bool `json:"include_rows,omitempty"` // default: false
	// DateLayouts override the server's input date layouts.
	DateLayouts []string `json:"date_layouts,omitempty"`
}

// SchemaRequest represents the query of GET /api/v1/schema
type SchemaRequest struct {
	Iterations int  `form:"iterations" binding:"required,min=1,max=100000"`
	FullPath   bool `form:"full_path"`
}

// CoverageRequest represents the query of GET /api/v1/simulations/:id/coverage
type CoverageRequest struct {
	Extract string `form:"extract,omitempty"` // month_st, month_opt or year (default)
	Rank    bool   `form:"rank,omitempty"`    // sort by descending range
	Limit   int    `form:"limit,omitempty"`   // 0 = all
}
