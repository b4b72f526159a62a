package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SimulationResponse represents the response from a simulation run
type SimulationResponse struct {
	ID      string            `json:"id"`
	Status  string            `json:"status"`
	Summary SimulationSummary `json:"summary"`
	Columns []string          `json:"columns,omitempty"`
	Rows    []ResultRow       `json:"rows,omitempty"`
}

// SimulationSummary contains run-level results
type SimulationSummary struct {
	Rows       int       `json:"rows"`
	Iterations int       `json:"iterations"`
	Seed       uint64    `json:"seed"`
	Policy     string    `json:"policy"`
	FullPath   bool      `json:"full_path"`
	CreatedAt  time.Time `json:"created_at"`
	// OORRate is the share of rows whose realized price fell outside the
	// simulated year-end range.
	OORRate float64 `json:"oor_rate"`

	Valuation *ValuationSummary `json:"valuation,omitempty"`
}

// ValuationSummary contains grant inference counts
type ValuationSummary struct {
	SingularOption int             `json:"singular_option"`
	SingularStock  int             `json:"singular_stock"`
	TotalPredicted decimal.Decimal `json:"total_predicted"`
}

// ResultRow represents one output row. Values align with
// SimulationResponse.Columns; cells use the CSV float format so NaN and
// +Inf survive JSON.
type ResultRow struct {
	Permno string   `json:"permno"`
	FYear  string   `json:"fyear"`
	Values []string `json:"values"`
}

// SchemaResponse lists the column layout for an iteration count
type SchemaResponse struct {
	Iterations int      `json:"iterations"`
	FullPath   bool     `json:"full_path"`
	Extracts   []string `json:"extracts"`
	Valuations []string `json:"valuations"`
}

// CoverageResponse represents per-row coverage of a cached run
type CoverageResponse struct {
	ID       string        `json:"id"`
	Extract  string        `json:"extract"`
	OORRate  float64       `json:"oor_rate"`
	Coverage []CoverageRow `json:"coverage"`
}

// CoverageRow is one observation's simulated distribution. Undefined
// statistics (e.g. std of a single iteration) are null.
type CoverageRow struct {
	Rank   int      `json:"rank,omitempty"`
	Permno string   `json:"permno"`
	FYear  string   `json:"fyear"`
	S1     *float64 `json:"S1"`
	Count  int      `json:"count"`
	Mean   *float64 `json:"mean"`
	Std    *float64 `json:"std"`
	Median *float64 `json:"median"`
	Min    *float64 `json:"min"`
	Max    *float64 `json:"max"`
	Range  *float64 `json:"range"`
	OOR    int      `json:"oor"`
}

// PolicyInfo describes a stream policy
type PolicyInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parallel    bool   `json:"parallel"`
	Default     bool   `json:"default,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
