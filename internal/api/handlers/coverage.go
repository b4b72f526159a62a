package handlers

import (
	"fmt"
	"math"
	"net/http"

	"grant-simulation/internal/analysis"
	"grant-simulation/internal/api/models"
	"grant-simulation/internal/model"

	"github.com/gin-gonic/gin"
)

// GetCoverage handles GET /api/v1/simulations/:id/coverage
func (h *SimulationHandler) GetCoverage(c *gin.Context) {
	var req models.CoverageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err)
		return
	}
	kind, err := parseExtract(req.Extract)
	if err != nil {
		badRequest(c, "INVALID_EXTRACT", err)
		return
	}
	run, ok := h.lookup(c)
	if !ok {
		return
	}

	covs := analysis.CoverageOf(run.Table, kind)
	rate := analysis.OORRate(covs)
	if req.Rank {
		covs = analysis.RankByRange(covs)
	}
	if req.Limit > 0 && req.Limit < len(covs) {
		covs = covs[:req.Limit]
	}

	rows := make([]models.CoverageRow, len(covs))
	for i, cv := range covs {
		rows[i] = models.CoverageRow{
			Permno: cv.Key.Permno,
			FYear:  cv.Key.FYear,
			S1:     finite(cv.S1),
			Count:  cv.Count,
			Mean:   finite(cv.Mean),
			Std:    finite(cv.Std),
			Median: finite(cv.Median),
			Min:    finite(cv.Min),
			Max:    finite(cv.Max),
			Range:  finite(cv.Range),
			OOR:    cv.OOR,
		}
		if req.Rank {
			rows[i].Rank = i + 1
		}
	}
	c.JSON(http.StatusOK, models.CoverageResponse{
		ID:       run.ID,
		Extract:  string(kind),
		OORRate:  rate,
		Coverage: rows,
	})
}

func parseExtract(s string) (model.ExtractKind, error) {
	if s == "" {
		return model.ExtractYearEnd, nil
	}
	for _, k := range model.ExtractKinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown extract %q", s)
}

func finite(x float64) *float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil
	}
	return &x
}
