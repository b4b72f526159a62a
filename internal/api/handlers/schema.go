package handlers

import (
	"net/http"

	"grant-simulation/internal/api/models"
	"grant-simulation/internal/simulation"

	"github.com/gin-gonic/gin"
)

// SchemaHandler describes the output layout and stream policies
type SchemaHandler struct{}

func NewSchemaHandler() *SchemaHandler {
	return &SchemaHandler{}
}

// GetSchema handles GET /api/v1/schema
func (h *SchemaHandler) GetSchema(c *gin.Context) {
	var req models.SchemaRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err)
		return
	}
	s, err := simulation.NewSchema(req.Iterations, req.FullPath)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SchemaResponse{
		Iterations: s.Iterations(),
		FullPath:   s.FullPath(),
		Extracts:   simulation.Names(s.ExtractColumns()),
		Valuations: simulation.Names(s.ValuationColumns()),
	})
}

// ListPolicies handles GET /api/v1/policies
func (h *SchemaHandler) ListPolicies(c *gin.Context) {
	policies := []models.PolicyInfo{
		{
			Name:        string(simulation.PolicyShared),
			Description: "One seeded stream for the whole run, consumed iteration by iteration and row by row. Sequential.",
			Default:     true,
		},
		{
			Name:        string(simulation.PolicySubstream),
			Description: "Each iteration draws from its own stream derived from the seed and iteration index. Iterations run in parallel; output does not depend on the worker count.",
			Parallel:    true,
		},
	}
	c.JSON(http.StatusOK, gin.H{"policies": policies})
}
