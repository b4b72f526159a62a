package handlers

import (
	"context"
	"errors"
	"net/http"

	"grant-simulation/internal/api/models"
	"grant-simulation/internal/model"

	"github.com/gin-gonic/gin"
)

func badRequest(c *gin.Context, code string, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: err.Error(),
		},
	})
}

// writeError maps domain errors to HTTP statuses. Row context is reported in
// details when the error carries it.
func writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "SIMULATION_ERROR"
	details := map[string]interface{}{}

	var (
		pe *model.ParamError
		se *model.SchemaError
	)
	switch {
	case errors.As(err, &pe):
		status, code = http.StatusBadRequest, "INVALID_PARAMETER"
		details["parameter"] = pe.Name
		if !pe.Row.IsZero() {
			details["row"] = pe.Row.String()
		}
	case errors.As(err, &se):
		status, code = http.StatusBadRequest, "SCHEMA_ERROR"
		details["field"] = se.Field
		if !se.Row.IsZero() {
			details["row"] = se.Row.String()
		}
	case errors.Is(err, model.ErrInvalidParameter):
		status, code = http.StatusBadRequest, "INVALID_PARAMETER"
	case errors.Is(err, model.ErrIndexOutOfRange):
		status, code = http.StatusBadRequest, "INDEX_OUT_OF_RANGE"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status, code = http.StatusServiceUnavailable, "CANCELLED"
	}
	if len(details) == 0 {
		details = nil
	}
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: err.Error(),
			Details: details,
		},
	})
}
