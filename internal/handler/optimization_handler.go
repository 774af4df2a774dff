package handler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-assign-api/internal/dto"
	"github.com/noah-isme/edu-assign-api/internal/service"
	appErrors "github.com/noah-isme/edu-assign-api/pkg/errors"
	"github.com/noah-isme/edu-assign-api/pkg/response"
)

type optimizationRunner interface {
	Run(ctx context.Context, req service.OptimizeRequest) (*dto.OptimizationResponse, error)
	Preview(ctx context.Context, profileName string) (*dto.OptimizationResponse, error)
}

// OptimizationHandler wires the optimization service to HTTP routes.
type OptimizationHandler struct {
	optimizer optimizationRunner
}

// NewOptimizationHandler constructs a new OptimizationHandler.
func NewOptimizationHandler(optimizer optimizationRunner) *OptimizationHandler {
	return &OptimizationHandler{optimizer: optimizer}
}

// Run executes one optimization over the current data. The body is optional;
// an empty body selects the default weight profile. With persist=true the
// produced assignments are stored.
func (h *OptimizationHandler) Run(c *gin.Context) {
	var req service.OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid optimization payload"))
		return
	}
	req.Persist = strings.EqualFold(c.Query("persist"), "true")

	result, err := h.optimizer.Run(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Preview returns the latest cached run for a weight profile.
func (h *OptimizationHandler) Preview(c *gin.Context) {
	result, err := h.optimizer.Preview(c.Request.Context(), c.Query("profile"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
