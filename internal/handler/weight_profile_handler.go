package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-assign-api/internal/service"
	appErrors "github.com/noah-isme/edu-assign-api/pkg/errors"
	"github.com/noah-isme/edu-assign-api/pkg/response"
)

// WeightProfileHandler wires weight profile services to HTTP routes.
type WeightProfileHandler struct {
	profiles *service.WeightProfileService
}

// NewWeightProfileHandler constructs a new WeightProfileHandler.
func NewWeightProfileHandler(profiles *service.WeightProfileService) *WeightProfileHandler {
	return &WeightProfileHandler{profiles: profiles}
}

// List returns every weight profile.
func (h *WeightProfileHandler) List(c *gin.Context) {
	profiles, err := h.profiles.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profiles, nil)
}

// Get returns one weight profile by id.
func (h *WeightProfileHandler) Get(c *gin.Context) {
	profile, err := h.profiles.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Create registers a new weight profile.
func (h *WeightProfileHandler) Create(c *gin.Context) {
	var req service.WeightProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid weight profile payload"))
		return
	}
	profile, err := h.profiles.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, profile)
}

// Update modifies an existing weight profile.
func (h *WeightProfileHandler) Update(c *gin.Context) {
	var req service.WeightProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid weight profile payload"))
		return
	}
	profile, err := h.profiles.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Delete removes a weight profile.
func (h *WeightProfileHandler) Delete(c *gin.Context) {
	if err := h.profiles.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
