package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-assign-api/internal/dto"
	internalmiddleware "github.com/noah-isme/edu-assign-api/internal/middleware"
	"github.com/noah-isme/edu-assign-api/internal/models"
	"github.com/noah-isme/edu-assign-api/internal/service"
	appErrors "github.com/noah-isme/edu-assign-api/pkg/errors"
)

type optimizationRunnerMock struct {
	captured   service.OptimizeRequest
	runResult  *dto.OptimizationResponse
	runErr     error
	previewErr error
}

func (m *optimizationRunnerMock) Run(ctx context.Context, req service.OptimizeRequest) (*dto.OptimizationResponse, error) {
	m.captured = req
	if m.runErr != nil {
		return nil, m.runErr
	}
	return m.runResult, nil
}

func (m *optimizationRunnerMock) Preview(ctx context.Context, profileName string) (*dto.OptimizationResponse, error) {
	if m.previewErr != nil {
		return nil, m.previewErr
	}
	return &dto.OptimizationResponse{Profile: profileName}, nil
}

func TestOptimizationRunHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &optimizationRunnerMock{runResult: &dto.OptimizationResponse{Profile: "balanced"}}
	handler := NewOptimizationHandler(mockSvc)

	req, _ := http.NewRequest(http.MethodPost, "/optimize?persist=true", bytes.NewReader([]byte(`{"profile":"balanced"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Run(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "balanced", mockSvc.captured.Profile)
	require.True(t, mockSvc.captured.Persist)
}

func TestOptimizationRunHandlerEmptyBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &optimizationRunnerMock{runResult: &dto.OptimizationResponse{Profile: "balanced"}}
	handler := NewOptimizationHandler(mockSvc)

	req, _ := http.NewRequest(http.MethodPost, "/optimize", bytes.NewReader(nil))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Run(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, mockSvc.captured.Profile)
	require.False(t, mockSvc.captured.Persist)
}

func TestOptimizationRunHandlerMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewOptimizationHandler(&optimizationRunnerMock{})

	req, _ := http.NewRequest(http.MethodPost, "/optimize", bytes.NewReader([]byte(`{"profile":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Run(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOptimizationRunHandlerServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &optimizationRunnerMock{runErr: appErrors.Clone(appErrors.ErrPreconditionFailed, "no active teachers available for optimization")}
	handler := NewOptimizationHandler(mockSvc)

	req, _ := http.NewRequest(http.MethodPost, "/optimize", bytes.NewReader(nil))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Run(c)

	require.Equal(t, http.StatusPreconditionFailed, w.Code)
}

func TestOptimizationPreviewHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewOptimizationHandler(&optimizationRunnerMock{})

	req, _ := http.NewRequest(http.MethodGet, "/optimize/preview?profile=balanced", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Preview(c)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestOptimizationPreviewHandlerMiss(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewOptimizationHandler(&optimizationRunnerMock{previewErr: appErrors.ErrNotFound})

	req, _ := http.NewRequest(http.MethodGet, "/optimize/preview", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Preview(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestOptimizationRunForbiddenForViewers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewOptimizationHandler(&optimizationRunnerMock{})
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(internalmiddleware.ContextUserKey, &models.JWTClaims{UserID: "u-1", Role: models.RoleViewer})
		c.Next()
	})
	router.POST("/optimize", internalmiddleware.RequireRoles(models.RoleAdmin, models.RolePlanner), handler.Run)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/optimize", bytes.NewReader(nil))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestOptimizationRunUnauthorizedWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewOptimizationHandler(&optimizationRunnerMock{})
	router := gin.New()
	router.POST("/optimize", internalmiddleware.RequireRoles(models.RoleAdmin), handler.Run)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/optimize", bytes.NewReader(nil))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
