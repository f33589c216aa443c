package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"usermanager/internal/service"
)

// AnalyticsHandler handles dashboard statistics endpoints.
type AnalyticsHandler struct {
	svc service.AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(svc service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

// GetStats godoc
// @Summary Dashboard user statistics
// @Tags analytics
// @Produce json
// @Success 200 {object} service.Stats
// @Failure 500 {object} errors.ErrorResponse
// @Security TokenAuth
// @Router /analytics/stats [get]
func (h *AnalyticsHandler) GetStats(c echo.Context) error {
	stats, err := h.svc.Stats(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, stats)
}
