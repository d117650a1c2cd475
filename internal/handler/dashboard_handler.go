package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wmou-edu/portal-api/internal/middleware"
	"github.com/wmou-edu/portal-api/internal/service"
	appErrors "github.com/wmou-edu/portal-api/pkg/errors"
	"github.com/wmou-edu/portal-api/pkg/response"
)

// DashboardHandler exposes the admin and student dashboard endpoints.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Admin returns the aggregated admin snapshot.
func (h *DashboardHandler) Admin(c *gin.Context) {
	snapshot, cached, err := h.dashboard.Admin(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cached)
	response.JSON(c, http.StatusOK, snapshot, nil, middleware.ExtractMeta(c))
}

// Student returns the caller's dashboard summary.
func (h *DashboardHandler) Student(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	summary, err := h.dashboard.Student(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
