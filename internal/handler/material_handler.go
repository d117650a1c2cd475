package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wmou-edu/portal-api/internal/models"
	"github.com/wmou-edu/portal-api/internal/service"
	appErrors "github.com/wmou-edu/portal-api/pkg/errors"
	"github.com/wmou-edu/portal-api/pkg/response"
)

// MaterialHandler exposes course material listings.
type MaterialHandler struct {
	materials *service.MaterialService
}

// NewMaterialHandler constructs MaterialHandler.
func NewMaterialHandler(materials *service.MaterialService) *MaterialHandler {
	return &MaterialHandler{materials: materials}
}

// ListByCourse returns a course's materials. Students must be
// registered for the course; admins bypass the gate.
func (h *MaterialHandler) ListByCourse(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	courseID := c.Param("id")
	var (
		materials []models.Material
		err       error
	)
	if claims.Role == models.RoleAdmin {
		materials, err = h.materials.ListForAdmin(c.Request.Context(), courseID)
	} else {
		materials, err = h.materials.ListForStudent(c.Request.Context(), claims.UserID, courseID)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, materials, nil)
}
