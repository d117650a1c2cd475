package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wmou-edu/portal-api/internal/models"
	"github.com/wmou-edu/portal-api/internal/service"
	appErrors "github.com/wmou-edu/portal-api/pkg/errors"
	"github.com/wmou-edu/portal-api/pkg/response"
)

// AnnouncementHandler exposes announcement listings.
type AnnouncementHandler struct {
	announcements *service.AnnouncementService
	users         *service.UserService
}

// NewAnnouncementHandler constructs AnnouncementHandler.
func NewAnnouncementHandler(announcements *service.AnnouncementService, users *service.UserService) *AnnouncementHandler {
	return &AnnouncementHandler{announcements: announcements, users: users}
}

// List returns announcements visible to the caller. Admins see
// everything; students see department-scoped and global notices.
func (h *AnnouncementHandler) List(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	department := ""
	if claims.Role != models.RoleAdmin {
		user, err := h.users.Profile(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error(c, err)
			return
		}
		department = user.Department
	}

	announcements, err := h.announcements.ListVisible(c.Request.Context(), department)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, announcements, nil)
}
