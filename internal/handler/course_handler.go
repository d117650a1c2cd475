package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wmou-edu/portal-api/internal/models"
	"github.com/wmou-edu/portal-api/internal/service"
	appErrors "github.com/wmou-edu/portal-api/pkg/errors"
	"github.com/wmou-edu/portal-api/pkg/response"
)

// CourseHandler exposes the read-only course catalog.
type CourseHandler struct {
	courses *service.CourseService
	users   *service.UserService
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(courses *service.CourseService, users *service.UserService) *CourseHandler {
	return &CourseHandler{courses: courses, users: users}
}

// List returns catalog courses (admin view, unrestricted filters).
func (h *CourseHandler) List(c *gin.Context) {
	filter := models.CourseFilter{
		Department: c.Query("department"),
		Session:    c.Query("session"),
		Semester:   c.Query("semester"),
	}
	courses, err := h.courses.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// Get returns one course.
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.courses.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// ListForStudent returns the caller's department catalog annotated with
// payment state.
func (h *CourseHandler) ListForStudent(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	user, err := h.users.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	filter := models.CourseFilter{
		Department: user.Department,
		Session:    c.Query("session"),
		Semester:   c.Query("semester"),
	}
	courses, err := h.courses.ListForStudent(c.Request.Context(), claims.UserID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// RegisteredCourses returns the caller's enrollments.
func (h *CourseHandler) RegisteredCourses(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	registrations, err := h.courses.RegisteredCourses(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, registrations, nil)
}
