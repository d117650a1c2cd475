package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wmou-edu/portal-api/internal/middleware"
	"github.com/wmou-edu/portal-api/internal/models"
	"github.com/wmou-edu/portal-api/internal/service"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth          *AuthHandler
	Users         *UserHandler
	Courses       *CourseHandler
	Payments      *PaymentHandler
	Dashboard     *DashboardHandler
	Results       *ResultHandler
	Materials     *MaterialHandler
	Announcements *AnnouncementHandler
}

// RegisterRoutes mounts the portal API under the given prefix.
func RegisterRoutes(r *gin.Engine, prefix string, auth *service.AuthService, metrics *service.MetricsService, h Handlers) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group(prefix)
	api.POST("/auth/login", h.Auth.Login)

	// token-authenticated downloads; the signed token is the credential
	api.GET("/files/receipts", h.Payments.DownloadReceipt)

	authed := api.Group("")
	authed.Use(middleware.JWT(auth))
	{
		authed.POST("/auth/change-password", h.Auth.ChangePassword)
		authed.GET("/profile", h.Users.Profile)
		authed.PUT("/profile", h.Users.UpdateProfile)
		authed.POST("/profile/picture", h.Users.UploadProfilePicture)
		authed.GET("/announcements", h.Announcements.List)
		authed.GET("/courses/:id/materials", h.Materials.ListByCourse)
		authed.GET("/payments/:id/receipt-link", h.Payments.ReceiptLink)
	}

	student := api.Group("/student")
	student.Use(middleware.JWT(auth), middleware.RequireRoles(models.RoleStudent))
	{
		student.GET("/dashboard", h.Dashboard.Student)
		student.GET("/courses", h.Courses.ListForStudent)
		student.GET("/registered-courses", h.Courses.RegisteredCourses)
		student.POST("/payments", h.Payments.Submit)
		student.POST("/payments/bulk", h.Payments.SubmitBulk)
		student.GET("/results", h.Results.ListMine)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.JWT(auth), middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/dashboard", h.Dashboard.Admin)
		admin.GET("/users", h.Users.List)
		admin.PATCH("/users/:id/status", h.Users.UpdateStatus)
		admin.GET("/courses", h.Courses.List)
		admin.GET("/courses/:id", h.Courses.Get)
		admin.GET("/payments", h.Payments.List)
		admin.PATCH("/payments/:id/review", h.Payments.Review)
		admin.GET("/payments/export", h.Payments.Export)
	}
}
