package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/wmou-edu/portal-api/internal/middleware"
	"github.com/wmou-edu/portal-api/internal/models"
)

// currentClaims returns the authenticated caller's claims, or nil when
// the route was reached without the JWT middleware.
func currentClaims(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}
