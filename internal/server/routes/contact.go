package routes

import (
	"github.com/osa911/portfolio/internal/api/handlers"

	"github.com/gin-gonic/gin"
)

// SetupContactRoutes configures the contact form endpoint
func SetupContactRoutes(router *gin.Engine, contact *handlers.ContactHandler, m *Middleware) {
	// Public endpoint with per-IP rate limiting (no auth required)
	router.POST("/contact", m.ContactRateLimit, contact.Submit)
}
