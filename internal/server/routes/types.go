package routes

import (
	"github.com/osa911/portfolio/internal/api/handlers"

	"github.com/gin-gonic/gin"
)

// Handlers contains all the route handlers
type Handlers struct {
	Contact *handlers.ContactHandler
	Health  *handlers.HealthHandler
	Static  *handlers.StaticHandler
}

// Middleware contains route-specific middleware
type Middleware struct {
	ContactRateLimit gin.HandlerFunc
}
