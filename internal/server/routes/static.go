package routes

import (
	"github.com/osa911/portfolio/internal/api/handlers"

	"github.com/gin-gonic/gin"
)

// SetupStaticRoutes serves the SPA for every path no other route claims
func SetupStaticRoutes(router *gin.Engine, static *handlers.StaticHandler) {
	router.NoRoute(static.Serve)
}
