package routes

import (
	"github.com/osa911/portfolio/internal/api/middleware"
	"github.com/osa911/portfolio/internal/config"
	"github.com/osa911/portfolio/internal/logging"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Setup configures all route groups
func Setup(router *gin.Engine, h *Handlers, m *Middleware, logger *logging.Logger) {
	SetupHealthRoutes(router, h.Health)
	SetupContactRoutes(router, h.Contact, m)

	// Must be last: it claims every unmatched path
	SetupStaticRoutes(router, h.Static)

	logger.Info("All routes have been set up successfully")
}

// SetupGlobalMiddleware configures middleware that applies to all routes
func SetupGlobalMiddleware(router *gin.Engine, cfg *config.Config, logger *logging.Logger) {
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	router.Use(middleware.RequestLogger(logger, cfg.Log.Requests))
	router.Use(middleware.CORS(middleware.CORSConfig{AllowedOrigins: cfg.Origins()}))
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
}
