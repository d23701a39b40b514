package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/osa911/portfolio/internal/api/handlers"
	"github.com/osa911/portfolio/internal/api/middleware"
	"github.com/osa911/portfolio/internal/config"
	"github.com/osa911/portfolio/internal/logging"
	"github.com/osa911/portfolio/internal/server/routes"

	"github.com/gin-gonic/gin"
)

// Server represents the HTTP server
type Server struct {
	router     *gin.Engine
	cfg        *config.Config
	logger     *logging.Logger
	httpServer *http.Server
}

// NewServer creates a server whose /contact endpoint relays through contactService
func NewServer(cfg *config.Config, logger *logging.Logger, contactService handlers.ContactSubmitter, captchaProvider string) (*Server, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Disable Gin's default logger entirely because we're using our custom logger
	gin.DisableConsoleColor()
	gin.DefaultWriter = io.Discard

	// Create a new engine without default middleware
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	h := &routes.Handlers{
		Contact: handlers.NewContactHandler(contactService),
		Health:  handlers.NewHealthHandler(captchaProvider),
		Static:  handlers.NewStaticHandler(cfg.StaticDir),
	}
	m := &routes.Middleware{
		ContactRateLimit: middleware.RateLimitMiddleware(middleware.RateLimitConfig{
			RPS:   cfg.RateLimit.RPS,
			Burst: cfg.RateLimit.Burst,
		}),
	}

	routes.SetupGlobalMiddleware(router, cfg, logger)
	routes.Setup(router, h, m, logger)

	return &Server{
		router: router,
		cfg:    cfg,
		logger: logger,
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			// Covers the captcha check plus the SMTP session
			WriteTimeout: cfg.Captcha.Timeout + cfg.Mail.Timeout + 10*time.Second,
			IdleTimeout:  120 * time.Second,
		},
	}, nil
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("Listening on %s (static files from %s)", s.httpServer.Addr, s.cfg.StaticDir)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
