package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/osa911/portfolio/internal/config"
	"github.com/osa911/portfolio/internal/logging"
	"github.com/osa911/portfolio/internal/server"
	"github.com/osa911/portfolio/internal/service"
	"github.com/osa911/portfolio/internal/telemetry"
	"github.com/osa911/portfolio/internal/version"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup happens before exit
func run() int {
	cfg, err := config.Load()
	if err != nil {
		logging.GetLogger().Error("Failed to load configuration: %v", err)
		return 1
	}

	// Configure and get logger
	if err := logging.InitLogger(logging.DefaultConfig(cfg.Log.Level, cfg.Log.File)); err != nil {
		logging.GetLogger().Error("Failed to initialize logger: %v", err)
		return 1
	}
	logger := logging.GetLogger()
	defer logger.Close()

	logger.Info("Starting portfolio server %s in %s mode", version.GetVersionString(), cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		logger.Error("Failed to initialize telemetry: %v", err)
		return 1
	}

	verifier, err := service.NewVerifier(cfg.Captcha)
	if err != nil {
		logger.Error("Failed to create verifier: %v", err)
		return 1
	}
	if cfg.CaptchaSecret() == "" {
		logger.Warn("%s secret key is not configured, every contact submission will fail verification", verifier.Name())
	}
	if cfg.Mail.Address == "" || cfg.Mail.Password == "" {
		logger.Warn("EMAIL_ADDRESS or EMAIL_PASSWORD is not set, contact messages cannot be delivered")
	}

	mailer := service.NewSMTPMailer(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Address, cfg.Mail.Password, cfg.Mail.Timeout)
	contactService := service.NewContactService(verifier, mailer, cfg.Mail.Address, logger)

	srv, err := server.NewServer(cfg, logger, contactService, verifier.Name())
	if err != nil {
		logger.Error("Failed to create server: %v", err)
		return 1
	}

	exitCode := 0
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Failed to start server: %v", err)
			exitCode = 1
		}
	case <-ctx.Done():
		logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	}
	stop()

	// The server has 5 seconds to finish the requests it is currently handling
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown: %v", err)
		exitCode = 1
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("Failed to flush traces: %v", err)
	}

	logger.Info("Server exiting")
	return exitCode
}
