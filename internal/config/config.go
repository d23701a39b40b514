package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Supported attestation providers
const (
	CaptchaProviderRecaptcha = "recaptcha"
	CaptchaProviderTurnstile = "turnstile"
)

// Config holds all configuration for the application
type Config struct {
	// Server Configuration
	Environment    string `env:"ENV" envDefault:"development"`
	Port           string `env:"PORT" envDefault:"5000"`
	StaticDir      string `env:"STATIC_DIR" envDefault:"dist"`
	AllowedOrigins string `env:"ALLOWED_ORIGINS"`
	// Proxies whose X-Forwarded-For header is trusted for the client IP
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	Log       LogConfig
	Mail      MailConfig
	Captcha   CaptchaConfig
	RateLimit RateLimitConfig
	Telemetry TelemetryConfig
}

// LogConfig holds logging-related configuration
type LogConfig struct {
	Level    string `env:"LOG_LEVEL" envDefault:"info"`
	File     string `env:"LOG_FILE"`
	Requests bool   `env:"LOG_REQUESTS" envDefault:"false"`
}

// MailConfig holds the operator mailbox and the SMTP relay settings
type MailConfig struct {
	Address  string        `env:"EMAIL_ADDRESS"`
	Password string        `env:"EMAIL_PASSWORD"`
	Host     string        `env:"SMTP_HOST" envDefault:"smtp.mailbox.org"`
	Port     int           `env:"SMTP_PORT" envDefault:"465"`
	Timeout  time.Duration `env:"SMTP_TIMEOUT" envDefault:"15s"`
}

// CaptchaConfig selects the attestation provider and holds its secrets
type CaptchaConfig struct {
	Provider        string        `env:"CAPTCHA_PROVIDER" envDefault:"recaptcha"`
	RecaptchaSecret string        `env:"RECAPTCHA_SECRET_KEY"`
	TurnstileSecret string        `env:"TURNSTILE_SECRET_KEY"`
	Timeout         time.Duration `env:"CAPTCHA_TIMEOUT" envDefault:"10s"`
	// MinScore only applies to reCAPTCHA v3 responses. Zero disables the check.
	MinScore float64 `env:"RECAPTCHA_MIN_SCORE" envDefault:"0"`
}

// RateLimitConfig limits contact submissions per client IP
type RateLimitConfig struct {
	RPS   float64 `env:"CONTACT_RATE_RPS" envDefault:"0.2"`
	Burst int     `env:"CONTACT_RATE_BURST" envDefault:"5"`
}

// TelemetryConfig configures the OTLP trace exporter. An empty endpoint disables tracing.
type TelemetryConfig struct {
	Endpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Insecure    bool   `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"false"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"portfolio"`
}

// Load loads the configuration from environment variables and .env files
func Load() (*Config, error) {
	envLocations := []string{".env"}

	// If ENV is set, load that specific file first. godotenv never overwrites
	// variables that are already set, so the first file wins.
	if envName := os.Getenv("ENV"); envName != "" {
		envLocations = append([]string{fmt.Sprintf(".env.%s", envName)}, envLocations...)
	}

	for _, loc := range envLocations {
		_ = godotenv.Load(loc)
	}

	return Parse()
}

// Parse builds the configuration from the current process environment only
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.Captcha.Provider = strings.ToLower(strings.TrimSpace(cfg.Captcha.Provider))
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Set default log file if not set
	if cfg.Log.File == "" {
		if cfg.IsProduction() {
			cfg.Log.File = "/app/logs/portfolio.log"
		} else {
			cfg.Log.File = "./logs/portfolio.log"
		}
	}

	// Ensure log directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	return cfg, nil
}

// Validate checks settings that would make the server unusable.
// A missing captcha secret is not an error: it surfaces as a failed verification.
func (c *Config) Validate() error {
	switch c.Captcha.Provider {
	case CaptchaProviderRecaptcha, CaptchaProviderTurnstile:
	default:
		return fmt.Errorf("unknown captcha provider %q (expected %q or %q)",
			c.Captcha.Provider, CaptchaProviderRecaptcha, CaptchaProviderTurnstile)
	}

	if c.Mail.Port <= 0 || c.Mail.Port > 65535 {
		return fmt.Errorf("invalid SMTP port: %d", c.Mail.Port)
	}

	if c.Mail.Timeout <= 0 {
		return fmt.Errorf("SMTP timeout must be positive")
	}

	if c.Captcha.Timeout <= 0 {
		return fmt.Errorf("captcha timeout must be positive")
	}

	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("contact rate limit must be positive")
	}

	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// CaptchaSecret returns the secret for the selected provider
func (c *Config) CaptchaSecret() string {
	if c.Captcha.Provider == CaptchaProviderTurnstile {
		return c.Captcha.TurnstileSecret
	}
	return c.Captcha.RecaptchaSecret
}

// Origins returns the parsed ALLOWED_ORIGINS list
func (c *Config) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
