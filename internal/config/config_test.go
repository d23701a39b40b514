package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setLogFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logs", "test.log")
	t.Setenv("LOG_FILE", path)
	return path
}

func TestParse_Defaults(t *testing.T) {
	logFile := setLogFile(t)

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "dist", cfg.StaticDir)
	assert.Equal(t, "smtp.mailbox.org", cfg.Mail.Host)
	assert.Equal(t, 465, cfg.Mail.Port)
	assert.Equal(t, 15*time.Second, cfg.Mail.Timeout)
	assert.Equal(t, CaptchaProviderRecaptcha, cfg.Captcha.Provider)
	assert.Equal(t, 10*time.Second, cfg.Captcha.Timeout)
	assert.Equal(t, logFile, cfg.Log.File)
	assert.DirExists(t, filepath.Dir(logFile))
}

func TestParse_MissingSecretIsNotAnError(t *testing.T) {
	setLogFile(t)
	t.Setenv("RECAPTCHA_SECRET_KEY", "")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Empty(t, cfg.CaptchaSecret())
}

func TestParse_Turnstile(t *testing.T) {
	setLogFile(t)
	t.Setenv("CAPTCHA_PROVIDER", " Turnstile ")
	t.Setenv("TURNSTILE_SECRET_KEY", "ts-secret")
	t.Setenv("RECAPTCHA_SECRET_KEY", "rc-secret")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, CaptchaProviderTurnstile, cfg.Captcha.Provider)
	assert.Equal(t, "ts-secret", cfg.CaptchaSecret())
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown provider", "CAPTCHA_PROVIDER", "hcaptcha"},
		{"port out of range", "SMTP_PORT", "70000"},
		{"non numeric port", "SMTP_PORT", "smtp"},
		{"zero smtp timeout", "SMTP_TIMEOUT", "0s"},
		{"zero burst", "CONTACT_RATE_BURST", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setLogFile(t)
			t.Setenv(tt.key, tt.val)

			_, err := Parse()
			assert.Error(t, err)
		})
	}
}

func TestOrigins(t *testing.T) {
	cfg := &Config{AllowedOrigins: "https://a.example, ,https://b.example "}
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Origins())

	cfg = &Config{}
	assert.Empty(t, cfg.Origins())
}
