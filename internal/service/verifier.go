package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/osa911/portfolio/internal/config"
)

// Synthetic error codes for failures that never reached the provider
const (
	ErrorCodeMissingSecret   = "missing-input-secret"
	ErrorCodeRequestError    = "request-error"
	ErrorCodeInvalidResponse = "invalid-response"
	ErrorCodeScoreTooLow     = "score-too-low"
)

// Verifier confirms that a client-side challenge token was produced by a human.
// Verify never fails: transport problems come back as a negative result.
type Verifier interface {
	Name() string
	Verify(ctx context.Context, token, remoteIP string) VerificationResult
}

// VerificationResult is the outcome of a single attestation check
type VerificationResult struct {
	Success    bool
	ErrorCodes []string
	Score      float64
	Hostname   string
}

// siteverifyResponse is the response shape shared by reCAPTCHA and Turnstile
type siteverifyResponse struct {
	Success     bool     `json:"success"`
	Score       *float64 `json:"score,omitempty"`
	Action      string   `json:"action"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes,omitempty"`
}

// VerifierOption customizes a siteverify client
type VerifierOption func(*siteverifyClient)

// WithEndpoint overrides the provider verification URL
func WithEndpoint(endpoint string) VerifierOption {
	return func(c *siteverifyClient) {
		c.endpoint = endpoint
	}
}

// WithHTTPClient replaces the HTTP client used to reach the provider
func WithHTTPClient(client *http.Client) VerifierOption {
	return func(c *siteverifyClient) {
		c.client = client
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client
func WithTimeout(timeout time.Duration) VerifierOption {
	return func(c *siteverifyClient) {
		c.client = &http.Client{Timeout: timeout}
	}
}

// siteverifyClient posts {secret, response[, remoteip]} to a siteverify endpoint
type siteverifyClient struct {
	provider string
	endpoint string
	secret   string
	client   *http.Client
}

func newSiteverifyClient(provider, endpoint, secret string, opts ...VerifierOption) *siteverifyClient {
	c := &siteverifyClient{
		provider: provider,
		endpoint: endpoint,
		secret:   secret,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *siteverifyClient) verify(ctx context.Context, token, remoteIP string) (result VerificationResult) {
	ctx, span := tracer.Start(ctx, c.provider+".verify")
	defer func() {
		span.SetAttributes(
			attribute.String("captcha.provider", c.provider),
			attribute.Bool("captcha.success", result.Success),
			attribute.StringSlice("captcha.error_codes", result.ErrorCodes),
		)
		if !result.Success {
			span.SetStatus(codes.Error, "verification failed")
		}
		span.End()
	}()

	if c.secret == "" {
		return VerificationResult{ErrorCodes: []string{ErrorCodeMissingSecret}}
	}

	if token == "" {
		return VerificationResult{ErrorCodes: []string{"missing-input-response"}}
	}

	// Prepare the request
	data := url.Values{}
	data.Set("secret", c.secret)
	data.Set("response", token)
	if remoteIP != "" {
		data.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return failedResult(ErrorCodeRequestError, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	// Send verification request
	resp, err := c.client.Do(req)
	if err != nil {
		return failedResult(ErrorCodeRequestError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return failedResult(ErrorCodeInvalidResponse, fmt.Errorf("status %d", resp.StatusCode))
	}

	// Parse response
	var body siteverifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return failedResult(ErrorCodeInvalidResponse, err)
	}

	result = VerificationResult{
		Success:    body.Success,
		ErrorCodes: body.ErrorCodes,
		Hostname:   body.Hostname,
	}
	if body.Score != nil {
		result.Score = *body.Score
	}
	return result
}

func failedResult(code string, err error) VerificationResult {
	return VerificationResult{
		ErrorCodes: []string{fmt.Sprintf("%s: %v", code, err)},
	}
}

// NewVerifier returns the attestation provider selected by configuration
func NewVerifier(cfg config.CaptchaConfig) (Verifier, error) {
	switch cfg.Provider {
	case config.CaptchaProviderRecaptcha:
		return NewRecaptchaService(cfg.RecaptchaSecret, cfg.MinScore, WithTimeout(cfg.Timeout)), nil
	case config.CaptchaProviderTurnstile:
		return NewTurnstileService(cfg.TurnstileSecret, WithTimeout(cfg.Timeout)), nil
	default:
		return nil, fmt.Errorf("unknown captcha provider %q", cfg.Provider)
	}
}
