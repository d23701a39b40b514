package service

import "context"

// TurnstileEndpoint is Cloudflare's verification API
const TurnstileEndpoint = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

// TurnstileService handles Cloudflare Turnstile verification
type TurnstileService struct {
	*siteverifyClient
}

// NewTurnstileService creates a new Turnstile service
func NewTurnstileService(secretKey string, opts ...VerifierOption) *TurnstileService {
	return &TurnstileService{
		siteverifyClient: newSiteverifyClient("turnstile", TurnstileEndpoint, secretKey, opts...),
	}
}

func (s *TurnstileService) Name() string {
	return "Turnstile"
}

// Verify verifies a Turnstile token
func (s *TurnstileService) Verify(ctx context.Context, token, remoteIP string) VerificationResult {
	return s.verify(ctx, token, remoteIP)
}
