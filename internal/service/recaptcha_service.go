package service

import (
	"context"
	"fmt"
)

// RecaptchaEndpoint is Google's verification API
const RecaptchaEndpoint = "https://www.google.com/recaptcha/api/siteverify"

// RecaptchaService handles reCAPTCHA verification
type RecaptchaService struct {
	*siteverifyClient
	minScore float64
}

// NewRecaptchaService creates a new reCAPTCHA service. A positive minScore
// enables the reCAPTCHA v3 score check.
func NewRecaptchaService(secretKey string, minScore float64, opts ...VerifierOption) *RecaptchaService {
	return &RecaptchaService{
		siteverifyClient: newSiteverifyClient("recaptcha", RecaptchaEndpoint, secretKey, opts...),
		minScore:         minScore,
	}
}

func (s *RecaptchaService) Name() string {
	return "reCAPTCHA"
}

// Verify verifies a reCAPTCHA token
func (s *RecaptchaService) Verify(ctx context.Context, token, remoteIP string) VerificationResult {
	result := s.verify(ctx, token, remoteIP)
	if !result.Success || s.minScore <= 0 {
		return result
	}

	// Check score (for reCAPTCHA v3)
	if result.Score < s.minScore {
		result.Success = false
		result.ErrorCodes = append(result.ErrorCodes,
			fmt.Sprintf("%s: %.2f < %.2f", ErrorCodeScoreTooLow, result.Score, s.minScore))
	}
	return result
}
