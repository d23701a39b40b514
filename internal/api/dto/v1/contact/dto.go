package contact

// ContactRequest represents a contact form submission. Every field is
// optional at the JSON level and defaults to the empty string.
type ContactRequest struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	Message           string `json:"message"`
	VerificationToken string `json:"verification_token"`

	// Provider-specific field names sent by older frontends
	RecaptchaToken string `json:"recaptcha_token"`
	TurnstileToken string `json:"turnstile_token"`
}

// Token returns the first non-empty challenge token
func (r *ContactRequest) Token() string {
	for _, token := range []string{r.VerificationToken, r.RecaptchaToken, r.TurnstileToken} {
		if token != "" {
			return token
		}
	}
	return ""
}

// Client-facing messages
const (
	MessageSent          = "Message sent successfully!"
	MessageInvalidBody   = "Invalid request body"
	MessageEmptyMessage  = "Message cannot be empty."
	MessageMissingToken  = "Please complete the verification."
	MessageVerifyFailed  = "Verification failed. Please try again."
	MessageDeliveryFail  = "Failed to send message. Try again later."
	MessageInternalError = "Internal server error"
)
