package common

// MessageResponse is the body of a successful request
type MessageResponse struct {
	Success string `json:"success"`
}

// ErrorResponse is the body of a failed request. Message is always a generic,
// client-safe string; error details stay in the server log.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewMessageResponse creates a new success response with a simple message
func NewMessageResponse(message string) MessageResponse {
	return MessageResponse{Success: message}
}

// NewErrorResponse creates a new error response
func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Error: message}
}
