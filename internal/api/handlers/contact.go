package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/osa911/portfolio/internal/api/dto/v1/contact"
	"github.com/osa911/portfolio/internal/service"
	"github.com/osa911/portfolio/internal/utils"

	"github.com/gin-gonic/gin"
)

// ContactSubmitter relays a contact form submission
type ContactSubmitter interface {
	Submit(ctx context.Context, sub service.Submission) error
}

type ContactHandler struct {
	contactService ContactSubmitter
}

func NewContactHandler(contactService ContactSubmitter) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
	}
}

func (h *ContactHandler) Submit(c *gin.Context) {
	var req contact.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleAPIError(c, err, http.StatusBadRequest, contact.MessageInvalidBody)
		return
	}

	err := h.contactService.Submit(c.Request.Context(), service.Submission{
		Name:              req.Name,
		Email:             req.Email,
		Message:           req.Message,
		VerificationToken: req.Token(),
		RemoteIP:          c.ClientIP(),
	})
	if err != nil {
		status, message := contactErrorResponse(err)
		utils.HandleAPIError(c, err, status, message)
		return
	}

	utils.HandleMessage(c, contact.MessageSent)
}

// contactErrorResponse maps service errors to a status and a generic message
func contactErrorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrEmptyMessage):
		return http.StatusBadRequest, contact.MessageEmptyMessage
	case errors.Is(err, service.ErrMissingToken):
		return http.StatusBadRequest, contact.MessageMissingToken
	case errors.Is(err, service.ErrVerification):
		return http.StatusBadRequest, contact.MessageVerifyFailed
	case errors.Is(err, service.ErrDelivery):
		return http.StatusInternalServerError, contact.MessageDeliveryFail
	default:
		return http.StatusInternalServerError, contact.MessageInternalError
	}
}
