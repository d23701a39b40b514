package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/osa911/portfolio/internal/logging"
	"github.com/osa911/portfolio/internal/validation"
)

var tracer = otel.Tracer("github.com/osa911/portfolio/internal/service")

// Submission is a single contact form submission. It is never stored.
type Submission struct {
	Name              string
	Email             string
	Message           string `validate:"notblank"`
	VerificationToken string `validate:"notblank"`
	RemoteIP          string
}

// ContactService validates a submission, checks it with the attestation
// provider and relays it to the operator mailbox
type ContactService struct {
	verifier Verifier
	mailer   Mailer
	mailbox  string
	validate *validator.Validate
	logger   *logging.Logger
}

// NewContactService creates a contact relay delivering to mailbox
func NewContactService(verifier Verifier, mailer Mailer, mailbox string, logger *logging.Logger) *ContactService {
	return &ContactService{
		verifier: verifier,
		mailer:   mailer,
		mailbox:  mailbox,
		validate: validation.New(),
		logger:   logger,
	}
}

// Submit runs validation, verification and delivery in that order, each
// attempted at most once. The returned error wraps ErrValidation,
// ErrVerification or ErrDelivery.
func (s *ContactService) Submit(ctx context.Context, sub Submission) error {
	ctx, span := tracer.Start(ctx, "contact.submit")
	defer span.End()

	if err := s.validateSubmission(sub); err != nil {
		span.SetAttributes(attribute.String("contact.outcome", "invalid"))
		return err
	}

	result := s.verifier.Verify(ctx, sub.VerificationToken, sub.RemoteIP)
	if !result.Success {
		span.SetAttributes(attribute.String("contact.outcome", "unverified"))
		s.logger.Warn("%s verification failed for %s: %v", s.verifier.Name(), sub.RemoteIP, result.ErrorCodes)
		return fmt.Errorf("%w: %s rejected token", ErrVerification, s.verifier.Name())
	}

	msg := ComposeContactMessage(s.mailbox, sub)
	if err := s.mailer.Send(ctx, msg); err != nil {
		span.SetAttributes(attribute.String("contact.outcome", "undelivered"))
		s.logger.Error("Failed to relay contact message from %q: %v", sub.Email, err)
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}

	span.SetAttributes(attribute.String("contact.outcome", "sent"))
	s.logger.Info("Relayed contact message from %q", sub.Email)
	return nil
}

// validateSubmission reports an empty message before a missing token
func (s *ContactService) validateSubmission(sub Submission) error {
	err := s.validate.Struct(sub)
	if err == nil {
		return nil
	}

	fieldErrs := validation.FormatValidationError(err)
	for _, fieldErr := range fieldErrs {
		if fieldErr.Field == "Message" {
			return ErrEmptyMessage
		}
	}
	if len(fieldErrs) > 0 {
		return ErrMissingToken
	}
	return errors.Join(ErrValidation, err)
}

// ComposeContactMessage builds the email sent to the operator mailbox
func ComposeContactMessage(mailbox string, sub Submission) Message {
	return Message{
		From:    mailbox,
		To:      mailbox,
		Subject: fmt.Sprintf("Portfolio Contact from %s", sub.Name),
		Body:    fmt.Sprintf("Name: %s\nEmail: %s\n\nMessage:\n%s", sub.Name, sub.Email, sub.Message),
	}
}
