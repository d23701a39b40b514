package service

import (
	"errors"
	"fmt"
)

// Sentinel errors for service layer
var (
	ErrValidation   = errors.New("validation error")
	ErrVerification = errors.New("verification error")
	ErrDelivery     = errors.New("delivery error")
)

// Validation failures of a contact submission
var (
	ErrEmptyMessage = fmt.Errorf("%w: empty message", ErrValidation)
	ErrMissingToken = fmt.Errorf("%w: missing token", ErrValidation)
)
