package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error kinds. Every error returned by the lifecycle, messaging and session
// packages matches exactly one of these via errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrTransition   = errors.New("invalid status transition")
	ErrPayment      = errors.New("payment failed")
	ErrNetwork      = errors.New("remote service unavailable")
	ErrAuth         = errors.New("not authenticated")
	ErrNotFound     = errors.New("not found")
	ErrRejected     = errors.New("rejected by service")
	ErrNotConfirmed = errors.New("action not confirmed")
)

// ValidationError is a pre-submission guard failure.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// TransitionError is an illegal status change, including a stale double cancel.
type TransitionError struct {
	BookingID uuid.UUID
	From      BookingStatus
	To        BookingStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("booking %s cannot move from %s to %s", e.BookingID, e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrTransition
}

// PaymentError wraps a gateway failure. The booking stays pending.
type PaymentError struct {
	BookingID uuid.UUID
	Err       error
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("payment for booking %s failed: %v", e.BookingID, e.Err)
}

func (e *PaymentError) Is(target error) bool {
	return target == ErrPayment
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}

// Kind names the error kind of err for logs, metrics and response codes.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrTransition):
		return "transition"
	case errors.Is(err, ErrPayment):
		return "payment"
	case errors.Is(err, ErrAuth):
		return "auth"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrRejected):
		return "rejected"
	case errors.Is(err, ErrNotConfirmed):
		return "not_confirmed"
	case errors.Is(err, ErrNetwork):
		return "network"
	default:
		return "internal"
	}
}
