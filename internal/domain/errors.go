package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness conflict on insert.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotAuthenticated indicates an operation that requires a customer
	// identity was attempted without one. The operation is aborted, never
	// queued or executed under a guest identity.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrEmptyCart indicates a checkout was attempted with no line items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidQuantity indicates a quantity below 1. Removing a line via
	// quantity zero is disallowed; callers must use RemoveItem.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrInvalidTransition indicates a payment status change that the order
	// lifecycle does not allow.
	ErrInvalidTransition = errors.New("invalid payment status transition")
)

// ValidationError reports a rejected input field. It is handled at the HTTP
// boundary as a user-visible message, never as a crash.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Validation builds a ValidationError.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
