package domain

import (
	"errors"
	"fmt"
)

// NotFoundError: the booking subject, booking or user does not exist. Without a Resource
// the wrapped error is the message.
type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	switch {
	case e.Resource != "":
		return e.Resource + " not found"
	case e.Err != nil:
		return e.Err.Error()
	}
	return "not found"
}

func (e NotFoundError) Unwrap() error { return e.Err }

// ValidationError is recovered locally: it blocks the current step and is shown inline.
type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

// ConflictError: the request clashes with the stored state (duplicate user, voucher for a
// booking that is not paid in cash).
type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// InternalError hides storage and configuration failures from callers; Err keeps the cause
// for logs.
type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

// BookingCreationFailed means no booking id was obtained. Nothing durable exists and the
// whole submission may be retried.
type BookingCreationFailed struct {
	Err error
}

func (e BookingCreationFailed) Error() string {
	if e.Err == nil {
		return "booking creation failed"
	}
	return fmt.Sprintf("booking creation failed: %v", e.Err)
}

func (e BookingCreationFailed) Unwrap() error { return e.Err }

// PaymentLinkUnavailable means the booking exists but no hosted payment URL was issued.
// The booking is left unpaid; nothing compensates it.
type PaymentLinkUnavailable struct {
	BookingID string
	Err       error
}

func (e PaymentLinkUnavailable) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("payment link unavailable for booking %s", e.BookingID)
	}
	return fmt.Sprintf("payment link unavailable for booking %s: %v", e.BookingID, e.Err)
}

func (e PaymentLinkUnavailable) Unwrap() error { return e.Err }

// UnauthorizedError is returned by the identity service for missing or bad credentials.
type UnauthorizedError struct {
	Msg string
	Err error
}

func (e UnauthorizedError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "unauthorized"
}

func (e UnauthorizedError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}

func IsUnauthorized(err error) bool {
	var target UnauthorizedError
	return errors.As(err, &target)
}

func IsBookingCreationFailed(err error) bool {
	var target BookingCreationFailed
	return errors.As(err, &target)
}

func IsPaymentLinkUnavailable(err error) bool {
	var target PaymentLinkUnavailable
	return errors.As(err, &target)
}
