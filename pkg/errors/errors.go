package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthorized
	ErrForbidden
	ErrInternal
)

// Scheduling error codes. Every booking rejection carries exactly one of
// these so the caller can tell the user why the slot was refused.
const (
	ErrInvalidTime ErrorCode = iota + 2000
	ErrInvalidService
	ErrInvalidDoctor
	ErrSlotOutsideAvailability
	ErrSlotTaken
	ErrPastDateTime
	ErrStorageUnavailable
)

// Error constructors
func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewBadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Code:    ErrForbidden,
		Message: message,
	}
}

func InvalidTime(message string) *AppError {
	return &AppError{Code: ErrInvalidTime, Message: message}
}

func InvalidService(message string) *AppError {
	return &AppError{Code: ErrInvalidService, Message: message}
}

func InvalidDoctor(err error) *AppError {
	return &AppError{Code: ErrInvalidDoctor, Message: "doctor not found", Err: err}
}

func SlotOutsideAvailability() *AppError {
	return &AppError{Code: ErrSlotOutsideAvailability, Message: "requested time is outside the doctor's availability"}
}

func SlotTaken() *AppError {
	return &AppError{Code: ErrSlotTaken, Message: "requested time is no longer available"}
}

func PastDateTime() *AppError {
	return &AppError{Code: ErrPastDateTime, Message: "requested time must be in the future"}
}

func StorageUnavailable(err error) *AppError {
	return &AppError{Code: ErrStorageUnavailable, Message: "storage unavailable", Err: err}
}

// CodeOf returns the ErrorCode carried by err, or ErrInternal if err is not
// an AppError.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
