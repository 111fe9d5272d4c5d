// internal/model/error.go
package model

import (
	"errors"
	"fmt"
)

// Application-wide sentinel errors.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInternalServer     = errors.New("internal server error")
	ErrCorruptData        = errors.New("stored data is corrupt")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// AppError carries the client-facing part of an error while keeping the cause for errors.Is.
type AppError struct {
	Code    string
	Message string
	Details string
	Err     error
}

// NewAppError creates a new AppError wrapping err.
func NewAppError(code, message, details string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Err:     err,
	}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// APIErrorResponse is the JSON body of every error response.
type APIErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
