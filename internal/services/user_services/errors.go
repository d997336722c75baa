package user_services

import (
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrTypeValidation   ErrorType = "VALIDATION"
	ErrTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrTypeNotFound     ErrorType = "NOT_FOUND"
	ErrTypeService      ErrorType = "SERVICE"
)

type AuthError struct {
	Type      ErrorType
	Operation string
	Message   string
	Cause     error
}

func (e *AuthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("Auth %s error in %s: %s (caused by: %v)", e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("Auth %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *AuthError) Unwrap() error { return e.Cause }

func (e *AuthError) StatusCode() int {
	switch e.Type {
	case ErrTypeValidation:
		return http.StatusBadRequest
	case ErrTypeUnauthorized:
		return http.StatusUnauthorized
	case ErrTypeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (e *AuthError) PublicMessage() string { return e.Message }

func newValidationError(op, msg string) *AuthError {
	return &AuthError{Type: ErrTypeValidation, Operation: op, Message: msg}
}

func newUnauthorizedError(op, msg string, cause error) *AuthError {
	return &AuthError{Type: ErrTypeUnauthorized, Operation: op, Message: msg, Cause: cause}
}

func newNotFoundError(op, msg string) *AuthError {
	return &AuthError{Type: ErrTypeNotFound, Operation: op, Message: msg}
}

func newServiceError(op, msg string, cause error) *AuthError {
	return &AuthError{Type: ErrTypeService, Operation: op, Message: msg, Cause: cause}
}
