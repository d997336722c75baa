// G:\go_aichat\internal\services\chat\errors.go
package chat

import (
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeService    ErrorType = "SERVICE"
)

type ChatError struct {
	Type           ErrorType
	Operation      string
	Message        string
	ConversationID string
	Cause          error
}

func (e *ChatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("Chat %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("Chat %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *ChatError) Unwrap() error { return e.Cause }

// StatusCode is the envelope code for this error.
func (e *ChatError) StatusCode() int {
	switch e.Type {
	case ErrTypeValidation:
		return http.StatusBadRequest
	case ErrTypeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the text safe to show to end users.
func (e *ChatError) PublicMessage() string { return e.Message }

func NewValidationError(operation, msg string) *ChatError {
	return &ChatError{Type: ErrTypeValidation, Operation: operation, Message: msg}
}

func NewNotFoundError(operation, conversationID string) *ChatError {
	return &ChatError{
		Type:           ErrTypeNotFound,
		Operation:      operation,
		Message:        "conversation not found",
		ConversationID: conversationID,
	}
}

func NewServiceError(operation, msg string, cause error) *ChatError {
	return &ChatError{Type: ErrTypeService, Operation: operation, Message: msg, Cause: cause}
}
