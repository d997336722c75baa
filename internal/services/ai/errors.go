package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

type ErrorType string

const (
	ErrTypeConfig    ErrorType = "CONFIG"
	ErrTypeAuth      ErrorType = "AUTH"
	ErrTypeQuota     ErrorType = "QUOTA"
	ErrTypeRateLimit ErrorType = "RATE_LIMIT"
	ErrTypeTimeout   ErrorType = "TIMEOUT"
	ErrTypeNetwork   ErrorType = "NETWORK"
	ErrTypeProvider  ErrorType = "PROVIDER"
	ErrTypeEmpty     ErrorType = "EMPTY"
)

type AIError struct {
	Type      ErrorType
	Code      int
	Message   string
	Operation string
	Cause     error
}

func (e *AIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("AI %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("AI %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *AIError) Unwrap() error { return e.Cause }

func NewConfigError(msg string) *AIError {
	return &AIError{Type: ErrTypeConfig, Message: msg, Operation: "config"}
}

func NewEmptyResponseError(operation string) *AIError {
	return &AIError{Type: ErrTypeEmpty, Operation: operation, Message: "AI service returned an empty response"}
}

// classify turns whatever the transport returned into an *AIError.
func classify(operation string, err error) *AIError {
	var aiErr *AIError
	if errors.As(err, &aiErr) {
		return aiErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &AIError{Type: ErrTypeTimeout, Operation: operation, Message: "request timeout", Cause: err}
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &AIError{
			Type:      typeFor(apiErr.Message, apiErr.HTTPStatusCode, ErrTypeProvider),
			Code:      apiErr.HTTPStatusCode,
			Message:   apiErr.Message,
			Operation: operation,
			Cause:     err,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		msg := reqErr.Error()
		return &AIError{
			Type:      typeFor(msg, reqErr.HTTPStatusCode, ErrTypeProvider),
			Code:      reqErr.HTTPStatusCode,
			Message:   msg,
			Operation: operation,
			Cause:     err,
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &AIError{Type: ErrTypeTimeout, Operation: operation, Message: err.Error(), Cause: err}
	}

	return &AIError{
		Type:      typeFor(err.Error(), 0, ErrTypeNetwork),
		Operation: operation,
		Message:   err.Error(),
		Cause:     err,
	}
}

// typeFor checks the message first, in the order credential, quota, rate
// limit, timeout, then falls back to the HTTP status.
func typeFor(msg string, status int, fallback ErrorType) ErrorType {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "api key"):
		return ErrTypeAuth
	case strings.Contains(lower, "quota"):
		return ErrTypeQuota
	case strings.Contains(lower, "rate limit"):
		return ErrTypeRateLimit
	case strings.Contains(lower, "timeout"):
		return ErrTypeTimeout
	}
	switch status {
	case 401, 403:
		return ErrTypeAuth
	case 429:
		return ErrTypeRateLimit
	case 408, 504:
		return ErrTypeTimeout
	}
	return fallback
}

// UserMessage is the text shown to end users for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var aiErr *AIError
	if !errors.As(err, &aiErr) {
		aiErr = classify("unknown", err)
	}
	switch aiErr.Type {
	case ErrTypeConfig:
		return "configuration error: " + aiErr.Message
	case ErrTypeAuth:
		return "API key is misconfigured, please check your settings"
	case ErrTypeQuota:
		return "API quota exhausted, please try again later"
	case ErrTypeRateLimit:
		return "too many requests, please try again later"
	case ErrTypeTimeout:
		return "request timed out, please retry"
	}
	if aiErr.Message == "" {
		return "failed to generate a reply"
	}
	return aiErr.Message
}
