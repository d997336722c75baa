// G:\go_aichat\internal\services\chat\types.go
package chat

import "github.com/iyunix/go-aichat/internal/domain"

// Logger defines the logging interface used across chat services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// SendResult carries the two messages appended by a successful send and the
// conversation as persisted afterwards.
type SendResult struct {
	UserMessage  domain.Message       `json:"userMessage"`
	AIMessage    domain.Message       `json:"aiMessage"`
	Conversation *domain.Conversation `json:"-"`
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}
