// File: internal/services/ai/interface.go
package ai

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one role/content pair sent to the provider.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is a successful provider reply.
type Completion struct {
	Content string
	Usage   *Usage
}

// CompletionProvider is the transport to a chat-completion endpoint. Errors
// are always *AIError.
type CompletionProvider interface {
	Complete(ctx context.Context, messages []ChatMessage) (*Completion, error)
	// Stream calls onDelta with each non-empty fragment in arrival order and
	// returns the concatenated text.
	Stream(ctx context.Context, messages []ChatMessage, onDelta func(string) error) (*Completion, error)
}

// Response is what callers of Client see. Exactly one of Content or Error is
// meaningful: a failed call has empty Content and a user-facing Error.
type Response struct {
	Content string `json:"content"`
	Usage   *Usage `json:"usage,omitempty"`
	Error   string `json:"error,omitempty"`
	// Err keeps the typed cause of a failure for logging and metrics.
	Err error `json:"-"`
}

func (r Response) Failed() bool { return r.Error != "" }

type HealthStatus struct {
	IsHealthy bool   `json:"isHealthy"`
	Error     string `json:"error,omitempty"`
}

// Logger defines the logging interface used by the AI client
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}
