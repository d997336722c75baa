// G:\go_aichat\internal\services\chat\interface.go
package chat

import (
	"context"

	"github.com/iyunix/go-aichat/internal/domain"
	"github.com/iyunix/go-aichat/internal/services/ai"
	"github.com/iyunix/go-aichat/internal/services/filter"
)

// AIClient generates replies; implemented by *ai.Client.
type AIClient interface {
	Generate(ctx context.Context, history []domain.Message, userMessage string) ai.Response
	GenerateStream(ctx context.Context, history []domain.Message, userMessage string, onChunk func(string) error) ai.Response
}

// ContentFilter screens user input; implemented by *filter.Filter.
type ContentFilter interface {
	Validate(content string) filter.Result
}

// Service is the conversation lifecycle consumed by handlers and stores.
type Service interface {
	ListConversations(ctx context.Context) ([]domain.Conversation, error)
	CreateConversation(ctx context.Context, title string) (*domain.Conversation, error)
	SendMessage(ctx context.Context, conversationID, content string) (*SendResult, error)
	SendMessageStream(ctx context.Context, conversationID, content string, onChunk func(string) error) (*SendResult, error)
	GetConversation(ctx context.Context, conversationID string) (*domain.Conversation, error)
	DeleteConversation(ctx context.Context, conversationID string) error
}
