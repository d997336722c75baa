package conversation

import (
	"context"
	"errors"

	"github.com/iyunix/go-aichat/internal/domain"
)

var ErrNotFound = errors.New("conversation not found")

// ConversationRepository handles conversation data operations. Every
// conversation is stored, with its messages, in one JSON array.
type ConversationRepository interface {
	List(ctx context.Context) ([]domain.Conversation, error)
	FindByID(ctx context.Context, id string) (*domain.Conversation, error)
	Create(ctx context.Context, c *domain.Conversation) error
	// Update applies fn to the stored conversation and persists the result
	// atomically with respect to other callers of this repository.
	Update(ctx context.Context, id string, fn func(c *domain.Conversation) error) (*domain.Conversation, error)
	Delete(ctx context.Context, id string) error
}
