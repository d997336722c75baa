// G:\go_aichat\internal\services\chat\conversation_service.go
package chat

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/iyunix/go-aichat/internal/domain"
	"github.com/iyunix/go-aichat/internal/metrics"
	"github.com/iyunix/go-aichat/internal/repository/conversation"
	"github.com/iyunix/go-aichat/internal/services/ai"
	"github.com/iyunix/go-aichat/internal/services/latency"
)

// ConversationService owns the conversation lifecycle: listing, creation,
// deletion and the all-or-nothing send flow.
type ConversationService struct {
	config   *Config
	repo     conversation.ConversationRepository
	aiClient AIClient
	filter   ContentFilter
	metrics  *metrics.Metrics
	logger   Logger

	now   func() time.Time
	newID func() string
}

var _ Service = (*ConversationService)(nil)

func NewConversationService(
	config *Config,
	repo conversation.ConversationRepository,
	aiClient AIClient,
	contentFilter ContentFilter,
	m *metrics.Metrics,
	logger Logger,
) (*ConversationService, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid chat config: %w", err)
	}
	if repo == nil || aiClient == nil || contentFilter == nil {
		return nil, errors.New("chat service requires a repository, an AI client and a content filter")
	}
	if logger == nil {
		logger = nopLogger{}
	}
	return &ConversationService{
		config:   config,
		repo:     repo,
		aiClient: aiClient,
		filter:   contentFilter,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}, nil
}

func (s *ConversationService) ListConversations(ctx context.Context) ([]domain.Conversation, error) {
	if err := s.pause(ctx, s.config.Latency.List); err != nil {
		return nil, NewServiceError("list_conversations", "request canceled", err)
	}

	convs, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to load conversations", "error", err)
		return nil, NewServiceError("list_conversations", "failed to load conversations", err)
	}

	sort.SliceStable(convs, func(i, j int) bool {
		return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
	})
	return convs, nil
}

func (s *ConversationService) CreateConversation(ctx context.Context, title string) (*domain.Conversation, error) {
	if err := s.pause(ctx, s.config.Latency.Create); err != nil {
		return nil, NewServiceError("create_conversation", "request canceled", err)
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = domain.DefaultConversationTitle
	}
	if utf8.RuneCountInString(title) > s.config.MaxTitleLength {
		title = string([]rune(title)[:s.config.MaxTitleLength])
	}

	now := s.now()
	conv := &domain.Conversation{
		ID:        s.newID(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  []domain.Message{},
	}
	if err := s.repo.Create(ctx, conv); err != nil {
		s.logger.Error("Failed to create conversation", "error", err)
		return nil, NewServiceError("create_conversation", "failed to create conversation", err)
	}

	s.logger.Info("Conversation created", "conversation_id", conv.ID)
	return conv, nil
}

func (s *ConversationService) GetConversation(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	if err := s.pause(ctx, s.config.Latency.Get); err != nil {
		return nil, NewServiceError("get_conversation", "request canceled", err)
	}

	conv, err := s.repo.FindByID(ctx, conversationID)
	if err != nil {
		return nil, s.repoError("get_conversation", conversationID, err)
	}
	return conv, nil
}

func (s *ConversationService) DeleteConversation(ctx context.Context, conversationID string) error {
	if err := s.pause(ctx, s.config.Latency.Delete); err != nil {
		return NewServiceError("delete_conversation", "request canceled", err)
	}

	if err := s.repo.Delete(ctx, conversationID); err != nil {
		return s.repoError("delete_conversation", conversationID, err)
	}

	s.logger.Info("Conversation deleted", "conversation_id", conversationID)
	return nil
}

// SendMessage appends the user's message and the AI reply to the
// conversation, or changes nothing at all.
func (s *ConversationService) SendMessage(ctx context.Context, conversationID, content string) (*SendResult, error) {
	return s.send(ctx, "send_message", conversationID, content, nil)
}

// SendMessageStream is SendMessage with the reply delivered to onChunk as it
// arrives. Nothing is persisted unless the whole reply succeeds.
func (s *ConversationService) SendMessageStream(ctx context.Context, conversationID, content string, onChunk func(string) error) (*SendResult, error) {
	if onChunk == nil {
		onChunk = func(string) error { return nil }
	}
	return s.send(ctx, "send_message_stream", conversationID, content, onChunk)
}

func (s *ConversationService) send(ctx context.Context, op, conversationID, content string, onChunk func(string) error) (*SendResult, error) {
	if err := s.pause(ctx, s.config.Latency.Send); err != nil {
		return nil, NewServiceError(op, "request canceled", err)
	}

	if err := s.validateContent(op, content); err != nil {
		s.metrics.MessageSent("rejected")
		return nil, err
	}

	check := s.filter.Validate(content)
	if !check.IsValid {
		s.metrics.MessageSent("rejected")
		s.logger.Warn("Message rejected by content filter",
			"conversation_id", conversationID,
			"words", len(check.SensitiveWords))
		return nil, NewValidationError(op,
			"message contains sensitive words: "+strings.Join(check.SensitiveWords, ", "))
	}

	conv, err := s.repo.FindByID(ctx, conversationID)
	if err != nil {
		s.metrics.MessageSent(sendResult(err))
		return nil, s.repoError(op, conversationID, err)
	}

	userMsg := domain.Message{
		ID:             s.newID(),
		Content:        check.FilteredContent,
		Type:           domain.MessageTypeUser,
		Timestamp:      s.now(),
		ConversationID: conversationID,
	}

	resp := s.generate(ctx, conv.Messages, check.FilteredContent, onChunk)
	if resp.Failed() {
		s.metrics.MessageSent("ai_error")
		s.logger.Error("AI reply failed",
			"conversation_id", conversationID,
			"error", resp.Err)
		return nil, NewServiceError(op, "AI service error: "+resp.Error, resp.Err)
	}

	aiMsg := domain.Message{
		ID:             s.newID(),
		Content:        resp.Content,
		Type:           domain.MessageTypeAI,
		Timestamp:      s.now(),
		ConversationID: conversationID,
	}

	updated, err := s.repo.Update(ctx, conversationID, func(c *domain.Conversation) error {
		c.Messages = append(c.Messages, userMsg, aiMsg)
		c.UpdatedAt = aiMsg.Timestamp
		if len(c.Messages) == 2 {
			c.Title = domain.TitleFromContent(userMsg.Content)
		}
		return nil
	})
	if err != nil {
		s.metrics.MessageSent(sendResult(err))
		// The conversation may have been deleted while the reply was generated.
		return nil, s.repoError(op, conversationID, err)
	}

	s.metrics.MessageSent("ok")
	s.logger.Info("Message exchanged",
		"conversation_id", conversationID,
		"messages", len(updated.Messages))

	return &SendResult{UserMessage: userMsg, AIMessage: aiMsg, Conversation: updated}, nil
}

func (s *ConversationService) generate(ctx context.Context, history []domain.Message, content string, onChunk func(string) error) ai.Response {
	if onChunk != nil {
		return s.aiClient.GenerateStream(ctx, history, content, onChunk)
	}
	return s.aiClient.Generate(ctx, history, content)
}

func (s *ConversationService) validateContent(op, content string) error {
	if strings.TrimSpace(content) == "" {
		return NewValidationError(op, "message cannot be empty")
	}
	if utf8.RuneCountInString(content) > s.config.MaxMessageLength {
		return NewValidationError(op,
			fmt.Sprintf("message exceeds %d characters", s.config.MaxMessageLength))
	}
	return nil
}

func (s *ConversationService) repoError(op, conversationID string, err error) error {
	if errors.Is(err, conversation.ErrNotFound) {
		return NewNotFoundError(op, conversationID)
	}
	s.logger.Error("Conversation storage failed",
		"operation", op,
		"conversation_id", conversationID,
		"error", err)
	return &ChatError{
		Type:           ErrTypeService,
		Operation:      op,
		Message:        "conversation storage failed",
		ConversationID: conversationID,
		Cause:          err,
	}
}

func sendResult(err error) string {
	if errors.Is(err, conversation.ErrNotFound) {
		return "not_found"
	}
	return "error"
}

func (s *ConversationService) pause(ctx context.Context, d time.Duration) error {
	if !s.config.SimulateLatency {
		return nil
	}
	return latency.Sleep(ctx, d)
}
