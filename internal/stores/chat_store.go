package stores

import (
	"context"
	"sync"

	"github.com/iyunix/go-aichat/internal/domain"
	"github.com/iyunix/go-aichat/internal/services/chat"
)

// ChatStore tracks the conversation list, the open conversation and the
// in-flight flags of a single client.
type ChatStore struct {
	mu            sync.RWMutex
	svc           chat.Service
	logger        Logger
	conversations []domain.Conversation
	current       *domain.Conversation
	loading       bool
	generating    bool
	err           string
}

func NewChatStore(svc chat.Service, logger Logger) *ChatStore {
	if logger == nil {
		logger = nopLogger{}
	}
	return &ChatStore{svc: svc, logger: logger}
}

func (s *ChatStore) Conversations() []domain.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Conversation, len(s.conversations))
	for i := range s.conversations {
		out[i] = s.conversations[i].Clone()
	}
	return out
}

// CurrentConversation returns a copy of the open conversation, or nil.
func (s *ChatStore) CurrentConversation() *domain.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	c := s.current.Clone()
	return &c
}

func (s *ChatStore) CurrentMessages() []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return []domain.Message{}
	}
	return append([]domain.Message(nil), s.current.Messages...)
}

func (s *ChatStore) HasConversations() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations) > 0
}

func (s *ChatStore) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *ChatStore) IsGenerating() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generating
}

// Error is the last failure message, "" when none.
func (s *ChatStore) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *ChatStore) ClearError() {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()
}

func (s *ChatStore) beginLoading() {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()
}

// fail records the message for err. Caller holds mu.
func (s *ChatStore) fail(err error, fallback string) {
	s.err = errorMessage(err, fallback)
	s.logger.Warn(fallback, "error", err)
}

func (s *ChatStore) FetchConversations(ctx context.Context) {
	s.beginLoading()
	convs, err := s.svc.ListConversations(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.fail(err, "failed to fetch conversations")
		return
	}
	s.conversations = convs
}

// CreateNewConversation adds a conversation to the top of the list and opens it.
func (s *ChatStore) CreateNewConversation(ctx context.Context, title string) *domain.Conversation {
	s.beginLoading()
	conv, err := s.svc.CreateConversation(ctx, title)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.fail(err, "failed to create conversation")
		return nil
	}
	s.conversations = append([]domain.Conversation{conv.Clone()}, s.conversations...)
	current := conv.Clone()
	s.current = &current
	out := conv.Clone()
	return &out
}

// SelectConversation loads and opens a conversation. Selecting the already
// open conversation does nothing.
func (s *ChatStore) SelectConversation(ctx context.Context, id string) {
	s.mu.RLock()
	same := s.current != nil && s.current.ID == id
	s.mu.RUnlock()
	if same {
		return
	}

	s.beginLoading()
	conv, err := s.svc.GetConversation(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.fail(err, "failed to load conversation")
		return
	}
	s.current = conv
}

// SendUserMessage sends content to the open conversation and reports whether
// the exchange succeeded.
func (s *ChatStore) SendUserMessage(ctx context.Context, content string) bool {
	return s.send(ctx, content, nil)
}

// SendUserMessageStream is SendUserMessage with the reply streamed to onChunk.
func (s *ChatStore) SendUserMessageStream(ctx context.Context, content string, onChunk func(string) error) bool {
	if onChunk == nil {
		onChunk = func(string) error { return nil }
	}
	return s.send(ctx, content, onChunk)
}

func (s *ChatStore) send(ctx context.Context, content string, onChunk func(string) error) bool {
	s.mu.Lock()
	if s.current == nil {
		s.err = "select or create a conversation first"
		s.mu.Unlock()
		return false
	}
	id := s.current.ID
	s.generating = true
	s.err = ""
	s.mu.Unlock()

	var (
		res *chat.SendResult
		err error
	)
	if onChunk != nil {
		res, err = s.svc.SendMessageStream(ctx, id, content, onChunk)
	} else {
		res, err = s.svc.SendMessage(ctx, id, content)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.generating = false
	if err != nil {
		s.fail(err, "failed to send message")
		return false
	}

	// The user may have switched conversations while the reply was generated.
	if s.current != nil && s.current.ID == id {
		s.current.Messages = append(s.current.Messages, res.UserMessage, res.AIMessage)
		s.current.UpdatedAt = res.AIMessage.Timestamp
		if res.Conversation != nil {
			s.current.Title = res.Conversation.Title
		}
	}

	for i := range s.conversations {
		if s.conversations[i].ID != id {
			continue
		}
		var updated domain.Conversation
		if res.Conversation != nil {
			updated = res.Conversation.Clone()
		} else {
			updated = s.conversations[i].Clone()
			updated.Messages = append(updated.Messages, res.UserMessage, res.AIMessage)
			updated.UpdatedAt = res.AIMessage.Timestamp
		}
		rest := append(s.conversations[:i:i], s.conversations[i+1:]...)
		s.conversations = append([]domain.Conversation{updated}, rest...)
		break
	}
	return true
}

func (s *ChatStore) RemoveConversation(ctx context.Context, id string) bool {
	s.beginLoading()
	err := s.svc.DeleteConversation(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.fail(err, "failed to delete conversation")
		return false
	}

	kept := s.conversations[:0]
	for _, c := range s.conversations {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	s.conversations = kept
	if s.current != nil && s.current.ID == id {
		s.current = nil
	}
	return true
}

func (s *ChatStore) ClearCurrentConversation() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

func (s *ChatStore) ResetState() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations = nil
	s.current = nil
	s.loading = false
	s.generating = false
	s.err = ""
}
