package conversation

import (
	"context"
	"fmt"
	"sync"

	"github.com/iyunix/go-aichat/internal/domain"
	"github.com/iyunix/go-aichat/internal/repository/kv"
)

const StorageKey = "ai_chat_conversations"

type kvConversationRepository struct {
	store kv.Store
	// mu serializes the read-modify-write cycle on the whole collection.
	mu sync.Mutex
}

func NewConversationRepository(store kv.Store) ConversationRepository {
	return &kvConversationRepository{store: store}
}

func (r *kvConversationRepository) load(ctx context.Context) ([]domain.Conversation, error) {
	convs, err := kv.LoadArray[domain.Conversation](ctx, r.store, StorageKey)
	if err != nil {
		return nil, err
	}
	for i := range convs {
		if convs[i].ID == "" {
			return nil, fmt.Errorf("%w: %s: record %d has no id", kv.ErrCorrupt, StorageKey, i)
		}
		if convs[i].Messages == nil {
			convs[i].Messages = []domain.Message{}
		}
	}
	return convs, nil
}

func (r *kvConversationRepository) List(ctx context.Context) ([]domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

func (r *kvConversationRepository) FindByID(ctx context.Context, id string) (*domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	convs, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range convs {
		if convs[i].ID == id {
			c := convs[i].Clone()
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (r *kvConversationRepository) Create(ctx context.Context, c *domain.Conversation) error {
	if c == nil || c.ID == "" {
		return fmt.Errorf("conversation id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	convs, err := r.load(ctx)
	if err != nil {
		return err
	}
	convs = append(convs, c.Clone())
	return kv.SaveArray(ctx, r.store, StorageKey, convs)
}

func (r *kvConversationRepository) Update(ctx context.Context, id string, fn func(c *domain.Conversation) error) (*domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	convs, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i := range convs {
		if convs[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, ErrNotFound
	}

	updated := convs[idx].Clone()
	if err := fn(&updated); err != nil {
		return nil, err
	}
	convs[idx] = updated
	if err := kv.SaveArray(ctx, r.store, StorageKey, convs); err != nil {
		return nil, err
	}
	out := updated.Clone()
	return &out, nil
}

func (r *kvConversationRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	convs, err := r.load(ctx)
	if err != nil {
		return err
	}
	kept := convs[:0]
	for _, c := range convs {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(convs) {
		return ErrNotFound
	}
	return kv.SaveArray(ctx, r.store, StorageKey, kept)
}
