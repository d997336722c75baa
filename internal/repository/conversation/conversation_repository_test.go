package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-aichat/internal/domain"
	"github.com/iyunix/go-aichat/internal/repository/kv"
)

func newConv(id string) *domain.Conversation {
	now := time.Now()
	return &domain.Conversation{ID: id, Title: domain.DefaultConversationTitle, CreatedAt: now, UpdatedAt: now, Messages: []domain.Message{}}
}

func TestCreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepository(kv.NewMemoryStore())

	require.NoError(t, repo.Create(ctx, newConv("c1")))

	got, err := repo.FindByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", got.ID)
	assert.NotNil(t, got.Messages)

	_, err = repo.FindByID(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList_EmptyStore(t *testing.T) {
	convs, err := NewConversationRepository(kv.NewMemoryStore()).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, convs)
}

func TestList_CorruptStore(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	require.NoError(t, store.Set(ctx, StorageKey, `{"not":"an array"}`))

	_, err := NewConversationRepository(store).List(ctx)
	assert.ErrorIs(t, err, kv.ErrCorrupt)

	require.NoError(t, store.Set(ctx, StorageKey, `[{"title":"no id"}]`))
	_, err = NewConversationRepository(store).List(ctx)
	assert.ErrorIs(t, err, kv.ErrCorrupt)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepository(kv.NewMemoryStore())
	require.NoError(t, repo.Create(ctx, newConv("c1")))

	updated, err := repo.Update(ctx, "c1", func(c *domain.Conversation) error {
		c.Title = "renamed"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)

	got, err := repo.FindByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)
}

func TestUpdate_ErrorLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepository(kv.NewMemoryStore())
	require.NoError(t, repo.Create(ctx, newConv("c1")))

	boom := errors.New("boom")
	_, err := repo.Update(ctx, "c1", func(c *domain.Conversation) error {
		c.Messages = append(c.Messages, domain.Message{ID: "m1"})
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := repo.FindByID(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, got.Messages)

	_, err = repo.Update(ctx, "missing", func(c *domain.Conversation) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepository(kv.NewMemoryStore())
	require.NoError(t, repo.Create(ctx, newConv("c1")))
	require.NoError(t, repo.Create(ctx, newConv("c2")))

	require.NoError(t, repo.Delete(ctx, "c1"))
	assert.ErrorIs(t, repo.Delete(ctx, "c1"), ErrNotFound)

	convs, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, "c2", convs[0].ID)
}

func TestConcurrentMutationsAreNotLost(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepository(kv.NewMemoryStore())
	require.NoError(t, repo.Create(ctx, newConv("shared")))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_ = repo.Create(ctx, newConv(fmt.Sprintf("c%d", i)))
				return
			}
			_, _ = repo.Update(ctx, "shared", func(c *domain.Conversation) error {
				c.Messages = append(c.Messages, domain.Message{ID: fmt.Sprintf("m%d", i)})
				return nil
			})
		}(i)
	}
	wg.Wait()

	convs, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, convs, 26)

	shared, err := repo.FindByID(ctx, "shared")
	require.NoError(t, err)
	assert.Len(t, shared.Messages, 25)
}
