package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-aichat/internal/domain"
	"github.com/iyunix/go-aichat/internal/repository/kv"
)

func TestCreateAndLookups(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(kv.NewMemoryStore())

	u := &domain.User{ID: "u1", Username: "alice", Email: "a@example.com", CreatedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, u))

	got, err := repo.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	got, err = repo.FindByAccount(ctx, domain.AccountTypeEmail, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)

	_, err = repo.FindByAccount(ctx, domain.AccountTypePhone, "a@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = repo.FindByEmailOrPhone(ctx, "", "")
	assert.ErrorIs(t, err, ErrUserNotFound, "empty identifiers never match users without them")
}

func TestCreate_RejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(kv.NewMemoryStore())

	require.NoError(t, repo.Create(ctx, &domain.User{ID: "u1", Email: "a@example.com", Phone: "13800000000"}))
	assert.ErrorIs(t, repo.Create(ctx, &domain.User{ID: "u2", Email: "a@example.com"}), ErrDuplicate)
	assert.ErrorIs(t, repo.Create(ctx, &domain.User{ID: "u3", Phone: "13800000000"}), ErrDuplicate)
	require.NoError(t, repo.Create(ctx, &domain.User{ID: "u4", Email: "b@example.com"}))

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestCurrentUserPointer(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(kv.NewMemoryStore())

	_, err := repo.Current(ctx)
	assert.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, repo.SetCurrent(ctx, &domain.User{ID: "u1", Username: "alice", PasswordHash: "secret"}))
	cur, err := repo.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", cur.ID)
	assert.Empty(t, cur.PasswordHash)

	require.NoError(t, repo.ClearCurrent(ctx))
	_, err = repo.Current(ctx)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
