package stores

import (
	"context"
	"errors"

	"github.com/iyunix/go-aichat/internal/repository/kv"
)

const TokenKey = "auth_token"

// TokenStore persists the opaque session token.
type TokenStore struct {
	store kv.Store
}

func NewTokenStore(store kv.Store) *TokenStore {
	return &TokenStore{store: store}
}

func (t *TokenStore) Set(ctx context.Context, token string) error {
	return t.store.Set(ctx, TokenKey, token)
}

// Get returns the token, or "" when none is stored.
func (t *TokenStore) Get(ctx context.Context) (string, error) {
	v, err := t.store.Get(ctx, TokenKey)
	if errors.Is(err, kv.ErrMiss) {
		return "", nil
	}
	return v, err
}

func (t *TokenStore) Remove(ctx context.Context) error {
	return t.store.Remove(ctx, TokenKey)
}
