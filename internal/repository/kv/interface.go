package kv

import (
	"context"
	"errors"
)

// Store is a flat string key/value store, the server-side stand-in for the
// browser's local storage. Implementations must be safe for concurrent use.
type Store interface {
	// Get returns ErrMiss when the key is absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Remove is a no-op for absent keys.
	Remove(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// ErrMiss signals an absent key.
var ErrMiss = errors.New("kv: key not found")
