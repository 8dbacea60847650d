package db

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")

// Store is a plain get/set-by-key byte store. Implementations return
// ErrNotFound from Get when the key has never been written.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

type prefixedStore struct {
	Store
	prefix string
}

// WithPrefix namespaces every key written through the returned store.
func WithPrefix(store Store, prefix string) Store {
	if prefix == "" {
		return store
	}
	return &prefixedStore{Store: store, prefix: prefix}
}

func (p *prefixedStore) Get(ctx context.Context, key string) ([]byte, error) {
	return p.Store.Get(ctx, p.prefix+key)
}

func (p *prefixedStore) Set(ctx context.Context, key string, value []byte) error {
	return p.Store.Set(ctx, p.prefix+key, value)
}
