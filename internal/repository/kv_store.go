package repository

import "context"

// KVStore persists whole serialized collections under string keys.
// Get returns model.ErrNotFound when the key was never written.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
