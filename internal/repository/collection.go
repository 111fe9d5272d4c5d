package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"kata_lens/internal/model"
)

// Collection reads and overwrites one JSON array stored under a single key.
// There is no locking: concurrent writers race and the last write wins.
type Collection[T any] struct {
	store KVStore
	key   string
}

// NewCollection binds a typed JSON-array collection to one slot of store.
func NewCollection[T any](store KVStore, key string) *Collection[T] {
	return &Collection[T]{store: store, key: key}
}

func (c *Collection[T]) Key() string {
	return c.key
}

// ReadAll returns an empty slice for a key never written and
// model.ErrCorruptData when the stored bytes are not a JSON array of T.
func (c *Collection[T]) ReadAll(ctx context.Context) ([]T, error) {
	raw, err := c.store.Get(ctx, c.key)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return []T{}, nil
		}
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w: %v", c.key, model.ErrCorruptData, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// WriteAll replaces the stored collection. A nil slice is written as [].
func (c *Collection[T]) WriteAll(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.key, err)
	}
	return c.store.Set(ctx, c.key, raw)
}
