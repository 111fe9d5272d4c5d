package repository

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"kata_lens/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupTestDB returns a migrated in-memory database private to the test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, Migrate(db))
	return db
}

func setupRedisStore(t *testing.T) (*RedisKVStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := NewRedisKVStore(context.Background(), "redis://"+mr.Addr(), discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func TestKVStores(t *testing.T) {
	ctx := context.Background()

	stores := map[string]func(t *testing.T) KVStore{
		"gorm": func(t *testing.T) KVStore {
			return NewGormKVStore(setupTestDB(t), discardLogger())
		},
		"redis": func(t *testing.T) KVStore {
			store, _ := setupRedisStore(t)
			return store
		},
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			t.Run("missing key is ErrNotFound", func(t *testing.T) {
				store := newStore(t)
				_, err := store.Get(ctx, "nothing_here")
				assert.ErrorIs(t, err, model.ErrNotFound)
			})

			t.Run("set then get", func(t *testing.T) {
				store := newStore(t)
				require.NoError(t, store.Set(ctx, "k", []byte(`[1,2]`)))
				got, err := store.Get(ctx, "k")
				require.NoError(t, err)
				assert.Equal(t, `[1,2]`, string(got))
			})

			t.Run("set overwrites", func(t *testing.T) {
				store := newStore(t)
				require.NoError(t, store.Set(ctx, "k", []byte(`["a"]`)))
				require.NoError(t, store.Set(ctx, "k", []byte(`[]`)))
				got, err := store.Get(ctx, "k")
				require.NoError(t, err)
				assert.Equal(t, `[]`, string(got))
			})

			t.Run("keys are independent", func(t *testing.T) {
				store := newStore(t)
				require.NoError(t, store.Set(ctx, model.HistoryKey, []byte(`["h"]`)))
				require.NoError(t, store.Set(ctx, model.FlashcardKey, []byte(`["f"]`)))
				h, err := store.Get(ctx, model.HistoryKey)
				require.NoError(t, err)
				f, err := store.Get(ctx, model.FlashcardKey)
				require.NoError(t, err)
				assert.Equal(t, `["h"]`, string(h))
				assert.Equal(t, `["f"]`, string(f))
			})
		})
	}
}

func TestRedisKVStore_Unavailable(t *testing.T) {
	ctx := context.Background()
	store, mr := setupRedisStore(t)
	mr.Close()

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, model.ErrStorageUnavailable)

	err = store.Set(ctx, "k", []byte(`[]`))
	assert.ErrorIs(t, err, model.ErrStorageUnavailable)
}

func TestNewRedisKVStore_BadURL(t *testing.T) {
	_, err := NewRedisKVStore(context.Background(), "not a url", discardLogger())
	assert.Error(t, err)
}

func TestRedisKVStore_NoExpiry(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisKVStoreFromClient(client, nil)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.Set(ctx, model.FlashcardKey, []byte(`[]`)))
	assert.Equal(t, int64(0), int64(mr.TTL(model.FlashcardKey)))
}
