package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"kata_lens/internal/middleware"
	"kata_lens/internal/model"
	"kata_lens/internal/repository"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testContext() context.Context {
	return middleware.WithLogger(context.Background(), discardLogger())
}

// setupTestStore returns a KV store over a private in-memory sqlite database.
func setupTestStore(t *testing.T) repository.KVStore {
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
	require.NoError(t, repository.Migrate(db))
	return repository.NewGormKVStore(db, discardLogger())
}

// faultyStore wraps a store and fails reads or writes on demand.
type faultyStore struct {
	mu       sync.Mutex
	inner    repository.KVStore
	failGet  error
	failSet  error
	setCalls int
}

func (s *faultyStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet != nil {
		return nil, s.failGet
	}
	return s.inner.Get(ctx, key)
}

func (s *faultyStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setCalls++
	if s.failSet != nil {
		return s.failSet
	}
	return s.inner.Set(ctx, key, value)
}

var errDiskFull = fmt.Errorf("write: %w: quota exceeded", model.ErrStorageUnavailable)

// MockRecognizer is a testify mock of recognizer.Recognizer.
type MockRecognizer struct {
	mock.Mock
}

func (m *MockRecognizer) Recognize(ctx context.Context, imageData string) (*model.RecognitionResult, error) {
	args := m.Called(ctx, imageData)
	var result *model.RecognitionResult
	if r := args.Get(0); r != nil {
		result = r.(*model.RecognitionResult)
	}
	return result, args.Error(1)
}

var errBoom = errors.New("boom")
