package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"kata_lens/internal/model"
)

type gormKVStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewGormKVStore stores collections as rows of kv_slots. Run Migrate first.
func NewGormKVStore(db *gorm.DB, logger *slog.Logger) KVStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &gormKVStore{db: db, logger: logger}
}

func (s *gormKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	var slot model.KVSlot
	err := s.db.WithContext(ctx).Where(&model.KVSlot{Key: key}).First(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to read kv slot", slog.String("key", key), slog.Any("error", err))
		return nil, fmt.Errorf("read %s: %w: %v", key, model.ErrStorageUnavailable, err)
	}
	return []byte(slot.Value), nil
}

func (s *gormKVStore) Set(ctx context.Context, key string, value []byte) error {
	slot := model.KVSlot{
		Key:       key,
		Value:     string(value),
		UpdatedAt: time.Now(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&slot).Error
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to write kv slot", slog.String("key", key), slog.Any("error", err))
		return fmt.Errorf("write %s: %w: %v", key, model.ErrStorageUnavailable, err)
	}
	return nil
}
