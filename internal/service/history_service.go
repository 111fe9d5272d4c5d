package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"kata_lens/internal/config"
	"kata_lens/internal/middleware"
	"kata_lens/internal/model"
	"kata_lens/internal/repository"
)

// TimestampLayout renders history timestamps the way zh-CN locales print them
// (slashes, not ISO dashes), so stored items read the same as those written by
// the web client.
const TimestampLayout = "2006/01/02 15:04"

// HistoryService manages the recognition history, newest first.
type HistoryService interface {
	GetAll(ctx context.Context) ([]*model.HistoryItem, error)
	Add(ctx context.Context, item *model.NewHistoryItem) (*model.HistoryItem, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	Search(ctx context.Context, keyword string) ([]*model.HistoryItem, error)
	Page(ctx context.Context, keyword string, page, limit int) (*model.HistoryPage, error)
}

type historyService struct {
	items    *repository.Collection[*model.HistoryItem]
	limit    int
	pageSize int
	loc      *time.Location
	now      func() time.Time
	logger   *slog.Logger
}

// NewHistoryService keeps history in store under model.HistoryKey.
func NewHistoryService(store repository.KVStore, cfg *config.Config, logger *slog.Logger) HistoryService {
	if logger == nil {
		logger = slog.Default()
	}
	limit := config.DefaultHistoryLimit
	pageSize := config.DefaultHistoryPageSize
	zone := config.DefaultTimeZone
	if cfg != nil {
		if cfg.App.HistoryLimit > 0 {
			limit = cfg.App.HistoryLimit
		}
		if cfg.App.HistoryPageSize > 0 {
			pageSize = cfg.App.HistoryPageSize
		}
		if cfg.App.TimeZone != "" {
			zone = cfg.App.TimeZone
		}
	}
	return &historyService{
		items:    repository.NewCollection[*model.HistoryItem](store, model.HistoryKey),
		limit:    limit,
		pageSize: pageSize,
		loc:      loadLocation(zone, logger),
		now:      time.Now,
		logger:   logger,
	}
}

// loadLocation falls back to UTC+8 when the zone database is unavailable.
func loadLocation(name string, logger *slog.Logger) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		logger.Warn("Failed to load time zone, using UTC+8", slog.String("zone", name), slog.Any("error", err))
		return time.FixedZone("CST", 8*60*60)
	}
	return loc
}

func (s *historyService) GetAll(ctx context.Context) ([]*model.HistoryItem, error) {
	return s.items.ReadAll(ctx)
}

// loadForWrite reads the collection for a read-modify-write. A corrupt slot
// is logged and replaced; any other read failure aborts the mutation.
func (s *historyService) loadForWrite(ctx context.Context, logger *slog.Logger) ([]*model.HistoryItem, error) {
	items, err := s.items.ReadAll(ctx)
	if err != nil {
		if errors.Is(err, model.ErrCorruptData) {
			logger.Warn("History collection is corrupt, starting over", slog.String("key", s.items.Key()), slog.Any("error", err))
			return []*model.HistoryItem{}, nil
		}
		logger.Error("Failed to read history", slog.Any("error", err))
		return nil, err
	}
	return items, nil
}

func (s *historyService) Add(ctx context.Context, in *model.NewHistoryItem) (*model.HistoryItem, error) {
	logger := middleware.GetLogger(ctx).With(slog.String("collection", model.HistoryKey))
	if in == nil {
		return nil, model.NewAppError("INVALID_HISTORY_ITEM", "item is required", "item", model.ErrInvalidInput)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate history id: %w", err)
	}
	wordParses := in.WordParses
	if wordParses == nil {
		wordParses = []model.WordParse{}
	}
	item := &model.HistoryItem{
		ID:         id.String(),
		Timestamp:  s.now().In(s.loc).Format(TimestampLayout),
		Indonesian: in.Indonesian,
		Chinese:    in.Chinese,
		WordParses: wordParses,
		ImageURL:   in.ImageURL,
	}

	items, err := s.loadForWrite(ctx, logger)
	if err != nil {
		return nil, err
	}
	items = append([]*model.HistoryItem{item}, items...)
	if len(items) > s.limit {
		logger.Debug("History over capacity, evicting oldest", slog.Int("evicted", len(items)-s.limit))
		items = items[:s.limit]
	}

	if err := s.items.WriteAll(ctx, items); err != nil {
		logger.Error("Failed to persist history", slog.Any("error", err))
		return nil, err
	}
	logger.Info("History item added", slog.String("id", item.ID), slog.Int("size", len(items)))
	return item, nil
}

// Delete removes the item with id. A missing id is not an error.
func (s *historyService) Delete(ctx context.Context, id string) error {
	logger := middleware.GetLogger(ctx).With(slog.String("collection", model.HistoryKey))

	items, err := s.loadForWrite(ctx, logger)
	if err != nil {
		return err
	}
	kept := make([]*model.HistoryItem, 0, len(items))
	for _, item := range items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	if err := s.items.WriteAll(ctx, kept); err != nil {
		logger.Error("Failed to persist history", slog.Any("error", err))
		return err
	}
	logger.Info("History item deleted", slog.String("id", id), slog.Bool("found", len(kept) != len(items)))
	return nil
}

func (s *historyService) Clear(ctx context.Context) error {
	logger := middleware.GetLogger(ctx).With(slog.String("collection", model.HistoryKey))
	if err := s.items.WriteAll(ctx, []*model.HistoryItem{}); err != nil {
		logger.Error("Failed to clear history", slog.Any("error", err))
		return err
	}
	logger.Info("History cleared")
	return nil
}

func (s *historyService) Search(ctx context.Context, keyword string) ([]*model.HistoryItem, error) {
	items, err := s.items.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	return FilterHistory(items, keyword), nil
}

func (s *historyService) Page(ctx context.Context, keyword string, page, limit int) (*model.HistoryPage, error) {
	items, err := s.Search(ctx, keyword)
	if err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = s.pageSize
	}
	return Paginate(items, page, limit), nil
}

// FilterHistory keeps items whose indonesian or chinese text contains keyword,
// ignoring case. An empty keyword keeps everything. Order is preserved.
func FilterHistory(items []*model.HistoryItem, keyword string) []*model.HistoryItem {
	if keyword == "" {
		return items
	}
	needle := strings.ToLower(keyword)
	matched := make([]*model.HistoryItem, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Indonesian), needle) ||
			strings.Contains(strings.ToLower(item.Chinese), needle) {
			matched = append(matched, item)
		}
	}
	return matched
}

// Paginate slices items into 1-based pages. page < 1 is treated as 1 and
// limit < 1 as DefaultHistoryPageSize. A page past the end is empty.
func Paginate(items []*model.HistoryItem, page, limit int) *model.HistoryPage {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = config.DefaultHistoryPageSize
	}
	total := len(items)
	totalPages := (total + limit - 1) / limit

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return &model.HistoryPage{
		Data:       append([]*model.HistoryItem{}, items[start:end]...),
		Page:       page,
		Limit:      limit,
		TotalCount: total,
		TotalPages: totalPages,
	}
}
